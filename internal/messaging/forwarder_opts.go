package messaging

type ForwarderOpt func(*Forwarder)

// WithBufferSize sets how many events may wait for the broker before new
// ones are dropped.
func WithBufferSize(n int) ForwarderOpt {
	return func(f *Forwarder) {
		if n > 0 {
			f.bufferSize = n
		}
	}
}
