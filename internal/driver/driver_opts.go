package driver

import "time"

type DriverOpt func(*Driver)

func WithTickLength(tickLength time.Duration) DriverOpt {
	return func(d *Driver) {
		d.tickLength = tickLength
	}
}

// WithNow replaces the wall clock the driver measures elapsed time with.
func WithNow(now func() time.Time) DriverOpt {
	return func(d *Driver) {
		d.now = now
	}
}
