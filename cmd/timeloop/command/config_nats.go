package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-timeloop/internal/messaging"
)

// NatsConfig configures the embedded broker events are forwarded to. A zero
// port keeps the broker default; -1 picks a free port.
type NatsConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if _, err := n.startTimeout(); err != nil {
		el.Add(fmt.Errorf("nats: %w", err))
	}
	if n.Port < messaging.RandomPort || n.Port > 65535 {
		el.Add(fmt.Errorf("nats: port %d out of range", n.Port))
	}

	return el.Err()
}

func (n *NatsConfig) startTimeout() (time.Duration, error) {
	if n.StartTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(n.StartTimeout)
	if err != nil {
		return 0, fmt.Errorf("parsing start_timeout: %w", err)
	}
	return d, nil
}

func (n *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	timeout, err := n.startTimeout()
	if err != nil {
		return nil, err
	}

	opts := []messaging.NatsServerOpt{messaging.WithClientName(DefaultServiceName)}
	if timeout > 0 {
		opts = append(opts, messaging.WithStartTimeout(timeout))
	}
	if n.Host != "" {
		opts = append(opts, messaging.WithHost(n.Host))
	}
	if n.Port != 0 {
		opts = append(opts, messaging.WithPort(n.Port))
	}

	return messaging.NewNatsServer(opts...)
}
