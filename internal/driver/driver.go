// Package driver runs the simulation in real time.
package driver

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultTickLength = time.Second
)

// Manager is advanced by the real time that passed since its last tick.
type Manager interface {
	Tick(ctx context.Context, elapsed time.Duration) error
}

type Driver struct {
	tickLength time.Duration
	managers   []Manager
	now        func() time.Time

	last time.Time
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "driver started", "tick_length", d.tickLength)

	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	d.last = d.now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

// Tick advances every manager by the time elapsed since the previous tick.
func (d *Driver) Tick(ctx context.Context) error {
	now := d.now()
	elapsed := now.Sub(d.last)
	if d.last.IsZero() {
		elapsed = 0
	}
	d.last = now

	for _, m := range d.managers {
		if err := m.Tick(ctx, elapsed); err != nil {
			return err
		}
	}
	return nil
}
