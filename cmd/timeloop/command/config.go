package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-timeloop/internal/storage"
)

type Config struct {
	TickInterval string        `json:"tick_interval"`
	Clock        ClockConfig   `json:"clock"`
	Storage      StorageConfig `json:"storage"`
	Player       PlayerConfig  `json:"player"`
	Save         SaveConfig    `json:"save"`
	Nats         NatsConfig    `json:"nats"`
	Tracing      TracingConfig `json:"tracing"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		el.Add(fmt.Errorf("parsing tick_interval: %w", err))
	} else if d < 10*time.Millisecond {
		el.Add(fmt.Errorf("tick_interval must be at least 10ms"))
	}

	el.Add(c.Clock.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Save.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Tracing.validate())

	return el.Err()
}

func (c *Config) tickInterval() time.Duration {
	d, _ := time.ParseDuration(c.TickInterval)
	return d
}

type PlayerConfig struct {
	StartLocation storage.Identifier `json:"start_location"`
	Traits        []string           `json:"traits"`
}
