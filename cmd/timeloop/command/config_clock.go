package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-timeloop/internal/clock"
)

type ClockConfig struct {
	DayStartHour        *int    `json:"day_start_hour"`
	DayEndHour          *int    `json:"day_end_hour"`
	RealTimePerGameHour string  `json:"real_time_per_game_hour"`
	TimeScale           float64 `json:"time_scale"`
}

func (c *ClockConfig) validate() error {
	el := errors.NewErrorList()

	start, end := c.bounds()
	if start < 0 || end > 24 || start >= end {
		el.Add(fmt.Errorf("clock: day bounds [%d, %d) are invalid", start, end))
	}
	if c.RealTimePerGameHour != "" {
		d, err := time.ParseDuration(c.RealTimePerGameHour)
		if err != nil {
			el.Add(fmt.Errorf("clock: parsing real_time_per_game_hour: %w", err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("clock: real_time_per_game_hour must be positive"))
		}
	}
	if c.TimeScale < 0 {
		el.Add(fmt.Errorf("clock: time_scale must be positive"))
	}

	return el.Err()
}

func (c *ClockConfig) bounds() (int, int) {
	start, end := clock.DefaultDayStart, clock.DefaultDayEnd
	if c.DayStartHour != nil {
		start = *c.DayStartHour
	}
	if c.DayEndHour != nil {
		end = *c.DayEndHour
	}
	return start, end
}

func (c *ClockConfig) clockOpts() ([]clock.ClockOpt, error) {
	start, end := c.bounds()
	opts := []clock.ClockOpt{clock.WithDayBounds(start, end)}

	if c.RealTimePerGameHour != "" {
		d, err := time.ParseDuration(c.RealTimePerGameHour)
		if err != nil {
			return nil, fmt.Errorf("parsing real_time_per_game_hour: %w", err)
		}
		opts = append(opts, clock.WithHourLength(d))
	}
	if c.TimeScale > 0 {
		opts = append(opts, clock.WithTimeScale(c.TimeScale))
	}

	return opts, nil
}
