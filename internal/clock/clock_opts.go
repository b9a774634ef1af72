package clock

import (
	"time"

	"github.com/pixil98/go-timeloop/internal/event"
)

type ClockOpt func(*Clock)

// WithDayBounds sets the first hour of a day and the hour at which it ends.
func WithDayBounds(start, end int) ClockOpt {
	return func(c *Clock) {
		c.dayStart = start
		c.dayEnd = end
	}
}

// WithHourLength sets how much real time makes up one game hour.
func WithHourLength(d time.Duration) ClockOpt {
	return func(c *Clock) {
		c.hourLength = d
	}
}

// WithTimeScale multiplies every elapsed delta.
func WithTimeScale(scale float64) ClockOpt {
	return func(c *Clock) {
		c.timeScale = scale
	}
}

// WithListener registers a listener called on every hour and day boundary.
func WithListener(l Listener) ClockOpt {
	return func(c *Clock) {
		c.listeners = append(c.listeners, l)
	}
}

// WithPublisher sets where hour, period and day notifications are sent. A nil
// publisher drops them.
func WithPublisher(p event.Publisher) ClockOpt {
	return func(c *Clock) {
		if p == nil {
			p = event.Discard
		}
		c.pub = p
	}
}
