// Package clock advances game time and drives the day loop.
package clock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pixil98/go-timeloop/internal/event"
)

const (
	DefaultDayStart   = 6
	DefaultDayEnd     = 24
	DefaultHourLength = time.Minute
)

var (
	ErrNotReady       = errors.New("clock is not ready")
	ErrTickInProgress = errors.New("tick already in progress")
)

// State is the current position of the clock.
type State struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Listener is driven by the clock. Calls are made synchronously from within a
// tick and cannot fail.
type Listener interface {
	// OnDayBoundary is called after the day counter has been incremented and
	// the time reset to the start of the day.
	OnDayBoundary(ctx context.Context, st State)
	// OnHourChanged is called for every hour the clock enters, including the
	// first hour of a new day.
	OnHourChanged(ctx context.Context, st State)
}

type Clock struct {
	dayStart   int
	dayEnd     int
	hourLength time.Duration
	timeScale  float64

	listeners []Listener
	pub       event.Publisher

	ready  atomic.Bool
	tickMu sync.Mutex

	mu    sync.RWMutex
	st    State
	accum time.Duration
}

func NewClock(opts ...ClockOpt) (*Clock, error) {
	c := &Clock{
		dayStart:   DefaultDayStart,
		dayEnd:     DefaultDayEnd,
		hourLength: DefaultHourLength,
		timeScale:  1,
		pub:        event.Discard,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.dayStart < 0 || c.dayEnd > 24 || c.dayStart >= c.dayEnd {
		return nil, fmt.Errorf("invalid day bounds [%d, %d)", c.dayStart, c.dayEnd)
	}
	if c.hourLength < time.Minute/60 {
		return nil, fmt.Errorf("hour length %s is too short", c.hourLength)
	}
	if c.timeScale <= 0 {
		return nil, fmt.Errorf("time scale must be positive")
	}

	c.st = State{Day: 1, Hour: c.dayStart}
	return c, nil
}

// Ready opens the clock for ticks. Until it is called Advance and
// AdvanceToNextPeriod return ErrNotReady.
func (c *Clock) Ready() {
	c.ready.Store(true)
}

func (c *Clock) IsReady() bool {
	return c.ready.Load()
}

func (c *Clock) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.st
}

func (c *Clock) Period() Period {
	return PeriodOf(c.State().Hour)
}

func (c *Clock) DayStart() int { return c.dayStart }

func (c *Clock) DayEnd() int { return c.dayEnd }

// FormatTime renders the current time as "h:mm AM".
func (c *Clock) FormatTime() string {
	st := c.State()
	return FormatTime(st.Hour, st.Minute)
}

// FormatTime renders a 24 hour time as a 12 hour clock.
func FormatTime(hour, minute int) string {
	suffix := "AM"
	if hour%24 >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, suffix)
}

// Restore moves the clock to a saved position without firing any listeners.
func (c *Clock) Restore(st State) error {
	if st.Day < 1 {
		return fmt.Errorf("day %d must be at least 1", st.Day)
	}
	if st.Hour < c.dayStart || st.Hour >= c.dayEnd {
		return fmt.Errorf("hour %d outside day bounds [%d, %d)", st.Hour, c.dayStart, c.dayEnd)
	}
	if st.Minute < 0 || st.Minute > 59 {
		return fmt.Errorf("minute %d out of range", st.Minute)
	}

	if !c.tickMu.TryLock() {
		return ErrTickInProgress
	}
	defer c.tickMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.st = st
	c.accum = 0
	return nil
}

// Advance moves game time forward by a real elapsed delta. Every hour crossed
// is delivered in order and every day end crossed triggers exactly one day
// boundary.
func (c *Clock) Advance(ctx context.Context, delta time.Duration) error {
	if !c.ready.Load() {
		return ErrNotReady
	}
	if !c.tickMu.TryLock() {
		return ErrTickInProgress
	}
	defer c.tickMu.Unlock()

	if delta <= 0 {
		return nil
	}

	minuteLength := c.hourLength / 60

	c.mu.Lock()
	c.accum += time.Duration(float64(delta) * c.timeScale)
	minutes := int(c.accum / minuteLength)
	c.accum %= minuteLength
	c.mu.Unlock()

	for minutes > 0 {
		c.mu.Lock()
		remaining := 60 - c.st.Minute
		if minutes < remaining {
			c.st.Minute += minutes
			c.mu.Unlock()
			break
		}
		c.mu.Unlock()

		minutes -= remaining
		c.nextHour(ctx)
	}

	return nil
}

// AdvanceToNextPeriod skips to the first hour of the next period, passing
// through every hour in between. From the last period of the day it advances to
// the start of the next day.
func (c *Clock) AdvanceToNextPeriod(ctx context.Context) error {
	if !c.ready.Load() {
		return ErrNotReady
	}
	if !c.tickMu.TryLock() {
		return ErrTickInProgress
	}
	defer c.tickMu.Unlock()

	start := c.State()
	from := PeriodOf(start.Hour)
	for {
		c.nextHour(ctx)
		cur := c.State()
		if cur.Day != start.Day || PeriodOf(cur.Hour) != from {
			return nil
		}
	}
}

// nextHour moves to the top of the following hour. Callers hold tickMu.
func (c *Clock) nextHour(ctx context.Context) {
	c.mu.Lock()
	prev := c.st
	c.st.Minute = 0
	c.st.Hour++
	boundary := c.st.Hour >= c.dayEnd
	if boundary {
		c.st.Day++
		c.st.Hour = c.dayStart
	}
	cur := c.st
	c.mu.Unlock()

	if boundary {
		slog.InfoContext(ctx, "day boundary", "day", cur.Day)
		for _, l := range c.listeners {
			l.OnDayBoundary(ctx, cur)
		}
		c.pub.Publish(event.DayReset{Day: cur.Day})
	}

	c.pub.Publish(event.HourChanged{Day: cur.Day, Hour: cur.Hour})
	if from, to := PeriodOf(prev.Hour), PeriodOf(cur.Hour); from != to {
		c.pub.Publish(event.PeriodChanged{Day: cur.Day, From: string(from), To: string(to)})
	}
	for _, l := range c.listeners {
		l.OnHourChanged(ctx, cur)
	}
}
