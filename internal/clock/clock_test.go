package clock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-timeloop/internal/event"
)

type recordingListener struct {
	calls  []string
	onHour func(State)
}

func (l *recordingListener) OnDayBoundary(_ context.Context, st State) {
	l.calls = append(l.calls, fmt.Sprintf("reset:%d", st.Day))
}

func (l *recordingListener) OnHourChanged(_ context.Context, st State) {
	l.calls = append(l.calls, fmt.Sprintf("hour:%d:%d", st.Day, st.Hour))
	if l.onHour != nil {
		l.onHour(st)
	}
}

func newTestClock(t *testing.T, opts ...ClockOpt) (*Clock, *event.Recorder) {
	t.Helper()
	rec := &event.Recorder{}
	opts = append([]ClockOpt{WithHourLength(time.Hour), WithPublisher(rec)}, opts...)
	c, err := NewClock(opts...)
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	c.Ready()
	return c, rec
}

func TestNewClock(t *testing.T) {
	tests := map[string]struct {
		opts   []ClockOpt
		expErr string
	}{
		"defaults": {},
		"inverted bounds": {
			opts:   []ClockOpt{WithDayBounds(20, 8)},
			expErr: "invalid day bounds",
		},
		"end past midnight": {
			opts:   []ClockOpt{WithDayBounds(6, 25)},
			expErr: "invalid day bounds",
		},
		"zero scale": {
			opts:   []ClockOpt{WithTimeScale(0)},
			expErr: "time scale must be positive",
		},
		"tiny hour": {
			opts:   []ClockOpt{WithHourLength(time.Millisecond)},
			expErr: "too short",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := NewClock(tt.opts...)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "state", c.State(), State{Day: 1, Hour: DefaultDayStart})
		})
	}
}

func TestClock_AdvanceSplitDeltas(t *testing.T) {
	tests := map[string]struct {
		deltas   []time.Duration
		expState State
	}{
		"within a day": {
			deltas:   []time.Duration{2*time.Minute + 500*time.Millisecond, 500 * time.Millisecond},
			expState: State{Day: 1, Hour: 8, Minute: 1},
		},
		"across a day boundary": {
			deltas:   []time.Duration{18*time.Minute + 500*time.Millisecond, 500 * time.Millisecond},
			expState: State{Day: 2, Hour: 6, Minute: 1},
		},
		"carry lands on the boundary": {
			deltas:   []time.Duration{17*time.Minute + 59*time.Second + 500*time.Millisecond, 1500 * time.Millisecond},
			expState: State{Day: 2, Hour: 6, Minute: 1},
		},
		"many small ticks": {
			deltas:   repeat(250*time.Millisecond, 4*(18*60+1)),
			expState: State{Day: 2, Hour: 6, Minute: 1},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			split, _ := newTestClock(t, WithHourLength(time.Minute))
			whole, _ := newTestClock(t, WithHourLength(time.Minute))

			var total time.Duration
			for _, d := range tt.deltas {
				total += d
				if err := split.Advance(context.Background(), d); err != nil {
					t.Fatalf("Advance: %v", err)
				}
			}
			if err := whole.Advance(context.Background(), total); err != nil {
				t.Fatalf("Advance: %v", err)
			}

			testutil.AssertEqual(t, "split", split.State(), tt.expState)
			testutil.AssertEqual(t, "whole", whole.State(), tt.expState)
		})
	}
}

func repeat(d time.Duration, n int) []time.Duration {
	out := make([]time.Duration, n)
	for i := range out {
		out[i] = d
	}
	return out
}

func TestNewClock_DefaultPublisherDrops(t *testing.T) {
	for name, opts := range map[string][]ClockOpt{
		"no publisher":  nil,
		"nil publisher": {WithPublisher(nil)},
	} {
		t.Run(name, func(t *testing.T) {
			c, err := NewClock(append(opts, WithHourLength(time.Minute))...)
			if err != nil {
				t.Fatalf("NewClock: %v", err)
			}
			c.Ready()
			if err := c.Advance(context.Background(), 20*time.Minute); err != nil {
				t.Fatalf("Advance: %v", err)
			}
			testutil.AssertEqual(t, "publisher", c.pub, event.Discard)
			testutil.AssertEqual(t, "state", c.State(), State{Day: 2, Hour: 8})
		})
	}
}

func TestClock_NotReady(t *testing.T) {
	c, err := NewClock()
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}

	err = c.Advance(context.Background(), time.Hour)
	testutil.AssertEqual(t, "advance", errors.Is(err, ErrNotReady), true)

	err = c.AdvanceToNextPeriod(context.Background())
	testutil.AssertEqual(t, "next period", errors.Is(err, ErrNotReady), true)

	c.Ready()
	testutil.AssertEqual(t, "ready", c.IsReady(), true)
}

func TestClock_Advance(t *testing.T) {
	tests := map[string]struct {
		opts      []ClockOpt
		delta     time.Duration
		expState  State
		expHours  int
		expResets int
	}{
		"partial hour": {
			delta:    30 * time.Minute,
			expState: State{Day: 1, Hour: 6, Minute: 30},
		},
		"one hour": {
			delta:    time.Hour,
			expState: State{Day: 1, Hour: 7},
			expHours: 1,
		},
		"non positive": {
			delta:    -time.Hour,
			expState: State{Day: 1, Hour: 6},
		},
		"exactly one day": {
			delta:     18 * time.Hour,
			expState:  State{Day: 2, Hour: 6},
			expHours:  18,
			expResets: 1,
		},
		"three days and a bit": {
			delta:     3*18*time.Hour + 90*time.Minute,
			expState:  State{Day: 4, Hour: 7, Minute: 30},
			expHours:  3*18 + 1,
			expResets: 3,
		},
		"scaled": {
			opts:     []ClockOpt{WithTimeScale(2)},
			delta:    90 * time.Minute,
			expState: State{Day: 1, Hour: 9},
			expHours: 3,
		},
		"short day": {
			opts:      []ClockOpt{WithDayBounds(8, 12)},
			delta:     9 * time.Hour,
			expState:  State{Day: 3, Hour: 9},
			expHours:  9,
			expResets: 2,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, rec := newTestClock(t, tt.opts...)

			err := c.Advance(context.Background(), tt.delta)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.AssertEqual(t, "state", c.State(), tt.expState)
			testutil.AssertEqual(t, "hours", len(rec.OfKind(event.KindHourChanged)), tt.expHours)
			testutil.AssertEqual(t, "resets", len(rec.OfKind(event.KindDayReset)), tt.expResets)
		})
	}
}

func TestClock_AdvanceAccumulates(t *testing.T) {
	c, rec := newTestClock(t)

	for i := 0; i < 4; i++ {
		if err := c.Advance(context.Background(), 15*time.Minute); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	testutil.AssertEqual(t, "state", c.State(), State{Day: 1, Hour: 7})
	testutil.AssertEqual(t, "hours", len(rec.OfKind(event.KindHourChanged)), 1)
}

func TestClock_EveryHourDelivered(t *testing.T) {
	l := &recordingListener{}
	c, _ := newTestClock(t, WithDayBounds(20, 24), WithListener(l))

	if err := c.Advance(context.Background(), 5*time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := "hour:1:21 hour:1:22 hour:1:23 reset:2 hour:2:20 hour:2:21"
	testutil.AssertEqual(t, "calls", strings.Join(l.calls, " "), exp)
}

func TestClock_DayResetPublishedBeforeStartHour(t *testing.T) {
	c, rec := newTestClock(t, WithDayBounds(22, 24))

	if err := c.Advance(context.Background(), 2*time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "count", len(rec.Events), 3)
	testutil.AssertEqual(t, "first", rec.Events[0], event.Event(event.HourChanged{Day: 1, Hour: 23}))
	testutil.AssertEqual(t, "second", rec.Events[1], event.Event(event.DayReset{Day: 2}))
	testutil.AssertEqual(t, "third", rec.Events[2], event.Event(event.HourChanged{Day: 2, Hour: 22}))
}

func TestClock_PeriodChanged(t *testing.T) {
	c, rec := newTestClock(t)

	if err := c.Advance(context.Background(), 18*time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, ev := range rec.OfKind(event.KindPeriodChanged) {
		pc := ev.(event.PeriodChanged)
		got = append(got, pc.From+">"+pc.To)
	}
	exp := "morning>day day>evening evening>night night>morning"
	testutil.AssertEqual(t, "periods", strings.Join(got, " "), exp)
}

func TestClock_AdvanceToNextPeriod(t *testing.T) {
	tests := map[string]struct {
		start    State
		expState State
		expHours int
	}{
		"morning to day": {
			start:    State{Day: 1, Hour: 6, Minute: 45},
			expState: State{Day: 1, Hour: 10},
			expHours: 4,
		},
		"day to evening": {
			start:    State{Day: 1, Hour: 16},
			expState: State{Day: 1, Hour: 17},
			expHours: 1,
		},
		"night wraps to next day": {
			start:    State{Day: 3, Hour: 21},
			expState: State{Day: 4, Hour: 6},
			expHours: 3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, rec := newTestClock(t)
			if err := c.Restore(tt.start); err != nil {
				t.Fatalf("Restore: %v", err)
			}

			if err := c.AdvanceToNextPeriod(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.AssertEqual(t, "state", c.State(), tt.expState)
			testutil.AssertEqual(t, "hours", len(rec.OfKind(event.KindHourChanged)), tt.expHours)
		})
	}
}

func TestClock_NonReentrant(t *testing.T) {
	var c *Clock
	var nested []error
	l := &recordingListener{onHour: func(State) {
		nested = append(nested, c.Advance(context.Background(), time.Hour))
		nested = append(nested, c.AdvanceToNextPeriod(context.Background()))
	}}
	c, _ = newTestClock(t, WithListener(l))

	if err := c.Advance(context.Background(), time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "nested calls", len(nested), 2)
	for i, err := range nested {
		testutil.AssertEqual(t, fmt.Sprintf("nested %d", i), errors.Is(err, ErrTickInProgress), true)
	}
	testutil.AssertEqual(t, "state", c.State(), State{Day: 1, Hour: 7})
}

func TestClock_StateReadableDuringTick(t *testing.T) {
	var c *Clock
	var seen []State
	l := &recordingListener{onHour: func(State) { seen = append(seen, c.State()) }}
	c, _ = newTestClock(t, WithListener(l))

	if err := c.Advance(context.Background(), 2*time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "seen", len(seen), 2)
	testutil.AssertEqual(t, "first", seen[0], State{Day: 1, Hour: 7})
	testutil.AssertEqual(t, "second", seen[1], State{Day: 1, Hour: 8})
}

func TestClock_Restore(t *testing.T) {
	tests := map[string]struct {
		st     State
		expErr string
	}{
		"valid":          {st: State{Day: 5, Hour: 14, Minute: 20}},
		"day zero":       {st: State{Day: 0, Hour: 8}, expErr: "must be at least 1"},
		"before start":   {st: State{Day: 1, Hour: 5}, expErr: "outside day bounds"},
		"at end":         {st: State{Day: 1, Hour: 24}, expErr: "outside day bounds"},
		"minute too big": {st: State{Day: 1, Hour: 8, Minute: 60}, expErr: "minute 60 out of range"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClock(t)
			err := c.Restore(tt.st)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				testutil.AssertEqual(t, "unchanged", c.State(), State{Day: 1, Hour: 6})
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "state", c.State(), tt.st)
		})
	}
}

func TestFormatTime(t *testing.T) {
	tests := map[string]struct {
		hour   int
		minute int
		exp    string
	}{
		"morning":  {hour: 6, minute: 0, exp: "6:00 AM"},
		"noon":     {hour: 12, minute: 5, exp: "12:05 PM"},
		"evening":  {hour: 18, minute: 30, exp: "6:30 PM"},
		"midnight": {hour: 0, minute: 0, exp: "12:00 AM"},
		"late":     {hour: 23, minute: 59, exp: "11:59 PM"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "time", FormatTime(tt.hour, tt.minute), tt.exp)
		})
	}
}

func TestPeriodOf(t *testing.T) {
	tests := map[string]struct {
		hour int
		exp  Period
	}{
		"early":       {hour: 4, exp: Night},
		"dawn":        {hour: 5, exp: Morning},
		"late morn":   {hour: 9, exp: Morning},
		"day":         {hour: 10, exp: Day},
		"afternoon":   {hour: 16, exp: Day},
		"evening":     {hour: 17, exp: Evening},
		"late eve":    {hour: 20, exp: Evening},
		"night":       {hour: 21, exp: Night},
		"before 12am": {hour: 23, exp: Night},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "period", PeriodOf(tt.hour), tt.exp)
		})
	}
}
