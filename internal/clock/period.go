package clock

// Period is a named part of the day derived from the hour.
type Period string

const (
	Morning Period = "morning"
	Day     Period = "day"
	Evening Period = "evening"
	Night   Period = "night"
)

// PeriodOf maps an hour onto its period: morning 5-9, day 10-16, evening 17-20,
// night otherwise.
func PeriodOf(hour int) Period {
	switch {
	case hour >= 5 && hour < 10:
		return Morning
	case hour >= 10 && hour < 17:
		return Day
	case hour >= 17 && hour < 21:
		return Evening
	default:
		return Night
	}
}
