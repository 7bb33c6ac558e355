package pkg

const (
	INF_WEIGHT float64 = 1e15

	MINUTES_PER_DAY = 1440
	DAYS_PER_WEEK   = 7

	// SCATS detectors report vehicle counts in 15 minute bins (V00..V95).
	DEFAULT_INTERVAL_MINUTES = 15
	DEFAULT_LAG_COUNT        = 12

	// fixed delay for crossing an intersection, added to every edge.
	DEFAULT_INTERSECTION_DELAY_SECOND = 30.0

	DEFAULT_FREE_FLOW_SPEED_KMH = 32.0
	DEFAULT_CRITICAL_FLOW_VPH   = 1500.0
	DEFAULT_ROAD_CAPACITY_VPH   = 9999.0
	DEFAULT_SPEED_LIMIT_KMH     = 60.0
	DEFAULT_MIN_SPEED_KMH       = 0.1

	DEFAULT_ALTERNATIVE_ROUTES = 2
)

// Weekday follows the SCATS convention: 0 = Monday ... 6 = Sunday.
type Weekday uint8

const (
	MONDAY Weekday = iota
	TUESDAY
	WEDNESDAY
	THURSDAY
	FRIDAY
	SATURDAY
	SUNDAY
)

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (w Weekday) String() string {
	return weekdayNames[w%DAYS_PER_WEEK]
}

// Next. day after w, sunday wraps to monday
func (w Weekday) Next() Weekday {
	return (w + 1) % DAYS_PER_WEEK
}

// Prev. day before w, monday wraps to sunday
func (w Weekday) Prev() Weekday {
	return (w + DAYS_PER_WEEK - 1) % DAYS_PER_WEEK
}

// WeekdayOf converts time.Weekday numbering (sunday = 0) to the SCATS numbering.
func WeekdayOf(goWeekday int) Weekday {
	return Weekday((goWeekday + 6) % DAYS_PER_WEEK)
}

// compass-direction neighbor columns of the SCATS neighbor table
var NEIGHBOR_DIRECTIONS = [...]string{
	"North", "Northeast", "East", "Southeast", "South", "Southwest", "West", "Northwest",
}
