package history

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg"
	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"go.uber.org/zap"
)

var (
	ErrMalformedHistory = errors.New("malformed history record")
)

// FlowRecord. one day of detector counts of an intersection. Flows[i] is the vehicle count of the i-th interval of the day,
// NaN when the field could not be parsed.
type FlowRecord struct {
	Site  da.SiteID
	Date  string
	Flows []float64
}

// LagVector. averaged historical flows, oldest first
type LagVector []float64

type dayRecords struct {
	flows [][]float64
}

// Store. historical flow records indexed by intersection and weekday
type Store struct {
	records         map[da.SiteID]*[pkg.DAYS_PER_WEEK]dayRecords
	intervalMinutes int
	maxInterval     int
	log             *zap.Logger
}

// NewStore. index records by (site, weekday). records with a malformed date are logged and excluded.
func NewStore(records []FlowRecord, intervalMinutes int, log *zap.Logger) (*Store, error) {
	if intervalMinutes <= 0 || pkg.MINUTES_PER_DAY%intervalMinutes != 0 {
		return nil, fmt.Errorf("interval of %d minutes does not divide a day", intervalMinutes)
	}

	s := &Store{
		records:         make(map[da.SiteID]*[pkg.DAYS_PER_WEEK]dayRecords),
		intervalMinutes: intervalMinutes,
		maxInterval:     pkg.MINUTES_PER_DAY/intervalMinutes - 1,
		log:             log,
	}

	excluded := 0
	for _, rec := range records {
		date, err := ParseDate(rec.Date)
		if err != nil {
			log.Warn("excluding history record", zap.Int64("site", int64(rec.Site)), zap.Error(err))
			excluded++
			continue
		}

		days, ok := s.records[rec.Site]
		if !ok {
			days = &[pkg.DAYS_PER_WEEK]dayRecords{}
			s.records[rec.Site] = days
		}
		wd := pkg.WeekdayOf(int(date.Weekday()))
		days[wd].flows = append(days[wd].flows, rec.Flows)
	}

	log.Info("history store ready", zap.Int("records", len(records)-excluded),
		zap.Int("excluded", excluded), zap.Int("sites", len(s.records)))
	return s, nil
}

func (s *Store) IntervalMinutes() int {
	return s.intervalMinutes
}

func (s *Store) HasSite(site da.SiteID) bool {
	_, ok := s.records[site]
	return ok
}

/*
AverageLags. build the lag vector of site for the interval containing minuteOfDay on weekday.

lag i (oldest first) is the interval base-(lagCount-i), where base is the interval containing minuteOfDay.
an interval before midnight wraps to the last intervals of the previous weekday. each lag is the average
of that interval's flow over all records of the same weekday. a lag without any usable record is skipped,
so the vector can be shorter than lagCount.
*/
func (s *Store) AverageLags(site da.SiteID, lagCount int, weekday pkg.Weekday, minuteOfDay int) LagVector {
	weekday = weekday % pkg.DAYS_PER_WEEK
	for minuteOfDay < 0 {
		minuteOfDay += pkg.MINUTES_PER_DAY
		weekday = weekday.Prev()
	}
	for minuteOfDay >= pkg.MINUTES_PER_DAY {
		minuteOfDay -= pkg.MINUTES_PER_DAY
		weekday = weekday.Next()
	}

	base := minuteOfDay / s.intervalMinutes

	lags := make(LagVector, 0, lagCount)
	days := s.records[site]

	for i := 0; i < lagCount; i++ {
		curWeekday := weekday
		interval := base - (lagCount - i)
		for interval < 0 {
			interval = s.maxInterval + interval + 1 // -1 wraps to maxInterval
			curWeekday = curWeekday.Prev()
		}

		avg, ok := s.averageInterval(days, curWeekday, interval)
		if !ok {
			s.log.Warn("no history for lag interval",
				zap.Int64("site", int64(site)), zap.String("weekday", curWeekday.String()),
				zap.Int("interval", interval))
			continue
		}
		lags = append(lags, avg)
	}

	return lags
}

func (s *Store) averageInterval(days *[pkg.DAYS_PER_WEEK]dayRecords, weekday pkg.Weekday, interval int) (float64, bool) {
	if days == nil {
		return 0, false
	}

	total, count := 0.0, 0
	for _, flows := range days[weekday].flows {
		if interval >= len(flows) || math.IsNaN(flows[interval]) {
			continue
		}
		total += flows[interval]
		count++
	}
	if count == 0 {
		return 0, false
	}
	return total / float64(count), true
}

// ParseDate. parse the d/M/yyyy date format of SCATS exports, a trailing time of day is ignored
func ParseDate(dateString string) (time.Time, error) {
	fields := strings.Fields(dateString)
	if len(fields) == 0 {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrMalformedHistory)
	}
	split := strings.Split(fields[0], "/")
	if len(split) != 3 {
		return time.Time{}, fmt.Errorf("%w: invalid date format %q", ErrMalformedHistory, dateString)
	}

	parts := [3]int{}
	for i, p := range split {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: invalid date format %q", ErrMalformedHistory, dateString)
		}
		parts[i] = n
	}

	day, month, year := parts[0], parts[1], parts[2]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: date out of range %q", ErrMalformedHistory, dateString)
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day {
		return time.Time{}, fmt.Errorf("%w: date out of range %q", ErrMalformedHistory, dateString)
	}
	return date, nil
}

// FlowColumn. V00, V01 ... V95
func FlowColumn(interval int) string {
	return fmt.Sprintf("V%02d", interval)
}
