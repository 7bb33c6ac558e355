package costfunction

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg"
	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/geo"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type lagCall struct {
	site        da.SiteID
	weekday     pkg.Weekday
	minuteOfDay int
}

type stubLags struct {
	calls []lagCall
}

func (s *stubLags) AverageLags(site da.SiteID, lagCount int, weekday pkg.Weekday, minuteOfDay int) history.LagVector {
	s.calls = append(s.calls, lagCall{site, weekday, minuteOfDay})
	return make(history.LagVector, lagCount)
}

func (s *stubLags) IntervalMinutes() int {
	return 15
}

type stubEstimator struct {
	flow float64
	err  error
}

func (s stubEstimator) Estimate(ctx context.Context, site da.SiteID, lags history.LagVector) (float64, error) {
	return s.flow, s.err
}

func twoNodeGraph(t *testing.T, distKm float64) *da.Graph {
	lat, lon := geo.GetDestinationPoint(-37.8, 145.0, 90, distKm)
	rows := []da.NeighborRow{
		{Site: 1, Lat: -37.8, Lon: 145.0, Neighbors: [da.NUM_DIRECTIONS]da.SiteID{2}},
		{Site: 2, Lat: lat, Lon: lon, Neighbors: [da.NUM_DIRECTIONS]da.SiteID{1}},
	}
	g, err := da.NewGraph(rows, da.DANGLING_REJECT, zap.NewNop())
	require.NoError(t, err)
	return g
}

func TestGetWeightAtTime(t *testing.T) {
	g := twoNodeGraph(t, 1)
	lags := &stubLags{}
	// 0 vehicles -> capped at 60 km/h
	tf := NewTravelTimeFunction(g, lags, stubEstimator{flow: 0}, NewDefaultSpeedFlowModel(), 12, 30)

	departure := time.Date(2006, 10, 2, 8, 0, 0, 0, time.UTC) // monday
	w, err := tf.GetWeightAtTime(context.Background(), 0, 1, departure, 3599)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, w, 1e-6)

	require.Len(t, lags.calls, 1)
	assert.Equal(t, lagCall{site: 2, weekday: pkg.MONDAY, minuteOfDay: 539}, lags.calls[0])
}

func TestGetWeightAtTimeCongested(t *testing.T) {
	g := twoNodeGraph(t, 2)
	// 375 vehicles per 15 minutes = 1500 veh/h -> 32 km/h
	tf := NewTravelTimeFunction(g, &stubLags{}, stubEstimator{flow: 375}, NewDefaultSpeedFlowModel(), 12, 30)

	w, err := tf.GetWeightAtTime(context.Background(), 0, 1, time.Date(2006, 10, 2, 8, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/32*3600+30, w, 1e-6)
}

func TestGetWeightAtTimeEstimatorError(t *testing.T) {
	g := twoNodeGraph(t, 1)
	errNoModel := errors.New("no model")
	tf := NewTravelTimeFunction(g, &stubLags{}, stubEstimator{err: errNoModel}, NewDefaultSpeedFlowModel(), 12, 30)

	w, err := tf.GetWeightAtTime(context.Background(), 0, 1, time.Now(), 0)
	assert.ErrorIs(t, err, errNoModel)
	assert.Equal(t, pkg.INF_WEIGHT, w)
}

func TestHourlyFlow(t *testing.T) {
	tf := NewTravelTimeFunction(nil, &stubLags{}, stubEstimator{}, NewDefaultSpeedFlowModel(), 12, 30)
	assert.Equal(t, 400.0, tf.HourlyFlow(100))
	assert.Equal(t, 60.0, tf.GetSpeedLimit())
}

func TestArrivalSlot(t *testing.T) {
	sunday := time.Date(2006, 10, 1, 23, 50, 30, 0, time.UTC)
	monday := time.Date(2006, 10, 2, 8, 14, 59, 0, time.UTC)

	testCases := []struct {
		name           string
		departure      time.Time
		elapsedSeconds float64
		weekday        pkg.Weekday
		minute         int
	}{
		{"at departure", sunday, 0, pkg.SUNDAY, 1430},
		{"partial minutes are floored", sunday, 29.5, pkg.SUNDAY, 1430},
		{"departure seconds carry into the next minute", sunday, 59.9, pkg.SUNDAY, 1431},
		{"past midnight stays on the departure weekday", sunday, 1200, pkg.SUNDAY, 1450},
		{"crossing an interval boundary", monday, 2, pkg.MONDAY, 495},
		{"unreached vertex keeps the departure minute", monday, math.Inf(1), pkg.MONDAY, 494},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			w, m := ArrivalSlot(tt.departure, tt.elapsedSeconds)
			assert.Equal(t, tt.weekday, w)
			assert.Equal(t, tt.minute, m)
		})
	}
}
