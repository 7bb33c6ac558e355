package costfunction

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg"
	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/history"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/util"
)

type LagSource interface {
	AverageLags(site da.SiteID, lagCount int, weekday pkg.Weekday, minuteOfDay int) history.LagVector
	IntervalMinutes() int
}

// FlowEstimator. predicted vehicle count of one interval at an intersection
type FlowEstimator interface {
	Estimate(ctx context.Context, site da.SiteID, lags history.LagVector) (float64, error)
}

type CostFunction interface {
	GetWeightAtTime(ctx context.Context, u, v da.Index, departure time.Time, elapsedSeconds float64) (float64, error)
	GetSpeedLimit() float64
}

/*
TravelTimeFunction. cost in seconds of the edge (u,v) entered after elapsedSeconds of travel since departure:

	distance(u,v) / speed(flow(v)) * 3600 + intersectionDelay

flow(v) is the estimated flow at v for the lag window ending at the arrival time at u.
*/
type TravelTimeFunction struct {
	graph             *da.Graph
	lags              LagSource
	estimator         FlowEstimator
	speedFlow         *SpeedFlowModel
	lagCount          int
	intersectionDelay float64
}

func NewTravelTimeFunction(graph *da.Graph, lags LagSource, estimator FlowEstimator, speedFlow *SpeedFlowModel,
	lagCount int, intersectionDelay float64) *TravelTimeFunction {
	return &TravelTimeFunction{
		graph:             graph,
		lags:              lags,
		estimator:         estimator,
		speedFlow:         speedFlow,
		lagCount:          lagCount,
		intersectionDelay: intersectionDelay,
	}
}

func (tf *TravelTimeFunction) GetWeightAtTime(ctx context.Context, u, v da.Index, departure time.Time,
	elapsedSeconds float64) (float64, error) {
	weekday, minuteOfDay := ArrivalSlot(departure, elapsedSeconds)

	site := tf.graph.GetSite(v)
	lags := tf.lags.AverageLags(site, tf.lagCount, weekday, minuteOfDay)

	flow, err := tf.estimator.Estimate(ctx, site, lags)
	if err != nil {
		return pkg.INF_WEIGHT, fmt.Errorf("estimating flow at intersection %d: %w", site, err)
	}

	speed := tf.speedFlow.SpeedFromFlow(tf.HourlyFlow(flow))
	dist := tf.graph.GetDistance(u, v)

	return util.HoursToSeconds(dist/speed) + tf.intersectionDelay, nil
}

// HourlyFlow. interval vehicle count -> vehicles per hour
func (tf *TravelTimeFunction) HourlyFlow(intervalFlow float64) float64 {
	return intervalFlow * float64(pkg.MINUTES_PER_DAY/24) / float64(tf.lags.IntervalMinutes())
}

func (tf *TravelTimeFunction) GetSpeedLimit() float64 {
	return tf.speedFlow.GetSpeedLimit()
}

func (tf *TravelTimeFunction) GetIntersectionDelay() float64 {
	return tf.intersectionDelay
}

// ArrivalSlot. weekday and minute of day of departure + elapsed seconds, floored to the minute. the minute may
// exceed a day, the lag aggregator rolls it over to the next weekday.
func ArrivalSlot(departure time.Time, elapsedSeconds float64) (pkg.Weekday, int) {
	secondOfDay := float64(departure.Hour()*3600 + departure.Minute()*60 + departure.Second())
	if elapsedSeconds > 0 && !math.IsInf(elapsedSeconds, 1) {
		secondOfDay += elapsedSeconds
	}
	return pkg.WeekdayOf(int(departure.Weekday())), int(math.Floor(secondOfDay / 60))
}
