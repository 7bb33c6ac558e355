package costfunction

import (
	"fmt"
	"math"

	"github.com/RdZ0101/Traffic-Flow-prediction/pkg"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/util"
)

/*
SpeedFlowModel. quadratic speed-flow relationship: flow = a*speed^2 + b*speed, with the apex at
(freeFlowSpeed, criticalFlow). a = -q/v^2, b = -2va.

below road capacity the uncongested branch is used (speed increases as flow decreases), at or above capacity
the congested branch (speed decreases as flow decreases).
*/
type SpeedFlowModel struct {
	freeFlowSpeed float64 // km/h
	criticalFlow  float64 // veh/h
	capacity      float64 // veh/h
	speedLimit    float64 // km/h
	minSpeed      float64 // km/h

	a, b float64
}

func NewSpeedFlowModel(freeFlowSpeed, criticalFlow, capacity, speedLimit, minSpeed float64) (*SpeedFlowModel, error) {
	if freeFlowSpeed <= 0 || criticalFlow <= 0 {
		return nil, fmt.Errorf("free flow speed and critical flow must be positive, got %f and %f", freeFlowSpeed, criticalFlow)
	}
	if minSpeed <= 0 || speedLimit < minSpeed {
		return nil, fmt.Errorf("speed limit %f must be >= min speed %f > 0", speedLimit, minSpeed)
	}

	a := -(criticalFlow / (freeFlowSpeed * freeFlowSpeed))
	return &SpeedFlowModel{
		freeFlowSpeed: freeFlowSpeed,
		criticalFlow:  criticalFlow,
		capacity:      capacity,
		speedLimit:    speedLimit,
		minSpeed:      minSpeed,
		a:             a,
		b:             -2 * freeFlowSpeed * a,
	}, nil
}

func NewDefaultSpeedFlowModel() *SpeedFlowModel {
	m, _ := NewSpeedFlowModel(pkg.DEFAULT_FREE_FLOW_SPEED_KMH, pkg.DEFAULT_CRITICAL_FLOW_VPH,
		pkg.DEFAULT_ROAD_CAPACITY_VPH, pkg.DEFAULT_SPEED_LIMIT_KMH, pkg.DEFAULT_MIN_SPEED_KMH)
	return m
}

// SpeedFromFlow. travel speed in km/h for an hourly flow, capped at the speed limit and never below minSpeed
func (m *SpeedFlowModel) SpeedFromFlow(hourlyFlow float64) float64 {
	if math.IsNaN(hourlyFlow) || hourlyFlow < 0 {
		hourlyFlow = 0
	}

	radicand := m.b*m.b + 4*m.a*hourlyFlow
	if radicand < 0 {
		// flow above the apex of the curve, both branches meet at -b/2a
		radicand = 0
	}

	var speed float64
	if hourlyFlow >= m.capacity {
		speed = (-m.b + math.Sqrt(radicand)) / (2 * m.a)
	} else {
		speed = (-m.b - math.Sqrt(radicand)) / (2 * m.a)
	}

	return util.Clamp(speed, m.minSpeed, m.speedLimit)
}

func (m *SpeedFlowModel) GetSpeedLimit() float64 {
	return m.speedLimit
}

func (m *SpeedFlowModel) GetFreeFlowSpeed() float64 {
	return m.freeFlowSpeed
}
