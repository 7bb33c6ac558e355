package estimator

import (
	"fmt"
	"math"
)

// MinMaxScaler. maps [min, max] of the training flows to [0, 1]. a constant training column only shifts values.
type MinMaxScaler struct {
	min   float64
	scale float64
}

func FitMinMaxScaler(values []float64) (*MinMaxScaler, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("cannot fit scaler on empty data")
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return nil, fmt.Errorf("cannot fit scaler on data without numbers")
	}

	scale := 1.0
	if hi > lo {
		scale = 1 / (hi - lo)
	}
	return &MinMaxScaler{min: lo, scale: scale}, nil
}

func (s *MinMaxScaler) Transform(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - s.min) * s.scale
	}
	return out
}

func (s *MinMaxScaler) InverseTransform(value float64) float64 {
	return value/s.scale + s.min
}
