package estimator

import (
	"encoding/json"
	"fmt"
	"io"
)

// LinearModel. autoregressive model over the scaled lag window: y = bias + sum(weights[i] * x[i])
type LinearModel struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

func ReadLinearModel(r io.Reader) (*LinearModel, error) {
	var m LinearModel
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding model artifact: %w", err)
	}
	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("model artifact has no weights")
	}
	return &m, nil
}

func (m *LinearModel) InputSize() int {
	return len(m.Weights)
}

func (m *LinearModel) Predict(scaledLags []float64) (float64, error) {
	if len(scaledLags) != len(m.Weights) {
		return 0, fmt.Errorf("model expects %d lags, got %d", len(m.Weights), len(scaledLags))
	}
	y := m.Bias
	for i, w := range m.Weights {
		y += w * scaledLags[i]
	}
	return y, nil
}
