package estimator

import (
	"context"

	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/history"
)

type constantModel struct {
	flow float64
}

func (m constantModel) Predict(scaledLags []float64) (float64, error) {
	return m.flow, nil
}

func (m constantModel) InputSize() int {
	return 0
}

type identityScaler struct{}

func (identityScaler) Transform(values []float64) []float64 {
	return values
}

func (identityScaler) InverseTransform(value float64) float64 {
	return value
}

// FixedFlowEstimator. same flow for every intersection and time, for runs without trained models
type FixedFlowEstimator struct {
	flow float64
}

func NewFixedFlowEstimator(flow float64) *FixedFlowEstimator {
	return &FixedFlowEstimator{flow: flow}
}

func (e *FixedFlowEstimator) Materialize(ctx context.Context, site da.SiteID) (*Handle, error) {
	return &Handle{Model: constantModel{flow: e.flow}, Scaler: identityScaler{}}, nil
}

func (e *FixedFlowEstimator) Estimate(ctx context.Context, site da.SiteID, lags history.LagVector,
	handle *Handle) (float64, *Handle, error) {
	if handle == nil {
		handle, _ = e.Materialize(ctx, site)
	}
	y, err := handle.Model.Predict(nil)
	return y, handle, err
}
