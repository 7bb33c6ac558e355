package estimator

import (
	"context"
	"errors"

	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/history"
)

var (
	ErrEstimatorUnavailable = errors.New("no trained estimator for intersection")
	ErrEmptyLagVector       = errors.New("empty lag vector")
)

type Model interface {
	// Predict. scaled flow of the next interval from a scaled lag window, oldest first
	Predict(scaledLags []float64) (float64, error)
	InputSize() int
}

type Scaler interface {
	Transform(values []float64) []float64
	InverseTransform(value float64) float64
}

// Handle. model and fitted scaler of one intersection. immutable once built, safe to share between goroutines.
type Handle struct {
	Model  Model
	Scaler Scaler
}

/*
Estimator. predicts the vehicle count of one interval at an intersection from its lag vector.

a nil handle makes the estimator materialize a new one, which is returned for reuse. a non-nil handle is used as is
and returned unchanged.
*/
type Estimator interface {
	Estimate(ctx context.Context, site da.SiteID, lags history.LagVector, handle *Handle) (float64, *Handle, error)
}

// Materializer. estimators that can build a handle without predicting, used for cache warm-up
type Materializer interface {
	Materialize(ctx context.Context, site da.SiteID) (*Handle, error)
}
