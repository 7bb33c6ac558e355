package estimator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	da "github.com/RdZ0101/Traffic-Flow-prediction/pkg/datastructure"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/history"
	"github.com/RdZ0101/Traffic-Flow-prediction/pkg/scatsparser"
	"go.uber.org/zap"
)

const (
	trainFlowColumn = "VFlow"
)

/*
ArtifactEstimator. per intersection model artifacts trained offline:

	<modelDir>/<variant>/<site>/<variant>_<site>.json   linear model weights
	<trainDir>/train_<site>.csv                         training flows, the scaler is fitted on its VFlow column
*/
type ArtifactEstimator struct {
	modelDir string
	variant  string
	trainDir string
	parser   *scatsparser.ScatsParser
	log      *zap.Logger
}

func NewArtifactEstimator(modelDir, variant, trainDir string, log *zap.Logger) *ArtifactEstimator {
	return &ArtifactEstimator{
		modelDir: modelDir,
		variant:  variant,
		trainDir: trainDir,
		parser:   scatsparser.NewScatsParser(log),
		log:      log,
	}
}

func (e *ArtifactEstimator) modelPath(site da.SiteID) string {
	return filepath.Join(e.modelDir, e.variant, fmt.Sprintf("%d", site), fmt.Sprintf("%s_%d.json", e.variant, site))
}

func (e *ArtifactEstimator) trainPath(site da.SiteID) string {
	return filepath.Join(e.trainDir, fmt.Sprintf("train_%d.csv", site))
}

// Materialize. load the model artifact of site and fit its scaler
func (e *ArtifactEstimator) Materialize(ctx context.Context, site da.SiteID) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(e.modelPath(site))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %d: missing model artifact", ErrEstimatorUnavailable, site)
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	model, err := ReadLinearModel(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %d: %v", ErrEstimatorUnavailable, site, err)
	}

	flows, err := e.parser.ReadFloatColumn(e.trainPath(site), trainFlowColumn)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %d: missing training data", ErrEstimatorUnavailable, site)
	} else if err != nil {
		return nil, fmt.Errorf("reading training data of %d: %w", site, err)
	}

	scaler, err := FitMinMaxScaler(flows)
	if err != nil {
		return nil, fmt.Errorf("%w: %d: %v", ErrEstimatorUnavailable, site, err)
	}

	e.log.Debug("estimator materialized", zap.Int64("site", int64(site)), zap.Int("lags", model.InputSize()))
	return &Handle{Model: model, Scaler: scaler}, nil
}

func (e *ArtifactEstimator) Estimate(ctx context.Context, site da.SiteID, lags history.LagVector,
	handle *Handle) (float64, *Handle, error) {
	if handle == nil {
		var err error
		handle, err = e.Materialize(ctx, site)
		if err != nil {
			return 0, nil, err
		}
	}

	flow, err := Predict(handle, lags)
	if err != nil {
		return 0, handle, err
	}
	return flow, handle, nil
}

// Predict. scale the lag vector, fit it to the model input and map the prediction back to a vehicle count
func Predict(handle *Handle, lags history.LagVector) (float64, error) {
	if len(lags) == 0 {
		return 0, ErrEmptyLagVector
	}

	x := handle.Scaler.Transform(fitLags(lags, handle.Model.InputSize()))
	y, err := handle.Model.Predict(x)
	if err != nil {
		return 0, err
	}
	return math.Max(0, handle.Scaler.InverseTransform(y)), nil
}

// fitLags. left pad with the oldest lag, or keep the newest n lags
func fitLags(lags history.LagVector, n int) []float64 {
	if len(lags) >= n {
		return lags[len(lags)-n:]
	}
	out := make([]float64, n)
	pad := n - len(lags)
	for i := 0; i < pad; i++ {
		out[i] = lags[0]
	}
	copy(out[pad:], lags)
	return out
}
