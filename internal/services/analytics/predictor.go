package analytics

import (
	"context"
	"errors"
	"fmt"

	"TazeAI/internal/domain/models"
	domsvc "TazeAI/internal/domain/service"
)

// HTTPPredictor delegates inference to a model served over HTTP. The feature
// order is fetched once from GET /model.
type HTTPPredictor struct {
	base     *HTTPServiceBase
	names    []string
	horizon  int
	attempts int
}

type modelInfoResp struct {
	FeatureNames []string `json:"feature_names"`
	HorizonDays  int      `json:"horizon_days"`
}

type predictReq struct {
	Features []float64 `json:"features"`
}

type predictResp struct {
	Prediction float64 `json:"prediction"`
}

// NewHTTPPredictor loads the remote model description. A service without a
// feature list is reported as models.ErrModelNotLoaded.
func NewHTTPPredictor(ctx context.Context, base *HTTPServiceBase) (*HTTPPredictor, error) {
	var info modelInfoResp
	if err := base.GetJSON(ctx, "/model", &info); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrModelNotLoaded, err)
	}
	if len(info.FeatureNames) == 0 {
		return nil, fmt.Errorf("remote model has no feature names: %w", models.ErrModelNotLoaded)
	}
	return &HTTPPredictor{base: base, names: info.FeatureNames, horizon: info.HorizonDays, attempts: 3}, nil
}

func (p *HTTPPredictor) FeatureNames() []string { return append([]string(nil), p.names...) }

func (p *HTTPPredictor) HorizonDays() int { return p.horizon }

func (p *HTTPPredictor) Predict(ctx context.Context, features []float64) (float64, error) {
	if len(features) != len(p.names) {
		return 0, errors.New("feature vector length does not match the remote model")
	}
	var resp predictResp
	if err := p.base.PostJSONWithRetry(ctx, "/predict", predictReq{Features: features}, &resp, p.attempts); err != nil {
		return 0, fmt.Errorf("remote predict: %w", err)
	}
	return resp.Prediction, nil
}

var _ domsvc.Predictor = (*HTTPPredictor)(nil)
