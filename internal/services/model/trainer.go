package model

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"TazeAI/internal/domain/models"
)

// DefaultLambda is the ridge penalty applied on standardized features.
const DefaultLambda = 1.0

// FitRidge fits y = b0 + sum(b_j * z_j) with z the standardized features,
// minimizing squared error plus lambda*|b|^2. Constant columns get a zero
// coefficient.
func FitRidge(set *models.TrainingSet, lambda float64, now time.Time) (*LinearModel, error) {
	if set == nil || len(set.Examples) == 0 {
		return nil, models.ErrEmptyTrainingSet
	}
	if lambda < 0 {
		return nil, fmt.Errorf("lambda must be non-negative, got %v", lambda)
	}
	n, p := len(set.Examples), len(set.FeatureNames)
	if p == 0 {
		return nil, errors.New("training set has no features")
	}

	col := make([]float64, n)
	means := make([]float64, p)
	scales := make([]float64, p)
	for j := 0; j < p; j++ {
		for i, ex := range set.Examples {
			if len(ex.Features) != p {
				return nil, fmt.Errorf("example %d has %d features, want %d", i, len(ex.Features), p)
			}
			col[i] = ex.Features[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		means[j] = mean
		if std > 1e-12 && !math.IsNaN(std) {
			scales[j] = std
		} else {
			scales[j] = 1
		}
	}

	x := mat.NewDense(n, p, nil)
	for i, ex := range set.Examples {
		for j, v := range ex.Features {
			x.Set(i, j, (v-means[j])/scales[j])
		}
	}
	y := set.Targets()
	yMean := stat.Mean(y, nil)
	yc := mat.NewVecDense(n, nil)
	for i, v := range y {
		yc.SetVec(i, v-yMean)
	}

	gram := mat.NewSymDense(p, nil)
	gram.SymOuterK(1, x.T())
	// keeps the system positive definite when lambda is 0 or columns are constant
	ridge := math.Max(lambda, 1e-9)
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+ridge)
	}
	rhs := mat.NewVecDense(p, nil)
	rhs.MulVec(x.T(), yc)

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return nil, errors.New("normal equations are not positive definite")
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, rhs); err != nil {
		return nil, fmt.Errorf("solve normal equations: %w", err)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	sq := 0.0
	for i := 0; i < n; i++ {
		r := fitted.AtVec(i) + yMean - y[i]
		sq += r * r
	}

	art := Artifact{
		ModelType:    TypeLinear,
		FeatureNames: append([]string(nil), set.FeatureNames...),
		Intercept:    yMean,
		Coefficients: mat.Col(nil, 0, &beta),
		Means:        means,
		Scales:       scales,
		HorizonDays:  set.HorizonDays,
		RMSEInSample: math.Sqrt(sq / float64(n)),
		Lambda:       lambda,
		Examples:     n,
		TrainedAt:    now.UTC(),
	}
	if !set.TrainUntil.IsZero() {
		art.TrainUntil = set.TrainUntil.Format("2006-01-02")
	}
	return NewLinearModel(art)
}
