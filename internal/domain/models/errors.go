package models

import "errors"

var (
	// ErrDataUnavailable marks a symbol with no usable history or snapshot.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrNoValidData marks a backtest symbol with zero rows where close > 0.
	ErrNoValidData = errors.New("no valid data")
	// ErrModelNotLoaded means no trained artifact is present.
	ErrModelNotLoaded = errors.New("model not loaded")
	// ErrEmptyDataset is returned when saving an empty feature table.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrNoDataset is returned when no feature-table snapshot exists at all.
	ErrNoDataset = errors.New("no dataset")
	// ErrUnknownProfile is returned for a backtest profile name not configured.
	ErrUnknownProfile = errors.New("unknown profile")
	// ErrEmptyTrainingSet is returned when no labeled example survives.
	ErrEmptyTrainingSet = errors.New("empty training set")
)
