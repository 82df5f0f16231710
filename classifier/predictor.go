package classifier

import (
	"context"
	"errors"
	"math"
)

// ErrInvalidProbability is returned when a model answers outside [0,1].
var ErrInvalidProbability = errors.New("probabilidad fuera de rango")

// Predictor estimates the probability of default for an encoded application.
type Predictor interface {
	PredictDefaultProbability(ctx context.Context, features []float64) (float64, error)
}

// StubPredictor always answers the same probability. Used when no model
// server is configured.
type StubPredictor struct {
	Probability float64
}

func (s StubPredictor) PredictDefaultProbability(ctx context.Context, _ []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if math.IsNaN(s.Probability) || s.Probability < 0 || s.Probability > 1 {
		return 0, ErrInvalidProbability
	}
	return s.Probability, nil
}
