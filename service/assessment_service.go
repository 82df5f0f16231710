package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Mr-Alvaro/Crediticio-System/classifier"
	"github.com/Mr-Alvaro/Crediticio-System/domain"
	"github.com/Mr-Alvaro/Crediticio-System/metrics"
)

// ErrClassifier wraps any failure of the default-probability model.
var ErrClassifier = errors.New("error del clasificador")

// AssessmentService runs one credit assessment end to end. It keeps no
// per-request state and is safe for concurrent use.
type AssessmentService struct {
	macro     *MacroRiskModel
	decisions DecisionEngine
	predictor classifier.Predictor
	recorder  Recorder
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewAssessmentService(
	predictor classifier.Predictor,
	recorder Recorder,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *AssessmentService {
	if recorder == nil {
		recorder = DiscardRecorder{}
	}
	return &AssessmentService{
		macro:     NewMacroRiskModel(logger),
		predictor: predictor,
		recorder:  recorder,
		metrics:   m,
		logger:    logger.With().Str("component", "assessment").Logger(),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Validate checks the request before any scoring happens.
func (s *AssessmentService) Validate(app domain.LoanApplication, ind domain.EconomicIndicators) error {
	if err := app.Validate(); err != nil {
		return err
	}
	if app.TermMonths < MinTermMonths {
		return fmt.Errorf("%w: el plazo debe ser de al menos %d mes", domain.ErrInvalidInput, MinTermMonths)
	}
	return ind.Validate()
}

// Assess scores the application and returns the stored record. The result
// numbers are rounded to two decimals.
func (s *AssessmentService) Assess(
	ctx context.Context,
	app domain.LoanApplication,
	ind domain.EconomicIndicators,
) (domain.AssessmentRecord, error) {
	if err := s.Validate(app, ind); err != nil {
		return domain.AssessmentRecord{}, err
	}

	metricsIn := DeriveMetrics(app)
	in := DecisionInput{
		Application: app,
		Indicators:  ind,
		Metrics:     metricsIn,
		ClientScore: ClientScore(app, metricsIn),
	}

	macro, err := s.macro.Assess(ind)
	if err != nil {
		return domain.AssessmentRecord{}, err
	}
	in.FuzzyRisk = macro.Score
	s.metrics.ObserveMacroRisk(macro.Score, macro.Fallback, macro.Overrides)

	var result domain.RiskAssessmentResult
	if flag, ok := s.decisions.CheckRedFlags(in); ok {
		result = s.decisions.Rejection(in, flag)
	} else {
		features, err := classifier.Encode(app, ind)
		if err != nil {
			return domain.AssessmentRecord{}, err
		}

		probability, err := s.predictor.PredictDefaultProbability(ctx, features)
		if err != nil {
			s.metrics.ClassifierError()
			return domain.AssessmentRecord{}, fmt.Errorf("%w: %w", ErrClassifier, err)
		}
		result = s.decisions.Decide(in, probability)
	}

	rec := domain.AssessmentRecord{
		ID:          s.newID(),
		CreatedAt:   s.now(),
		Application: app,
		Indicators:  ind,
		Result:      result.Rounded(),
	}

	s.metrics.ObserveDecision(string(rec.Result.Decision), rec.Result.RedFlag)
	s.logger.Info().
		Str("id", rec.ID).
		Str("decision", string(rec.Result.Decision)).
		Str("motivo", rec.Result.Reason).
		Float64("score_final", rec.Result.FinalScore).
		Float64("riesgo_difuso", rec.Result.FuzzyRisk).
		Msg("Evaluación completada")

	s.recorder.Record(rec)
	return rec, nil
}
