package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Alvaro/Crediticio-System/classifier"
	"github.com/Mr-Alvaro/Crediticio-System/domain"
	"github.com/Mr-Alvaro/Crediticio-System/metrics"
)

type mockPredictor struct {
	mock.Mock
}

func (m *mockPredictor) PredictDefaultProbability(ctx context.Context, features []float64) (float64, error) {
	args := m.Called(ctx, features)
	return args.Get(0).(float64), args.Error(1)
}

type captureRecorder struct {
	mu      sync.Mutex
	records []domain.AssessmentRecord
}

func (c *captureRecorder) Record(rec domain.AssessmentRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
}

func nominalApplication() domain.LoanApplication {
	return domain.LoanApplication{
		Name:              "Ana",
		LoanAmount:        200000,
		Income:            8000,
		TermMonths:        360,
		PropertyValue:     300000,
		CreditWorthiness:  domain.CreditExcellent,
		ApprovedInAdvance: true,
		CoApplicant:       true,
		Gender:            "Male",
		AgeBand:           "35-44",
		Region:            "Central",
		CreditType:        "CIB",
	}
}

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(p classifier.Predictor, r Recorder) *AssessmentService {
	s := NewAssessmentService(p, r, metrics.New(), zerolog.Nop())
	s.now = func() time.Time { return fixedNow }
	s.newID = func() string { return "eval-1" }
	return s
}

var anyFeatures = mock.MatchedBy(func(f []float64) bool { return len(f) == classifier.FeatureCount })

func TestAssess_Approved(t *testing.T) {
	predictor := &mockPredictor{}
	predictor.On("PredictDefaultProbability", mock.Anything, anyFeatures).Return(0.1, nil).Once()
	recorder := &captureRecorder{}

	rec, err := newTestService(predictor, recorder).Assess(context.Background(), nominalApplication(), calmIndicators())
	require.NoError(t, err)

	assert.Equal(t, "eval-1", rec.ID)
	assert.Equal(t, fixedNow, rec.CreatedAt)
	assert.Equal(t, domain.DecisionApproved, rec.Result.Decision)
	assert.Contains(t, rec.Result.Reason, "Perfil de Riesgo Aceptable - Score:")
	assert.Equal(t, 95.0, rec.Result.ClientScore)
	assert.Equal(t, 1.85, rec.Result.FuzzyRisk)
	assert.Equal(t, 10.0, rec.Result.Probability)
	assert.Equal(t, 89.45, rec.Result.FinalScore)
	assert.Equal(t, 18.34, rec.Result.DTI)
	assert.Equal(t, 66.67, rec.Result.LTV)
	assert.Empty(t, rec.Result.RedFlag)

	require.Len(t, recorder.records, 1)
	assert.Equal(t, rec, recorder.records[0])
	predictor.AssertExpectations(t)
}

func TestAssess_PoorCreditSkipsClassifier(t *testing.T) {
	predictor := &mockPredictor{}
	app := nominalApplication()
	app.CreditWorthiness = domain.CreditPoor

	rec, err := newTestService(predictor, nil).Assess(context.Background(), app, calmIndicators())
	require.NoError(t, err)

	assert.Equal(t, domain.DecisionRejected, rec.Result.Decision)
	assert.Equal(t, "Historial Crediticio Deficiente", rec.Result.Reason)
	assert.Equal(t, 25.0, rec.Result.FinalScore)
	assert.Equal(t, 95.0, rec.Result.Probability)
	predictor.AssertNotCalled(t, "PredictDefaultProbability", mock.Anything, mock.Anything)
}

func TestAssess_HighDTIRejected(t *testing.T) {
	app := nominalApplication()
	app.LoanAmount = 300000
	app.Income = 3000
	app.PropertyValue = 500000

	rec, err := newTestService(&mockPredictor{}, nil).Assess(context.Background(), app, calmIndicators())
	require.NoError(t, err)

	assert.Greater(t, rec.Result.DTI, 55.0)
	assert.Equal(t, domain.DecisionRejected, rec.Result.Decision)
	assert.Equal(t, "dti_critical", rec.Result.RedFlag)
}

func TestAssess_RedFlagBeforeCategoricalEncoding(t *testing.T) {
	app := nominalApplication()
	app.CreditWorthiness = domain.CreditPoor
	app.Region = "Atlantis"

	rec, err := newTestService(&mockPredictor{}, nil).Assess(context.Background(), app, calmIndicators())
	require.NoError(t, err)
	assert.Equal(t, "credit_poor", rec.Result.RedFlag)
}

func TestAssess_UnknownCategory(t *testing.T) {
	predictor := &mockPredictor{}
	recorder := &captureRecorder{}
	app := nominalApplication()
	app.Region = "Atlantis"

	_, err := newTestService(predictor, recorder).Assess(context.Background(), app, calmIndicators())
	require.ErrorIs(t, err, domain.ErrCategoricalMapping)
	assert.Empty(t, recorder.records)
	predictor.AssertNotCalled(t, "PredictDefaultProbability", mock.Anything, mock.Anything)
}

func TestAssess_ClassifierFailure(t *testing.T) {
	predictor := &mockPredictor{}
	predictor.On("PredictDefaultProbability", mock.Anything, anyFeatures).Return(0.0, errors.New("timeout"))
	recorder := &captureRecorder{}

	_, err := newTestService(predictor, recorder).Assess(context.Background(), nominalApplication(), calmIndicators())
	require.ErrorIs(t, err, ErrClassifier)
	assert.Empty(t, recorder.records)
}

func TestAssess_InvalidInput(t *testing.T) {
	tests := map[string]func(*domain.LoanApplication, *domain.EconomicIndicators){
		"monto negativo":         func(a *domain.LoanApplication, _ *domain.EconomicIndicators) { a.LoanAmount = -1 },
		"plazo cero":             func(a *domain.LoanApplication, _ *domain.EconomicIndicators) { a.TermMonths = 0 },
		"worthiness desconocido": func(a *domain.LoanApplication, _ *domain.EconomicIndicators) { a.CreditWorthiness = "Great" },
		"genero vacío":           func(a *domain.LoanApplication, _ *domain.EconomicIndicators) { a.Gender = "" },
		"indicador no numérico":  func(_ *domain.LoanApplication, e *domain.EconomicIndicators) { e.Inflation = nan() },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			app, ind := nominalApplication(), calmIndicators()
			mutate(&app, &ind)

			_, err := newTestService(&mockPredictor{}, nil).Assess(context.Background(), app, ind)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestAssess_NoUpperLimitsOnTermOrAmount(t *testing.T) {
	tests := map[string]func(*domain.LoanApplication){
		"plazo de 60 años": func(a *domain.LoanApplication) { a.TermMonths = 720 },
		"monto muy alto": func(a *domain.LoanApplication) {
			a.LoanAmount, a.PropertyValue, a.Income = 2e9, 3e9, 1e8
		},
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			app := nominalApplication()
			mutate(&app)

			predictor := &mockPredictor{}
			predictor.On("PredictDefaultProbability", mock.Anything, anyFeatures).Return(0.1, nil).Once()

			rec, err := newTestService(predictor, nil).Assess(context.Background(), app, calmIndicators())
			require.NoError(t, err)
			assert.Equal(t, domain.DecisionApproved, rec.Result.Decision)
			predictor.AssertExpectations(t)
		})
	}
}

func TestAssess_ConcurrentCallsAgree(t *testing.T) {
	predictor := &mockPredictor{}
	predictor.On("PredictDefaultProbability", mock.Anything, anyFeatures).Return(0.2, nil)
	svc := newTestService(predictor, nil)

	want, err := svc.Assess(context.Background(), nominalApplication(), calmIndicators())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]domain.RiskAssessmentResult, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := svc.Assess(context.Background(), nominalApplication(), calmIndicators())
			assert.NoError(t, err)
			results[i] = rec.Result
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, want.Result, r)
	}
}
