package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Alvaro/Crediticio-System/classifier"
	"github.com/Mr-Alvaro/Crediticio-System/domain"
	"github.com/Mr-Alvaro/Crediticio-System/metrics"
	"github.com/Mr-Alvaro/Crediticio-System/repository"
	"github.com/Mr-Alvaro/Crediticio-System/service"
)

const validBody = `{
	"nombre": "Ana",
	"loan_amount": 200000,
	"income": "8000",
	"term": 360,
	"property_value": 300000,
	"credit_worthiness": "Excellent",
	"gender": "Female",
	"age": "35-44",
	"region": "South",
	"credit_type": "EXP",
	"approv_in_adv": true,
	"co_applicant": "si",
	"inflacion": 2,
	"combustible": "1",
	"protestas": 100,
	"desempleo": 3,
	"covid": 200,
	"clima": 20
}`

type fakeAssessor struct {
	app domain.LoanApplication
	ind domain.EconomicIndicators
	rec domain.AssessmentRecord
	err error
}

func (f *fakeAssessor) Assess(_ context.Context, app domain.LoanApplication, ind domain.EconomicIndicators) (domain.AssessmentRecord, error) {
	f.app, f.ind = app, ind
	return f.rec, f.err
}

type testServer struct {
	handler   http.Handler
	history   *repository.HistoryRepositoryMemory
	documents *repository.MemoryDocumentStore
}

func newTestServer(assessor Assessor, limiter *RateLimiter) testServer {
	history := repository.NewHistoryRepositoryMemory()
	documents := repository.NewMemoryDocumentStore()
	return testServer{
		handler: NewRouter(RouterDeps{
			Logger:      zerolog.Nop(),
			Assessments: NewAssessmentHandler(assessor),
			History:     NewHistoryHandler(history, documents),
			Health:      NewHealthHandler(nil),
			Metrics:     metrics.New().Handler(),
			RateLimiter: limiter,
		}),
		history:   history,
		documents: documents,
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestPredict_OK(t *testing.T) {
	assessor := &fakeAssessor{rec: domain.AssessmentRecord{
		ID: "eval-1",
		Result: domain.RiskAssessmentResult{
			ClientScore: 95, FuzzyRisk: 1.85, Probability: 10, FinalScore: 89.45,
			DTI: 18.34, LTV: 66.67, Decision: domain.DecisionApproved, Reason: "Perfil de Riesgo Aceptable - Score: 89.5/100",
		},
	}}
	srv := newTestServer(assessor, nil)

	w := do(t, srv.handler, http.MethodPost, "/predict", validBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "eval-1", got["id"])
	assert.Equal(t, "APROBADO", got["decision"])
	assert.Equal(t, 89.45, got["score_final"])
	assert.NotContains(t, got, "bandera_roja")

	assert.Equal(t, "Ana", assessor.app.Name)
	assert.Equal(t, 8000.0, assessor.app.Income)
	assert.Equal(t, 360, assessor.app.TermMonths)
	assert.True(t, assessor.app.ApprovedInAdvance)
	assert.True(t, assessor.app.CoApplicant)
	assert.False(t, assessor.app.InterestOnly)
	assert.Equal(t, 1.0, assessor.ind.FuelPrice)
}

func TestPredict_DefaultPropertyValue(t *testing.T) {
	assessor := &fakeAssessor{}
	srv := newTestServer(assessor, nil)
	body := strings.Replace(validBody, `"property_value": 300000,`, "", 1)

	w := do(t, srv.handler, http.MethodPost, "/predict", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 240000.0, assessor.app.PropertyValue, 1e-6)
}

func TestPredict_MissingAndEmptyFields(t *testing.T) {
	srv := newTestServer(&fakeAssessor{}, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"faltante", strings.Replace(validBody, `"loan_amount": 200000,`, "", 1), "campo requerido faltante: loan_amount"},
		{"vacío", strings.Replace(validBody, `"gender": "Female"`, `"gender": ""`, 1), "campo gender está vacío"},
		{"numérico vacío", strings.Replace(validBody, `"covid": 200`, `"covid": ""`, 1), "campo covid está vacío"},
		{"nulo", strings.Replace(validBody, `"region": "South"`, `"region": null`, 1), "campo region está vacío"},
		{"plazo fraccionario", strings.Replace(validBody, `"term": 360`, `"term": 12.5`, 1), "plazo debe ser un número entero"},
		{"worthiness", strings.Replace(validBody, `"Excellent"`, `"Great"`, 1), "credit_worthiness"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv.handler, http.MethodPost, "/predict", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w), tt.want)
		})
	}
}

func TestPredict_BadBody(t *testing.T) {
	srv := newTestServer(&fakeAssessor{}, nil)

	for _, body := range []string{`{invalid-json}`, `{"loan_amount": "abc"}`, `{"loan_amount": true}`} {
		w := do(t, srv.handler, http.MethodPost, "/predict", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestPredict_ServiceErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: region %q", domain.ErrCategoricalMapping, "West"), http.StatusBadRequest},
		{fmt.Errorf("%w: plazo", domain.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: timeout", service.ErrClassifier), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		srv := newTestServer(&fakeAssessor{err: tt.err}, nil)
		w := do(t, srv.handler, http.MethodPost, "/predict", validBody)
		assert.Equal(t, tt.status, w.Code, tt.err.Error())
		assert.Contains(t, decodeError(t, w), tt.err.Error())
	}
}

func TestPredict_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(&fakeAssessor{}, nil)

	w := do(t, srv.handler, http.MethodGet, "/predict", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestPredict_RealServicePoorCredit(t *testing.T) {
	svc := service.NewAssessmentService(classifier.StubPredictor{Probability: 0.1}, nil, nil, zerolog.Nop())
	srv := newTestServer(svc, nil)
	body := strings.Replace(validBody, `"Excellent"`, `"Poor"`, 1)

	w := do(t, srv.handler, http.MethodPost, "/predict", body)
	require.Equal(t, http.StatusOK, w.Code)

	var got predictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domain.DecisionRejected, got.Decision)
	assert.Equal(t, "Historial Crediticio Deficiente", got.Reason)
	assert.Equal(t, 25.0, got.FinalScore)
	assert.Equal(t, 95.0, got.Probability)
	assert.Equal(t, "credit_poor", got.RedFlag)
	assert.NotEmpty(t, got.ID)
}

func TestHistoryAndStatistics(t *testing.T) {
	srv := newTestServer(&fakeAssessor{}, nil)
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, d := range []domain.Decision{domain.DecisionApproved, domain.DecisionRejected, domain.DecisionApproved, domain.DecisionManualReview} {
		require.NoError(t, srv.history.Save(ctx, domain.AssessmentRecord{
			ID:          fmt.Sprintf("eval-%d", i),
			CreatedAt:   at.Add(time.Duration(i) * time.Minute),
			Application: domain.LoanApplication{Name: "Ana", LoanAmount: 1000},
			Result:      domain.RiskAssessmentResult{Decision: d, ClientScore: 50, DTI: 20},
		}))
	}

	w := do(t, srv.handler, http.MethodGet, "/historial", "")
	require.Equal(t, http.StatusOK, w.Code)
	var hist historyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	require.Len(t, hist.History, 4)
	assert.Equal(t, "eval-3", hist.History[0].AssessmentID)
	assert.Equal(t, "2024-06-01 12:03:00", hist.History[0].CreatedAt)

	w = do(t, srv.handler, http.MethodGet, "/estadisticas", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats domain.Statistics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, domain.Statistics{
		Total: 4, Approved: 2, Rejected: 1, ManualReview: 1,
		AvgClientScore: 50, AvgDTI: 20, ApprovalRate: 50,
	}, stats)
}

func TestHistory_EmptyListIsArray(t *testing.T) {
	srv := newTestServer(&fakeAssessor{}, nil)

	w := do(t, srv.handler, http.MethodGet, "/historial", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"historial": []}`, w.Body.String())
}

type failingHistory struct{}

func (failingHistory) Recent(context.Context, int) ([]domain.HistoryEntry, error) {
	return nil, errors.New("db down")
}

func (failingHistory) Stats(context.Context) (domain.Statistics, error) {
	return domain.Statistics{}, errors.New("db down")
}

func TestHistory_Errors(t *testing.T) {
	h := NewHistoryHandler(failingHistory{}, repository.NewMemoryDocumentStore())

	w := httptest.NewRecorder()
	h.History(w, httptest.NewRequest(http.MethodGet, "/historial", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	h.Statistics(w, httptest.NewRequest(http.MethodGet, "/estadisticas", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "db down", decodeError(t, w))
}

func TestDocument(t *testing.T) {
	srv := newTestServer(&fakeAssessor{}, nil)
	require.NoError(t, srv.documents.Put(context.Background(), domain.AssessmentsCollection, "eval-1", []byte(`{"riesgo_difuso": 1.85}`)))

	w := do(t, srv.handler, http.MethodGet, "/evaluaciones/eval-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"riesgo_difuso": 1.85}`, w.Body.String())

	w = do(t, srv.handler, http.MethodGet, "/evaluaciones/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(0.001, 1)
	defer limiter.Stop()
	srv := newTestServer(&fakeAssessor{}, limiter)

	assert.Equal(t, http.StatusOK, do(t, srv.handler, http.MethodGet, "/historial", "").Code)

	w := do(t, srv.handler, http.MethodGet, "/historial", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, decodeError(t, w))

	assert.Equal(t, http.StatusOK, do(t, srv.handler, http.MethodGet, "/health", "").Code, "health is not rate limited")
}

func TestHealth(t *testing.T) {
	h := NewHealthHandler(map[string]Check{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var got healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "degraded", got.Status)
	assert.Equal(t, map[string]string{"postgres": "ok", "redis": "connection refused"}, got.Checks)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&fakeAssessor{}, nil)

	w := do(t, srv.handler, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
