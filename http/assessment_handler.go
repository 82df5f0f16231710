package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Mr-Alvaro/Crediticio-System/domain"
)

const maxBodyBytes = 1 << 20

// Assessor runs one assessment.
type Assessor interface {
	Assess(ctx context.Context, app domain.LoanApplication, ind domain.EconomicIndicators) (domain.AssessmentRecord, error)
}

type AssessmentHandler struct {
	service Assessor
}

func NewAssessmentHandler(service Assessor) *AssessmentHandler {
	return &AssessmentHandler{service: service}
}

type predictResponse struct {
	ID string `json:"id"`
	domain.RiskAssessmentResult
}

func (h *AssessmentHandler) Predict(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req PredictRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No se recibieron datos válidos: "+err.Error())
		return
	}

	app, ind, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.service.Assess(r.Context(), app, ind)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrCategoricalMapping):
		logger.Warn().Err(err).Msg("Solicitud rechazada por validación")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		logger.Error().Err(err).Msg("Error evaluando solicitud")
		writeError(w, http.StatusInternalServerError, "Error interno: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{ID: rec.ID, RiskAssessmentResult: rec.Result})
}
