package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Mr-Alvaro/Crediticio-System/domain"
	"github.com/Mr-Alvaro/Crediticio-System/repository"
)

// HistoryReader is the read side of the history repository.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	Stats(ctx context.Context) (domain.Statistics, error)
}

// DocumentReader is the read side of the document store.
type DocumentReader interface {
	Get(ctx context.Context, collection, id string) ([]byte, error)
}

type HistoryHandler struct {
	history   HistoryReader
	documents DocumentReader
}

func NewHistoryHandler(history HistoryReader, documents DocumentReader) *HistoryHandler {
	return &HistoryHandler{history: history, documents: documents}
}

type historyResponse struct {
	History []domain.HistoryEntry `json:"historial"`
}

func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.Recent(r.Context(), repository.RecentLimit)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error leyendo historial")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{History: entries})
}

func (h *HistoryHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.history.Stats(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error calculando estadísticas")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *HistoryHandler) Document(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.documents.Get(r.Context(), domain.AssessmentsCollection, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Evaluación no encontrada")
		return
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("id", id).Msg("Error leyendo evaluación")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, json.RawMessage(doc))
}
