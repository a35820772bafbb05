package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"example.com/gymgenius/internal/domain"
	"example.com/gymgenius/internal/planstore"
)

const (
	messageLoadFailed  = "Could not load your plan."
	messageClearFailed = "Could not clear your plan."
)

// writeDomainError maps the error taxonomy onto status codes and fixed messages.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation  *domain.ValidationError
		generation  *domain.GenerationError
		media       *domain.MediaGenerationError
		persistence *domain.PersistenceError
	)

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, "validation_failed", strings.Join(validation.Problems, "; "))
		return
	case errors.As(err, &generation):
		h.logger.Warn("generation failed", requestIDField(r), zap.Error(err))
		writeError(w, http.StatusBadGateway, "generation_failed", generation.Message)
		return
	case errors.As(err, &media):
		h.logger.Warn("media generation failed", requestIDField(r), zap.String("kind", string(media.Kind)), zap.Error(err))
		writeError(w, http.StatusBadGateway, "media_generation_failed", media.Message())
		return
	case errors.As(err, &persistence):
		h.logger.Error("plan slot failure", requestIDField(r), zap.String("op", persistence.Op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "persistence_failed", persistenceMessage(persistence.Op))
		return
	}

	h.logger.Error("unclassified error", requestIDField(r), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "server_error", "internal error")
}

func persistenceMessage(op string) string {
	switch op {
	case planstore.OpLoad:
		return messageLoadFailed
	case planstore.OpClear:
		return messageClearFailed
	}
	return domain.MessageSaveFailed
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
