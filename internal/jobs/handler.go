package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"saasadmin/internal/service"
)

// Recalculator is implemented by service.RecalculationService
type Recalculator interface {
	RecalculateScores(ctx context.Context, formID int64) (int, error)
}

// Handler runs queued jobs against the services
type Handler struct {
	recalc Recalculator
}

// NewHandler creates a new job handler
func NewHandler(recalc Recalculator) *Handler {
	return &Handler{recalc: recalc}
}

// RegisterHandlers binds every task type to its handler
func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeRecalculateScores, h.HandleRecalculateScores)
}

// HandleRecalculateScores rescores every submission of the form in the payload.
// A form deleted since the task was queued is skipped.
func (h *Handler) HandleRecalculateScores(ctx context.Context, t *asynq.Task) error {
	var payload RecalculatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TypeRecalculateScores, err, asynq.SkipRetry)
	}

	n, err := h.recalc.RecalculateScores(ctx, payload.FormID)
	if errors.Is(err, service.ErrFormNotFound) {
		log.Printf("[Jobs] form %d not found, skipping recalculation", payload.FormID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("recalculate form %d: %w", payload.FormID, err)
	}
	log.Printf("[Jobs] recalculated %d submissions of form %d", n, payload.FormID)
	return nil
}
