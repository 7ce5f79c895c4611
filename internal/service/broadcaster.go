package service

import "context"

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToForm(formID int64, msgType string, payload interface{})
	DisconnectForm(formID int64)
}

// RecalcScheduler queues an asynchronous score recalculation for a form
type RecalcScheduler interface {
	ScheduleRecalculation(ctx context.Context, formID int64) error
}

// Event types pushed to admins watching a form
const (
	EventSubmissionReceived = "submission_received"
	EventSubmissionDeleted  = "submission_deleted"
	EventScoresRecalculated = "scores_recalculated"
	EventFormUpdated        = "form_updated"
)
