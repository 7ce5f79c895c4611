package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TypeRecalculateScores = "scores:recalculate"

type RecalculatePayload struct {
	FormID int64 `json:"form_id"`
}

func NewRecalculateScoresTask(formID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(RecalculatePayload{FormID: formID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRecalculateScores, payload), nil
}
