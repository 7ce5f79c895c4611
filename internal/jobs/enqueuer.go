package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

// recalcDelay lets a burst of score edits collapse into one run
const recalcDelay = 2 * time.Second

// Enqueuer schedules background jobs on the asynq queue
type Enqueuer struct {
	client *asynq.Client
	now    func() time.Time
}

// NewEnqueuer creates a new enqueuer
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client, now: time.Now}
}

// ScheduleRecalculation queues a score recalculation for a form. Edits made
// within the same second share one task; the task starts after them and
// reads the latest scores.
func (e *Enqueuer) ScheduleRecalculation(ctx context.Context, formID int64) error {
	task, err := NewRecalculateScoresTask(formID)
	if err != nil {
		return err
	}

	taskID := recalcTaskID(formID, e.now())
	_, err = e.client.EnqueueContext(ctx, task,
		asynq.TaskID(taskID),
		asynq.ProcessIn(recalcDelay),
		asynq.MaxRetry(3),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskID, err)
	}
	log.Printf("[Jobs] scheduled %s", taskID)
	return nil
}

func recalcTaskID(formID int64, at time.Time) string {
	return fmt.Sprintf("recalc-%d-%d", formID, at.Unix())
}
