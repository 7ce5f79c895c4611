package jobs

import (
	"context"
	"log"

	"github.com/hibiken/asynq"
)

// NewWorker builds the asynq server and mux that process queued jobs
func NewWorker(redisAddr string, concurrency int, h *Handler) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
				log.Printf("[Jobs] task %s failed: %v", task.Type(), err)
			}),
		},
	)
	mux := asynq.NewServeMux()
	h.RegisterHandlers(mux)
	return srv, mux
}
