package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saasadmin/internal/service"
)

type stubRecalculator struct {
	calls []int64
	err   error
}

func (s *stubRecalculator) RecalculateScores(_ context.Context, formID int64) (int, error) {
	s.calls = append(s.calls, formID)
	return 3, s.err
}

func TestNewRecalculateScoresTask(t *testing.T) {
	task, err := NewRecalculateScoresTask(42)
	require.NoError(t, err)
	assert.Equal(t, TypeRecalculateScores, task.Type())

	var payload RecalculatePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, int64(42), payload.FormID)
}

func TestHandleRecalculateScores(t *testing.T) {
	ctx := context.Background()
	task, err := NewRecalculateScoresTask(42)
	require.NoError(t, err)

	t.Run("runs recalculation", func(t *testing.T) {
		recalc := &stubRecalculator{}
		require.NoError(t, NewHandler(recalc).HandleRecalculateScores(ctx, task))
		assert.Equal(t, []int64{42}, recalc.calls)
	})

	t.Run("deleted form is skipped", func(t *testing.T) {
		recalc := &stubRecalculator{err: service.ErrFormNotFound}
		assert.NoError(t, NewHandler(recalc).HandleRecalculateScores(ctx, task))
	})

	t.Run("failures are retried", func(t *testing.T) {
		recalc := &stubRecalculator{err: errors.New("mongo down")}
		err := NewHandler(recalc).HandleRecalculateScores(ctx, task)
		require.Error(t, err)
		assert.False(t, errors.Is(err, asynq.SkipRetry))
	})

	t.Run("bad payload is not retried", func(t *testing.T) {
		recalc := &stubRecalculator{}
		err := NewHandler(recalc).HandleRecalculateScores(ctx, asynq.NewTask(TypeRecalculateScores, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.Empty(t, recalc.calls)
	})
}

func TestRegisterHandlers(t *testing.T) {
	recalc := &stubRecalculator{}
	mux := asynq.NewServeMux()
	NewHandler(recalc).RegisterHandlers(mux)

	task, err := NewRecalculateScoresTask(7)
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	assert.Equal(t, []int64{7}, recalc.calls)
}

func TestRecalcTaskID(t *testing.T) {
	at := time.Unix(1700000000, 0)
	assert.Equal(t, "recalc-5-1700000000", recalcTaskID(5, at))
	assert.Equal(t, recalcTaskID(5, at), recalcTaskID(5, at.Add(500*time.Millisecond)))
	assert.NotEqual(t, recalcTaskID(5, at), recalcTaskID(6, at))
}
