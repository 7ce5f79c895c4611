package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"saasadmin/internal/cache"
	"saasadmin/internal/config"
	"saasadmin/internal/engine"
	"saasadmin/internal/model"
	"saasadmin/internal/repository"
)

// RecalculationService re-derives stored answer scores and totals after
// option or column scores change. It uses the same engine as Submit.
type RecalculationService struct {
	formRepo    repository.FormRepo
	subRepo     repository.SubmissionRepo
	board       cache.ScoreBoard
	broadcaster Broadcaster
	cfg         config.EngineConfig
}

// NewRecalculationService creates a new recalculation service
func NewRecalculationService(
	formRepo repository.FormRepo,
	subRepo repository.SubmissionRepo,
	board cache.ScoreBoard,
	cfg config.EngineConfig,
) *RecalculationService {
	if cfg.RecalcBatchSize <= 0 {
		cfg.RecalcBatchSize = 200
	}
	return &RecalculationService{
		formRepo: formRepo,
		subRepo:  subRepo,
		board:    board,
		cfg:      cfg,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *RecalculationService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// RecalculateScores rescores every non-deleted submission of a form in id
// order, one bulk write per batch, and returns how many were processed.
// Only changed submissions are written; answer values are never touched, so
// running it again on unchanged data writes nothing.
func (s *RecalculationService) RecalculateScores(ctx context.Context, formID int64) (int, error) {
	start := time.Now()

	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return 0, fmt.Errorf("load form %d: %w", formID, err)
	}
	if form == nil {
		return 0, ErrFormNotFound
	}

	var (
		processed int
		updated   int
		afterID   int64
		entries   []cache.ScoreEntry
	)
	for {
		batch, err := s.subRepo.ListByForm(ctx, formID, afterID, s.cfg.RecalcBatchSize)
		if err != nil {
			return processed, fmt.Errorf("list submissions after %d: %w", afterID, err)
		}
		if len(batch) == 0 {
			break
		}

		changed := make([]*model.Submission, 0, len(batch))
		for _, sub := range batch {
			diff, err := engine.Rescore(form, sub)
			if err != nil {
				return processed, fmt.Errorf("rescore submission %d: %w", sub.ID, err)
			}
			if diff {
				changed = append(changed, sub)
			}
			entries = append(entries, cache.ScoreEntry{SubmissionID: sub.ID, Score: sub.TotalScore})
		}

		if err := s.subRepo.UpdateScores(ctx, changed); err != nil {
			return processed, fmt.Errorf("save scores after %d: %w", afterID, err)
		}
		processed += len(batch)
		updated += len(changed)
		afterID = batch[len(batch)-1].ID

		if len(batch) < s.cfg.RecalcBatchSize {
			break
		}
	}

	if err := s.board.Replace(ctx, formID, entries); err != nil {
		log.Printf("[Recalc] score board rebuild for form %d failed: %v", formID, err)
	}

	log.Printf("[Recalc] form %d: %d submissions processed, %d updated in %s", formID, processed, updated, time.Since(start))
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToForm(formID, EventScoresRecalculated, map[string]interface{}{
			"formId":    formID,
			"processed": processed,
			"updated":   updated,
		})
	}
	return processed, nil
}
