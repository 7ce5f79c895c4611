package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"saasadmin/internal/cache"
	"saasadmin/internal/engine"
	"saasadmin/internal/model"
	"saasadmin/internal/repository"
)

// SubmissionService runs the respondent flow: traversal preview, validation,
// scoring and persistence of submissions.
type SubmissionService struct {
	forms       *FormService
	subRepo     repository.SubmissionRepo
	counters    repository.CounterRepo
	lock        cache.SubmitLock
	board       cache.ScoreBoard
	broadcaster Broadcaster
	now         func() time.Time
}

// SubmitResult is returned by Submit. Submission is nil when validation failed.
type SubmitResult struct {
	Submission *model.Submission        `json:"submission,omitempty"`
	Validation *engine.ValidationResult `json:"validation"`
	Visibility *engine.VisibilityResult `json:"visibility"`
	Rank       int64                    `json:"rank,omitempty"`
}

// SubmissionPage is one page of a form's submissions
type SubmissionPage struct {
	Items []*model.Submission `json:"items"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	forms *FormService,
	subRepo repository.SubmissionRepo,
	counters repository.CounterRepo,
	lock cache.SubmitLock,
	board cache.ScoreBoard,
) *SubmissionService {
	return &SubmissionService{
		forms:    forms,
		subRepo:  subRepo,
		counters: counters,
		lock:     lock,
		board:    board,
		now:      time.Now,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SubmissionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Preview evaluates visibility and navigation for the answers gathered so far
func (s *SubmissionService) Preview(ctx context.Context, publicKey string, answers []model.Answer) (*engine.VisibilityResult, error) {
	form, err := s.forms.GetPublishedForm(ctx, publicKey)
	if err != nil {
		return nil, err
	}
	vis, err := engine.EvaluateVisibility(form, answers)
	if err != nil {
		return nil, err
	}
	logWarnings(form.ID, vis.Warnings)
	return vis, nil
}

// Submit validates, scores and stores a submission. Validation failures are
// reported in the result, not as an error.
func (s *SubmissionService) Submit(ctx context.Context, publicKey string, req model.SubmitRequest) (*SubmitResult, error) {
	form, err := s.forms.GetPublishedForm(ctx, publicKey)
	if err != nil {
		return nil, err
	}

	emailKey := model.NormalizeEmail(req.RespondentEmail)
	token, err := s.lock.Acquire(ctx, form.ID, emailKey)
	if err != nil {
		return nil, fmt.Errorf("acquire submit lock: %w", err)
	}
	if token == "" {
		return nil, ErrSubmissionInProgress
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), form.ID, emailKey, token); err != nil {
			log.Printf("[SubmissionService] failed to release submit lock for form %d: %v", form.ID, err)
		}
	}()

	answers := cleanAnswers(req.Answers)

	vis, err := engine.EvaluateVisibility(form, answers)
	if err != nil {
		return nil, err
	}
	logWarnings(form.ID, vis.Warnings)

	exists, err := s.subRepo.ExistsForRespondent(ctx, form.ID, emailKey)
	if err != nil {
		return nil, fmt.Errorf("check prior submission: %w", err)
	}

	validation, err := engine.ValidateSubmission(form, answers, vis, exists)
	if err != nil {
		return nil, err
	}
	result := &SubmitResult{Validation: validation, Visibility: vis}
	if !validation.IsValid {
		return result, nil
	}

	sub := &model.Submission{
		FormID:          form.ID,
		OrganizationID:  form.OrganizationID,
		RespondentEmail: req.RespondentEmail,
		RespondentName:  req.RespondentName,
		EmailKey:        emailKey,
		SubmittedAt:     s.now(),
		Answers:         answers,
	}
	if err := s.assignIDs(ctx, sub); err != nil {
		return nil, err
	}

	scores, err := engine.ScoreSubmission(form, sub.Answers, vis)
	if err != nil {
		return nil, err
	}
	engine.ApplyScores(sub, scores)

	if err := s.subRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("save submission: %w", err)
	}
	result.Submission = sub
	log.Printf("[SubmissionService] submission %d stored for form %d, total %s", sub.ID, form.ID, sub.TotalScore)

	if err := s.board.UpdateScore(ctx, form.ID, sub.ID, sub.TotalScore); err != nil {
		log.Printf("[SubmissionService] score board update for form %d failed: %v", form.ID, err)
	} else if rank, err := s.board.GetRank(ctx, form.ID, sub.ID); err == nil {
		result.Rank = rank
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToForm(form.ID, EventSubmissionReceived, map[string]interface{}{
			"submissionId":    sub.ID,
			"respondentEmail": sub.RespondentEmail,
			"totalScore":      sub.TotalScore,
			"rank":            result.Rank,
			"submittedAt":     sub.SubmittedAt,
		})
	}
	return result, nil
}

// cleanAnswers copies client answers, dropping client-sent ids and scores
func cleanAnswers(in []model.Answer) []model.Answer {
	out := make([]model.Answer, 0, len(in))
	for _, a := range in {
		values := make([]model.AnswerValue, 0, len(a.Values))
		for _, v := range a.Values {
			v.ID, v.AnswerID = 0, 0
			values = append(values, v)
		}
		out = append(out, model.Answer{QuestionID: a.QuestionID, Values: values})
	}
	return out
}

// assignIDs gives the submission, its answers and their values fresh ids
func (s *SubmissionService) assignIDs(ctx context.Context, sub *model.Submission) error {
	id, err := s.counters.Next(ctx, repository.SeqSubmissions, 1)
	if err != nil {
		return fmt.Errorf("allocate submission id: %w", err)
	}
	sub.ID = id

	n := int64(len(sub.Answers))
	for _, a := range sub.Answers {
		n += int64(len(a.Values))
	}
	if n == 0 {
		return nil
	}
	next, err := s.counters.Next(ctx, repository.SeqAnswers, n)
	if err != nil {
		return fmt.Errorf("allocate answer ids: %w", err)
	}

	for i := range sub.Answers {
		a := &sub.Answers[i]
		a.ID = next
		a.SubmissionID = sub.ID
		next++
		for j := range a.Values {
			a.Values[j].ID = next
			a.Values[j].AnswerID = a.ID
			next++
		}
	}
	return nil
}

// GetSubmission returns a submission of a form owned by the organization
func (s *SubmissionService) GetSubmission(ctx context.Context, orgID, formID, submissionID int64) (*model.Submission, error) {
	if _, err := s.forms.GetForm(ctx, orgID, formID); err != nil {
		return nil, err
	}
	sub, err := s.subRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("load submission %d: %w", submissionID, err)
	}
	if sub == nil || sub.FormID != formID {
		return nil, ErrSubmissionNotFound
	}
	return sub, nil
}

// ListSubmissions returns one page of submissions, newest first. page starts at 1.
func (s *SubmissionService) ListSubmissions(ctx context.Context, orgID, formID int64, page, limit int) (*SubmissionPage, error) {
	if _, err := s.forms.GetForm(ctx, orgID, formID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	total, err := s.subRepo.CountByForm(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}
	items, err := s.subRepo.ListRecent(ctx, formID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if items == nil {
		items = []*model.Submission{}
	}
	return &SubmissionPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// DeleteSubmission soft-deletes a submission and drops it from the score board
func (s *SubmissionService) DeleteSubmission(ctx context.Context, orgID, formID, submissionID int64) error {
	if _, err := s.GetSubmission(ctx, orgID, formID, submissionID); err != nil {
		return err
	}
	if err := s.subRepo.SoftDelete(ctx, submissionID, s.now()); err != nil {
		return fmt.Errorf("delete submission %d: %w", submissionID, err)
	}
	if err := s.board.Remove(ctx, formID, submissionID); err != nil {
		log.Printf("[SubmissionService] score board removal for form %d failed: %v", formID, err)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToForm(formID, EventSubmissionDeleted, map[string]interface{}{
			"submissionId": submissionID,
		})
	}
	return nil
}

// TopScores returns the n best submissions of a form. The Redis board is
// used when populated, Mongo otherwise.
func (s *SubmissionService) TopScores(ctx context.Context, orgID, formID int64, n int) ([]cache.ScoreEntry, error) {
	if _, err := s.forms.GetForm(ctx, orgID, formID); err != nil {
		return nil, err
	}
	if n < 1 || n > 100 {
		n = 10
	}

	entries, err := s.board.GetTop(ctx, formID, n)
	if err != nil {
		log.Printf("[SubmissionService] score board read for form %d failed: %v", formID, err)
	}
	if len(entries) > 0 {
		return entries, nil
	}

	subs, err := s.subRepo.TopByForm(ctx, formID, n)
	if err != nil {
		return nil, fmt.Errorf("top submissions: %w", err)
	}
	return scoreEntries(subs), nil
}

func scoreEntries(subs []*model.Submission) []cache.ScoreEntry {
	entries := make([]cache.ScoreEntry, 0, len(subs))
	for i, sub := range subs {
		entries = append(entries, cache.ScoreEntry{
			SubmissionID:    sub.ID,
			RespondentEmail: sub.RespondentEmail,
			RespondentName:  sub.RespondentName,
			Score:           sub.TotalScore,
			Rank:            i + 1,
		})
	}
	return entries
}

func logWarnings(formID int64, warnings []engine.Warning) {
	for _, w := range warnings {
		log.Printf("[Engine] form %d: %s", formID, w)
	}
}
