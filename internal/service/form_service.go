package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"saasadmin/internal/cache"
	"saasadmin/internal/engine"
	"saasadmin/internal/model"
	"saasadmin/internal/repository"
)

// FormService handles the questionnaire builder. Every admin operation is
// scoped to the caller's organization; forms of other tenants look missing.
type FormService struct {
	formRepo    repository.FormRepo
	counters    repository.CounterRepo
	formCache   cache.FormCache
	scheduler   RecalcScheduler
	broadcaster Broadcaster
	now         func() time.Time
}

// NewFormService creates a new form service
func NewFormService(formRepo repository.FormRepo, counters repository.CounterRepo, formCache cache.FormCache) *FormService {
	return &FormService{
		formRepo:  formRepo,
		counters:  counters,
		formCache: formCache,
		now:       time.Now,
	}
}

// SetRecalcScheduler sets the queue used after score edits
func (s *FormService) SetRecalcScheduler(r RecalcScheduler) {
	s.scheduler = r
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *FormService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// QuestionTypes lists the question type catalogue
func (s *FormService) QuestionTypes() []model.MasterQuestionType {
	return model.MasterQuestionTypes()
}

// CreateForm creates an empty, unpublished form
func (s *FormService) CreateForm(ctx context.Context, orgID int64, req model.FormRequest) (*model.Form, error) {
	id, err := s.counters.Next(ctx, repository.SeqForms, 1)
	if err != nil {
		return nil, fmt.Errorf("allocate form id: %w", err)
	}

	form := &model.Form{
		ID:                id,
		OrganizationID:    orgID,
		Title:             req.Title,
		Description:       req.Description,
		Instructions:      req.Instructions,
		AllowResubmission: req.AllowResubmission,
		Pages:             []model.Page{},
		Rules:             []model.Rule{},
	}
	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}
	log.Printf("[FormService] form %d created for organization %d", form.ID, orgID)
	return form, nil
}

// load returns a form from cache or Mongo, filling the cache on a miss.
// Deleted forms are returned; callers decide.
func (s *FormService) load(ctx context.Context, formID int64) (*model.Form, error) {
	form, err := s.formCache.Get(ctx, formID)
	if err != nil {
		log.Printf("[FormService] cache read for form %d failed: %v", formID, err)
	}
	if form != nil {
		return form, nil
	}

	form, err = s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("load form %d: %w", formID, err)
	}
	if form == nil {
		return nil, ErrFormNotFound
	}
	if err := s.formCache.Set(ctx, form); err != nil {
		log.Printf("[FormService] cache write for form %d failed: %v", formID, err)
	}
	return form, nil
}

// GetForm returns a hydrated form owned by the organization
func (s *FormService) GetForm(ctx context.Context, orgID, formID int64) (*model.Form, error) {
	form, err := s.load(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form.Deleted() || form.OrganizationID != orgID {
		return nil, ErrFormNotFound
	}
	return form, nil
}

// ListForms returns the organization's forms, newest first, without pages and rules
func (s *FormService) ListForms(ctx context.Context, orgID int64) ([]*model.Form, error) {
	forms, err := s.formRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	return forms, nil
}

// mutateAttempts bounds how often mutate reloads a form that another writer changed
const mutateAttempts = 3

// mutate applies fn to a fresh copy of the form from Mongo and saves it. A
// concurrent write makes it reload and reapply fn; ErrFormConflict is
// returned once the attempts run out.
func (s *FormService) mutate(ctx context.Context, orgID, formID int64, fn func(form *model.Form) error) (*model.Form, error) {
	var form *model.Form
	for attempt := 1; ; attempt++ {
		var err error
		form, err = s.formRepo.GetByID(ctx, formID)
		if err != nil {
			return nil, fmt.Errorf("load form %d: %w", formID, err)
		}
		if form == nil || form.Deleted() || form.OrganizationID != orgID {
			return nil, ErrFormNotFound
		}

		if err := fn(form); err != nil {
			return nil, err
		}

		form.UpdatedAt = s.now()
		err = s.formRepo.Update(ctx, form)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, fmt.Errorf("save form %d: %w", formID, err)
		}
		if attempt == mutateAttempts {
			log.Printf("[FormService] form %d still contended after %d attempts", formID, attempt)
			return nil, ErrFormConflict
		}
	}

	if err := s.formCache.Invalidate(ctx, formID); err != nil {
		log.Printf("[FormService] cache invalidate for form %d failed: %v", formID, err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToForm(formID, EventFormUpdated, map[string]interface{}{
			"formId":    formID,
			"updatedAt": form.UpdatedAt,
		})
	}
	return form, nil
}

// UpdateForm changes the form header
func (s *FormService) UpdateForm(ctx context.Context, orgID, formID int64, req model.FormRequest) (*model.Form, error) {
	return s.mutate(ctx, orgID, formID, func(form *model.Form) error {
		form.Title = req.Title
		form.Description = req.Description
		form.Instructions = req.Instructions
		form.AllowResubmission = req.AllowResubmission
		return nil
	})
}

// DeleteForm soft-deletes a form; its submissions stay intact
func (s *FormService) DeleteForm(ctx context.Context, orgID, formID int64) error {
	if _, err := s.GetForm(ctx, orgID, formID); err != nil {
		return err
	}
	if err := s.formRepo.SoftDelete(ctx, formID, s.now()); err != nil {
		return fmt.Errorf("delete form %d: %w", formID, err)
	}
	if err := s.formCache.Invalidate(ctx, formID); err != nil {
		log.Printf("[FormService] cache invalidate for form %d failed: %v", formID, err)
	}
	if s.broadcaster != nil {
		s.broadcaster.DisconnectForm(formID)
	}
	return nil
}

// Publish makes the form reachable through its public key. Publishing twice keeps the key.
func (s *FormService) Publish(ctx context.Context, orgID, formID int64) (*model.Form, error) {
	return s.mutate(ctx, orgID, formID, func(form *model.Form) error {
		schema, err := engine.NewSchema(form)
		if err != nil {
			return err
		}
		if len(schema.Questions()) == 0 {
			return ErrFormEmpty
		}
		if form.PublicKey == "" {
			form.PublicKey = uuid.NewString()
			form.PublicURL = "/v1/public/forms/" + form.PublicKey
		}
		if !form.IsPublished {
			now := s.now()
			form.IsPublished = true
			form.PublishedAt = &now
		}
		return nil
	})
}

// GetPublishedForm resolves a public key to a published, non-deleted form
func (s *FormService) GetPublishedForm(ctx context.Context, publicKey string) (*model.Form, error) {
	id, err := s.formCache.GetIDByPublicKey(ctx, publicKey)
	if err != nil {
		log.Printf("[FormService] cache read for public key failed: %v", err)
	}

	var form *model.Form
	if id != 0 {
		if form, err = s.load(ctx, id); err != nil {
			return nil, err
		}
	} else {
		form, err = s.formRepo.GetByPublicKey(ctx, publicKey)
		if err != nil {
			return nil, fmt.Errorf("load form by public key: %w", err)
		}
		if form == nil {
			return nil, ErrFormNotFound
		}
		if err := s.formCache.SetPublicKey(ctx, publicKey, form.ID); err != nil {
			log.Printf("[FormService] cache write for public key failed: %v", err)
		}
	}

	if form.Deleted() || form.PublicKey != publicKey {
		return nil, ErrFormNotFound
	}
	if !form.IsPublished {
		return nil, ErrFormNotPublished
	}
	return form, nil
}

// RespondentView strips deleted entities, scores and rules from a form
// before it is shown to respondents.
func RespondentView(form *model.Form) *model.Form {
	view := *form
	view.Rules = nil
	view.Pages = engine.ActivePages(form)
	for i := range view.Pages {
		page := &view.Pages[i]
		page.Questions = engine.ActiveQuestions(page)
		for j := range page.Questions {
			q := &page.Questions[j]
			q.Options = engine.ActiveOptions(q)
			for k := range q.Options {
				q.Options[k].Score = nil
			}
			q.MatrixRows, q.MatrixColumns = engine.ActiveMatrix(q)
			for k := range q.MatrixColumns {
				q.MatrixColumns[k].Score = decimal.Zero
			}
		}
	}
	return &view
}
