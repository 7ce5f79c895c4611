package service

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"saasadmin/internal/engine"
	"saasadmin/internal/model"
	"saasadmin/internal/repository"
)

// AddPage appends a page, or inserts it at an unused PageOrder
func (s *FormService) AddPage(ctx context.Context, orgID, formID int64, req model.PageRequest) (*model.Page, error) {
	var added model.Page
	_, err := s.mutate(ctx, orgID, formID, func(form *model.Form) error {
		order, err := nextOrder(req.PageOrder, pageOrders(engine.ActivePages(form)))
		if err != nil {
			return err
		}
		id, err := s.counters.Next(ctx, repository.SeqPages, 1)
		if err != nil {
			return fmt.Errorf("allocate page id: %w", err)
		}

		added = model.Page{
			ID:          id,
			FormID:      form.ID,
			Title:       req.Title,
			Description: req.Description,
			PageOrder:   order,
			Questions:   []model.Question{},
		}
		form.Pages = append(form.Pages, added)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// DeletePage soft-deletes a page and every question on it
func (s *FormService) DeletePage(ctx context.Context, orgID, formID, pageID int64) error {
	_, err := s.mutate(ctx, orgID, formID, func(form *model.Form) error {
		page := form.FindPage(pageID)
		if page == nil || page.Deleted() {
			return ErrPageNotFound
		}
		now := s.now()
		page.MarkDeleted(now)
		for i := range page.Questions {
			page.Questions[i].MarkDeleted(now)
		}
		return nil
	})
	return err
}

// AddQuestion adds a question whose populated configuration must match its type
func (s *FormService) AddQuestion(ctx context.Context, orgID, formID, pageID int64, req model.QuestionRequest) (*model.Question, error) {
	if err := checkQuestionConfig(req); err != nil {
		return nil, err
	}

	var added model.Question
	_, err := s.mutate(ctx, orgID, formID, func(form *model.Form) error {
		page := form.FindPage(pageID)
		if page == nil || page.Deleted() {
			return ErrPageNotFound
		}
		order, err := nextOrder(req.QuestionOrder, questionOrders(engine.ActiveQuestions(page)))
		if err != nil {
			return err
		}

		qid, err := s.counters.Next(ctx, repository.SeqQuestions, 1)
		if err != nil {
			return fmt.Errorf("allocate question id: %w", err)
		}
		children := int64(len(req.Options) + len(req.MatrixRows) + len(req.MatrixColumns))
		if req.Slider != nil {
			children++
		}
		var next int64
		if children > 0 {
			if next, err = s.counters.Next(ctx, repository.SeqOptions, children); err != nil {
				return fmt.Errorf("allocate option ids: %w", err)
			}
		}
		alloc := func() int64 {
			id := next
			next++
			return id
		}

		added = buildQuestion(qid, page.ID, order, req, alloc)
		page.Questions = append(page.Questions, added)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

func buildQuestion(id, pageID int64, order int, req model.QuestionRequest, alloc func() int64) model.Question {
	q := model.Question{
		ID:             id,
		PageID:         pageID,
		Text:           req.Text,
		Description:    req.Description,
		QuestionTypeID: req.QuestionTypeID,
		IsRequired:     req.IsRequired,
		QuestionOrder:  order,
	}
	for i, o := range req.Options {
		display := o.DisplayOrder
		if display == 0 {
			display = i + 1
		}
		q.Options = append(q.Options, model.Option{ID: alloc(), QuestionID: id, Text: o.Text, DisplayOrder: display, Score: o.Score})
	}
	if req.Slider != nil {
		q.Slider = &model.SliderConfig{
			ID:         alloc(),
			QuestionID: id,
			MinValue:   req.Slider.MinValue,
			MaxValue:   req.Slider.MaxValue,
			StepValue:  req.Slider.StepValue,
			MinLabel:   req.Slider.MinLabel,
			MaxLabel:   req.Slider.MaxLabel,
		}
	}
	for i, r := range req.MatrixRows {
		display := r.RowOrder
		if display == 0 {
			display = i + 1
		}
		q.MatrixRows = append(q.MatrixRows, model.MatrixRow{ID: alloc(), QuestionID: id, Text: r.Text, RowOrder: display})
	}
	for i, c := range req.MatrixColumns {
		display := c.ColumnOrder
		if display == 0 {
			display = i + 1
		}
		q.MatrixColumns = append(q.MatrixColumns, model.MatrixColumn{ID: alloc(), QuestionID: id, Text: c.Text, ColumnOrder: display, Score: c.Score})
	}
	return q
}

// checkQuestionConfig enforces that exactly the configuration matching the type is populated
func checkQuestionConfig(req model.QuestionRequest) error {
	hasOptions := len(req.Options) > 0
	hasSlider := req.Slider != nil
	hasMatrix := len(req.MatrixRows) > 0 || len(req.MatrixColumns) > 0

	switch req.QuestionTypeID.Kind() {
	case model.KindChoice:
		if !hasOptions || hasSlider || hasMatrix {
			return fmt.Errorf("%w: choice questions need at least one option and nothing else", ErrInvalidQuestionConfig)
		}
	case model.KindSlider:
		if !hasSlider || hasOptions || hasMatrix {
			return fmt.Errorf("%w: slider questions need a slider configuration and nothing else", ErrInvalidQuestionConfig)
		}
		if !req.Slider.MinValue.LessThan(req.Slider.MaxValue) {
			return fmt.Errorf("%w: slider minValue must be less than maxValue", ErrInvalidQuestionConfig)
		}
		if !req.Slider.StepValue.IsPositive() {
			return fmt.Errorf("%w: slider stepValue must be positive", ErrInvalidQuestionConfig)
		}
	case model.KindMatrix:
		if len(req.MatrixRows) == 0 || len(req.MatrixColumns) == 0 || hasOptions || hasSlider {
			return fmt.Errorf("%w: matrix questions need rows and columns and nothing else", ErrInvalidQuestionConfig)
		}
	case model.KindText:
		if hasOptions || hasSlider || hasMatrix {
			return fmt.Errorf("%w: text questions take no configuration", ErrInvalidQuestionConfig)
		}
	default:
		return fmt.Errorf("%w: unknown question type %d", ErrInvalidQuestionConfig, req.QuestionTypeID)
	}
	return nil
}

// DeleteQuestion soft-deletes a question. Its options stay resolvable for old submissions.
func (s *FormService) DeleteQuestion(ctx context.Context, orgID, formID, questionID int64) error {
	_, err := s.mutate(ctx, orgID, formID, func(form *model.Form) error {
		q, _ := form.FindQuestion(questionID)
		if q == nil || q.Deleted() {
			return ErrQuestionNotFound
		}
		q.MarkDeleted(s.now())
		return nil
	})
	return err
}

// UpdateOptionScore sets (or clears, with nil) an option score and queues a recalculation
func (s *FormService) UpdateOptionScore(ctx context.Context, orgID, formID, optionID int64, score *decimal.Decimal) (*model.Option, error) {
	var updated model.Option
	_, err := s.mutate(ctx, orgID, formID, func(form *model.Form) error {
		opt := findOption(form, optionID)
		if opt == nil {
			return ErrOptionNotFound
		}
		opt.Score = score
		updated = *opt
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.scheduleRecalc(ctx, formID)
	return &updated, nil
}

// UpdateColumnScore sets a matrix column score and queues a recalculation
func (s *FormService) UpdateColumnScore(ctx context.Context, orgID, formID, columnID int64, score decimal.Decimal) (*model.MatrixColumn, error) {
	var updated model.MatrixColumn
	_, err := s.mutate(ctx, orgID, formID, func(form *model.Form) error {
		col := findColumn(form, columnID)
		if col == nil {
			return ErrColumnNotFound
		}
		col.Score = score
		updated = *col
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.scheduleRecalc(ctx, formID)
	return &updated, nil
}

func (s *FormService) scheduleRecalc(ctx context.Context, formID int64) {
	if s.scheduler == nil {
		return
	}
	if err := s.scheduler.ScheduleRecalculation(ctx, formID); err != nil {
		log.Printf("[FormService] failed to schedule recalculation for form %d: %v", formID, err)
	}
}

func findOption(form *model.Form, optionID int64) *model.Option {
	for i := range form.Pages {
		for j := range form.Pages[i].Questions {
			if opt := form.Pages[i].Questions[j].FindOption(optionID); opt != nil {
				return opt
			}
		}
	}
	return nil
}

func findColumn(form *model.Form, columnID int64) *model.MatrixColumn {
	for i := range form.Pages {
		for j := range form.Pages[i].Questions {
			if col := form.Pages[i].Questions[j].FindColumn(columnID); col != nil {
				return col
			}
		}
	}
	return nil
}

// AddRule validates the references of a rule and enforces one rule per
// (source question, trigger option, condition) among non-deleted rules.
func (s *FormService) AddRule(ctx context.Context, orgID, formID int64, req model.RuleRequest) (*model.Rule, error) {
	var added model.Rule
	_, err := s.mutate(ctx, orgID, formID, func(form *model.Form) error {
		rule := model.Rule{
			FormID:           form.ID,
			SourceQuestionID: req.SourceQuestionID,
			TriggerOptionID:  req.TriggerOptionID,
			Condition:        req.Condition,
			MinValue:         req.MinValue,
			MaxValue:         req.MaxValue,
			ActionType:       req.ActionType,
			TargetQuestionID: req.TargetQuestionID,
			TargetPageID:     req.TargetPageID,
			MatrixRowID:      req.MatrixRowID,
			MatrixColumnID:   req.MatrixColumnID,
			ScoreValue:       req.ScoreValue,
		}

		schema, err := engine.NewSchema(form)
		if err != nil {
			return err
		}
		if err := checkRule(schema, &rule); err != nil {
			return err
		}
		for i := range form.Rules {
			if !form.Rules[i].Deleted() && form.Rules[i].SameTrigger(&rule) {
				return ErrDuplicateRule
			}
		}

		id, err := s.counters.Next(ctx, repository.SeqRules, 1)
		if err != nil {
			return fmt.Errorf("allocate rule id: %w", err)
		}
		rule.ID = id
		form.Rules = append(form.Rules, rule)
		added = rule
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

func invalidRule(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRule, fmt.Sprintf(format, args...))
}

func checkRule(schema *engine.Schema, r *model.Rule) error {
	if !r.Condition.Valid() {
		return invalidRule("unknown condition %q", r.Condition)
	}
	if !r.ActionType.Valid() {
		return invalidRule("unknown action %q", r.ActionType)
	}

	source := schema.Question(r.SourceQuestionID)
	if source == nil {
		return invalidRule("source question %d not found", r.SourceQuestionID)
	}

	kind := source.QuestionTypeID.Kind()
	switch {
	case r.MatrixCell():
		if kind != model.KindMatrix {
			return invalidRule("matrix conditions need a matrix source question")
		}
		if row := source.FindRow(*r.MatrixRowID); row == nil || row.Deleted() {
			return invalidRule("matrix row %d does not belong to the source question", *r.MatrixRowID)
		}
		if r.MatrixColumnID != nil {
			if col := source.FindColumn(*r.MatrixColumnID); col == nil || col.Deleted() {
				return invalidRule("matrix column %d does not belong to the source question", *r.MatrixColumnID)
			}
		}
		if !r.Condition.Numeric() && r.MatrixColumnID == nil && r.ScoreValue == nil {
			return invalidRule("matrix conditions need a column or a score value")
		}
	case r.MatrixColumnID != nil:
		return invalidRule("matrixColumnId requires matrixRowId")
	case r.Condition.Numeric():
		if kind != model.KindSlider {
			return invalidRule("numeric conditions need a slider source question")
		}
	default:
		if kind != model.KindChoice {
			return invalidRule("%s needs a choice source question", r.Condition)
		}
		if r.TriggerOptionID == nil {
			return invalidRule("%s needs triggerOptionId", r.Condition)
		}
		if opt := source.FindOption(*r.TriggerOptionID); opt == nil || opt.Deleted() {
			return invalidRule("option %d does not belong to the source question", *r.TriggerOptionID)
		}
	}

	if r.Condition.Numeric() {
		if r.MinValue == nil {
			return invalidRule("%s needs minValue", r.Condition)
		}
		if r.Condition == model.ConditionInRange {
			if r.MaxValue == nil {
				return invalidRule("IsInRange needs maxValue")
			}
			if r.MinValue.GreaterThan(*r.MaxValue) {
				return invalidRule("minValue must not exceed maxValue")
			}
		}
	}

	switch r.ActionType {
	case model.ActionHideQuestion, model.ActionShowQuestion:
		if r.TargetQuestionID == nil || schema.Question(*r.TargetQuestionID) == nil {
			return invalidRule("target question not found")
		}
		if *r.TargetQuestionID == r.SourceQuestionID {
			return invalidRule("a rule cannot target its own source question")
		}
	case model.ActionSkipToPage:
		if r.TargetPageID == nil || schema.Page(*r.TargetPageID) == nil {
			return invalidRule("target page not found")
		}
		if schema.Page(*r.TargetPageID).PageOrder <= schema.PageOf(source.ID).PageOrder {
			return invalidRule("SkipToPage must target a later page")
		}
	}
	return nil
}

// DeleteRule soft-deletes a rule
func (s *FormService) DeleteRule(ctx context.Context, orgID, formID, ruleID int64) error {
	_, err := s.mutate(ctx, orgID, formID, func(form *model.Form) error {
		rule := form.FindRule(ruleID)
		if rule == nil || rule.Deleted() {
			return ErrRuleNotFound
		}
		rule.MarkDeleted(s.now())
		return nil
	})
	return err
}

// nextOrder returns requested if it is free, or one past the highest used order when requested is 0
func nextOrder(requested int, used []int) (int, error) {
	highest := 0
	for _, o := range used {
		if requested != 0 && o == requested {
			return 0, ErrDuplicateOrder
		}
		if o > highest {
			highest = o
		}
	}
	if requested == 0 {
		return highest + 1, nil
	}
	return requested, nil
}

func pageOrders(pages []model.Page) []int {
	out := make([]int, len(pages))
	for i, p := range pages {
		out[i] = p.PageOrder
	}
	return out
}

func questionOrders(questions []model.Question) []int {
	out := make([]int, len(questions))
	for i, q := range questions {
		out[i] = q.QuestionOrder
	}
	return out
}
