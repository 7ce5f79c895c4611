package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saasadmin/internal/model"
	"saasadmin/internal/repository"
)

const orgID int64 = 7

type formFixture struct {
	svc         *FormService
	repo        *stubFormRepo
	cache       *stubFormCache
	broadcaster *stubBroadcaster
	scheduler   *stubScheduler
}

func newFormFixture() *formFixture {
	f := &formFixture{
		repo:        newStubFormRepo(),
		cache:       newStubFormCache(),
		broadcaster: &stubBroadcaster{},
		scheduler:   &stubScheduler{},
	}
	f.svc = NewFormService(f.repo, newStubCounters(), f.cache)
	f.svc.SetBroadcaster(f.broadcaster)
	f.svc.SetRecalcScheduler(f.scheduler)
	return f
}

func i64(v int64) *int64 { return &v }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decp(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// builtForm is a two page form: a scored choice question and a required
// slider on page 1, a required text question on page 2.
type builtForm struct {
	form   *model.Form
	page1  *model.Page
	page2  *model.Page
	choice *model.Question
	slider *model.Question
	text   *model.Question
}

func buildForm(t *testing.T, svc *FormService, allowResubmission bool) *builtForm {
	t.Helper()
	ctx := context.Background()

	form, err := svc.CreateForm(ctx, orgID, model.FormRequest{Title: "Wellbeing check", AllowResubmission: allowResubmission})
	require.NoError(t, err)
	b := &builtForm{form: form}

	b.page1, err = svc.AddPage(ctx, orgID, form.ID, model.PageRequest{Title: "About you"})
	require.NoError(t, err)
	b.page2, err = svc.AddPage(ctx, orgID, form.ID, model.PageRequest{Title: "Details"})
	require.NoError(t, err)

	b.choice, err = svc.AddQuestion(ctx, orgID, form.ID, b.page1.ID, model.QuestionRequest{
		Text:           "How do you feel?",
		QuestionTypeID: model.QuestionTypeSingleChoice,
		Options: []model.OptionRequest{
			{Text: "Bad", Score: decp(1)},
			{Text: "Good", Score: decp(5)},
		},
	})
	require.NoError(t, err)

	b.slider, err = svc.AddQuestion(ctx, orgID, form.ID, b.page1.ID, model.QuestionRequest{
		Text:           "Energy level",
		QuestionTypeID: model.QuestionTypeSlider,
		IsRequired:     true,
		Slider:         &model.SliderRequest{MinValue: dec(0), MaxValue: dec(100), StepValue: dec(1)},
	})
	require.NoError(t, err)

	b.text, err = svc.AddQuestion(ctx, orgID, form.ID, b.page2.ID, model.QuestionRequest{
		Text:           "Anything else?",
		QuestionTypeID: model.QuestionTypeLongText,
		IsRequired:     true,
	})
	require.NoError(t, err)
	return b
}

func TestFormService_CreateAndGet(t *testing.T) {
	f := newFormFixture()
	b := buildForm(t, f.svc, false)
	ctx := context.Background()

	form, err := f.svc.GetForm(ctx, orgID, b.form.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wellbeing check", form.Title)
	require.Len(t, form.Pages, 2)
	assert.Equal(t, 1, form.Pages[0].PageOrder)
	assert.Equal(t, 2, form.Pages[1].PageOrder)
	assert.Len(t, form.Pages[0].Questions, 2)
	assert.Equal(t, 2, b.slider.QuestionOrder)
	assert.NotNil(t, b.slider.Slider)
	assert.Len(t, b.choice.Options, 2)
	assert.NotEqual(t, b.choice.Options[0].ID, b.choice.Options[1].ID)
	assert.Contains(t, f.broadcaster.types(), EventFormUpdated)
}

func TestFormService_TenantScoping(t *testing.T) {
	f := newFormFixture()
	b := buildForm(t, f.svc, false)
	ctx := context.Background()

	_, err := f.svc.GetForm(ctx, orgID+1, b.form.ID)
	assert.ErrorIs(t, err, ErrFormNotFound)

	_, err = f.svc.AddPage(ctx, orgID+1, b.form.ID, model.PageRequest{Title: "Intruder"})
	assert.ErrorIs(t, err, ErrFormNotFound)

	forms, err := f.svc.ListForms(ctx, orgID+1)
	require.NoError(t, err)
	assert.Empty(t, forms)
}

func TestFormService_DuplicateOrder(t *testing.T) {
	f := newFormFixture()
	b := buildForm(t, f.svc, false)

	_, err := f.svc.AddPage(context.Background(), orgID, b.form.ID, model.PageRequest{Title: "Clash", PageOrder: 2})
	assert.ErrorIs(t, err, ErrDuplicateOrder)
}

func TestFormService_AddQuestionConfig(t *testing.T) {
	f := newFormFixture()
	b := buildForm(t, f.svc, false)
	ctx := context.Background()

	tests := []struct {
		name string
		req  model.QuestionRequest
	}{
		{
			name: "choice without options",
			req:  model.QuestionRequest{Text: "q", QuestionTypeID: model.QuestionTypeMultiChoice},
		},
		{
			name: "slider with options",
			req: model.QuestionRequest{
				Text:           "q",
				QuestionTypeID: model.QuestionTypeSlider,
				Slider:         &model.SliderRequest{MinValue: dec(0), MaxValue: dec(10), StepValue: dec(1)},
				Options:        []model.OptionRequest{{Text: "x"}},
			},
		},
		{
			name: "slider with inverted bounds",
			req: model.QuestionRequest{
				Text:           "q",
				QuestionTypeID: model.QuestionTypeSlider,
				Slider:         &model.SliderRequest{MinValue: dec(10), MaxValue: dec(0), StepValue: dec(1)},
			},
		},
		{
			name: "matrix without columns",
			req: model.QuestionRequest{
				Text:           "q",
				QuestionTypeID: model.QuestionTypeMatrix,
				MatrixRows:     []model.MatrixRowRequest{{Text: "r"}},
			},
		},
		{
			name: "text with options",
			req: model.QuestionRequest{
				Text:           "q",
				QuestionTypeID: model.QuestionTypeShortText,
				Options:        []model.OptionRequest{{Text: "x"}},
			},
		},
		{
			name: "unknown type",
			req:  model.QuestionRequest{Text: "q", QuestionTypeID: 42},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddQuestion(ctx, orgID, b.form.ID, b.page2.ID, tt.req)
			assert.ErrorIs(t, err, ErrInvalidQuestionConfig)
		})
	}

	matrix, err := f.svc.AddQuestion(ctx, orgID, b.form.ID, b.page2.ID, model.QuestionRequest{
		Text:           "Rate",
		QuestionTypeID: model.QuestionTypeMatrix,
		MatrixRows:     []model.MatrixRowRequest{{Text: "Food"}, {Text: "Service"}},
		MatrixColumns:  []model.MatrixColumnRequest{{Text: "Poor", Score: dec(1)}, {Text: "Great", Score: dec(3)}},
	})
	require.NoError(t, err)
	assert.Len(t, matrix.MatrixRows, 2)
	assert.Len(t, matrix.MatrixColumns, 2)
}

func TestFormService_AddRule(t *testing.T) {
	f := newFormFixture()
	b := buildForm(t, f.svc, false)
	ctx := context.Background()

	good := b.choice.Options[1].ID
	rule, err := f.svc.AddRule(ctx, orgID, b.form.ID, model.RuleRequest{
		SourceQuestionID: b.choice.ID,
		TriggerOptionID:  i64(good),
		Condition:        model.ConditionIsSelected,
		ActionType:       model.ActionHideQuestion,
		TargetQuestionID: i64(b.text.ID),
	})
	require.NoError(t, err)
	assert.NotZero(t, rule.ID)

	_, err = f.svc.AddRule(ctx, orgID, b.form.ID, model.RuleRequest{
		SourceQuestionID: b.choice.ID,
		TriggerOptionID:  i64(good),
		Condition:        model.ConditionIsSelected,
		ActionType:       model.ActionTerminateForm,
	})
	assert.ErrorIs(t, err, ErrDuplicateRule)

	require.NoError(t, f.svc.DeleteRule(ctx, orgID, b.form.ID, rule.ID))
	_, err = f.svc.AddRule(ctx, orgID, b.form.ID, model.RuleRequest{
		SourceQuestionID: b.choice.ID,
		TriggerOptionID:  i64(good),
		Condition:        model.ConditionIsSelected,
		ActionType:       model.ActionTerminateForm,
	})
	assert.NoError(t, err, "a deleted rule no longer blocks its trigger")
}

func TestFormService_AddRuleInvalid(t *testing.T) {
	f := newFormFixture()
	b := buildForm(t, f.svc, false)
	ctx := context.Background()

	tests := []struct {
		name string
		req  model.RuleRequest
	}{
		{
			name: "unknown source",
			req:  model.RuleRequest{SourceQuestionID: 999, Condition: model.ConditionIsSelected, ActionType: model.ActionTerminateForm},
		},
		{
			name: "choice condition without option",
			req:  model.RuleRequest{SourceQuestionID: b.choice.ID, Condition: model.ConditionIsSelected, ActionType: model.ActionTerminateForm},
		},
		{
			name: "option of another question",
			req: model.RuleRequest{
				SourceQuestionID: b.choice.ID, TriggerOptionID: i64(b.slider.Slider.ID),
				Condition: model.ConditionIsSelected, ActionType: model.ActionTerminateForm,
			},
		},
		{
			name: "numeric condition on choice",
			req: model.RuleRequest{
				SourceQuestionID: b.choice.ID, MinValue: decp(1),
				Condition: model.ConditionGreaterThan, ActionType: model.ActionTerminateForm,
			},
		},
		{
			name: "range without max",
			req: model.RuleRequest{
				SourceQuestionID: b.slider.ID, MinValue: decp(1),
				Condition: model.ConditionInRange, ActionType: model.ActionTerminateForm,
			},
		},
		{
			name: "hide without target",
			req: model.RuleRequest{
				SourceQuestionID: b.slider.ID, MinValue: decp(1),
				Condition: model.ConditionGreaterThan, ActionType: model.ActionHideQuestion,
			},
		},
		{
			name: "self target",
			req: model.RuleRequest{
				SourceQuestionID: b.slider.ID, MinValue: decp(1), TargetQuestionID: i64(b.slider.ID),
				Condition: model.ConditionGreaterThan, ActionType: model.ActionHideQuestion,
			},
		},
		{
			name: "skip backwards",
			req: model.RuleRequest{
				SourceQuestionID: b.text.ID, TargetPageID: i64(b.page1.ID),
				Condition: model.ConditionIsSelected, ActionType: model.ActionSkipToPage,
			},
		},
		{
			name: "unknown action",
			req: model.RuleRequest{
				SourceQuestionID: b.slider.ID, MinValue: decp(1),
				Condition: model.ConditionGreaterThan, ActionType: "Explode",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddRule(ctx, orgID, b.form.ID, tt.req)
			assert.ErrorIs(t, err, ErrInvalidRule)
		})
	}
}

func TestFormService_SkipToLaterPage(t *testing.T) {
	f := newFormFixture()
	b := buildForm(t, f.svc, false)

	_, err := f.svc.AddRule(context.Background(), orgID, b.form.ID, model.RuleRequest{
		SourceQuestionID: b.slider.ID,
		Condition:        model.ConditionLessThan,
		MinValue:         decp(10),
		ActionType:       model.ActionSkipToPage,
		TargetPageID:     i64(b.page2.ID),
	})
	assert.NoError(t, err)
}

func TestFormService_ScoreEditSchedulesRecalc(t *testing.T) {
	f := newFormFixture()
	b := buildForm(t, f.svc, false)
	ctx := context.Background()

	opt, err := f.svc.UpdateOptionScore(ctx, orgID, b.form.ID, b.choice.Options[0].ID, decp(2))
	require.NoError(t, err)
	assert.True(t, opt.Score.Equal(dec(2)))
	assert.Equal(t, []int64{b.form.ID}, f.scheduler.forms)

	_, err = f.svc.UpdateOptionScore(ctx, orgID, b.form.ID, 9999, nil)
	assert.ErrorIs(t, err, ErrOptionNotFound)
	assert.Len(t, f.scheduler.forms, 1)

	_, err = f.svc.UpdateColumnScore(ctx, orgID, b.form.ID, 9999, dec(1))
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestFormService_Publish(t *testing.T) {
	f := newFormFixture()
	ctx := context.Background()

	empty, err := f.svc.CreateForm(ctx, orgID, model.FormRequest{Title: "Empty"})
	require.NoError(t, err)
	_, err = f.svc.Publish(ctx, orgID, empty.ID)
	assert.ErrorIs(t, err, ErrFormEmpty)

	b := buildForm(t, f.svc, false)
	_, err = f.svc.GetPublishedForm(ctx, "missing")
	assert.ErrorIs(t, err, ErrFormNotFound)

	published, err := f.svc.Publish(ctx, orgID, b.form.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
	require.NotEmpty(t, published.PublicKey)
	assert.Equal(t, "/v1/public/forms/"+published.PublicKey, published.PublicURL)

	again, err := f.svc.Publish(ctx, orgID, b.form.ID)
	require.NoError(t, err)
	assert.Equal(t, published.PublicKey, again.PublicKey)

	form, err := f.svc.GetPublishedForm(ctx, published.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, b.form.ID, form.ID)

	require.NoError(t, f.svc.DeleteForm(ctx, orgID, b.form.ID))
	_, err = f.svc.GetPublishedForm(ctx, published.PublicKey)
	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestFormService_DeletePageCascades(t *testing.T) {
	f := newFormFixture()
	b := buildForm(t, f.svc, false)
	ctx := context.Background()

	require.NoError(t, f.svc.DeletePage(ctx, orgID, b.form.ID, b.page2.ID))
	form, err := f.svc.GetForm(ctx, orgID, b.form.ID)
	require.NoError(t, err)

	q, _ := form.FindQuestion(b.text.ID)
	require.NotNil(t, q)
	assert.True(t, q.Deleted())

	assert.ErrorIs(t, f.svc.DeletePage(ctx, orgID, b.form.ID, b.page2.ID), ErrPageNotFound)
}

func TestRespondentView(t *testing.T) {
	f := newFormFixture()
	b := buildForm(t, f.svc, false)
	ctx := context.Background()

	_, err := f.svc.AddRule(ctx, orgID, b.form.ID, model.RuleRequest{
		SourceQuestionID: b.slider.ID,
		Condition:        model.ConditionGreaterThan,
		MinValue:         decp(50),
		ActionType:       model.ActionTerminateForm,
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteQuestion(ctx, orgID, b.form.ID, b.text.ID))

	form, err := f.svc.GetForm(ctx, orgID, b.form.ID)
	require.NoError(t, err)
	view := RespondentView(form)

	assert.Empty(t, view.Rules)
	assert.Empty(t, view.Pages[1].Questions)
	for _, o := range view.Pages[0].Questions[0].Options {
		assert.Nil(t, o.Score)
	}
	assert.NotEmpty(t, form.Rules, "the stored form keeps its rules")
}

func TestFormService_StaleWriteRejected(t *testing.T) {
	f := newFormFixture()
	b := buildForm(t, f.svc, false)
	ctx := context.Background()

	first, err := f.repo.GetByID(ctx, b.form.ID)
	require.NoError(t, err)
	second, err := f.repo.GetByID(ctx, b.form.ID)
	require.NoError(t, err)

	first.Title = "First"
	require.NoError(t, f.repo.Update(ctx, first))

	second.Title = "Second"
	assert.ErrorIs(t, f.repo.Update(ctx, second), repository.ErrVersionConflict)

	stored, err := f.repo.GetByID(ctx, b.form.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", stored.Title)
}

func TestFormService_ConcurrentEditsBothSurvive(t *testing.T) {
	f := newFormFixture()
	b := buildForm(t, f.svc, false)
	ctx := context.Background()

	// Another admin adds a page between AddRule's read and its write
	f.repo.beforeUpdate = func() {
		f.repo.beforeUpdate = nil
		_, err := f.svc.AddPage(ctx, orgID, b.form.ID, model.PageRequest{Title: "Extra"})
		require.NoError(t, err)
	}

	rule, err := f.svc.AddRule(ctx, orgID, b.form.ID, model.RuleRequest{
		SourceQuestionID: b.choice.ID,
		TriggerOptionID:  i64(b.choice.Options[0].ID),
		Condition:        model.ConditionIsSelected,
		ActionType:       model.ActionTerminateForm,
	})
	require.NoError(t, err)

	form, err := f.svc.GetForm(ctx, orgID, b.form.ID)
	require.NoError(t, err)
	assert.Len(t, form.Pages, 3, "page added by the other writer is kept")
	require.NotNil(t, form.FindRule(rule.ID), "returned rule id exists")
}

func TestFormService_ConflictAfterRetries(t *testing.T) {
	f := newFormFixture()
	b := buildForm(t, f.svc, false)
	ctx := context.Background()

	writes := 0
	f.repo.beforeUpdate = func() {
		writes++
		f.repo.touch(b.form.ID)
	}

	_, err := f.svc.UpdateOptionScore(ctx, orgID, b.form.ID, b.choice.Options[0].ID, decp(9))
	assert.ErrorIs(t, err, ErrFormConflict)
	assert.Equal(t, mutateAttempts, writes)
	assert.Empty(t, f.scheduler.forms, "no recalculation for a score that was never saved")
}
