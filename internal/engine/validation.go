package engine

import (
	"fmt"
	"strings"

	"saasadmin/internal/model"
)

// Validation error codes
const (
	CodeMissingRequiredQuestions      = "MissingRequiredQuestions"
	CodeMultipleSubmissionsNotAllowed = "MultipleSubmissionsNotAllowed"
	CodeInvalidAnswerValues           = "InvalidAnswerValues"
)

// ValidationError is one expected user-input problem
type ValidationError struct {
	Code        string  `json:"code"`
	Message     string  `json:"message"`
	QuestionIDs []int64 `json:"questionIds,omitempty"`
}

// ValidationResult reports every problem with a submission at once
type ValidationResult struct {
	IsValid            bool              `json:"isValid"`
	Errors             []ValidationError `json:"errors,omitempty"`
	MissingQuestionIDs []int64           `json:"missingQuestionIds,omitempty"`
	InvalidQuestionIDs []int64           `json:"invalidQuestionIds,omitempty"`
	Warnings           []Warning         `json:"warnings,omitempty"`
}

// HasCode reports whether the result carries an error with the given code
func (r *ValidationResult) HasCode(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// ValidateSubmission checks required questions, answer values and the
// resubmission gate.
//
// isResubmission is true when the respondent already has a non-deleted
// submission for the form. Only questions that are visible after rule
// evaluation and on a page navigation does not bypass can be required. A
// required question whose configuration does not match its type is reported
// as a warning rather than enforced. When visibility is nil it is computed.
func ValidateSubmission(form *model.Form, answers []model.Answer, visibility *VisibilityResult, isResubmission bool) (*ValidationResult, error) {
	schema, err := NewSchema(form)
	if err != nil {
		return nil, err
	}
	if visibility == nil {
		visibility = evaluateVisibility(schema, answers)
	}

	idx, warnings := schema.indexAnswers(answers)
	res := &ValidationResult{Warnings: warnings}

	for _, q := range schema.Questions() {
		if !q.IsRequired || !visibility.IsVisible(q.ID) {
			continue
		}
		if page := schema.PageOf(q.ID); page != nil && visibility.IsBypassed(page.ID) {
			continue
		}
		if !Configured(q) {
			res.Warnings = append(res.Warnings, Warning{
				QuestionID: q.ID,
				Message:    "required question has no usable configuration for its type",
			})
			continue
		}
		if !Answered(q, idx[q.ID]) {
			res.MissingQuestionIDs = append(res.MissingQuestionIDs, q.ID)
		}
	}

	for _, q := range schema.Questions() {
		if a := idx[q.ID]; a != nil && !ValuesFit(q, a) {
			res.InvalidQuestionIDs = append(res.InvalidQuestionIDs, q.ID)
		}
	}

	if len(res.MissingQuestionIDs) > 0 {
		res.Errors = append(res.Errors, ValidationError{
			Code:        CodeMissingRequiredQuestions,
			Message:     fmt.Sprintf("required questions not answered: %s", joinIDs(res.MissingQuestionIDs)),
			QuestionIDs: res.MissingQuestionIDs,
		})
	}
	if len(res.InvalidQuestionIDs) > 0 {
		res.Errors = append(res.Errors, ValidationError{
			Code:        CodeInvalidAnswerValues,
			Message:     fmt.Sprintf("answers do not match their questions: %s", joinIDs(res.InvalidQuestionIDs)),
			QuestionIDs: res.InvalidQuestionIDs,
		})
	}
	if isResubmission && !form.AllowResubmission {
		res.Errors = append(res.Errors, ValidationError{
			Code:    CodeMultipleSubmissionsNotAllowed,
			Message: "a submission already exists for this respondent",
		})
	}

	res.IsValid = len(res.Errors) == 0
	return res, nil
}

// Answered reports whether an answer carries a value the question accepts
func Answered(q *model.Question, a *model.Answer) bool {
	if q == nil || a == nil {
		return false
	}
	for i := range a.Values {
		if !a.Values[i].IsEmpty() && valueFits(q, &a.Values[i]) {
			return true
		}
	}
	return false
}

// ValuesFit reports whether every non-empty value of an answer resolves on
// its question: an active option the question offers, an active row and
// column of the matrix, or a slider value within bounds. Single-select
// questions take at most one option and a matrix row at most one column.
func ValuesFit(q *model.Question, a *model.Answer) bool {
	if q == nil || a == nil {
		return false
	}
	options := make(map[int64]bool)
	rows := make(map[int64]bool)
	for i := range a.Values {
		v := &a.Values[i]
		if v.IsEmpty() {
			continue
		}
		if !valueFits(q, v) {
			return false
		}
		switch q.QuestionTypeID.Kind() {
		case model.KindChoice:
			options[*v.SelectedOptionID] = true
		case model.KindMatrix:
			if rows[*v.MatrixRowID] {
				return false
			}
			rows[*v.MatrixRowID] = true
		}
	}
	return len(options) <= 1 || q.QuestionTypeID.MultiSelect()
}

func valueFits(q *model.Question, v *model.AnswerValue) bool {
	switch q.QuestionTypeID.Kind() {
	case model.KindChoice:
		if v.SelectedOptionID == nil {
			return false
		}
		opt := q.FindOption(*v.SelectedOptionID)
		return opt != nil && !opt.Deleted()
	case model.KindSlider:
		return v.NumericValue != nil && sliderAccepts(q.Slider, *v.NumericValue)
	case model.KindMatrix:
		if v.MatrixRowID == nil || v.SelectedMatrixColumnID == nil {
			return false
		}
		row := q.FindRow(*v.MatrixRowID)
		col := q.FindColumn(*v.SelectedMatrixColumnID)
		return row != nil && !row.Deleted() && col != nil && !col.Deleted()
	case model.KindText:
		return v.TextValue != nil && strings.TrimSpace(*v.TextValue) != ""
	}
	return false
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
