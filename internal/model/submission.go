package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Submission is one respondent's completed form. TotalScore is always derived.
type Submission struct {
	ID              int64           `json:"id" bson:"_id"`
	FormID          int64           `json:"formId" bson:"formId"`
	OrganizationID  int64           `json:"organizationId" bson:"organizationId"`
	RespondentEmail string          `json:"respondentEmail" bson:"respondentEmail"`
	RespondentName  string          `json:"respondentName,omitempty" bson:"respondentName,omitempty"`
	EmailKey        string          `json:"-" bson:"emailKey"` // lower-cased email for duplicate checks
	SubmittedAt     time.Time       `json:"submittedAt" bson:"submittedAt"`
	TotalScore      decimal.Decimal `json:"totalScore" bson:"totalScore"`
	Answers         []Answer        `json:"answers" bson:"answers"`
	SoftDelete      `bson:",inline"`
}

// Answer references one question; Score is computed by the scoring engine.
type Answer struct {
	ID           int64           `json:"id" bson:"id"`
	SubmissionID int64           `json:"submissionId" bson:"submissionId"`
	QuestionID   int64           `json:"questionId" bson:"questionId"`
	Score        decimal.Decimal `json:"score" bson:"score"`
	Values       []AnswerValue   `json:"values" bson:"values"`
}

// AnswerValue holds exactly one of: a selected option, a matrix cell
// (row + column), a text value or a numeric value.
type AnswerValue struct {
	ID                     int64            `json:"id" bson:"id"`
	AnswerID               int64            `json:"answerId" bson:"answerId"`
	SelectedOptionID       *int64           `json:"selectedOptionId,omitempty" bson:"selectedOptionId,omitempty"`
	MatrixRowID            *int64           `json:"matrixRowId,omitempty" bson:"matrixRowId,omitempty"`
	SelectedMatrixColumnID *int64           `json:"selectedMatrixColumnId,omitempty" bson:"selectedMatrixColumnId,omitempty"`
	TextValue              *string          `json:"textValue,omitempty" bson:"textValue,omitempty"`
	NumericValue           *decimal.Decimal `json:"numericValue,omitempty" bson:"numericValue,omitempty"`
}

// IsEmpty reports whether the value carries nothing a respondent entered
func (v *AnswerValue) IsEmpty() bool {
	if v.SelectedOptionID != nil || v.NumericValue != nil {
		return false
	}
	if v.MatrixRowID != nil && v.SelectedMatrixColumnID != nil {
		return false
	}
	return v.TextValue == nil || strings.TrimSpace(*v.TextValue) == ""
}

// HasValue reports whether the answer has at least one non-empty value
func (a *Answer) HasValue() bool {
	for i := range a.Values {
		if !a.Values[i].IsEmpty() {
			return true
		}
	}
	return false
}

// SelectedOptionIDs returns the option ids referenced by the answer
func (a *Answer) SelectedOptionIDs() map[int64]bool {
	ids := make(map[int64]bool)
	for _, v := range a.Values {
		if v.SelectedOptionID != nil {
			ids[*v.SelectedOptionID] = true
		}
	}
	return ids
}

// NumericValue returns the first numeric value of the answer
func (a *Answer) NumericValue() (decimal.Decimal, bool) {
	for _, v := range a.Values {
		if v.NumericValue != nil {
			return *v.NumericValue, true
		}
	}
	return decimal.Zero, false
}

// SelectedColumn returns the column chosen for a matrix row
func (a *Answer) SelectedColumn(rowID int64) (int64, bool) {
	for _, v := range a.Values {
		if v.MatrixRowID != nil && *v.MatrixRowID == rowID && v.SelectedMatrixColumnID != nil {
			return *v.SelectedMatrixColumnID, true
		}
	}
	return 0, false
}

// NormalizeEmail is the case-insensitive key used for duplicate submission checks
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
