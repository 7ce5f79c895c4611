package model

import "github.com/shopspring/decimal"

// ConditionType decides when a rule fires
type ConditionType string

const (
	ConditionIsSelected    ConditionType = "IsSelected"
	ConditionIsNotSelected ConditionType = "IsNotSelected"
	ConditionGreaterThan   ConditionType = "IsGreaterThan"
	ConditionLessThan      ConditionType = "IsLessThan"
	ConditionEqualTo       ConditionType = "IsEqualTo"
	ConditionNotEqualTo    ConditionType = "IsNotEqualTo"
	ConditionInRange       ConditionType = "IsInRange"
)

// Numeric reports whether the condition compares a numeric answer
func (c ConditionType) Numeric() bool {
	switch c {
	case ConditionGreaterThan, ConditionLessThan, ConditionEqualTo, ConditionNotEqualTo, ConditionInRange:
		return true
	}
	return false
}

// Valid reports whether c is a known condition
func (c ConditionType) Valid() bool {
	return c == ConditionIsSelected || c == ConditionIsNotSelected || c.Numeric()
}

// ActionType is what a fired rule does
type ActionType string

const (
	ActionHideQuestion  ActionType = "HideQuestion"
	ActionShowQuestion  ActionType = "ShowQuestion"
	ActionSkipToPage    ActionType = "SkipToPage"
	ActionTerminateForm ActionType = "TerminateForm"
)

// Valid reports whether a is a known action
func (a ActionType) Valid() bool {
	switch a {
	case ActionHideQuestion, ActionShowQuestion, ActionSkipToPage, ActionTerminateForm:
		return true
	}
	return false
}

// Rule ties one source question's answer to a visibility or navigation action.
// Numeric conditions other than IsInRange compare against MinValue.
type Rule struct {
	ID               int64            `json:"id" bson:"id"`
	FormID           int64            `json:"formId" bson:"formId"`
	SourceQuestionID int64            `json:"sourceQuestionId" bson:"sourceQuestionId"`
	TriggerOptionID  *int64           `json:"triggerOptionId,omitempty" bson:"triggerOptionId,omitempty"`
	Condition        ConditionType    `json:"condition" bson:"condition"`
	MinValue         *decimal.Decimal `json:"minValue,omitempty" bson:"minValue,omitempty"`
	MaxValue         *decimal.Decimal `json:"maxValue,omitempty" bson:"maxValue,omitempty"`
	ActionType       ActionType       `json:"actionType" bson:"actionType"`
	TargetQuestionID *int64           `json:"targetQuestionId,omitempty" bson:"targetQuestionId,omitempty"`
	TargetPageID     *int64           `json:"targetPageId,omitempty" bson:"targetPageId,omitempty"`
	MatrixRowID      *int64           `json:"matrixRowId,omitempty" bson:"matrixRowId,omitempty"`
	MatrixColumnID   *int64           `json:"matrixColumnId,omitempty" bson:"matrixColumnId,omitempty"`
	ScoreValue       *decimal.Decimal `json:"scoreValue,omitempty" bson:"scoreValue,omitempty"`
	SoftDelete       `bson:",inline"`
}

// MatrixCell reports whether the rule is conditioned on a matrix cell
func (r *Rule) MatrixCell() bool {
	return r.MatrixRowID != nil
}

// SameTrigger reports whether two rules share the
// (FormID, SourceQuestionID, TriggerOptionID, Condition) tuple that must be
// unique. For matrix-cell rules the cell (row and column) is part of the key.
func (r *Rule) SameTrigger(o *Rule) bool {
	if r.FormID != o.FormID || r.SourceQuestionID != o.SourceQuestionID || r.Condition != o.Condition {
		return false
	}
	return sameID(r.TriggerOptionID, o.TriggerOptionID) &&
		sameID(r.MatrixRowID, o.MatrixRowID) &&
		sameID(r.MatrixColumnID, o.MatrixColumnID)
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
