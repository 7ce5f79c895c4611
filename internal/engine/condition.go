package engine

import (
	"github.com/shopspring/decimal"

	"saasadmin/internal/model"
)

// Evaluate decides whether a rule fires for the answer given to its source question.
//
// An unanswered source never fires, whatever the condition (IsNotSelected
// included). IsGreaterThan, IsLessThan, IsEqualTo and IsNotEqualTo compare
// against MinValue; IsInRange is inclusive at both ends. When the rule names a
// matrix row the condition applies to the cell chosen in that row. source may
// be nil, in which case ScoreValue conditions cannot resolve column scores.
func Evaluate(rule *model.Rule, answer *model.Answer, source *model.Question) bool {
	if rule == nil || answer == nil || !answer.HasValue() {
		return false
	}
	if rule.MatrixCell() {
		return evaluateMatrixCell(rule, answer, source)
	}

	switch rule.Condition {
	case model.ConditionIsSelected:
		if rule.TriggerOptionID == nil {
			return false
		}
		return answer.SelectedOptionIDs()[*rule.TriggerOptionID]
	case model.ConditionIsNotSelected:
		if rule.TriggerOptionID == nil {
			return false
		}
		return !answer.SelectedOptionIDs()[*rule.TriggerOptionID]
	}

	if !rule.Condition.Numeric() {
		return false
	}
	value, ok := answer.NumericValue()
	if !ok {
		return false
	}
	return compare(rule, value)
}

func compare(rule *model.Rule, value decimal.Decimal) bool {
	if rule.Condition == model.ConditionInRange {
		if rule.MinValue == nil || rule.MaxValue == nil {
			return false
		}
		return value.GreaterThanOrEqual(*rule.MinValue) && value.LessThanOrEqual(*rule.MaxValue)
	}

	if rule.MinValue == nil {
		return false
	}
	comparand := *rule.MinValue
	switch rule.Condition {
	case model.ConditionGreaterThan:
		return value.GreaterThan(comparand)
	case model.ConditionLessThan:
		return value.LessThan(comparand)
	case model.ConditionEqualTo:
		return value.Equal(comparand)
	case model.ConditionNotEqualTo:
		return !value.Equal(comparand)
	}
	return false
}

func evaluateMatrixCell(rule *model.Rule, answer *model.Answer, source *model.Question) bool {
	columnID, ok := answer.SelectedColumn(*rule.MatrixRowID)
	if !ok {
		return false
	}

	if rule.Condition.Numeric() {
		score, ok := columnScore(source, columnID)
		if !ok {
			return false
		}
		return compare(rule, score)
	}

	matched := cellMatches(rule, columnID, source)
	if rule.Condition == model.ConditionIsNotSelected {
		return !matched
	}
	return matched
}

func cellMatches(rule *model.Rule, columnID int64, source *model.Question) bool {
	if rule.MatrixColumnID != nil && *rule.MatrixColumnID == columnID {
		return true
	}
	if rule.ScoreValue != nil {
		if score, ok := columnScore(source, columnID); ok && score.Equal(*rule.ScoreValue) {
			return true
		}
	}
	return false
}

func columnScore(q *model.Question, columnID int64) (decimal.Decimal, bool) {
	if q == nil {
		return decimal.Zero, false
	}
	col := q.FindColumn(columnID)
	if col == nil {
		return decimal.Zero, false
	}
	return col.Score, true
}
