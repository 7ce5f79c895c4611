package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func id(v int64) *int64 { return &v }

func TestRuleSameTrigger(t *testing.T) {
	base := Rule{FormID: 1, SourceQuestionID: 10, Condition: ConditionIsSelected, TriggerOptionID: id(100)}
	cell := Rule{FormID: 1, SourceQuestionID: 20, Condition: ConditionIsSelected, MatrixRowID: id(201), MatrixColumnID: id(301)}

	tests := []struct {
		name  string
		a, b  Rule
		equal bool
	}{
		{"same tuple", base, Rule{FormID: 1, SourceQuestionID: 10, Condition: ConditionIsSelected, TriggerOptionID: id(100), ActionType: ActionTerminateForm}, true},
		{"other option", base, Rule{FormID: 1, SourceQuestionID: 10, Condition: ConditionIsSelected, TriggerOptionID: id(101)}, false},
		{"other condition", base, Rule{FormID: 1, SourceQuestionID: 10, Condition: ConditionIsNotSelected, TriggerOptionID: id(100)}, false},
		{"option against none", base, Rule{FormID: 1, SourceQuestionID: 10, Condition: ConditionIsSelected}, false},
		{"same cell", cell, Rule{FormID: 1, SourceQuestionID: 20, Condition: ConditionIsSelected, MatrixRowID: id(201), MatrixColumnID: id(301)}, true},
		{"other row", cell, Rule{FormID: 1, SourceQuestionID: 20, Condition: ConditionIsSelected, MatrixRowID: id(202), MatrixColumnID: id(301)}, false},
		{"other column", cell, Rule{FormID: 1, SourceQuestionID: 20, Condition: ConditionIsSelected, MatrixRowID: id(201), MatrixColumnID: id(302)}, false},
		{"slider comparand ignored", Rule{FormID: 1, SourceQuestionID: 30, Condition: ConditionGreaterThan}, Rule{FormID: 1, SourceQuestionID: 30, Condition: ConditionGreaterThan}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.SameTrigger(&tt.b))
			assert.Equal(t, tt.equal, tt.b.SameTrigger(&tt.a))
		})
	}
}
