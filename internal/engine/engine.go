// Package engine evaluates questionnaire rules and scores submissions.
//
// Everything here is a deterministic function of an already-loaded form and its
// answers: no I/O, no shared state. Rules of one submission are evaluated
// sequentially in ascending rule id order; independent submissions may be
// processed in parallel by the caller.
package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNilForm       = errors.New("engine: form is nil")
	ErrNilSubmission = errors.New("engine: submission is nil")
)

// Warning is a data-quality problem found while evaluating a form. The engine
// degrades gracefully and leaves logging to the caller.
type Warning struct {
	RuleID     int64  `json:"ruleId,omitempty"`
	QuestionID int64  `json:"questionId,omitempty"`
	Message    string `json:"message"`
}

func (w Warning) String() string {
	switch {
	case w.RuleID != 0:
		return fmt.Sprintf("rule %d: %s", w.RuleID, w.Message)
	case w.QuestionID != 0:
		return fmt.Sprintf("question %d: %s", w.QuestionID, w.Message)
	}
	return w.Message
}
