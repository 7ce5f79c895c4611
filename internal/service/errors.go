package service

import "errors"

var (
	ErrFormNotFound          = errors.New("form not found")
	ErrFormNotPublished      = errors.New("form is not published")
	ErrFormEmpty             = errors.New("form has no questions")
	ErrPageNotFound          = errors.New("page not found")
	ErrQuestionNotFound      = errors.New("question not found")
	ErrOptionNotFound        = errors.New("option not found")
	ErrColumnNotFound        = errors.New("matrix column not found")
	ErrRuleNotFound          = errors.New("rule not found")
	ErrSubmissionNotFound    = errors.New("submission not found")
	ErrDuplicateOrder        = errors.New("display order already used")
	ErrDuplicateRule         = errors.New("a rule with the same source, trigger option and condition already exists")
	ErrInvalidQuestionConfig = errors.New("question configuration does not match its type")
	ErrInvalidRule           = errors.New("invalid rule")
	ErrSubmissionInProgress  = errors.New("a submission for this respondent is already being processed")
	ErrFormConflict          = errors.New("form was changed by another request, please retry")
)
