package model

import "github.com/shopspring/decimal"

// FormRequest creates or updates the form header
type FormRequest struct {
	Title             string `json:"title" validate:"required,max=200"`
	Description       string `json:"description" validate:"max=2000"`
	Instructions      string `json:"instructions" validate:"max=4000"`
	AllowResubmission bool   `json:"allowResubmission"`
}

// PageRequest adds a page. PageOrder 0 appends after the last page.
type PageRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	PageOrder   int    `json:"pageOrder" validate:"gte=0"`
}

// QuestionRequest adds a question with its type-specific configuration.
// QuestionOrder 0 appends after the last question of the page.
type QuestionRequest struct {
	Text           string                `json:"text" validate:"required,max=1000"`
	Description    string                `json:"description" validate:"max=2000"`
	QuestionTypeID QuestionType          `json:"questionTypeId" validate:"required,gte=1"`
	IsRequired     bool                  `json:"isRequired"`
	QuestionOrder  int                   `json:"questionOrder" validate:"gte=0"`
	Options        []OptionRequest       `json:"options" validate:"dive"`
	Slider         *SliderRequest        `json:"slider"`
	MatrixRows     []MatrixRowRequest    `json:"matrixRows" validate:"dive"`
	MatrixColumns  []MatrixColumnRequest `json:"matrixColumns" validate:"dive"`
}

type OptionRequest struct {
	Text         string           `json:"text" validate:"required,max=500"`
	DisplayOrder int              `json:"displayOrder"`
	Score        *decimal.Decimal `json:"score"`
}

type SliderRequest struct {
	MinValue  decimal.Decimal `json:"minValue"`
	MaxValue  decimal.Decimal `json:"maxValue"`
	StepValue decimal.Decimal `json:"stepValue"`
	MinLabel  string          `json:"minLabel" validate:"max=100"`
	MaxLabel  string          `json:"maxLabel" validate:"max=100"`
}

type MatrixRowRequest struct {
	Text     string `json:"text" validate:"required,max=500"`
	RowOrder int    `json:"rowOrder"`
}

type MatrixColumnRequest struct {
	Text        string          `json:"text" validate:"required,max=500"`
	ColumnOrder int             `json:"columnOrder"`
	Score       decimal.Decimal `json:"score"`
}

// OptionScoreRequest sets or clears (null) an option score
type OptionScoreRequest struct {
	Score *decimal.Decimal `json:"score"`
}

type ColumnScoreRequest struct {
	Score decimal.Decimal `json:"score"`
}

// RuleRequest adds a conditional rule to a form
type RuleRequest struct {
	SourceQuestionID int64            `json:"sourceQuestionId" validate:"required"`
	TriggerOptionID  *int64           `json:"triggerOptionId"`
	Condition        ConditionType    `json:"condition" validate:"required"`
	MinValue         *decimal.Decimal `json:"minValue"`
	MaxValue         *decimal.Decimal `json:"maxValue"`
	ActionType       ActionType       `json:"actionType" validate:"required"`
	TargetQuestionID *int64           `json:"targetQuestionId"`
	TargetPageID     *int64           `json:"targetPageId"`
	MatrixRowID      *int64           `json:"matrixRowId"`
	MatrixColumnID   *int64           `json:"matrixColumnId"`
	ScoreValue       *decimal.Decimal `json:"scoreValue"`
}

// SubmitRequest is a respondent's submission. Scores and ids sent by the
// client are ignored.
type SubmitRequest struct {
	RespondentEmail string   `json:"respondentEmail" validate:"required,email,max=320"`
	RespondentName  string   `json:"respondentName" validate:"max=200"`
	Answers         []Answer `json:"answers"`
}

// PreviewRequest carries the answers gathered so far
type PreviewRequest struct {
	Answers []Answer `json:"answers"`
}
