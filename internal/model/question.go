package model

import "github.com/shopspring/decimal"

// QuestionType is the MasterQuestionType id of a question
type QuestionType int

const (
	QuestionTypeSingleChoice QuestionType = 1 // Radio buttons
	QuestionTypeMultiChoice  QuestionType = 2 // Checkboxes
	QuestionTypeDropdown     QuestionType = 3
	QuestionTypeSlider       QuestionType = 4
	QuestionTypeMatrix       QuestionType = 5
	QuestionTypeShortText    QuestionType = 6
	QuestionTypeLongText     QuestionType = 7
)

// QuestionKind is the answer representation a question type uses.
type QuestionKind string

const (
	KindChoice  QuestionKind = "choice"
	KindSlider  QuestionKind = "slider"
	KindMatrix  QuestionKind = "matrix"
	KindText    QuestionKind = "text"
	KindUnknown QuestionKind = "unknown"
)

// MasterQuestionType is an entry of the question type catalogue
type MasterQuestionType struct {
	ID          QuestionType `json:"id"`
	Name        string       `json:"name"`
	Kind        QuestionKind `json:"kind"`
	MultiSelect bool         `json:"multiSelect"`
}

var masterQuestionTypes = []MasterQuestionType{
	{ID: QuestionTypeSingleChoice, Name: "Single Choice", Kind: KindChoice},
	{ID: QuestionTypeMultiChoice, Name: "Multiple Choice", Kind: KindChoice, MultiSelect: true},
	{ID: QuestionTypeDropdown, Name: "Dropdown", Kind: KindChoice},
	{ID: QuestionTypeSlider, Name: "Slider", Kind: KindSlider},
	{ID: QuestionTypeMatrix, Name: "Matrix", Kind: KindMatrix},
	{ID: QuestionTypeShortText, Name: "Short Text", Kind: KindText},
	{ID: QuestionTypeLongText, Name: "Long Text", Kind: KindText},
}

// MasterQuestionTypes returns a copy of the catalogue
func MasterQuestionTypes() []MasterQuestionType {
	out := make([]MasterQuestionType, len(masterQuestionTypes))
	copy(out, masterQuestionTypes)
	return out
}

// Kind maps the type id onto its answer representation
func (t QuestionType) Kind() QuestionKind {
	for _, m := range masterQuestionTypes {
		if m.ID == t {
			return m.Kind
		}
	}
	return KindUnknown
}

// MultiSelect reports whether more than one option may be selected
func (t QuestionType) MultiSelect() bool {
	return t == QuestionTypeMultiChoice
}

// Question belongs to exactly one page. Which of Options, Slider or
// MatrixRows/MatrixColumns is populated depends on QuestionTypeID.
type Question struct {
	ID             int64          `json:"id" bson:"id"`
	PageID         int64          `json:"pageId" bson:"pageId"`
	Text           string         `json:"text" bson:"text"`
	Description    string         `json:"description,omitempty" bson:"description,omitempty"`
	QuestionTypeID QuestionType   `json:"questionTypeId" bson:"questionTypeId"`
	IsRequired     bool           `json:"isRequired" bson:"isRequired"`
	QuestionOrder  int            `json:"questionOrder" bson:"questionOrder"`
	Options        []Option       `json:"options,omitempty" bson:"options,omitempty"`
	Slider         *SliderConfig  `json:"slider,omitempty" bson:"slider,omitempty"`
	MatrixRows     []MatrixRow    `json:"matrixRows,omitempty" bson:"matrixRows,omitempty"`
	MatrixColumns  []MatrixColumn `json:"matrixColumns,omitempty" bson:"matrixColumns,omitempty"`
	SoftDelete     `bson:",inline"`
}

// Option is a selectable answer of a choice question
type Option struct {
	ID           int64            `json:"id" bson:"id"`
	QuestionID   int64            `json:"questionId" bson:"questionId"`
	Text         string           `json:"text" bson:"text"`
	DisplayOrder int              `json:"displayOrder" bson:"displayOrder"`
	Score        *decimal.Decimal `json:"score,omitempty" bson:"score,omitempty"`
	SoftDelete   `bson:",inline"`
}

// ScoreOrZero treats an unscored option as worth zero
func (o *Option) ScoreOrZero() decimal.Decimal {
	if o.Score == nil {
		return decimal.Zero
	}
	return *o.Score
}

// SliderConfig has no per-value score table; the chosen value is the score.
type SliderConfig struct {
	ID         int64           `json:"id" bson:"id"`
	QuestionID int64           `json:"questionId" bson:"questionId"`
	MinValue   decimal.Decimal `json:"minValue" bson:"minValue"`
	MaxValue   decimal.Decimal `json:"maxValue" bson:"maxValue"`
	StepValue  decimal.Decimal `json:"stepValue" bson:"stepValue"`
	MinLabel   string          `json:"minLabel,omitempty" bson:"minLabel,omitempty"`
	MaxLabel   string          `json:"maxLabel,omitempty" bson:"maxLabel,omitempty"`
}

type MatrixRow struct {
	ID         int64  `json:"id" bson:"id"`
	QuestionID int64  `json:"questionId" bson:"questionId"`
	Text       string `json:"text" bson:"text"`
	RowOrder   int    `json:"rowOrder" bson:"rowOrder"`
	SoftDelete `bson:",inline"`
}

// MatrixColumn carries the score of every cell in its column
type MatrixColumn struct {
	ID          int64           `json:"id" bson:"id"`
	QuestionID  int64           `json:"questionId" bson:"questionId"`
	Text        string          `json:"text" bson:"text"`
	ColumnOrder int             `json:"columnOrder" bson:"columnOrder"`
	Score       decimal.Decimal `json:"score" bson:"score"`
	SoftDelete  `bson:",inline"`
}

// FindOption returns the option with the given id, deleted options included
func (q *Question) FindOption(id int64) *Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

// FindColumn returns the matrix column with the given id, deleted columns included
func (q *Question) FindColumn(id int64) *MatrixColumn {
	for i := range q.MatrixColumns {
		if q.MatrixColumns[i].ID == id {
			return &q.MatrixColumns[i]
		}
	}
	return nil
}

// FindRow returns the matrix row with the given id, deleted rows included
func (q *Question) FindRow(id int64) *MatrixRow {
	for i := range q.MatrixRows {
		if q.MatrixRows[i].ID == id {
			return &q.MatrixRows[i]
		}
	}
	return nil
}
