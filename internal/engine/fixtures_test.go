package engine

import (
	"github.com/shopspring/decimal"

	"saasadmin/internal/model"
)

func ptr[T any](v T) *T { return &v }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// sampleForm builds a three page form:
//
//	page 1: q11 single choice (o111=3, o112=4), q12 multi choice (o121=3, o122=4), q13 slider 0..100 required
//	page 2: q21 matrix rows r211/r212, columns c213=2/c214=5; q22 text required
//	page 3: q31 text required
func sampleForm() *model.Form {
	return &model.Form{
		ID:    1,
		Title: "Sample",
		Pages: []model.Page{
			{
				ID: 1, FormID: 1, PageOrder: 1,
				Questions: []model.Question{
					{
						ID: 11, PageID: 1, QuestionTypeID: model.QuestionTypeSingleChoice, QuestionOrder: 1,
						Options: []model.Option{
							{ID: 111, QuestionID: 11, DisplayOrder: 1, Score: ptr(dec(3))},
							{ID: 112, QuestionID: 11, DisplayOrder: 2, Score: ptr(dec(4))},
						},
					},
					{
						ID: 12, PageID: 1, QuestionTypeID: model.QuestionTypeMultiChoice, QuestionOrder: 2,
						Options: []model.Option{
							{ID: 121, QuestionID: 12, DisplayOrder: 1, Score: ptr(dec(3))},
							{ID: 122, QuestionID: 12, DisplayOrder: 2, Score: ptr(dec(4))},
						},
					},
					{
						ID: 13, PageID: 1, QuestionTypeID: model.QuestionTypeSlider, QuestionOrder: 3, IsRequired: true,
						Slider: &model.SliderConfig{ID: 131, QuestionID: 13, MinValue: dec(0), MaxValue: dec(100), StepValue: dec(1)},
					},
				},
			},
			{
				ID: 2, FormID: 1, PageOrder: 2,
				Questions: []model.Question{
					{
						ID: 21, PageID: 2, QuestionTypeID: model.QuestionTypeMatrix, QuestionOrder: 1,
						MatrixRows: []model.MatrixRow{
							{ID: 211, QuestionID: 21, RowOrder: 1},
							{ID: 212, QuestionID: 21, RowOrder: 2},
						},
						MatrixColumns: []model.MatrixColumn{
							{ID: 213, QuestionID: 21, ColumnOrder: 1, Score: dec(2)},
							{ID: 214, QuestionID: 21, ColumnOrder: 2, Score: dec(5)},
						},
					},
					{ID: 22, PageID: 2, QuestionTypeID: model.QuestionTypeShortText, QuestionOrder: 2, IsRequired: true},
				},
			},
			{
				ID: 3, FormID: 1, PageOrder: 3,
				Questions: []model.Question{
					{ID: 31, PageID: 3, QuestionTypeID: model.QuestionTypeLongText, QuestionOrder: 1, IsRequired: true},
				},
			},
		},
	}
}

func choiceAnswer(id, questionID int64, optionIDs ...int64) model.Answer {
	a := model.Answer{ID: id, QuestionID: questionID}
	for _, o := range optionIDs {
		a.Values = append(a.Values, model.AnswerValue{SelectedOptionID: ptr(o)})
	}
	return a
}

func sliderAnswer(id, questionID, value int64) model.Answer {
	return model.Answer{ID: id, QuestionID: questionID, Values: []model.AnswerValue{{NumericValue: ptr(dec(value))}}}
}

// matrixAnswer takes row, column pairs
func matrixAnswer(id, questionID int64, cells ...[2]int64) model.Answer {
	a := model.Answer{ID: id, QuestionID: questionID}
	for _, c := range cells {
		a.Values = append(a.Values, model.AnswerValue{MatrixRowID: ptr(c[0]), SelectedMatrixColumnID: ptr(c[1])})
	}
	return a
}

func textAnswer(id, questionID int64, text string) model.Answer {
	return model.Answer{ID: id, QuestionID: questionID, Values: []model.AnswerValue{{TextValue: ptr(text)}}}
}

func hideRule(id, source int64, cond model.ConditionType, target int64) model.Rule {
	return model.Rule{ID: id, FormID: 1, SourceQuestionID: source, Condition: cond, ActionType: model.ActionHideQuestion, TargetQuestionID: ptr(target)}
}
