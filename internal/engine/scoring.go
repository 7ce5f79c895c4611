package engine

import (
	"github.com/shopspring/decimal"

	"saasadmin/internal/model"
)

// ScoreResult holds per-answer scores keyed by answer id and their in-scope total
type ScoreResult struct {
	AnswerScores map[int64]decimal.Decimal `json:"answerScores"`
	TotalScore   decimal.Decimal           `json:"totalScore"`
	Warnings     []Warning                 `json:"warnings,omitempty"`
}

// ComputeAnswerScore scores one answer against its question.
//
// Choice answers sum the scores of the distinct options they reference, so a
// later-deleted option still counts for submissions that chose it; a
// single-select question counts only the first. Slider answers pass their
// numeric value through unscaled when it lies within the slider bounds. Matrix answers sum the
// score of the column chosen in each row; only the first value per row counts
// and blank rows add nothing. Text answers score 0.
func ComputeAnswerScore(q *model.Question, a *model.Answer) decimal.Decimal {
	if q == nil || a == nil {
		return decimal.Zero
	}

	switch q.QuestionTypeID.Kind() {
	case model.KindChoice:
		total := decimal.Zero
		seen := make(map[int64]bool)
		for _, v := range a.Values {
			if v.SelectedOptionID == nil || seen[*v.SelectedOptionID] {
				continue
			}
			opt := q.FindOption(*v.SelectedOptionID)
			if opt == nil {
				continue
			}
			if len(seen) > 0 && !q.QuestionTypeID.MultiSelect() {
				break
			}
			seen[*v.SelectedOptionID] = true
			total = total.Add(opt.ScoreOrZero())
		}
		return total

	case model.KindSlider:
		if v, ok := a.NumericValue(); ok && sliderAccepts(q.Slider, v) {
			return v
		}
		return decimal.Zero

	case model.KindMatrix:
		total := decimal.Zero
		seenRows := make(map[int64]bool)
		for _, v := range a.Values {
			if v.MatrixRowID == nil || v.SelectedMatrixColumnID == nil || seenRows[*v.MatrixRowID] {
				continue
			}
			if q.FindRow(*v.MatrixRowID) == nil {
				continue
			}
			seenRows[*v.MatrixRowID] = true
			if col := q.FindColumn(*v.SelectedMatrixColumnID); col != nil {
				total = total.Add(col.Score)
			}
		}
		return total
	}
	return decimal.Zero
}

// ScoreSubmission scores every answer and sums the in-scope ones.
//
// Answers to hidden questions, to questions on pages navigation bypasses,
// to unknown questions and duplicate answers are recorded with score 0 and
// left out of the total. When visibility is nil it
// is computed from the answers.
func ScoreSubmission(form *model.Form, answers []model.Answer, visibility *VisibilityResult) (*ScoreResult, error) {
	schema, err := NewSchema(form)
	if err != nil {
		return nil, err
	}
	if visibility == nil {
		visibility = evaluateVisibility(schema, answers)
	}
	return scoreSubmission(schema, answers, visibility), nil
}

func scoreSubmission(schema *Schema, answers []model.Answer, visibility *VisibilityResult) *ScoreResult {
	idx, warnings := schema.indexAnswers(answers)
	res := &ScoreResult{
		AnswerScores: make(map[int64]decimal.Decimal, len(answers)),
		TotalScore:   decimal.Zero,
		Warnings:     warnings,
	}

	for i := range answers {
		a := &answers[i]
		if _, ok := res.AnswerScores[a.ID]; !ok {
			res.AnswerScores[a.ID] = decimal.Zero
		}
		if idx[a.QuestionID] != a || !visibility.IsVisible(a.QuestionID) {
			continue
		}
		if page := schema.PageOf(a.QuestionID); page != nil && visibility.IsBypassed(page.ID) {
			continue
		}
		score := ComputeAnswerScore(schema.Question(a.QuestionID), a)
		res.AnswerScores[a.ID] = score
		res.TotalScore = res.TotalScore.Add(score)
	}
	return res
}

// ApplyScores copies computed scores onto the submission. AnswerValues are untouched.
func ApplyScores(sub *model.Submission, res *ScoreResult) {
	if sub == nil || res == nil {
		return
	}
	for i := range sub.Answers {
		sub.Answers[i].Score = res.AnswerScores[sub.Answers[i].ID]
	}
	sub.TotalScore = res.TotalScore
}

// ComputeSubmissionTotal re-derives the total score of a stored submission
func ComputeSubmissionTotal(form *model.Form, sub *model.Submission, visibility *VisibilityResult) (decimal.Decimal, error) {
	if sub == nil {
		return decimal.Zero, ErrNilSubmission
	}
	res, err := ScoreSubmission(form, sub.Answers, visibility)
	if err != nil {
		return decimal.Zero, err
	}
	return res.TotalScore, nil
}

// Rescore recomputes visibility and scores of a stored submission in place.
// It reports whether any score changed.
func Rescore(form *model.Form, sub *model.Submission) (bool, error) {
	if sub == nil {
		return false, ErrNilSubmission
	}
	res, err := ScoreSubmission(form, sub.Answers, nil)
	if err != nil {
		return false, err
	}

	changed := !sub.TotalScore.Equal(res.TotalScore)
	for _, a := range sub.Answers {
		if !a.Score.Equal(res.AnswerScores[a.ID]) {
			changed = true
			break
		}
	}
	ApplyScores(sub, res)
	return changed, nil
}
