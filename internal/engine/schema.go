package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"saasadmin/internal/model"
)

// ActivePages returns the non-deleted pages of a form ordered by PageOrder
func ActivePages(form *model.Form) []model.Page {
	if form == nil {
		return nil
	}
	pages := model.Active(form.Pages)
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].PageOrder < pages[j].PageOrder
	})
	return pages
}

// ActiveQuestions returns the non-deleted questions of a page ordered by QuestionOrder
func ActiveQuestions(page *model.Page) []model.Question {
	if page == nil {
		return nil
	}
	questions := model.Active(page.Questions)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].QuestionOrder < questions[j].QuestionOrder
	})
	return questions
}

// ActiveOptions returns the non-deleted options of a question ordered by DisplayOrder
func ActiveOptions(q *model.Question) []model.Option {
	if q == nil {
		return nil
	}
	options := model.Active(q.Options)
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].DisplayOrder < options[j].DisplayOrder
	})
	return options
}

// ActiveMatrix returns the non-deleted rows and columns of a matrix question in display order
func ActiveMatrix(q *model.Question) ([]model.MatrixRow, []model.MatrixColumn) {
	if q == nil {
		return nil, nil
	}
	rows := model.Active(q.MatrixRows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].RowOrder < rows[j].RowOrder })
	cols := model.Active(q.MatrixColumns)
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].ColumnOrder < cols[j].ColumnOrder })
	return rows, cols
}

// Configured reports whether the populated configuration of a question matches
// its type. A misconfigured question cannot receive a valid answer.
func Configured(q *model.Question) bool {
	if q == nil {
		return false
	}
	switch q.QuestionTypeID.Kind() {
	case model.KindChoice:
		return len(ActiveOptions(q)) > 0
	case model.KindSlider:
		return q.Slider != nil && q.Slider.MinValue.LessThan(q.Slider.MaxValue)
	case model.KindMatrix:
		rows, cols := ActiveMatrix(q)
		return len(rows) > 0 && len(cols) > 0
	case model.KindText:
		return true
	}
	return false
}

// sliderAccepts reports whether v lies within the slider's inclusive bounds
func sliderAccepts(cfg *model.SliderConfig, v decimal.Decimal) bool {
	return cfg != nil && !v.LessThan(cfg.MinValue) && !v.GreaterThan(cfg.MaxValue)
}

// Schema is a read-only index over the active pages and questions of a form.
type Schema struct {
	form         *model.Form
	pages        []*model.Page
	pageByID     map[int64]*model.Page
	questions    []*model.Question
	questionByID map[int64]*model.Question
	pageOf       map[int64]*model.Page
}

// NewSchema indexes a form. The form must not be mutated while the schema is in use.
func NewSchema(form *model.Form) (*Schema, error) {
	if form == nil {
		return nil, ErrNilForm
	}
	s := &Schema{
		form:         form,
		pageByID:     make(map[int64]*model.Page),
		questionByID: make(map[int64]*model.Question),
		pageOf:       make(map[int64]*model.Page),
	}

	for i := range form.Pages {
		p := &form.Pages[i]
		if p.Deleted() {
			continue
		}
		s.pages = append(s.pages, p)
		s.pageByID[p.ID] = p
	}
	sort.SliceStable(s.pages, func(i, j int) bool {
		return s.pages[i].PageOrder < s.pages[j].PageOrder
	})

	for _, p := range s.pages {
		var qs []*model.Question
		for j := range p.Questions {
			q := &p.Questions[j]
			if q.Deleted() {
				continue
			}
			qs = append(qs, q)
			s.questionByID[q.ID] = q
			s.pageOf[q.ID] = p
		}
		sort.SliceStable(qs, func(i, j int) bool {
			return qs[i].QuestionOrder < qs[j].QuestionOrder
		})
		s.questions = append(s.questions, qs...)
	}
	return s, nil
}

// Form returns the indexed form
func (s *Schema) Form() *model.Form { return s.form }

// Pages returns the active pages in PageOrder
func (s *Schema) Pages() []*model.Page { return s.pages }

// Questions returns the active questions in page order, then question order
func (s *Schema) Questions() []*model.Question { return s.questions }

// Question looks up an active question
func (s *Schema) Question(id int64) *model.Question { return s.questionByID[id] }

// Page looks up an active page
func (s *Schema) Page(id int64) *model.Page { return s.pageByID[id] }

// PageOf returns the page holding an active question
func (s *Schema) PageOf(questionID int64) *model.Page { return s.pageOf[questionID] }

// indexAnswers maps question ids to their answer. Only the first answer of a
// question is in scope; later duplicates and answers to unknown questions are reported.
func (s *Schema) indexAnswers(answers []model.Answer) (map[int64]*model.Answer, []Warning) {
	idx := make(map[int64]*model.Answer, len(answers))
	var warnings []Warning
	for i := range answers {
		a := &answers[i]
		if s.Question(a.QuestionID) == nil {
			warnings = append(warnings, Warning{QuestionID: a.QuestionID, Message: "answer references a missing or deleted question"})
			continue
		}
		if _, dup := idx[a.QuestionID]; dup {
			warnings = append(warnings, Warning{QuestionID: a.QuestionID, Message: "duplicate answer ignored"})
			continue
		}
		idx[a.QuestionID] = a
	}
	return idx, warnings
}
