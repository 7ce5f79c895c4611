package engine

import (
	"sort"

	"saasadmin/internal/model"
)

// Visibility is whether a question is presented to the respondent
type Visibility string

const (
	Visible Visibility = "Visible"
	Hidden  Visibility = "Hidden"
)

// NavigationAction is the traversal instruction for the form as a whole
type NavigationAction string

const (
	NavigateContinue   NavigationAction = "Continue"
	NavigateSkipToPage NavigationAction = "SkipToPage"
	NavigateTerminate  NavigationAction = "Terminate"
)

// NavigationDirective says whether to continue, jump to a page or end the form
type NavigationDirective struct {
	Action       NavigationAction `json:"action"`
	TargetPageID int64            `json:"targetPageId,omitempty"`
	RuleID       int64            `json:"ruleId,omitempty"`
	SourcePageID int64            `json:"sourcePageId,omitempty"`
}

// VisibilityResult is the outcome of applying a form's rules to an answer set
type VisibilityResult struct {
	Questions     map[int64]Visibility `json:"questions"`
	Navigation    NavigationDirective  `json:"navigation"`
	BypassedPages []int64              `json:"bypassedPages,omitempty"`
	FiredRules    []int64              `json:"firedRules,omitempty"`
	Warnings      []Warning            `json:"warnings,omitempty"`
}

// IsVisible reports whether an active question is currently visible
func (r *VisibilityResult) IsVisible(questionID int64) bool {
	return r != nil && r.Questions[questionID] == Visible
}

// IsBypassed reports whether navigation jumps over the page
func (r *VisibilityResult) IsBypassed(pageID int64) bool {
	if r == nil {
		return false
	}
	for _, id := range r.BypassedPages {
		if id == pageID {
			return true
		}
	}
	return false
}

// EvaluateVisibility applies every active rule of the form, in ascending id
// order, to the answers gathered so far.
//
// All questions start Visible. Hide/Show actions on the same target are
// resolved last-wins. TerminateForm beats SkipToPage; among SkipToPage rules
// the first to fire wins. A rule whose source is Hidden at its turn does not
// fire. Rules referencing missing sources or targets are skipped with a warning.
func EvaluateVisibility(form *model.Form, answers []model.Answer) (*VisibilityResult, error) {
	schema, err := NewSchema(form)
	if err != nil {
		return nil, err
	}
	return evaluateVisibility(schema, answers), nil
}

func evaluateVisibility(schema *Schema, answers []model.Answer) *VisibilityResult {
	res := &VisibilityResult{
		Questions:  make(map[int64]Visibility, len(schema.Questions())),
		Navigation: NavigationDirective{Action: NavigateContinue},
	}
	for _, q := range schema.Questions() {
		res.Questions[q.ID] = Visible
	}

	idx, warnings := schema.indexAnswers(answers)
	res.Warnings = append(res.Warnings, warnings...)

	for _, rule := range orderedRules(schema.Form().Rules) {
		rule := rule
		if msg := checkRule(schema, &rule); msg != "" {
			res.Warnings = append(res.Warnings, Warning{RuleID: rule.ID, Message: msg})
			continue
		}

		source := schema.Question(rule.SourceQuestionID)
		answer := idx[source.ID]
		if answer == nil || res.Questions[source.ID] == Hidden {
			continue
		}
		if !Evaluate(&rule, answer, source) {
			continue
		}

		res.FiredRules = append(res.FiredRules, rule.ID)
		sourcePage := schema.PageOf(source.ID)

		switch rule.ActionType {
		case model.ActionHideQuestion:
			res.Questions[*rule.TargetQuestionID] = Hidden
		case model.ActionShowQuestion:
			res.Questions[*rule.TargetQuestionID] = Visible
		case model.ActionSkipToPage:
			if res.Navigation.Action == NavigateContinue {
				res.Navigation = NavigationDirective{
					Action:       NavigateSkipToPage,
					TargetPageID: *rule.TargetPageID,
					RuleID:       rule.ID,
					SourcePageID: sourcePage.ID,
				}
			}
		case model.ActionTerminateForm:
			if res.Navigation.Action != NavigateTerminate {
				res.Navigation = NavigationDirective{
					Action:       NavigateTerminate,
					RuleID:       rule.ID,
					SourcePageID: sourcePage.ID,
				}
			}
		}
	}

	res.BypassedPages = bypassedPages(schema, res.Navigation)
	return res
}

// orderedRules returns the active rules sorted by ascending id
func orderedRules(rules []model.Rule) []model.Rule {
	active := model.Active(rules)
	sort.SliceStable(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active
}

// checkRule returns why a rule cannot be applied, or "" if it can
func checkRule(schema *Schema, rule *model.Rule) string {
	if schema.Question(rule.SourceQuestionID) == nil {
		return "source question is missing or deleted"
	}
	switch rule.ActionType {
	case model.ActionHideQuestion, model.ActionShowQuestion:
		if rule.TargetQuestionID == nil || schema.Question(*rule.TargetQuestionID) == nil {
			return "target question is missing or deleted"
		}
	case model.ActionSkipToPage:
		if rule.TargetPageID == nil || schema.Page(*rule.TargetPageID) == nil {
			return "target page is missing or deleted"
		}
	case model.ActionTerminateForm:
	default:
		return "unknown action type " + string(rule.ActionType)
	}
	return ""
}

// bypassedPages lists the pages a respondent never reaches: those strictly
// between the source and target page of a forward skip, or every page after
// the source page of a termination.
func bypassedPages(schema *Schema, nav NavigationDirective) []int64 {
	if nav.Action == NavigateContinue {
		return nil
	}
	source := schema.Page(nav.SourcePageID)
	if source == nil {
		return nil
	}

	var out []int64
	for _, p := range schema.Pages() {
		if p.PageOrder <= source.PageOrder {
			continue
		}
		switch nav.Action {
		case NavigateTerminate:
			out = append(out, p.ID)
		case NavigateSkipToPage:
			target := schema.Page(nav.TargetPageID)
			if target != nil && p.PageOrder < target.PageOrder {
				out = append(out, p.ID)
			}
		}
	}
	return out
}
