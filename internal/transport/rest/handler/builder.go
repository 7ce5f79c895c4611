package handler

import (
	"net/http"

	"saasadmin/internal/model"
	"saasadmin/internal/transport/rest/middleware"
)

// AddPage handles POST /v1/forms/{formId}/pages
func (h *FormHandler) AddPage(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}
	var req model.PageRequest
	if !decode(w, r, &req) {
		return
	}

	page, err := h.formSvc.AddPage(r.Context(), middleware.GetOrganizationID(r.Context()), formID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, page)
}

// DeletePage handles DELETE /v1/forms/{formId}/pages/{pageId}
func (h *FormHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}
	pageID, ok := pathID(w, r, "pageId")
	if !ok {
		return
	}

	if err := h.formSvc.DeletePage(r.Context(), middleware.GetOrganizationID(r.Context()), formID, pageID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddQuestion handles POST /v1/forms/{formId}/pages/{pageId}/questions
func (h *FormHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}
	pageID, ok := pathID(w, r, "pageId")
	if !ok {
		return
	}
	var req model.QuestionRequest
	if !decode(w, r, &req) {
		return
	}

	q, err := h.formSvc.AddQuestion(r.Context(), middleware.GetOrganizationID(r.Context()), formID, pageID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, q)
}

// DeleteQuestion handles DELETE /v1/forms/{formId}/questions/{questionId}
func (h *FormHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}
	questionID, ok := pathID(w, r, "questionId")
	if !ok {
		return
	}

	if err := h.formSvc.DeleteQuestion(r.Context(), middleware.GetOrganizationID(r.Context()), formID, questionID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateOptionScore handles PUT /v1/forms/{formId}/options/{optionId}/score
func (h *FormHandler) UpdateOptionScore(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}
	optionID, ok := pathID(w, r, "optionId")
	if !ok {
		return
	}
	var req model.OptionScoreRequest
	if !decode(w, r, &req) {
		return
	}

	opt, err := h.formSvc.UpdateOptionScore(r.Context(), middleware.GetOrganizationID(r.Context()), formID, optionID, req.Score)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, opt)
}

// UpdateColumnScore handles PUT /v1/forms/{formId}/columns/{columnId}/score
func (h *FormHandler) UpdateColumnScore(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}
	columnID, ok := pathID(w, r, "columnId")
	if !ok {
		return
	}
	var req model.ColumnScoreRequest
	if !decode(w, r, &req) {
		return
	}

	col, err := h.formSvc.UpdateColumnScore(r.Context(), middleware.GetOrganizationID(r.Context()), formID, columnID, req.Score)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, col)
}

// AddRule handles POST /v1/forms/{formId}/rules
func (h *FormHandler) AddRule(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}
	var req model.RuleRequest
	if !decode(w, r, &req) {
		return
	}

	rule, err := h.formSvc.AddRule(r.Context(), middleware.GetOrganizationID(r.Context()), formID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rule)
}

// DeleteRule handles DELETE /v1/forms/{formId}/rules/{ruleId}
func (h *FormHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}
	ruleID, ok := pathID(w, r, "ruleId")
	if !ok {
		return
	}

	if err := h.formSvc.DeleteRule(r.Context(), middleware.GetOrganizationID(r.Context()), formID, ruleID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
