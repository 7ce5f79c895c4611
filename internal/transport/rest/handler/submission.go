package handler

import (
	"net/http"

	"saasadmin/internal/service"
	"saasadmin/internal/transport/rest/middleware"
)

// SubmissionHandler handles admin access to submissions and scores
type SubmissionHandler struct {
	subSvc    *service.SubmissionService
	recalcSvc *service.RecalculationService
	formSvc   *service.FormService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(subSvc *service.SubmissionService, recalcSvc *service.RecalculationService, formSvc *service.FormService) *SubmissionHandler {
	return &SubmissionHandler{
		subSvc:    subSvc,
		recalcSvc: recalcSvc,
		formSvc:   formSvc,
	}
}

// List handles GET /v1/forms/{formId}/submissions?page=&limit=
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}

	page, err := h.subSvc.ListSubmissions(r.Context(), middleware.GetOrganizationID(r.Context()), formID,
		queryInt(r, "page", 1), queryInt(r, "limit", 20))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /v1/forms/{formId}/submissions/{submissionId}
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}
	submissionID, ok := pathID(w, r, "submissionId")
	if !ok {
		return
	}

	sub, err := h.subSvc.GetSubmission(r.Context(), middleware.GetOrganizationID(r.Context()), formID, submissionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

// Delete handles DELETE /v1/forms/{formId}/submissions/{submissionId}
func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}
	submissionID, ok := pathID(w, r, "submissionId")
	if !ok {
		return
	}

	if err := h.subSvc.DeleteSubmission(r.Context(), middleware.GetOrganizationID(r.Context()), formID, submissionID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Leaderboard handles GET /v1/forms/{formId}/leaderboard?limit=
func (h *SubmissionHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}

	entries, err := h.subSvc.TopScores(r.Context(), middleware.GetOrganizationID(r.Context()), formID, queryInt(r, "limit", 10))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

// Recalculate handles POST /v1/forms/{formId}/recalculate
func (h *SubmissionHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}

	if _, err := h.formSvc.GetForm(r.Context(), middleware.GetOrganizationID(r.Context()), formID); err != nil {
		writeServiceError(w, err)
		return
	}

	n, err := h.recalcSvc.RecalculateScores(r.Context(), formID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"formId": formID, "processed": n})
}
