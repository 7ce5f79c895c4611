package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"saasadmin/internal/model"
	"saasadmin/internal/service"
)

// PublicHandler serves respondents through a form's public key
type PublicHandler struct {
	formSvc *service.FormService
	subSvc  *service.SubmissionService
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(formSvc *service.FormService, subSvc *service.SubmissionService) *PublicHandler {
	return &PublicHandler{formSvc: formSvc, subSvc: subSvc}
}

// GetForm handles GET /v1/public/forms/{publicKey}
func (h *PublicHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.formSvc.GetPublishedForm(r.Context(), mux.Vars(r)["publicKey"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, service.RespondentView(form))
}

// Preview handles POST /v1/public/forms/{publicKey}/preview
func (h *PublicHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req model.PreviewRequest
	if !decode(w, r, &req) {
		return
	}

	vis, err := h.subSvc.Preview(r.Context(), mux.Vars(r)["publicKey"], req.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vis)
}

// Submit handles POST /v1/public/forms/{publicKey}/submissions.
// An invalid submission is answered with 422 and every offending question.
func (h *PublicHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.subSvc.Submit(r.Context(), mux.Vars(r)["publicKey"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !res.Validation.IsValid {
		writeJSON(w, http.StatusUnprocessableEntity, res.Validation)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"submissionId": res.Submission.ID,
		"totalScore":   res.Submission.TotalScore,
		"rank":         res.Rank,
		"submittedAt":  res.Submission.SubmittedAt,
	})
}
