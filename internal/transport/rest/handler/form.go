package handler

import (
	"net/http"

	"saasadmin/internal/model"
	"saasadmin/internal/service"
	"saasadmin/internal/transport/rest/middleware"
)

// FormHandler handles the questionnaire builder endpoints
type FormHandler struct {
	formSvc *service.FormService
}

// NewFormHandler creates a new form handler
func NewFormHandler(formSvc *service.FormService) *FormHandler {
	return &FormHandler{formSvc: formSvc}
}

// QuestionTypes handles GET /v1/question-types
func (h *FormHandler) QuestionTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"questionTypes": h.formSvc.QuestionTypes()})
}

// Create handles POST /v1/forms
func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.FormRequest
	if !decode(w, r, &req) {
		return
	}

	form, err := h.formSvc.CreateForm(r.Context(), middleware.GetOrganizationID(r.Context()), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, form)
}

// List handles GET /v1/forms
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.formSvc.ListForms(r.Context(), middleware.GetOrganizationID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if forms == nil {
		forms = []*model.Form{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"forms": forms})
}

// Get handles GET /v1/forms/{formId}
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}

	form, err := h.formSvc.GetForm(r.Context(), middleware.GetOrganizationID(r.Context()), formID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, form)
}

// Update handles PUT /v1/forms/{formId}
func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}
	var req model.FormRequest
	if !decode(w, r, &req) {
		return
	}

	form, err := h.formSvc.UpdateForm(r.Context(), middleware.GetOrganizationID(r.Context()), formID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, form)
}

// Delete handles DELETE /v1/forms/{formId}
func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}

	if err := h.formSvc.DeleteForm(r.Context(), middleware.GetOrganizationID(r.Context()), formID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Publish handles POST /v1/forms/{formId}/publish
func (h *FormHandler) Publish(w http.ResponseWriter, r *http.Request) {
	formID, ok := pathID(w, r, "formId")
	if !ok {
		return
	}

	form, err := h.formSvc.Publish(r.Context(), middleware.GetOrganizationID(r.Context()), formID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"formId":      form.ID,
		"publicKey":   form.PublicKey,
		"publicUrl":   form.PublicURL,
		"publishedAt": form.PublishedAt,
	})
}
