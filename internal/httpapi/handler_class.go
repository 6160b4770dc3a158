package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lipoic/lipoic-backend/internal/model"
	"github.com/lipoic/lipoic-backend/internal/service"
)

// ClassHandler serves class creation, join and lookup.
type ClassHandler struct {
	classes *service.Class
}

// NewClassHandler builds the class handler.
func NewClassHandler(classes *service.Class) *ClassHandler {
	return &ClassHandler{classes: classes}
}

type createClassRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

// Create answers POST /class.
func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, CodeAuthError, nil)
		return
	}

	var req createClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, CodeMissingOrInvalidParameters, nil)
		return
	}
	visibility, visibilityOK := model.ParseClassVisibility(req.Visibility)
	if req.Name == "" || req.Description == "" || !visibilityOK {
		respond(w, http.StatusBadRequest, CodeMissingOrInvalidParameters, nil)
		return
	}

	class, err := h.classes.CreateClass(r.Context(), user, req.Name, req.Description, visibility)
	switch {
	case err == nil:
		respondOK(w, class.Info())
	case errors.Is(err, service.ErrEmailNotVerified):
		respond(w, http.StatusForbidden, CodeEmailNotVerified, nil)
	case errors.Is(err, service.ErrClassNameTooLong):
		respond(w, http.StatusBadRequest, CodeClassNameTooLong, nil)
	case errors.Is(err, service.ErrClassDescriptionTooLong):
		respond(w, http.StatusBadRequest, CodeClassDescriptionTooLong, nil)
	default:
		respond(w, http.StatusInternalServerError, CodeMissingOrInvalidParameters, nil)
	}
}

// Join answers POST /class/{classId}/join.
func (h *ClassHandler) Join(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, CodeAuthError, nil)
		return
	}

	err := h.classes.JoinClass(r.Context(), user, chi.URLParam(r, "classId"))
	switch {
	case err == nil:
		respondOK(w, nil)
	case errors.Is(err, service.ErrEmailNotVerified):
		respond(w, http.StatusForbidden, CodeEmailNotVerified, nil)
	case errors.Is(err, service.ErrClassNotFound):
		// an unjoinable private class is indistinguishable from a missing one
		respond(w, http.StatusNotFound, CodeNotFound, nil)
	case errors.Is(err, service.ErrAlreadyMember):
		respond(w, http.StatusBadRequest, CodeClassAlreadyMember, nil)
	default:
		respond(w, http.StatusInternalServerError, CodeNotFound, nil)
	}
}

// Get answers GET /class/{classId}.
func (h *ClassHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, CodeAuthError, nil)
		return
	}

	class, err := h.classes.GetClass(r.Context(), user, chi.URLParam(r, "classId"))
	switch {
	case err == nil:
		respondOK(w, class.Info())
	case errors.Is(err, service.ErrClassNotFound):
		respond(w, http.StatusNotFound, CodeNotFound, nil)
	default:
		respond(w, http.StatusInternalServerError, CodeNotFound, nil)
	}
}
