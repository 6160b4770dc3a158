package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/lipoic/lipoic-backend/internal/model"
	"github.com/lipoic/lipoic-backend/internal/service"
	"github.com/lipoic/lipoic-backend/internal/store"
	"github.com/lipoic/lipoic-backend/pkg/clientip"
)

// maxAvatarSize caps avatar uploads at 1 MiB.
const maxAvatarSize = 1 << 20

// UserHandler serves account signup, login, profile and avatar endpoints.
type UserHandler struct {
	accounts        *service.Account
	users           service.UserStorage
	trustCloudflare bool
}

// NewUserHandler builds the user handler.
func NewUserHandler(accounts *service.Account, users service.UserStorage, trustCloudflare bool) *UserHandler {
	return &UserHandler{
		accounts:        accounts,
		users:           users,
		trustCloudflare: trustCloudflare,
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Locale   string `json:"locale"`
}

// Signup answers POST /user/signup.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, CodeSignupError, nil)
		return
	}
	locale, localeOK := model.ParseLocale(req.Locale)
	if req.Username == "" || req.Email == "" || req.Password == "" || !localeOK {
		respond(w, http.StatusBadRequest, CodeSignupError, nil)
		return
	}

	ip := clientip.FromRequest(r, h.trustCloudflare)
	err := h.accounts.Signup(r.Context(), req.Username, req.Email, req.Password, ip, locale)
	switch {
	case err == nil:
		respondOK(w, nil)
	case errors.Is(err, service.ErrEmailUsed):
		respond(w, http.StatusConflict, CodeSignupEmailAlreadyUsed, nil)
	default:
		respond(w, http.StatusInternalServerError, CodeSignupError, nil)
	}
}

// VerifyEmail answers GET /user/verify?code=.
func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respond(w, http.StatusBadRequest, CodeVerifyEmailError, nil)
		return
	}

	sessionToken, err := h.accounts.VerifyEmail(r.Context(), code)
	switch {
	case err == nil:
		respondOK(w, map[string]string{"token": sessionToken})
	case errors.Is(err, service.ErrInvalidVerifyCode):
		respond(w, http.StatusBadRequest, CodeVerifyEmailError, nil)
	default:
		respond(w, http.StatusInternalServerError, CodeVerifyEmailError, nil)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login answers POST /user/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, CodeLoginError, nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		respond(w, http.StatusBadRequest, CodeLoginError, nil)
		return
	}

	ip := clientip.FromRequest(r, h.trustCloudflare)
	sessionToken, err := h.accounts.Login(r.Context(), req.Email, req.Password, ip)
	switch {
	case err == nil:
		respondOK(w, map[string]string{"token": sessionToken})
	case errors.Is(err, service.ErrUserNotFound):
		respond(w, http.StatusNotFound, CodeUserNotFound, nil)
	case errors.Is(err, service.ErrEmailNotVerified):
		respond(w, http.StatusForbidden, CodeLoginEmailNotVerified, nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		respond(w, http.StatusUnauthorized, CodeLoginError, nil)
	default:
		respond(w, http.StatusInternalServerError, CodeLoginError, nil)
	}
}

// Info answers GET /user/info with the caller's full profile.
func (h *UserHandler) Info(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, CodeAuthError, nil)
		return
	}
	respondOK(w, user.AuthInfo())
}

// InfoByID answers GET /user/info/{userId} with a public profile subset.
func (h *UserHandler) InfoByID(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		respond(w, http.StatusNotFound, CodeUserNotFound, nil)
		return
	}

	user, err := h.users.FindByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond(w, http.StatusNotFound, CodeUserNotFound, nil)
		return
	}
	if err != nil {
		respond(w, http.StatusInternalServerError, CodeUserNotFound, nil)
		return
	}
	respondOK(w, user.PublicInfo())
}

type updateInfoRequest struct {
	Username *string  `json:"username"`
	Modes    []string `json:"modes"`
	Locale   *string  `json:"locale"`
}

// UpdateInfo answers PATCH /user/info with a partial profile edit.
func (h *UserHandler) UpdateInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, CodeAuthError, nil)
		return
	}

	var req updateInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, CodeMissingOrInvalidParameters, nil)
		return
	}

	var upd store.ProfileUpdate
	if req.Username != nil {
		if *req.Username == "" {
			respond(w, http.StatusBadRequest, CodeMissingOrInvalidParameters, nil)
			return
		}
		upd.Username = req.Username
	}
	if req.Modes != nil {
		modes := make([]model.UserMode, 0, len(req.Modes))
		for _, raw := range req.Modes {
			mode, ok := model.ParseUserMode(raw)
			if !ok {
				respond(w, http.StatusBadRequest, CodeMissingOrInvalidParameters, nil)
				return
			}
			modes = append(modes, mode)
		}
		upd.Modes = modes
	}
	if req.Locale != nil {
		locale, ok := model.ParseLocale(*req.Locale)
		if !ok {
			respond(w, http.StatusBadRequest, CodeMissingOrInvalidParameters, nil)
			return
		}
		upd.Locale = &locale
	}

	ip := clientip.FromRequest(r, h.trustCloudflare)
	updated, err := h.users.UpdateProfile(r.Context(), user.ID, upd, ip)
	if err != nil {
		respond(w, http.StatusInternalServerError, CodeUpdateUserInfoError, nil)
		return
	}
	respondOK(w, updated.AuthInfo())
}

// UploadAvatar answers POST /user/avatar with a multipart "avatar" file.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, CodeAuthError, nil)
		return
	}

	// allow some slack for the multipart framing around the 1 MiB payload
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize+64*1024)

	file, header, err := r.FormFile("avatar")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond(w, http.StatusBadRequest, CodeAvatarFileTooLarge, nil)
			return
		}
		respond(w, http.StatusBadRequest, CodeInvalidAvatarFile, nil)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxAvatarSize {
		respond(w, http.StatusBadRequest, CodeAvatarFileTooLarge, nil)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		respond(w, http.StatusBadRequest, CodeInvalidAvatarFile, nil)
		return
	}

	if err := h.users.SetAvatar(r.Context(), user.ID, data); err != nil {
		respond(w, http.StatusInternalServerError, CodeInvalidAvatarFile, nil)
		return
	}
	respondOK(w, nil)
}

// DownloadAvatar answers GET /user/avatar/{userId} with the raw image bytes.
func (h *UserHandler) DownloadAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		respond(w, http.StatusNotFound, CodeUserNotFound, nil)
		return
	}

	user, err := h.users.FindByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respond(w, http.StatusNotFound, CodeUserNotFound, nil)
		return
	}
	if err != nil {
		respond(w, http.StatusInternalServerError, CodeUserNotFound, nil)
		return
	}
	if len(user.Avatar) == 0 {
		respond(w, http.StatusNotFound, CodeAvatarNotFound, nil)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(user.Avatar))
	_, _ = w.Write(user.Avatar)
}

// DeleteAvatar answers DELETE /user/avatar.
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, CodeAuthError, nil)
		return
	}
	if err := h.users.ClearAvatar(r.Context(), user.ID); err != nil {
		respond(w, http.StatusInternalServerError, CodeInvalidAvatarFile, nil)
		return
	}
	respondOK(w, nil)
}
