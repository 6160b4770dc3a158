// Package httpapi exposes the application services over REST. Every JSON
// endpoint answers with the same envelope: {"code": <status enum>, "data":
// <payload>}.
package httpapi

import (
	"encoding/json"
	"net/http"
)

// Code is the application-level status enum carried in every response
// envelope. Existing clients switch on the numeric values, so the
// declaration order below is frozen.
type Code int

const (
	CodeSuccess Code = iota
	CodeNotFound
	CodeGetAuthURLError
	CodeOAuthCallbackError
	CodeAuthError
	CodeUserNotFound
	CodeUpdateUserInfoError
	CodeSignupEmailAlreadyUsed
	CodeSignupError
	CodeVerifyEmailError
	CodeLoginError
	CodeLoginEmailNotVerified
	CodeInvalidAvatarFile
	CodeAvatarFileTooLarge
	CodeAvatarNotFound
	CodeMissingOrInvalidParameters
	CodeEmailNotVerified
	CodeClassNameTooLong
	CodeClassDescriptionTooLong
	CodeClassAlreadyMember
)

// Response is the wire envelope.
type Response struct {
	Code Code `json:"code"`
	Data any  `json:"data,omitempty"`
}

func respond(w http.ResponseWriter, status int, code Code, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Code: code, Data: data})
}

func respondOK(w http.ResponseWriter, data any) {
	respond(w, http.StatusOK, CodeSuccess, data)
}
