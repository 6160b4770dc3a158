package service

import "errors"

var (
	ErrEmailUsed          = errors.New("service: email already used")
	ErrUserNotFound       = errors.New("service: user not found")
	ErrInvalidCredentials = errors.New("service: invalid credentials")
	ErrEmailNotVerified   = errors.New("service: email not verified")
	ErrInvalidVerifyCode  = errors.New("service: invalid verification code")

	ErrClassNotFound           = errors.New("service: class not found")
	ErrAlreadyMember           = errors.New("service: already a class member")
	ErrClassNameTooLong        = errors.New("service: class name too long")
	ErrClassDescriptionTooLong = errors.New("service: class description too long")
)
