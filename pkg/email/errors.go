package email

import "errors"

var (
	ErrFailedToSend    = errors.New("email: failed to send")
	ErrInvalidConfig   = errors.New("email: invalid config")
	ErrInvalidParams   = errors.New("email: invalid send parameters")
	ErrUnknownTemplate = errors.New("email: unknown template locale")
)
