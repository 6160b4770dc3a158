package token

import "errors"

var (
	ErrMissingPrivateKey = errors.New("token: missing JWT private key")
	ErrMissingPublicKey  = errors.New("token: missing JWT public key")
	ErrInvalidKey        = errors.New("token: invalid EC key")
)
