package oauth

import "errors"

var (
	// ErrExchangeFailed covers every code-exchange failure, regardless of
	// cause, so provider-side diagnostics never leak to clients.
	ErrExchangeFailed = errors.New("oauth: authorization code exchange failed")

	ErrFetchProfileFailed = errors.New("oauth: failed to fetch provider profile")
)
