package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lipoic/lipoic-backend/internal/model"
	"github.com/lipoic/lipoic-backend/internal/store"
	"github.com/lipoic/lipoic-backend/internal/token"
)

// Auth runs the OAuth sign-in flow against user storage.
type Auth struct {
	users  UserStorage
	tokens *token.Service
}

// NewAuth returns an OAuth sign-in service.
func NewAuth(users UserStorage, tokens *token.Service) *Auth {
	return &Auth{users: users, tokens: tokens}
}

// LinkOAuthAccount completes an OAuth callback: exchanges the authorization
// code, fetches the provider profile and signs the caller in, creating a
// verified local account on first contact. Replaying a callback is harmless:
// a user holds at most one connect per (provider, email) pair, even when the
// provider-side display name changed in between, and IP additions have set
// semantics in storage.
func (a *Auth) LinkOAuthAccount(ctx context.Context, flow OAuthFlow, code, ip string, requestedLocale model.Locale) (string, error) {
	access, err := flow.Exchange(ctx, code)
	if err != nil {
		return "", err
	}
	profile, err := flow.FetchProfile(ctx, access)
	if err != nil {
		return "", err
	}
	if profile.Email == "" {
		return "", fmt.Errorf("%w: provider returned no email", ErrUserNotFound)
	}

	connect := model.ConnectedAccount{
		AccountType: string(flow.Provider()),
		Name:        profile.Name,
		Email:       profile.Email,
	}

	user, err := a.users.FindByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		if user.HasConnect(connect.AccountType, connect.Email) {
			// pair already linked, just record the IP
			if err := a.users.AddLoginIP(ctx, user.ID, ip); err != nil {
				return "", err
			}
		} else if err := a.users.AddConnect(ctx, profile.Email, connect, ip); err != nil {
			return "", err
		}
	case errors.Is(err, store.ErrNotFound):
		locale := profile.Locale
		if locale == "" {
			locale = requestedLocale
		}
		user = &model.User{
			Username:      profile.Name,
			Email:         profile.Email,
			VerifiedEmail: true,
			Connects:      []model.ConnectedAccount{connect},
			Modes:         []model.UserMode{},
			LoginIPs:      []string{ip},
			Locale:        locale,
		}
		if err := a.users.Create(ctx, user); err != nil {
			return "", err
		}
	default:
		return "", err
	}

	return a.tokens.CreateSessionToken(user.ID.Hex())
}
