package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/lipoic/lipoic-backend/internal/model"
	"github.com/lipoic/lipoic-backend/internal/password"
	"github.com/lipoic/lipoic-backend/internal/store"
	"github.com/lipoic/lipoic-backend/internal/token"
	"github.com/lipoic/lipoic-backend/pkg/email"
)

// Account implements email/password signup, verification and login.
type Account struct {
	users     UserStorage
	tokens    *token.Service
	mailer    email.Sender
	clientURL string

	now func() time.Time
}

// NewAccount returns the account service. clientURL is the frontend origin
// embedded into verification links.
func NewAccount(users UserStorage, tokens *token.Service, mailer email.Sender, clientURL string) *Account {
	return &Account{
		users:     users,
		tokens:    tokens,
		mailer:    mailer,
		clientURL: clientURL,
		now:       time.Now,
	}
}

// Signup registers an unverified local-credential account and emails a
// verification link in the requested locale.
//
// An unverified account whose last verification email is older than the
// resend window is treated as abandoned: it is deleted and re-created with
// the new credentials, and a fresh email goes out. Inside the window the
// email counts as taken, which also throttles verification-email volume per
// address.
func (a *Account) Signup(ctx context.Context, username, emailAddr, plaintext, ip string, locale model.Locale) error {
	existing, err := a.users.FindByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		if existing.VerifiedEmail || !existing.CanSendVerifyEmail(a.now()) {
			return ErrEmailUsed
		}
		if err := a.users.Delete(ctx, existing.ID); err != nil {
			return err
		}
	case errors.Is(err, store.ErrNotFound):
		// first signup for this address
	default:
		return err
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return err
	}

	user := &model.User{
		Username:     username,
		Email:        emailAddr,
		PasswordHash: hash,
		Connects:     []model.ConnectedAccount{},
		Modes:        []model.UserMode{},
		LoginIPs:     []string{ip},
		Locale:       locale,
	}
	if err := a.users.Create(ctx, user); err != nil {
		return err
	}

	return a.sendVerifyEmail(ctx, user)
}

func (a *Account) sendVerifyEmail(ctx context.Context, user *model.User) error {
	code, err := a.tokens.CreateVerificationToken(user.ID.Hex(), user.Email)
	if err != nil {
		return err
	}
	msg, err := email.NewVerifyEmail(user.Username, user.Email, code, string(user.Locale), a.clientURL)
	if err != nil {
		return err
	}
	if err := a.mailer.SendEmail(ctx, msg); err != nil {
		return err
	}
	return a.users.SetLastVerifyEmailTime(ctx, user.ID, a.now())
}

// VerifyEmail redeems a verification token and signs the user in. The token
// payload must still match the stored account; a stale token surviving a
// delete-and-recreate cycle fails here.
func (a *Account) VerifyEmail(ctx context.Context, code string) (string, error) {
	payload, ok := a.tokens.VerifyVerificationToken(code)
	if !ok {
		return "", ErrInvalidVerifyCode
	}
	id, err := bson.ObjectIDFromHex(payload.UserID)
	if err != nil {
		return "", fmt.Errorf("%w: malformed user id", ErrInvalidVerifyCode)
	}

	user, err := a.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidVerifyCode
	}
	if err != nil {
		return "", err
	}
	if user.Email != payload.Email {
		return "", ErrInvalidVerifyCode
	}

	if err := a.users.SetVerifiedEmail(ctx, user.ID); err != nil {
		return "", err
	}
	return a.tokens.CreateSessionToken(user.ID.Hex())
}

// Login checks local credentials and returns a session token. Accounts
// created only through OAuth have no password hash and behave as missing.
func (a *Account) Login(ctx context.Context, emailAddr, plaintext, ip string) (string, error) {
	user, err := a.users.FindByEmail(ctx, emailAddr)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	if user.PasswordHash == "" {
		return "", ErrUserNotFound
	}
	if !password.Verify(plaintext, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	if !user.VerifiedEmail {
		return "", ErrEmailNotVerified
	}

	if err := a.users.AddLoginIP(ctx, user.ID, ip); err != nil {
		return "", err
	}
	return a.tokens.CreateSessionToken(user.ID.Hex())
}
