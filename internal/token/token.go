// Package token issues and verifies the two stateless credentials used by the
// platform: session tokens proving "this request acts as user X" and
// single-purpose email-verification tokens. Both are ES256-signed JWTs.
package token

import (
	"crypto/ecdsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionTTL is the validity of a bearer session token.
	SessionTTL = 7 * 24 * time.Hour
	// VerificationTTL is the validity of an email-verification token.
	VerificationTTL = 10 * time.Minute
)

// Config holds the EC keypair in PEM form.
type Config struct {
	PrivateKey string `env:"JWT_PRIVATE_KEY,required"`
	PublicKey  string `env:"JWT_PUBLIC_KEY,required"`
}

var validMethods = jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()})

// Service signs and verifies tokens with a fixed ES256 keypair.
type Service struct {
	private *ecdsa.PrivateKey
	public  *ecdsa.PublicKey
}

// New parses the PEM keypair and returns a token service. A missing or
// unparsable key is a deployment error and must abort startup; it is never a
// per-request condition.
func New(cfg Config) (*Service, error) {
	if cfg.PrivateKey == "" {
		return nil, ErrMissingPrivateKey
	}
	if cfg.PublicKey == "" {
		return nil, ErrMissingPublicKey
	}

	private, err := jwt.ParseECPrivateKeyFromPEM([]byte(cfg.PrivateKey))
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}
	public, err := jwt.ParseECPublicKeyFromPEM([]byte(cfg.PublicKey))
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}

	return &Service{private: private, public: public}, nil
}

type sessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

type verificationClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// VerificationPayload is the data carried by an email-verification token.
type VerificationPayload struct {
	UserID string
	Email  string
}

// CreateSessionToken signs a 7-day session token for the user.
func (s *Service) CreateSessionToken(userID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(s.private)
}

// VerifySessionToken checks signature and expiry and returns the user ID.
// Any client-supplied defect (malformed, expired, wrong signature) yields
// ok=false rather than an error.
func (s *Service) VerifySessionToken(tokenString string) (string, bool) {
	var claims sessionClaims
	t, err := jwt.ParseWithClaims(tokenString, &claims, s.keyFunc, validMethods)
	if err != nil || !t.Valid || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}

// CreateVerificationToken signs a 10-minute token binding the user ID to the
// email address being verified.
func (s *Service) CreateVerificationToken(userID, email string) (string, error) {
	now := time.Now()
	claims := verificationClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(VerificationTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(s.private)
}

// VerifyVerificationToken checks signature and expiry and returns the carried
// payload. Redemption must additionally match the payload against the stored
// user record; that check belongs to the caller.
func (s *Service) VerifyVerificationToken(tokenString string) (VerificationPayload, bool) {
	var claims verificationClaims
	t, err := jwt.ParseWithClaims(tokenString, &claims, s.keyFunc, validMethods)
	if err != nil || !t.Valid || claims.UserID == "" || claims.Email == "" {
		return VerificationPayload{}, false
	}
	return VerificationPayload{UserID: claims.UserID, Email: claims.Email}, true
}

func (s *Service) keyFunc(*jwt.Token) (any, error) {
	return s.public, nil
}
