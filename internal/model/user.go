package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserMode is a role tag a user assigns to themselves.
type UserMode string

const (
	ModeStudent UserMode = "Student"
	ModeTeacher UserMode = "Teacher"
	ModeParent  UserMode = "Parent"
)

// ParseUserMode validates a raw mode string against the closed set.
func ParseUserMode(s string) (UserMode, bool) {
	switch UserMode(s) {
	case ModeStudent, ModeTeacher, ModeParent:
		return UserMode(s), true
	}
	return "", false
}

// ConnectedAccount links a local user to one third-party OAuth identity.
// At most one entry per (accountType, email) pair may exist on a user.
type ConnectedAccount struct {
	AccountType string `bson:"accountType" json:"accountType"`
	Name        string `bson:"name" json:"name"`
	Email       string `bson:"email" json:"email"`
}

// User is the persistent account record.
type User struct {
	ID                      bson.ObjectID      `bson:"_id,omitempty"`
	Username                string             `bson:"username"`
	Email                   string             `bson:"email"`
	VerifiedEmail           bool               `bson:"verifiedEmail"`
	PasswordHash            string             `bson:"passwordHash,omitempty"`
	LastSentVerifyEmailTime *time.Time         `bson:"lastSentVerifyEmailTime,omitempty"`
	Connects                []ConnectedAccount `bson:"connects"`
	Modes                   []UserMode         `bson:"modes"`
	LoginIPs                []string           `bson:"loginIps"`
	Locale                  Locale             `bson:"locale"`
	Avatar                  []byte             `bson:"avatar,omitempty"`
	CreatedAt               time.Time          `bson:"createdAt"`
	UpdatedAt               time.Time          `bson:"updatedAt"`
}

// verifyEmailResendWindow is how long a fresh verification email blocks
// another one for the same account.
const verifyEmailResendWindow = 10 * time.Minute

// CanSendVerifyEmail reports whether a verification email may be sent now.
// Used to prevent mass spam emails.
func (u *User) CanSendVerifyEmail(now time.Time) bool {
	if u.LastSentVerifyEmailTime == nil {
		return true
	}
	return now.Sub(*u.LastSentVerifyEmailTime) > verifyEmailResendWindow
}

// HasConnect reports whether the user already links the given provider identity.
func (u *User) HasConnect(accountType, email string) bool {
	for _, c := range u.Connects {
		if c.AccountType == accountType && c.Email == email {
			return true
		}
	}
	return false
}

// PublicUser is the profile subset visible to any caller.
type PublicUser struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	VerifiedEmail bool       `json:"verifiedEmail"`
	Modes         []UserMode `json:"modes"`
	Locale        Locale     `json:"locale"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// AuthUser is the full self-profile returned to the authenticated owner.
type AuthUser struct {
	PublicUser
	Email    string             `json:"email"`
	Connects []ConnectedAccount `json:"connects"`
}

// PublicInfo returns the profile subset safe to expose to other users.
func (u *User) PublicInfo() PublicUser {
	return PublicUser{
		ID:            u.ID.Hex(),
		Username:      u.Username,
		VerifiedEmail: u.VerifiedEmail,
		Modes:         u.Modes,
		Locale:        u.Locale,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// AuthInfo returns the full profile for the account owner, including email
// and connected accounts.
func (u *User) AuthInfo() AuthUser {
	return AuthUser{
		PublicUser: u.PublicInfo(),
		Email:      u.Email,
		Connects:   u.Connects,
	}
}
