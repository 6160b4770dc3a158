// Package service implements the application flows behind the HTTP API:
// OAuth sign-in, email/password signup with verification, login and class
// lifecycle. Handlers translate the sentinel errors returned here into wire
// status codes.
package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/lipoic/lipoic-backend/internal/model"
	"github.com/lipoic/lipoic-backend/internal/oauth"
	"github.com/lipoic/lipoic-backend/internal/store"
)

// UserStorage is the persistence surface the services and handlers need for
// user documents. *store.UserStore implements it.
type UserStorage interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id bson.ObjectID) error
	AddConnect(ctx context.Context, email string, connect model.ConnectedAccount, ip string) error
	AddLoginIP(ctx context.Context, id bson.ObjectID, ip string) error
	SetVerifiedEmail(ctx context.Context, id bson.ObjectID) error
	SetLastVerifyEmailTime(ctx context.Context, id bson.ObjectID, t time.Time) error
	UpdateProfile(ctx context.Context, id bson.ObjectID, upd store.ProfileUpdate, ip string) (*model.User, error)
	SetAvatar(ctx context.Context, id bson.ObjectID, data []byte) error
	ClearAvatar(ctx context.Context, id bson.ObjectID) error
}

// ClassStorage is the persistence surface for class documents.
// *store.ClassStore implements it.
type ClassStorage interface {
	Create(ctx context.Context, c *model.Class) error
	FindByID(ctx context.Context, id bson.ObjectID) (*model.Class, error)
	AddMember(ctx context.Context, classID bson.ObjectID, member model.ClassMember) error
}

// OAuthFlow is the provider-facing slice of *oauth.Client used by the auth
// service, split out so tests can run the flow without a live provider.
type OAuthFlow interface {
	Provider() oauth.Provider
	Exchange(ctx context.Context, code string) (oauth.AccessInfo, error)
	FetchProfile(ctx context.Context, access oauth.AccessInfo) (oauth.AccountInfo, error)
}
