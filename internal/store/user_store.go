// Package store implements document persistence on MongoDB.
//
// Set-valued user fields are only ever grown through atomic single-document
// updates: $addToSet for plain values (loginIps, members), a filtered $push
// keyed on the (accountType, email) pair for connects. Concurrent duplicate
// OAuth callbacks therefore cannot produce duplicate entries; there is no
// fetch-mutate-save window anywhere in this package.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/lipoic/lipoic-backend/internal/model"
)

const userCollection = "user"

// UserStore persists user documents.
type UserStore struct {
	col *mongo.Collection
}

// NewUserStore returns a store over the user collection.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection(userCollection)}
}

// FindByID loads a user by object ID.
func (s *UserStore) FindByID(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail loads a user by exact email match.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var u model.User
	if err := s.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// Create inserts a new user document, assigning its ID and timestamps.
func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Delete removes a user document.
func (s *UserStore) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddConnect records a login IP and, when the user holds no connected account
// for the same (accountType, email) pair yet, appends the connect. The pair
// guard lives in the update filter rather than in $addToSet, because
// $addToSet compares the whole subdocument and would append a second entry
// for the same pair whenever the provider-side display name changed between
// callbacks.
func (s *UserStore) AddConnect(ctx context.Context, email string, connect model.ConnectedAccount, ip string) error {
	update := bson.M{
		"$addToSet": bson.M{"loginIps": ip},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return fmt.Errorf("add connect: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	filter := bson.M{
		"email": email,
		"connects": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"accountType": connect.AccountType,
			"email":       connect.Email,
		}}},
	}
	// matching zero documents here just means the pair is already linked
	if _, err := s.col.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"connects": connect}}); err != nil {
		return fmt.Errorf("add connect: %w", err)
	}
	return nil
}

// AddLoginIP appends the IP to the user's login history with set semantics.
func (s *UserStore) AddLoginIP(ctx context.Context, id bson.ObjectID, ip string) error {
	update := bson.M{
		"$addToSet": bson.M{"loginIps": ip},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("add login ip: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVerifiedEmail marks the user's email as verified. Already-verified users
// are a no-op, so redemption stays idempotent.
func (s *UserStore) SetVerifiedEmail(ctx context.Context, id bson.ObjectID) error {
	update := bson.M{"$set": bson.M{"verifiedEmail": true, "updatedAt": time.Now().UTC()}}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("set verified email: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLastVerifyEmailTime records when the last verification email went out.
func (s *UserStore) SetLastVerifyEmailTime(ctx context.Context, id bson.ObjectID, t time.Time) error {
	update := bson.M{"$set": bson.M{"lastSentVerifyEmailTime": t.UTC(), "updatedAt": time.Now().UTC()}}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("set last verify email time: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ProfileUpdate carries the optional fields of a profile edit. Nil fields
// are left untouched.
type ProfileUpdate struct {
	Username *string
	Modes    []model.UserMode
	Locale   *model.Locale
}

// UpdateProfile applies a partial profile edit and records the caller's IP,
// returning the updated document.
func (s *UserStore) UpdateProfile(ctx context.Context, id bson.ObjectID, upd ProfileUpdate, ip string) (*model.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.Modes != nil {
		set["modes"] = upd.Modes
	}
	if upd.Locale != nil {
		set["locale"] = *upd.Locale
	}

	update := bson.M{
		"$set":      set,
		"$addToSet": bson.M{"loginIps": ip},
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// SetAvatar stores the avatar bytes on the user document.
func (s *UserStore) SetAvatar(ctx context.Context, id bson.ObjectID, data []byte) error {
	update := bson.M{"$set": bson.M{"avatar": data, "updatedAt": time.Now().UTC()}}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("set avatar: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearAvatar removes the avatar from the user document.
func (s *UserStore) ClearAvatar(ctx context.Context, id bson.ObjectID) error {
	update := bson.M{
		"$unset": bson.M{"avatar": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("clear avatar: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
