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

const classCollection = "class"

// ClassStore persists class documents.
type ClassStore struct {
	col *mongo.Collection
}

// NewClassStore returns a store over the class collection.
func NewClassStore(db *mongo.Database) *ClassStore {
	return &ClassStore{col: db.Collection(classCollection)}
}

// Create inserts a new class document, assigning its ID and timestamps.
func (s *ClassStore) Create(ctx context.Context, c *model.Class) error {
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert class: %w", err)
	}
	return nil
}

// FindByID loads a class by object ID.
func (s *ClassStore) FindByID(ctx context.Context, id bson.ObjectID) (*model.Class, error) {
	var c model.Class
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find class: %w", err)
	}
	return &c, nil
}

// AddMember appends a membership entry with set semantics, so a replayed
// join request cannot duplicate the member.
func (s *ClassStore) AddMember(ctx context.Context, classID bson.ObjectID, member model.ClassMember) error {
	update := bson.M{
		"$addToSet": bson.M{"members": member},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": classID}, update)
	if err != nil {
		return fmt.Errorf("add class member: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
