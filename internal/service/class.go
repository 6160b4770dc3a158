package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/lipoic/lipoic-backend/internal/model"
	"github.com/lipoic/lipoic-backend/internal/store"
)

const (
	maxClassNameLen        = 100
	maxClassDescriptionLen = 500
)

// Class manages course spaces and their memberships.
type Class struct {
	classes ClassStorage
}

// NewClass returns the class service.
func NewClass(classes ClassStorage) *Class {
	return &Class{classes: classes}
}

// CreateClass creates a class owned by the caller, who becomes its first
// member with the teacher role. Length limits count Unicode code points, not
// bytes. Only verified accounts may create classes.
func (s *Class) CreateClass(ctx context.Context, owner *model.User, name, description string, visibility model.ClassVisibility) (*model.Class, error) {
	if !owner.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}
	if utf8.RuneCountInString(name) > maxClassNameLen {
		return nil, ErrClassNameTooLong
	}
	if utf8.RuneCountInString(description) > maxClassDescriptionLen {
		return nil, ErrClassDescriptionTooLong
	}

	class := &model.Class{
		Name:        name,
		Description: description,
		Visibility:  visibility,
		Owner:       owner.ID,
		Members: []model.ClassMember{
			{UserID: owner.ID, Role: model.ClassRoleTeacher},
		},
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

// JoinClass adds the caller to a class as a student. A private class the
// caller is not allow-listed for is indistinguishable from a missing one.
func (s *Class) JoinClass(ctx context.Context, user *model.User, classID string) error {
	if !user.VerifiedEmail {
		return ErrEmailNotVerified
	}
	class, err := s.findByHex(ctx, classID)
	if err != nil {
		return err
	}
	if class.IsMember(user.ID) {
		return ErrAlreadyMember
	}
	if !class.AllowsJoin(user.ID) {
		return ErrClassNotFound
	}
	return s.classes.AddMember(ctx, class.ID, model.ClassMember{
		UserID: user.ID,
		Role:   model.ClassRoleStudent,
	})
}

// GetClass loads a class visible to the caller. Non-public classes are only
// returned to their members; anyone else sees not-found.
func (s *Class) GetClass(ctx context.Context, user *model.User, classID string) (*model.Class, error) {
	class, err := s.findByHex(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.Visibility != model.VisibilityPublic && !class.IsMember(user.ID) {
		return nil, ErrClassNotFound
	}
	return class, nil
}

func (s *Class) findByHex(ctx context.Context, classID string) (*model.Class, error) {
	id, err := bson.ObjectIDFromHex(classID)
	if err != nil {
		return nil, ErrClassNotFound
	}
	class, err := s.classes.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}
	return class, nil
}
