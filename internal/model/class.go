package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ClassVisibility controls who can find and join a class.
type ClassVisibility string

const (
	// VisibilityPublic classes can be joined or searched by anyone.
	VisibilityPublic ClassVisibility = "Public"
	// VisibilityPrivate classes can only be joined by users on the owner's allow list.
	VisibilityPrivate ClassVisibility = "Private"
	// VisibilityInviteOnly classes can be joined by anyone holding the class ID.
	VisibilityInviteOnly ClassVisibility = "InviteOnly"
)

// ParseClassVisibility validates a raw visibility string against the closed set.
func ParseClassVisibility(s string) (ClassVisibility, bool) {
	switch ClassVisibility(s) {
	case VisibilityPublic, VisibilityPrivate, VisibilityInviteOnly:
		return ClassVisibility(s), true
	}
	return "", false
}

// ClassMemberRole is the role of a member relative to one class. It is
// unrelated to the modes a user sets on their own profile.
type ClassMemberRole string

const (
	ClassRoleTeacher ClassMemberRole = "Teacher"
	ClassRoleStudent ClassMemberRole = "Student"
)

// ClassMember is one membership entry embedded in a class document.
type ClassMember struct {
	UserID bson.ObjectID   `bson:"userId" json:"userId"`
	Role   ClassMemberRole `bson:"role" json:"role"`
}

// Class is a course space owned by a teacher user.
type Class struct {
	ID          bson.ObjectID   `bson:"_id,omitempty"`
	Name        string          `bson:"name"`        // limited to 100 characters
	Description string          `bson:"description"` // limited to 500 characters
	Visibility  ClassVisibility `bson:"visibility"`
	Members     []ClassMember   `bson:"members"`
	Owner       bson.ObjectID   `bson:"owner"`
	// AllowJoinMembers lists users permitted to join a private class.
	AllowJoinMembers []bson.ObjectID `bson:"allowJoinMembers,omitempty"`
	CreatedAt        time.Time       `bson:"createdAt"`
	UpdatedAt        time.Time       `bson:"updatedAt"`
}

// IsMember reports whether the user already belongs to the class.
func (c *Class) IsMember(userID bson.ObjectID) bool {
	for _, m := range c.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// AllowsJoin reports whether the user may join the class. Private classes
// require the user to be on the owner's allow list; every other visibility
// admits anyone holding the class ID.
func (c *Class) AllowsJoin(userID bson.ObjectID) bool {
	if c.Visibility != VisibilityPrivate {
		return true
	}
	for _, id := range c.AllowJoinMembers {
		if id == userID {
			return true
		}
	}
	return false
}

// ClassInfo is the wire representation of a class.
type ClassInfo struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Visibility  ClassVisibility `json:"visibility"`
	Members     []ClassMember   `json:"members"`
	Owner       string          `json:"owner"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Info returns the wire representation of the class.
func (c *Class) Info() ClassInfo {
	return ClassInfo{
		ID:          c.ID.Hex(),
		Name:        c.Name,
		Description: c.Description,
		Visibility:  c.Visibility,
		Members:     c.Members,
		Owner:       c.Owner.Hex(),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
