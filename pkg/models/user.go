package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role,omitempty" json:"role"`
	// IsAdmin is the legacy shape of the role field. Records written by older
	// deployments carry only this flag; EffectiveRole normalizes it.
	IsAdmin   *bool     `bson:"is_admin,omitempty" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// EffectiveRole returns the canonical role, falling back to the legacy
// is_admin flag for records that predate the role field.
func (u *User) EffectiveRole() Role {
	if u.Role.Valid() {
		return u.Role
	}
	if u.IsAdmin != nil && *u.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}
