package model

import (
	"fmt"
	"strings"
	"time"
)

// Role is a user's authorization role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("invalid role %q (want user or admin)", s)
	}
}

// Profile is the authenticated user's record.
//
// It is replaced wholesale on update; the client never patches fields locally.
type Profile struct {
	ID             string     `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	Email          string     `json:"email" yaml:"email"`
	Role           Role       `json:"role" yaml:"role"`
	IsActive       bool       `json:"isActive" yaml:"is_active"`
	ProfilePicture string     `json:"profilePicture,omitempty" yaml:"profile_picture,omitempty" table:"wide"`
	LastLogin      *time.Time `json:"lastLogin,omitempty" yaml:"last_login,omitempty" table:"wide"`
	CreatedAt      time.Time  `json:"createdAt" yaml:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" yaml:"updated_at" table:"wide"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthData is the payload of login and register responses.
type AuthData struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// PasswordChange is the change-password request body.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserInput is the admin create/update user body.
type UserInput struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// UserList is a page of users.
type UserList struct {
	Users      []Profile  `json:"users"`
	Pagination Pagination `json:"pagination"`
}

// UserBulkAction names an action applied to many users at once.
type UserBulkAction string

const (
	UserActivate   UserBulkAction = "activate"
	UserDeactivate UserBulkAction = "deactivate"
	UserDelete     UserBulkAction = "delete"
)

// ParseUserBulkAction validates a user bulk action.
func ParseUserBulkAction(s string) (UserBulkAction, error) {
	switch a := UserBulkAction(s); a {
	case UserActivate, UserDeactivate, UserDelete:
		return a, nil
	default:
		return "", fmt.Errorf("invalid user action %q (want activate, deactivate or delete)", s)
	}
}
