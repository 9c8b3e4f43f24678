package domain

import (
	"context"
	"time"
)

// Role classifies what a user is allowed to do.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role carries teaching privileges.
// Teacher and staff are equivalent for authorization purposes
// everywhere in this system.
func (r Role) IsStaff() bool {
	return r == RoleTeacher || r == RoleStaff || r == RoleAdmin
}

// Identity is the already-resolved caller identity handed to services.
// Services never read ambient session state; the HTTP layer resolves
// the session cookie and passes an Identity explicitly.
type Identity struct {
	UserID   string
	Username string
	Role     Role
}

// User represents a domain user object
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash; empty for OAuth-only accounts
	GoogleID     string
	Email        string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// NewUser creates a new User instance with the student role.
func NewUser(username, passwordHash string) *User {
	now := time.Now()
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         RoleStudent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates the user
func (u *User) Validate() error {
	if u.Username == "" {
		return NewInvalidInputError("username is required")
	}
	if !u.Role.IsValid() {
		return NewInvalidInputError("role is invalid")
	}
	if u.PasswordHash == "" && u.GoogleID == "" {
		return NewInvalidInputError("either a password or a google account is required")
	}
	return nil
}

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]User, error)
}
