package dto

import "time"

// RegisterRequest is the body for username/password registration.
// @Description Request body for registering a new student account
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// LoginRequest is the body for username/password login.
// @Description Request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionData is the payload stored server-side for one session and
// resolved from the session cookie on every request.
type SessionData struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse is returned after a successful login or registration.
type LoginResponse struct {
	User UserResponse `json:"user"`
}

// UserResponse represents a user in API responses. The password
// credential is never exposed.
// @Description User information
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserListResponse wraps a list of users for the admin view.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}

// UpdateRoleRequest is the body for changing a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// GoogleUserInfo is the profile payload returned by Google's userinfo
// endpoint during the OAuth callback.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}
