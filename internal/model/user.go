package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user account in the system
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // Do not expose password hash in JSON responses
	Address      *string   `json:"address,omitempty"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	Role         string    `json:"role"`
	Blocked      bool      `json:"blocked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sanitized returns a copy of the user with the password hash stripped,
// safe to attach to a request context or serialize in a response.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}

// RegisterRequest is the payload for POST /users
type RegisterRequest struct {
	Name         string  `json:"name" binding:"required"`
	Phone        string  `json:"phone" binding:"required"`
	Password     string  `json:"password" binding:"required,min=6"`
	ProfileImage *string `json:"profile_image"`
}

// LoginRequest is the payload for POST /users/login
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateAdminRequest is the payload for POST /users/admin
type CreateAdminRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// UpdateUserRequest is the payload for PUT /users/:id. All fields are
// optional; nil means "leave unchanged". Role and Blocked are only honored
// when the caller is an admin.
type UpdateUserRequest struct {
	Name         *string `json:"name"`
	Address      *string `json:"address"`
	ProfileImage *string `json:"profile_image"`
	Role         *string `json:"role"`
	Blocked      *bool   `json:"blocked"`
}
