package api

import "time"

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=1,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// RegisterResponse confirms a successful registration.
// It never carries the password or its hash.
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AuthResponse defines the successful response for the login endpoint.
type AuthResponse struct {
	// Token is the signed JWT used for API authorization
	Token string `json:"token"`
}

// TaskRequest defines the payload for task create and update endpoints.
// Any id or owner supplied in the body is ignored; the id comes from the
// URL path and the owner from the authenticated caller.
type TaskRequest struct {
	Name       string `json:"name"        validate:"max=500"`
	IsComplete bool   `json:"is_complete"`
}

// TaskResponse defines the representation of a task in responses.
type TaskResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	IsComplete bool      `json:"is_complete"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
