package auth

import "github.com/andalib/andalib-backend/internal/admins"

// LoginRequest captures the admin credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token and the signed-in admin.
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt int64            `json:"expiresAt"`
	Admin     *admins.AdminDTO `json:"admin"`
}
