package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the roles recognised by the RBAC middleware.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleViewer UserRole = "VIEWER"
)

// LoginRequest holds operator credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued access token.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
	jwt.RegisteredClaims
}
