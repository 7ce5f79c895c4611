package model

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are JWT claims for organization administrators
type AdminClaims struct {
	AdminID        string `json:"adminId"`
	OrganizationID int64  `json:"organizationId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token          string `json:"token"`
	AdminID        string `json:"adminId"`
	OrganizationID int64  `json:"organizationId"`
}
