package model

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are JWT claims for the admin surface (results, stats).
type AdminClaims struct {
	AdminID string `json:"adminId"`
	jwt.RegisteredClaims
}

// ParticipantClaims are JWT claims scoping a quiz participant. The
// UserID claim is the requester identity checked against the session
// owner on every answer.
type ParticipantClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for admin login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful admin login.
type LoginResponse struct {
	Token   string `json:"token"`
	AdminID string `json:"adminId"`
}

// JoinRequest is the request body for a participant join.
type JoinRequest struct {
	Username string `json:"username"`
}

// JoinResponse hands the participant their identity and token.
type JoinResponse struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}
