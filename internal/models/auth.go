package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignInRequest identifies an educator. Profile fields are used only when
// the account does not exist yet.
type SignInRequest struct {
	Email      string   `json:"email" validate:"required,email"`
	AccessCode string   `json:"accessCode" validate:"required,min=4,max=128"`
	Name       string   `json:"name" validate:"omitempty,max=120"`
	Role       UserRole `json:"role" validate:"omitempty,oneof=TEACHER ADMIN DISTRICT_ADMIN"`
	Grade      string   `json:"grade" validate:"omitempty,max=60"`
	Subjects   []string `json:"subjects" validate:"omitempty,dive,min=1,max=80"`
	CampusName string   `json:"campusName" validate:"omitempty,max=120"`
}

// SignInResponse returns the issued token and the restored profile.
type SignInResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresIn   int64     `json:"expiresIn"`
	User        User      `json:"user"`
	Created     bool      `json:"created"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	jwt.RegisteredClaims
}
