package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the token payload identifying the acting user.
type JWTClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}
