package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dulili/internal/models"
)

// SessionTTL is how long a signed session token remains valid.
const SessionTTL = 24 * time.Hour

// SessionClaims are the claims carried in a signed session token.
type SessionClaims struct {
	UserID     uint            `json:"uid"`
	BuildingID uint            `json:"bid"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given signing secret.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret must not be empty")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Issue signs a session token for the user.
func (s *TokenService) Issue(user *models.User, now time.Time) (string, error) {
	claims := SessionClaims{
		UserID:     user.ID,
		BuildingID: user.BuildingID,
		Email:      user.Email,
		Role:       user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses and validates a session token, returning its claims.
func (s *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}
