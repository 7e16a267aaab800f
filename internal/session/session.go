// Package session issues and verifies the dashboard's own session tokens.
// The admin flag carried in a token is a UI convenience only; every upstream
// call is re-authorized by the platform with the service's own credentials.
package session

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type Claims struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

func IssueToken(secret, userID, email string, isAdmin bool, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("session secret is not configured")
	}
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func VerifyToken(tokenString, secret string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token required")
	}

	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, errors.New("token expired")
	}
	return claims, nil
}

func ParseBearerToken(authHeader string) string {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CheckGatePassword verifies the extra shared passphrase shown before the
// login screen. An empty hash disables the gate.
func CheckGatePassword(hash, password string) error {
	if strings.TrimSpace(hash) == "" {
		return nil
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
