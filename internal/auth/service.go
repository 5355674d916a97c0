// Package auth gates the single shared workspace: one bcrypt passphrase
// hash is exchanged for a short-lived JWT. There are no user accounts.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// WorkspaceSubject is the token subject; every valid token names it.
const WorkspaceSubject = "workspace"

type Service struct {
	jwtSecret  []byte
	accessHash []byte
}

// NewService builds the gate. An empty accessHash disables authentication
// entirely (local development); the middleware then passes every request
// through.
func NewService(jwtSecret, accessHash string) *Service {
	if accessHash == "" {
		slog.Warn("ACCESS_HASH not set, workspace authentication disabled")
	}
	return &Service{
		jwtSecret:  []byte(jwtSecret),
		accessHash: []byte(accessHash),
	}
}

// Open reports whether the gate is disabled.
func (s *Service) Open() bool { return len(s.accessHash) == 0 }

// Login exchanges the workspace passphrase for a token.
func (s *Service) Login(passphrase string) (string, error) {
	if s.Open() {
		return s.issueToken()
	}
	if err := bcrypt.CompareHashAndPassword(s.accessHash, []byte(passphrase)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueToken()
}

func (s *Service) ValidateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return errors.New("invalid token")
	}
	if sub, _ := claims["sub"].(string); sub != WorkspaceSubject {
		return errors.New("invalid token subject")
	}
	return nil
}

func (s *Service) issueToken() (string, error) {
	claims := jwt.MapClaims{
		"sub": WorkspaceSubject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
