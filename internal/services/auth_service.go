package services

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Placeholder admin credential, matching the evaluator identity convention.
// This gate only flips a client capability flag; it is not a security
// boundary and needs real secret management before any production use.
const (
	DefaultAdminID       = "京东科技-曹政"
	DefaultAdminPassword = "123456"
)

type TokenSigner func(subject string, ttl time.Duration) (string, error)

// AuthService checks the shared admin credential and issues the capability
// token that unlocks the wipe and evaluator-summary operations.
type AuthService struct {
	adminID   string
	passHash  []byte
	signToken TokenSigner
	tokenTTL  time.Duration
}

type AuthResult struct {
	Token string
}

// NewAuthService hashes the configured password up front so login compares
// against a bcrypt hash rather than the plaintext.
func NewAuthService(adminID, adminPassword string, signer TokenSigner) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		adminID:   adminID,
		passHash:  hash,
		signToken: signer,
		tokenTTL:  12 * time.Hour,
	}, nil
}

func (s *AuthService) Login(id, password string) (*AuthResult, error) {
	if id == "" || password == "" {
		return nil, NewInvalidError("id/password required")
	}
	if id != s.adminID {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(s.passHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(id, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token}, nil
}
