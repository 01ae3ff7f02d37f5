package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/odv/mercsync/internal/domain"
)

// Operator authenticates the single configured operator account against a
// bcrypt password hash and issues tokens for it. Accounts live in Mercury,
// not here; the service only needs one operator identity for its own API.
type Operator struct {
	email        string
	passwordHash string
	jwtManager   *JWTManager
}

// NewOperator creates an operator authenticator.
func NewOperator(email, passwordHash string, jwtManager *JWTManager) *Operator {
	return &Operator{
		email:        email,
		passwordHash: passwordHash,
		jwtManager:   jwtManager,
	}
}

// Login verifies the credentials and returns a signed token.
func (o *Operator) Login(email, password string) (string, error) {
	if o.email == "" || o.passwordHash == "" {
		return "", domain.ErrUnauthorized
	}
	if email != o.email {
		return "", domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(o.passwordHash), []byte(password)); err != nil {
		return "", domain.ErrUnauthorized
	}

	return o.jwtManager.Generate(email, "operator")
}

// HashPassword produces a bcrypt hash for configuration bootstrapping.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
