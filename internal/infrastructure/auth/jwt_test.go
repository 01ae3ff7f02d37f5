package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/odv/mercsync/internal/domain"
	"github.com/odv/mercsync/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	token, err := manager.Generate("ops@example.com", "operator")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	if claims.Email != "ops@example.com" || claims.Role != "operator" {
		t.Fatalf("expected claims to match operator, got %+v", claims)
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	expiredClaims := auth.Claims{
		Email: "expired@example.com",
		Role:  "operator",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			NotBefore: jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		},
	}

	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}

	if _, err := manager.Verify(expiredToken); err != domain.ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}

	otherManager := auth.NewJWTManager("other-secret", time.Minute)
	if _, err := otherManager.Verify(expiredToken); err == nil || err == domain.ErrExpiredToken {
		t.Fatalf("expected invalid token error, got %v", err)
	}

	if _, err := manager.Verify("not-a-token"); err == nil {
		t.Fatalf("expected failure for malformed token")
	}
}

func TestOperatorLogin(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	manager := auth.NewJWTManager("secret", time.Minute)
	operator := auth.NewOperator("ops@example.com", hash, manager)

	token, err := operator.Login("ops@example.com", "hunter2")
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if _, err := manager.Verify(token); err != nil {
		t.Fatalf("expected issued token to verify, got %v", err)
	}

	if _, err := operator.Login("ops@example.com", "wrong"); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for bad password, got %v", err)
	}
	if _, err := operator.Login("other@example.com", "hunter2"); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}

	unconfigured := auth.NewOperator("", "", manager)
	if _, err := unconfigured.Login("ops@example.com", "hunter2"); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized when unconfigured, got %v", err)
	}
}
