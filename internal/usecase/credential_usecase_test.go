package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/odv/mercsync/internal/domain"
	"github.com/odv/mercsync/internal/infrastructure/crypto"
	"github.com/odv/mercsync/internal/usecase"
	"github.com/odv/mercsync/internal/usecase/mocks"
)

type credentialFixture struct {
	accountRepo *mocks.MockAccountRepository
	credRepo    *mocks.MockCredentialRepository
	auditRepo   *mocks.MockAuditRepository
	outboxRepo  *mocks.MockOutboxRepository
	cipher      *crypto.Cipher
	uc          *usecase.CredentialUseCase
}

func newCredentialFixture(t *testing.T) *credentialFixture {
	t.Helper()

	cipher, err := crypto.New("test-credential-secret")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	f := &credentialFixture{
		accountRepo: mocks.NewMockAccountRepository(),
		credRepo:    mocks.NewMockCredentialRepository(),
		auditRepo:   mocks.NewMockAuditRepository(),
		outboxRepo:  mocks.NewMockOutboxRepository(),
		cipher:      cipher,
	}
	f.uc = usecase.NewCredentialUseCase(
		mocks.NewMockTransactionManager(),
		f.accountRepo,
		f.credRepo,
		f.auditRepo,
		f.outboxRepo,
		cipher,
		mocks.NewMockIDGenerator(),
	)

	if err := f.accountRepo.Create(context.Background(), nil, &domain.Account{ID: "A", Name: "acct"}); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return f
}

func TestCredentialUseCase_SetAndGet(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()

	const apiKey = "secret-token:mercury:prod_abc123"

	if err := f.uc.SetAPIKey(ctx, "A", apiKey, "ops@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The stored value is ciphertext, never the plaintext key.
	stored, err := f.credRepo.GetByAccount(ctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.APIKey == apiKey {
		t.Fatal("API key persisted in plaintext")
	}
	if strings.Contains(stored.APIKey, "prod_abc123") {
		t.Fatal("stored value leaks key material")
	}

	got, err := f.uc.GetAPIKey(ctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != apiKey {
		t.Errorf("GetAPIKey = %q, want %q", got, apiKey)
	}
}

func TestCredentialUseCase_SetCiphertextVerbatim(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()

	ct, err := f.cipher.Encrypt("already-encrypted-key")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if err := f.uc.SetAPIKey(ctx, "A", ct, "ops@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := f.credRepo.GetByAccount(ctx, "A")
	if stored.APIKey != ct {
		t.Error("recognizable ciphertext should be stored verbatim, not re-encrypted")
	}

	got, err := f.uc.GetAPIKey(ctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "already-encrypted-key" {
		t.Errorf("GetAPIKey = %q, want decrypted plaintext", got)
	}
}

func TestCredentialUseCase_LegacyPlaintextReadable(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()

	// A row written before encryption was introduced.
	err := f.credRepo.Upsert(ctx, nil, &domain.Credential{AccountID: "A", APIKey: "legacy-plain-key"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := f.uc.GetAPIKey(ctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "legacy-plain-key" {
		t.Errorf("GetAPIKey = %q, want stored plaintext returned unchanged", got)
	}
}

func TestCredentialUseCase_EmptyValue(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()

	if err := f.uc.SetAPIKey(ctx, "A", "", "ops@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := f.credRepo.GetByAccount(ctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.APIKey != "" {
		t.Errorf("stored = %q, want empty passthrough", stored.APIKey)
	}

	got, err := f.uc.GetAPIKey(ctx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("GetAPIKey = %q, want empty", got)
	}
}

func TestCredentialUseCase_NoKeyMaterialInSideWrites(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()

	const apiKey = "secret-token-do-not-log"
	if err := f.uc.SetAPIKey(ctx, "A", apiKey, "ops@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, log := range f.auditRepo.Logs {
		for _, state := range []map[string]any{log.BeforeState, log.AfterState} {
			for k, v := range state {
				if s, ok := v.(string); ok && strings.Contains(s, apiKey) {
					t.Errorf("audit state %q contains key material", k)
				}
			}
		}
	}
	for _, ev := range f.outboxRepo.Events {
		for k, v := range ev.Payload {
			if s, ok := v.(string); ok && strings.Contains(s, apiKey) {
				t.Errorf("outbox payload %q contains key material", k)
			}
		}
	}
}

func TestCredentialUseCase_AccountNotFound(t *testing.T) {
	f := newCredentialFixture(t)

	err := f.uc.SetAPIKey(context.Background(), "missing", "key", "ops@example.com")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestCredentialUseCase_GetNotSet(t *testing.T) {
	f := newCredentialFixture(t)

	_, err := f.uc.GetAPIKey(context.Background(), "A")
	if !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Errorf("expected ErrCredentialNotFound, got %v", err)
	}
}
