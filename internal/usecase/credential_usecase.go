package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/odv/mercsync/internal/domain"
	"github.com/odv/mercsync/internal/infrastructure/crypto"
)

// CredentialUseCase manages the Mercury API key of an account. Plaintext
// never reaches the repository; the cipher boundary lives here, as an
// explicit named getter/setter pair rather than a transparent property.
type CredentialUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	credRepo    CredentialRepository
	auditRepo   AuditRepository
	outboxRepo  OutboxRepository
	cipher      *crypto.Cipher
	idGen       IDGenerator
}

// NewCredentialUseCase creates a new CredentialUseCase.
func NewCredentialUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	credRepo CredentialRepository,
	auditRepo AuditRepository,
	outboxRepo OutboxRepository,
	cipher *crypto.Cipher,
	idGen IDGenerator,
) *CredentialUseCase {
	return &CredentialUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		credRepo:    credRepo,
		auditRepo:   auditRepo,
		outboxRepo:  outboxRepo,
		cipher:      cipher,
		idGen:       idGen,
	}
}

// SetAPIKey stores or rotates the account's API key. A value that already
// decrypts under the process cipher is stored verbatim (re-import of a
// previously exported ciphertext); anything else is encrypted first.
func (uc *CredentialUseCase) SetAPIKey(ctx context.Context, accountID, value, actor string) error {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return err
	}

	stored := value
	if value != "" && !uc.cipher.IsCiphertext(value) {
		encrypted, err := uc.cipher.Encrypt(value)
		if err != nil {
			return err
		}
		stored = encrypted
	}

	now := time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	credential := &domain.Credential{
		AccountID: accountID,
		APIKey:    stored,
		UpdatedAt: now,
	}

	if err := uc.credRepo.Upsert(ctx, tx, credential); err != nil {
		return err
	}

	if uc.auditRepo != nil {
		// No key material in the audit trail, only the fact of rotation.
		log := &domain.AuditLog{
			Actor:        actor,
			Action:       domain.AuditActionCredentialSet,
			ResourceType: domain.AuditResourceCredential,
			ResourceID:   accountID,
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(ctx, tx, log); err != nil {
			return err
		}
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   accountID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeCredentialRotated,
			Payload: map[string]any{
				"account_id": accountID,
				"rotated_at": now.Format(time.RFC3339),
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetAPIKey returns the plaintext API key for the sync worker.
//
// Migration affordance: rows written before encryption at rest hold raw
// plaintext. For those rows decryption fails and the stored value is
// returned unchanged. This is the single place a decrypt failure is
// swallowed; the row converts to ciphertext on the next SetAPIKey.
func (uc *CredentialUseCase) GetAPIKey(ctx context.Context, accountID string) (string, error) {
	credential, err := uc.credRepo.GetByAccount(ctx, accountID)
	if err != nil {
		return "", err
	}

	plaintext, err := uc.cipher.Decrypt(credential.APIKey)
	if err != nil {
		if errors.Is(err, crypto.ErrDecrypt) {
			return credential.APIKey, nil
		}

		return "", err
	}

	return plaintext, nil
}
