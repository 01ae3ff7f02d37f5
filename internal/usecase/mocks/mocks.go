package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/odv/mercsync/internal/domain"
	"github.com/odv/mercsync/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateRuleFunc       func(ctx context.Context, tx usecase.Transaction, id string, rule domain.Rule, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *account
	m.accounts[account.ID] = &copied
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		copied := *acc
		return &copied, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateRule(ctx context.Context, tx usecase.Transaction, id string, rule domain.Rule, updatedAt time.Time) error {
	if m.UpdateRuleFunc != nil {
		return m.UpdateRuleFunc(ctx, tx, id, rule, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Rule = rule
		acc.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var accounts []*domain.Account
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(accounts) >= limit {
			break
		}
		copied := *m.accounts[id]
		accounts = append(accounts, &copied)
	}
	return accounts, nil
}

// MockPolicyRepository is a mock implementation of PolicyRepository backed by
// an in-memory record list, so lifecycle tests exercise real interval
// behavior.
type MockPolicyRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.PolicyRecord

	CreateFunc               func(ctx context.Context, tx usecase.Transaction, record *domain.PolicyRecord) error
	GetOpenTailFunc          func(ctx context.Context, accountID string) (*domain.PolicyRecord, error)
	GetOpenTailForUpdateFunc func(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.PolicyRecord, error)
	GetCoveringFunc          func(ctx context.Context, accountID string, at time.Time) (*domain.PolicyRecord, error)
	CloseTailFunc            func(ctx context.Context, tx usecase.Transaction, id string, endDate, updatedAt time.Time) error
	ListByAccountFunc        func(ctx context.Context, accountID string, limit, offset int) ([]*domain.PolicyRecord, error)
}

func NewMockPolicyRepository() *MockPolicyRepository {
	return &MockPolicyRepository{
		records: make(map[string]*domain.PolicyRecord),
	}
}

func (m *MockPolicyRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.PolicyRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.records[record.ID] = &copied
	return nil
}

func (m *MockPolicyRepository) GetOpenTail(ctx context.Context, accountID string) (*domain.PolicyRecord, error) {
	if m.GetOpenTailFunc != nil {
		return m.GetOpenTailFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.records {
		if rec.AccountID == accountID && rec.EndDate == nil {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, domain.ErrPolicyNotFound
}

func (m *MockPolicyRepository) GetOpenTailForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.PolicyRecord, error) {
	if m.GetOpenTailForUpdateFunc != nil {
		return m.GetOpenTailForUpdateFunc(ctx, tx, accountID)
	}
	return m.GetOpenTail(ctx, accountID)
}

func (m *MockPolicyRepository) GetCovering(ctx context.Context, accountID string, at time.Time) (*domain.PolicyRecord, error) {
	if m.GetCoveringFunc != nil {
		return m.GetCoveringFunc(ctx, accountID, at)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *domain.PolicyRecord
	for _, rec := range m.records {
		if rec.AccountID != accountID || !rec.Covers(at) {
			continue
		}
		if best == nil || rec.StartDate.After(best.StartDate) {
			best = rec
		}
	}
	if best == nil {
		return nil, domain.ErrPolicyNotFound
	}
	copied := *best
	return &copied, nil
}

func (m *MockPolicyRepository) CloseTail(ctx context.Context, tx usecase.Transaction, id string, endDate, updatedAt time.Time) error {
	if m.CloseTailFunc != nil {
		return m.CloseTailFunc(ctx, tx, id, endDate, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[id]; ok {
		end := endDate
		rec.EndDate = &end
		rec.UpdatedAt = updatedAt
	}
	return nil
}

func (m *MockPolicyRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.PolicyRecord, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*domain.PolicyRecord
	for _, rec := range m.records {
		if rec.AccountID == accountID {
			copied := *rec
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].StartDate.After(all[j].StartDate)
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// MockCredentialRepository is a mock implementation of CredentialRepository.
type MockCredentialRepository struct {
	mu          sync.RWMutex
	credentials map[string]*domain.Credential

	GetByAccountFunc func(ctx context.Context, accountID string) (*domain.Credential, error)
	UpsertFunc       func(ctx context.Context, tx usecase.Transaction, credential *domain.Credential) error
}

func NewMockCredentialRepository() *MockCredentialRepository {
	return &MockCredentialRepository{
		credentials: make(map[string]*domain.Credential),
	}
}

func (m *MockCredentialRepository) GetByAccount(ctx context.Context, accountID string) (*domain.Credential, error) {
	if m.GetByAccountFunc != nil {
		return m.GetByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if cred, ok := m.credentials[accountID]; ok {
		copied := *cred
		return &copied, nil
	}
	return nil, domain.ErrCredentialNotFound
}

func (m *MockCredentialRepository) Upsert(ctx context.Context, tx usecase.Transaction, credential *domain.Credential) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, credential)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *credential
	m.credentials[credential.AccountID] = &copied
	return nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	Logs []*domain.AuditLog

	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
	ListFunc     func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditLog(nil), m.Logs...), nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	Events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published && len(events) < limit {
			events = append(events, e)
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published || e.CreatedAt.After(before) {
			kept = append(kept, e)
		}
	}
	m.Events = kept
	return nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu           sync.Mutex
	Transactions []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// ErrCacheMiss is returned by MockCache for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// MockCache is an in-memory mock implementation of Cache.
type MockCache struct {
	mu     sync.RWMutex
	values map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
