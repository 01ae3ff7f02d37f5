package dto

import (
	"time"

	"github.com/odv/mercsync/internal/domain"
	"github.com/odv/mercsync/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	MercuryAccountID string    `json:"mercury_account_id,omitempty"`
	Rule             RuleDTO   `json:"rule"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:               a.ID,
		Name:             a.Name,
		MercuryAccountID: a.MercuryAccountID,
		Rule:             RuleFromDomain(a.Rule),
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// PolicyRecordResponse represents a policy record in API responses.
type PolicyRecordResponse struct {
	ID        string     `json:"id"`
	AccountID string     `json:"account_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Rule      RuleDTO    `json:"rule"`
	CreatedAt time.Time  `json:"created_at"`
}

// PolicyRecordFromDomain converts a domain policy record to response.
func PolicyRecordFromDomain(p *domain.PolicyRecord) *PolicyRecordResponse {
	return &PolicyRecordResponse{
		ID:        p.ID,
		AccountID: p.AccountID,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Rule:      RuleFromDomain(p.Rule),
		CreatedAt: p.CreatedAt,
	}
}

// PolicyRecordsFromDomain converts domain records to responses.
func PolicyRecordsFromDomain(records []*domain.PolicyRecord) []*PolicyRecordResponse {
	result := make([]*PolicyRecordResponse, len(records))
	for i, p := range records {
		result[i] = PolicyRecordFromDomain(p)
	}
	return result
}

// PolicyHistoryResponse wraps a policy history listing.
type PolicyHistoryResponse struct {
	Records []*PolicyRecordResponse `json:"records"`
	Total   int64                   `json:"total"`
}

// ReceiptStatusResponse is the verdict for one evaluated transaction.
type ReceiptStatusResponse struct {
	Status          domain.ReceiptStatus `json:"status"`
	ReceiptRequired bool                 `json:"receipt_required"`
}

// ReceiptStatusFromDomain converts a status to response.
func ReceiptStatusFromDomain(status domain.ReceiptStatus) *ReceiptStatusResponse {
	return &ReceiptStatusResponse{
		Status:          status,
		ReceiptRequired: status.Required(),
	}
}

// CredentialResponse carries a decrypted API key back to the operator.
type CredentialResponse struct {
	AccountID string `json:"account_id"`
	APIKey    string `json:"api_key"`
}

// IntegrityMismatchResponse represents one failed account.
type IntegrityMismatchResponse struct {
	AccountID string `json:"account_id"`
	PolicyID  string `json:"policy_id,omitempty"`
	Kind      string `json:"kind"`
}

// IntegrityReportResponse represents a sweep result.
type IntegrityReportResponse struct {
	CheckedAccounts int                          `json:"checked_accounts"`
	Consistent      bool                         `json:"consistent"`
	Mismatches      []*IntegrityMismatchResponse `json:"mismatches"`
	CheckedAt       time.Time                    `json:"checked_at"`
}

// IntegrityReportFromUseCase converts a sweep report to response.
func IntegrityReportFromUseCase(report *usecase.IntegrityReport) *IntegrityReportResponse {
	mismatches := make([]*IntegrityMismatchResponse, len(report.Mismatches))
	for i, m := range report.Mismatches {
		mismatches[i] = &IntegrityMismatchResponse{
			AccountID: m.AccountID,
			PolicyID:  m.PolicyID,
			Kind:      m.Kind,
		}
	}
	return &IntegrityReportResponse{
		CheckedAccounts: report.CheckedAccounts,
		Consistent:      report.Consistent(),
		Mismatches:      mismatches,
		CheckedAt:       report.CheckedAt,
	}
}

// AuditLogResponse represents an audit entry in API responses.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	Actor        string         `json:"actor"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	RequestID    string         `json:"request_id,omitempty"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts domain audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			Actor:        l.Actor,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

// LoginResponse represents a login response.
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
