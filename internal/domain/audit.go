package domain

import "time"

// Audit actions
const (
	AuditActionAccountCreated   = "account.created"
	AuditActionPolicyScheduled  = "policy.scheduled"
	AuditActionCredentialSet    = "credential.set"
)

// Audit resource types
const (
	AuditResourceAccount    = "account"
	AuditResourcePolicy     = "policy"
	AuditResourceCredential = "credential"
)

// AuditLog records one mutation for the audit UI.
type AuditLog struct {
	ID           string
	Actor        string
	Action       string
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  map[string]any
	AfterState   map[string]any
	CreatedAt    time.Time
}

// AuditFilter narrows audit listings.
type AuditFilter struct {
	Actor        string
	Action       string
	ResourceType string
	ResourceID   string
	Limit        int
	Offset       int
}
