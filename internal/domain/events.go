package domain

import "time"

// Event types
const (
	EventTypeAccountCreated    = "account.created"
	EventTypePolicyScheduled   = "policy.scheduled"
	EventTypeCredentialRotated = "credential.rotated"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
	AggregateTypePolicy  = "policy"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID        string `json:"account_id"`
	Name             string `json:"name"`
	MercuryAccountID string `json:"mercury_account_id"`
}

// PolicyScheduledEvent payload
type PolicyScheduledEvent struct {
	PolicyID      string `json:"policy_id"`
	AccountID     string `json:"account_id"`
	EffectiveFrom string `json:"effective_from"`
	ClosedPolicy  string `json:"closed_policy,omitempty"`
}

// CredentialRotatedEvent payload. The payload never carries key material;
// consumers re-read through the credential use case.
type CredentialRotatedEvent struct {
	AccountID string `json:"account_id"`
	RotatedAt string `json:"rotated_at"`
}
