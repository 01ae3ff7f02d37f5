package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odv/mercsync/internal/domain"
	"github.com/odv/mercsync/internal/usecase"
)

// RuleDTO carries the four-tuple receipt rule over the wire.
type RuleDTO struct {
	RequiredDeposits  string           `json:"required_deposits"`
	ThresholdDeposits *decimal.Decimal `json:"threshold_deposits,omitempty"`
	RequiredCharges   string           `json:"required_charges"`
	ThresholdCharges  *decimal.Decimal `json:"threshold_charges,omitempty"`
}

// ToDomain converts to a domain rule.
func (r RuleDTO) ToDomain() domain.Rule {
	return domain.Rule{
		RequiredDeposits:  domain.Requirement(r.RequiredDeposits),
		ThresholdDeposits: r.ThresholdDeposits,
		RequiredCharges:   domain.Requirement(r.RequiredCharges),
		ThresholdCharges:  r.ThresholdCharges,
	}
}

// RuleFromDomain converts a domain rule to its wire form.
func RuleFromDomain(rule domain.Rule) RuleDTO {
	return RuleDTO{
		RequiredDeposits:  string(rule.RequiredDeposits),
		ThresholdDeposits: rule.ThresholdDeposits,
		RequiredCharges:   string(rule.RequiredCharges),
		ThresholdCharges:  rule.ThresholdCharges,
	}
}

// CreateAccountRequest represents a request to register an account.
type CreateAccountRequest struct {
	Name             string   `json:"name"`
	MercuryAccountID string   `json:"mercury_account_id,omitempty"`
	Rule             *RuleDTO `json:"rule,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(actor string) usecase.CreateAccountInput {
	input := usecase.CreateAccountInput{
		Name:             r.Name,
		MercuryAccountID: r.MercuryAccountID,
		Actor:            actor,
	}
	if r.Rule != nil {
		input.Rule = r.Rule.ToDomain()
	}
	return input
}

// ApplyPolicyRequest represents a request to schedule a rule change.
type ApplyPolicyRequest struct {
	Rule          RuleDTO   `json:"rule"`
	EffectiveFrom time.Time `json:"effective_from"`
}

// ToUseCaseInput converts to use case input.
func (r *ApplyPolicyRequest) ToUseCaseInput(accountID, actor string) usecase.ApplyEditInput {
	return usecase.ApplyEditInput{
		AccountID:     accountID,
		Rule:          r.Rule.ToDomain(),
		EffectiveFrom: r.EffectiveFrom,
		Actor:         actor,
	}
}

// EvaluateReceiptRequest represents a transaction row to evaluate.
type EvaluateReceiptRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	PostedAt       *time.Time      `json:"posted_at,omitempty"`
	HasAttachments bool            `json:"has_attachments"`
}

// ToUseCaseInput converts to use case input.
func (r *EvaluateReceiptRequest) ToUseCaseInput(accountID string) usecase.EvaluateInput {
	return usecase.EvaluateInput{
		AccountID:      accountID,
		Amount:         r.Amount,
		PostedAt:       r.PostedAt,
		HasAttachments: r.HasAttachments,
	}
}

// SetCredentialRequest represents a request to store an API key.
type SetCredentialRequest struct {
	APIKey string `json:"api_key"`
}

// LoginRequest represents an operator login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
