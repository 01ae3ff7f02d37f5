package domain

import "time"

// Account is a synced Mercury bank account. The Rule fields mirror the rule
// of the account's open-tail policy record so transaction listings can read
// the current configuration without a join; they are not authoritative when
// evaluating a historical transaction.
type Account struct {
	ID               string
	Name             string
	MercuryAccountID string
	Rule             Rule
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
