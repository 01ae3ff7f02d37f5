package domain

import "time"

// Credential holds the Mercury API key for an account. APIKey is always the
// stored column value: url-safe base64 ciphertext for rows written by this
// system, raw plaintext only for rows predating encryption at rest. The
// credential use case owns the boundary between the two.
type Credential struct {
	AccountID string
	APIKey    string
	UpdatedAt time.Time
}
