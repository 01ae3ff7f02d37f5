package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")

	// Policy errors
	ErrPolicyNotFound     = errors.New("no policy record found")
	ErrInvalidPivot       = errors.New("effective_from must be after the open tail's start date")
	ErrInvalidInterval    = errors.New("policy interval start must precede end")
	ErrInvalidRequirement = errors.New("unknown receipt requirement")
	ErrNegativeThreshold  = errors.New("threshold must be positive")

	// Credential errors
	ErrCredentialNotFound = errors.New("credential not found")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)
