package domain

// ReceiptStatus is the verdict for one transaction row: whether a receipt is
// required by the governing rule, crossed with whether one is attached.
// The UI renders the four values as green, red, blue and blank.
type ReceiptStatus string

const (
	ReceiptRequiredPresent ReceiptStatus = "required_present"
	ReceiptRequiredMissing ReceiptStatus = "required_missing"
	ReceiptOptionalPresent ReceiptStatus = "optional_present"
	ReceiptOptionalMissing ReceiptStatus = "optional_missing"
)

// ReceiptStatusFor composes the decision-function result with attachment
// presence.
func ReceiptStatusFor(required, hasAttachments bool) ReceiptStatus {
	switch {
	case required && hasAttachments:
		return ReceiptRequiredPresent
	case required:
		return ReceiptRequiredMissing
	case hasAttachments:
		return ReceiptOptionalPresent
	default:
		return ReceiptOptionalMissing
	}
}

// Required reports whether the status demands a receipt.
func (s ReceiptStatus) Required() bool {
	return s == ReceiptRequiredPresent || s == ReceiptRequiredMissing
}
