package ledger

import "fmt"

// Kind identifies which structural rule a rejected expense violated.
type Kind string

const (
	// MissingField means the description was absent or blank.
	MissingField Kind = "missing_field"
	// InvalidAmount means the amount was zero or negative.
	InvalidAmount Kind = "invalid_amount"
	// NoPayers means the payer set was empty.
	NoPayers Kind = "no_payers"
	// NoParticipants means the participant set was empty.
	NoParticipants Kind = "no_participants"
	// PaymentSumMismatch means the explicit payment amounts did not add up
	// to the expense amount.
	PaymentSumMismatch Kind = "payment_sum_mismatch"
)

// ValidationError reports why an expense was rejected. The whole add/edit
// operation fails on the first violated rule — nothing is written.
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(kind Kind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
