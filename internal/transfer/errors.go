package transfer

import (
	"errors"
	"fmt"

	"github.com/futapay/relay/internal/ledger"
	"github.com/futapay/relay/internal/msisdn"
)

// StatusInvalidRecipient is recorded as the payout state when the recipient
// could not be normalized.
const StatusInvalidRecipient = "INVALID_RECIPIENT_FORMAT"

var (
	ErrPaymentStarted = errors.New("transaction already has a payment")
	ErrPayoutStarted  = errors.New("transaction already has a payout")
)

// ValidationError is returned for request input that cannot be used.
type ValidationError struct {
	Field    string
	Expected string
	Reason   string
	err      error
}

func (e *ValidationError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("%s: %s: expected %s", e.Field, e.Reason, e.Expected)
	}

	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

func invalid(field, reason, expected string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Expected: expected}
}

// CheckRef reports a missing owner or transaction id against field.
func CheckRef(ref ledger.Ref, field string) error {
	if !ref.Valid() {
		return invalid(field, "ownerId and transactionId are required", "")
	}

	return nil
}

// fromNormalizer keeps the field and expected format of a normalizer error.
func fromNormalizer(err error) error {
	var nerr *msisdn.ValidationError
	if !errors.As(err, &nerr) {
		return err
	}

	return &ValidationError{Field: nerr.Field, Expected: nerr.Expected, Reason: nerr.Reason, err: err}
}
