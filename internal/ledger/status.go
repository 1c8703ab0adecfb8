package ledger

import "strings"

// PaymentStatus is the state of the inbound (checkout) leg.
type PaymentStatus string

const (
	PaymentInitiated PaymentStatus = "initiated"
	PaymentOpen      PaymentStatus = "open"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentExpired   PaymentStatus = "expired"
	PaymentCanceled  PaymentStatus = "canceled"
)

func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentPaid, PaymentFailed, PaymentExpired, PaymentCanceled:
		return true
	}

	return false
}

func (s PaymentStatus) valid() bool {
	return s == PaymentInitiated || s == PaymentOpen || s.Terminal()
}

// ApplyPayment is the payment transition function. The first terminal
// outcome sticks; signals that are not payment states leave s unchanged.
func ApplyPayment(s, x PaymentStatus) PaymentStatus {
	if s == "" {
		s = PaymentInitiated
	}

	switch {
	case !x.valid():
		return s
	case s.Terminal():
		return s
	case x == PaymentInitiated:
		return s
	}

	return x
}

// MapPaymentStatus translates a Mollie payment status. ok is false for
// statuses that carry no information for the ledger.
func MapPaymentStatus(raw string) (PaymentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "open", "pending":
		return PaymentOpen, true
	case "authorized", "paid":
		return PaymentPaid, true
	case "failed":
		return PaymentFailed, true
	case "expired":
		return PaymentExpired, true
	case "canceled", "cancelled":
		return PaymentCanceled, true
	}

	return "", false
}

// PayoutStatus is the state of the outbound (mobile money) leg.
type PayoutStatus string

const (
	PayoutAccepted   PayoutStatus = "accepted"
	PayoutProcessing PayoutStatus = "processing"
	PayoutCompleted  PayoutStatus = "completed"
	PayoutFailed     PayoutStatus = "failed"
	PayoutUnknown    PayoutStatus = "unknown"
)

func (s PayoutStatus) Terminal() bool {
	return s == PayoutCompleted || s == PayoutFailed
}

func (s PayoutStatus) valid() bool {
	switch s {
	case PayoutAccepted, PayoutProcessing, PayoutCompleted, PayoutFailed, PayoutUnknown:
		return true
	}

	return false
}

// ApplyPayout is the payout transition function. completed and failed are
// final; every other state is replaced by the latest signal. accepted only
// ever starts the machine.
func ApplyPayout(s, x PayoutStatus) PayoutStatus {
	switch {
	case !x.valid():
		return s
	case s.Terminal():
		return s
	case x == PayoutAccepted && s != "":
		return s
	}

	return x
}

// MapPayoutStatus translates a pawaPay payout status. Anything unrecognized
// becomes PayoutUnknown.
func MapPayoutStatus(raw string) PayoutStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ACCEPTED", "ENQUEUED", "PENDING", "PROCESSING", "SUBMITTED", "IN_RECONCILIATION":
		return PayoutProcessing
	case "COMPLETED", "SUCCESSFUL", "SUCCESS":
		return PayoutCompleted
	case "FAILED", "REJECTED", "CANCELLED", "CANCELED", "EXPIRED":
		return PayoutFailed
	}

	return PayoutUnknown
}
