package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrRefAlreadySet = errors.New("processor reference already set")
)

// Kind is the direction of a money movement from the owner's point of view.
type Kind string

const (
	KindSend    Kind = "send"
	KindReceive Kind = "receive"
)

func (k Kind) Valid() bool {
	return k == KindSend || k == KindReceive
}

// Processor identifies an external payment processor.
type Processor string

const (
	ProcessorMollie  Processor = "mollie"
	ProcessorPawaPay Processor = "pawapay"
)

// Ref locates a transaction inside its owner's namespace.
type Ref struct {
	OwnerID       string
	TransactionID string
}

func (r Ref) Valid() bool {
	return r.OwnerID != "" && r.TransactionID != ""
}

// Recipient is the payout destination as entered and as normalized.
type Recipient struct {
	PhoneNumber string `json:"phoneNumber,omitempty"`
	MSISDN      string `json:"msisdn,omitempty"`
	Provider    string `json:"provider,omitempty"`
	Country     string `json:"country,omitempty"`
}

func (r Recipient) IsZero() bool {
	return r == Recipient{}
}

// ProcessorRefs holds the ids processors assigned. Each is written once.
type ProcessorRefs struct {
	PaymentID string
	PayoutID  string
}

// ProcessorState is the audit trail of the last exchange with one processor.
type ProcessorState struct {
	Status             string          `json:"status,omitempty"`
	Failure            string          `json:"failure,omitempty"`
	LastHTTPStatus     int             `json:"lastHttpStatus,omitempty"`
	LastRequest        json.RawMessage `json:"lastRequest,omitempty"`
	LastResponse       json.RawMessage `json:"lastResponse,omitempty"`
	LastCallback       json.RawMessage `json:"lastCallback,omitempty"`
	CallbackReceivedAt *time.Time      `json:"callbackReceivedAt,omitempty"`
}

// Transaction is one money movement and the state of both of its legs.
type Transaction struct {
	ID            string
	OwnerID       string
	Kind          Kind
	Amount        decimal.Decimal
	Currency      string
	Recipient     Recipient
	PaymentStatus PaymentStatus
	PayoutStatus  PayoutStatus // empty until a payout is accepted
	Refs          ProcessorRefs
	RawState      map[Processor]*ProcessorState
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (t *Transaction) Ref() Ref {
	return Ref{OwnerID: t.OwnerID, TransactionID: t.ID}
}

// Clone returns a deep copy so callers never share RawState with a store.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.RawState = make(map[Processor]*ProcessorState, len(t.RawState))

	for p, st := range t.RawState {
		cp := *st
		if st.CallbackReceivedAt != nil {
			at := *st.CallbackReceivedAt
			cp.CallbackReceivedAt = &at
		}

		c.RawState[p] = &cp
	}

	return &c
}

// State returns the processor state for p, creating it on first use.
func (t *Transaction) State(p Processor) *ProcessorState {
	if t.RawState == nil {
		t.RawState = make(map[Processor]*ProcessorState)
	}

	st, ok := t.RawState[p]
	if !ok {
		st = &ProcessorState{}
		t.RawState[p] = st
	}

	return st
}

// touch advances UpdatedAt, strictly, even if the clock did not move.
func (t *Transaction) touch(now time.Time) {
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Microsecond)
	}

	t.UpdatedAt = now
}

// MarshalRawState encodes RawState for storage.
func MarshalRawState(state map[Processor]*ProcessorState) ([]byte, error) {
	if state == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(state)
}

// UnmarshalRawState decodes stored RawState; empty input yields an empty map.
func UnmarshalRawState(b []byte) (map[Processor]*ProcessorState, error) {
	state := make(map[Processor]*ProcessorState)
	if len(b) == 0 {
		return state, nil
	}

	if err := json.Unmarshal(b, &state); err != nil {
		return nil, err
	}

	return state, nil
}

// rawJSON keeps bodies that are JSON as-is and wraps anything else (form
// posts, HTML error pages) in a JSON string so it can still be audited.
func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}

	if json.Valid(b) {
		return json.RawMessage(bytes.Clone(b))
	}

	quoted, _ := json.Marshal(string(b))

	return quoted
}
