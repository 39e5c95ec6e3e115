package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Term identifies an academic term
type Term string

const (
	TermOne   Term = "T1"
	TermTwo   Term = "T2"
	TermThree Term = "T3"
)

// IsValid checks if the term is a valid Term
func (t Term) IsValid() bool {
	return t == TermOne || t == TermTwo || t == TermThree
}

// String returns the string representation of Term
func (t Term) String() string {
	return string(t)
}

// TuitionKey returns the fee key the term's tuition is charged under
func (t Term) TuitionKey() FeeKey {
	switch t {
	case TermOne:
		return KeyTerm1
	case TermTwo:
		return KeyTerm2
	case TermThree:
		return KeyTerm3
	}
	return ""
}

// ErrNoPaymentAmount is returned when a payment carries no positive item value
var ErrNoPaymentAmount = shared.NewDomainError("VALIDATION_ERROR", "no payment amount entered")

// PaymentItems is the itemized breakdown of a payment: fee key -> amount
// paid towards that item. The reserved key "previousArrears" records an
// amount paid towards the carried-forward balance. Stored as JSONB.
type PaymentItems map[FeeKey]decimal.Decimal

// Value implements driver.Valuer for JSONB storage
func (p PaymentItems) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval
func (p *PaymentItems) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentItems{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentItems: unsupported type")
	}
	if len(bytes) == 0 {
		*p = PaymentItems{}
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// Sum returns the total of all item amounts
func (p PaymentItems) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range p {
		total = total.Add(amount)
	}
	return total
}

// Get returns the amount paid towards a key; missing keys are zero
func (p PaymentItems) Get(key FeeKey) decimal.Decimal {
	if amount, ok := p[key]; ok {
		return amount
	}
	return decimal.Zero
}

// Clone returns an independent copy of the items map
func (p PaymentItems) Clone() PaymentItems {
	out := make(PaymentItems, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Payment is one itemized ledger entry. Payments are immutable once
// recorded; the only permitted mutation of the ledger is appending a new
// payment or removing an existing one entirely (void).
//
// Seq is the monotonic position in the active ledger, assigned on append.
// GradeAtPayment snapshots the student's grade at recording time so the
// historical record stays correct across promotions.
type Payment struct {
	shared.BaseEntity
	Seq            int64           `json:"seq"`
	StudentID      uuid.UUID       `json:"student_id"`
	Amount         decimal.Decimal `json:"amount"`
	Items          PaymentItems    `json:"items"`
	Term           Term            `json:"term"`
	Date           time.Time       `json:"date"`
	ReceiptNo      string          `json:"receipt_no"`
	GradeAtPayment string          `json:"grade_at_payment"`
}

// NewPayment creates a payment from raw item amounts. Entries that are
// absent or not positive contribute nothing and are dropped from the
// recorded breakdown, which keeps the amount-equals-item-sum invariant
// trivially true. At least one positive entry is required.
func NewPayment(studentID uuid.UUID, grade string, term Term, itemAmounts map[FeeKey]decimal.Decimal, receiptNo string) (*Payment, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Student ID cannot be empty")
	}
	if !term.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Invalid term %q", term))
	}
	if receiptNo == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Receipt number cannot be empty")
	}

	items := make(PaymentItems)
	for key, amount := range itemAmounts {
		if !amount.IsPositive() {
			continue
		}
		items[key] = amount
	}
	if len(items) == 0 {
		return nil, ErrNoPaymentAmount
	}

	return &Payment{
		BaseEntity:     shared.NewBaseEntity(),
		StudentID:      studentID,
		Amount:         items.Sum(),
		Items:          items,
		Term:           term,
		Date:           time.Now(),
		ReceiptNo:      receiptNo,
		GradeAtPayment: grade,
	}, nil
}
