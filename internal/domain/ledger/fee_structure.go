package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// FeeAmounts maps fee keys to amounts for one grade. It is a value object
// within the settings aggregate, stored as JSONB.
type FeeAmounts map[FeeKey]decimal.Decimal

// Value implements driver.Valuer for JSONB storage
func (a FeeAmounts) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB retrieval
func (a *FeeAmounts) Scan(value interface{}) error {
	if value == nil {
		*a = FeeAmounts{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan FeeAmounts: unsupported type")
	}
	if len(bytes) == 0 {
		*a = FeeAmounts{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// Get returns the amount for a key; missing keys contribute zero
func (a FeeAmounts) Get(key FeeKey) decimal.Decimal {
	if amount, ok := a[key]; ok {
		return amount
	}
	return decimal.Zero
}

// Clone returns an independent copy of the amounts map
func (a FeeAmounts) Clone() FeeAmounts {
	out := make(FeeAmounts, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// FeeStructure is the per-grade price list: fee key -> amount
type FeeStructure struct {
	Grade   string     `json:"grade"`
	Amounts FeeAmounts `json:"amounts"`
}

// NewFeeStructure creates an empty fee structure for a grade
func NewFeeStructure(grade string) FeeStructure {
	return FeeStructure{Grade: grade, Amounts: FeeAmounts{}}
}

// Amount returns the amount charged for a key; missing keys are zero
func (s *FeeStructure) Amount(key FeeKey) decimal.Decimal {
	return s.Amounts.Get(key)
}

// SetAmount sets the amount for a key. Negative amounts are allowed so that
// administrators can record discounts or credits.
func (s *FeeStructure) SetAmount(key FeeKey, amount decimal.Decimal) {
	if s.Amounts == nil {
		s.Amounts = FeeAmounts{}
	}
	s.Amounts[key] = amount
}

// RemoveItem deletes a key from the structure
func (s *FeeStructure) RemoveItem(key FeeKey) {
	delete(s.Amounts, key)
}

// HasKey reports whether the structure carries the key
func (s *FeeStructure) HasKey(key FeeKey) bool {
	_, ok := s.Amounts[key]
	return ok
}

// FeeStructures is the full price list across grades, stored as JSONB
type FeeStructures []FeeStructure

// Value implements driver.Valuer for JSONB storage
func (s FeeStructures) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB retrieval
func (s *FeeStructures) Scan(value interface{}) error {
	if value == nil {
		*s = FeeStructures{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan FeeStructures: unsupported type")
	}
	if len(bytes) == 0 {
		*s = FeeStructures{}
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// FindByGrade returns the structure for a grade, or nil when the grade has
// no structure configured
func (s FeeStructures) FindByGrade(grade string) *FeeStructure {
	for i := range s {
		if s[i].Grade == grade {
			return &s[i]
		}
	}
	return nil
}

// HasKey reports whether any grade's structure carries the key
func (s FeeStructures) HasKey(key FeeKey) bool {
	for i := range s {
		if s[i].HasKey(key) {
			return true
		}
	}
	return false
}
