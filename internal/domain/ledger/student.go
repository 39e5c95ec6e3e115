package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StudentCategory classifies a student for fee purposes. The category does
// not change how dues are computed; adjusted amounts are configured in the
// fee structure itself.
type StudentCategory string

const (
	StudentCategoryNormal    StudentCategory = "normal"
	StudentCategoryStaff     StudentCategory = "staff"
	StudentCategorySponsored StudentCategory = "sponsored"
)

// IsValid checks if the category is a valid StudentCategory
func (c StudentCategory) IsValid() bool {
	switch c {
	case StudentCategoryNormal, StudentCategoryStaff, StudentCategorySponsored:
		return true
	}
	return false
}

// String returns the string representation of StudentCategory
func (c StudentCategory) String() string {
	return string(c)
}

// FeeKeys is a set of fee item keys, stored as JSONB
type FeeKeys []FeeKey

// Value implements driver.Valuer for JSONB storage
func (k FeeKeys) Value() (driver.Value, error) {
	if k == nil {
		return "[]", nil
	}
	return json.Marshal(k)
}

// Scan implements sql.Scanner for JSONB retrieval
func (k *FeeKeys) Scan(value interface{}) error {
	if value == nil {
		*k = FeeKeys{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan FeeKeys: unsupported type")
	}
	if len(bytes) == 0 {
		*k = FeeKeys{}
		return nil
	}
	return json.Unmarshal(bytes, k)
}

// Contains reports whether the set holds the key
func (k FeeKeys) Contains(key FeeKey) bool {
	for _, candidate := range k {
		if candidate == key {
			return true
		}
	}
	return false
}

// Student is the aggregate the ledger computes dues for. SelectedFees is the
// per-student fee selection; PreviousArrears is the balance carried forward
// from earlier years or grades.
type Student struct {
	shared.BaseAggregateRoot
	Name            string          `json:"name"`
	AdmissionNo     string          `json:"admission_no"`
	Grade           string          `json:"grade"`
	Category        StudentCategory `json:"category"`
	SelectedFees    FeeKeys         `json:"selected_fees"`
	PreviousArrears decimal.Decimal `json:"previous_arrears"`
}

// NewStudent creates a new student with a fee-selection snapshot. Arrears
// must be non-negative at registration; a brand-new student cannot start the
// ledger in credit.
func NewStudent(name, admissionNo, grade string, category StudentCategory, selectedFees FeeKeys, previousArrears decimal.Decimal) (*Student, error) {
	if previousArrears.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Previous arrears cannot be negative")
	}
	s, err := RestoreStudent(name, admissionNo, grade, category, selectedFees, previousArrears)
	if err != nil {
		return nil, err
	}
	s.AddDomainEvent(NewStudentRegisteredEvent(s))
	return s, nil
}

// RestoreStudent rebuilds a student from previously persisted state, such as
// a backup document. Unlike NewStudent it accepts negative arrears: promotion
// carries credit balances forward as negative arrears, so a restored roster
// can legally contain them. No registration event is raised.
func RestoreStudent(name, admissionNo, grade string, category StudentCategory, selectedFees FeeKeys, previousArrears decimal.Decimal) (*Student, error) {
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Student name cannot be empty")
	}
	if grade == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Student grade cannot be empty")
	}
	if category == "" {
		category = StudentCategoryNormal
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Invalid student category %q", category))
	}

	return &Student{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		AdmissionNo:       admissionNo,
		Grade:             grade,
		Category:          category,
		SelectedFees:      selectedFees,
		PreviousArrears:   previousArrears,
	}, nil
}

// EffectiveSelectedFees returns the student's fee selection, falling back to
// the default term tuition set when no explicit selection exists.
func (s *Student) EffectiveSelectedFees() FeeKeys {
	if len(s.SelectedFees) > 0 {
		return s.SelectedFees
	}
	return DefaultSelectedFees()
}

// PromoteTo moves the student to the next grade, replacing the carried
// arrears with the freshly computed balance. The prior arrears value is
// already folded into that balance, so this is a replacement, not an
// addition. The fee selection is deliberately left untouched; keys absent
// from the new grade's structure contribute zero until reassigned.
func (s *Student) PromoteTo(nextGrade string, balance decimal.Decimal) {
	fromGrade := s.Grade
	s.Grade = nextGrade
	s.PreviousArrears = balance
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	s.AddDomainEvent(NewStudentPromotedEvent(s, fromGrade, nextGrade, balance))
}

// UpdateDetails changes the student's descriptive fields. The grade is not
// touched here; grade changes go through promotion so the balance carry is
// never skipped.
func (s *Student) UpdateDetails(name, admissionNo string, category StudentCategory) error {
	if name == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Student name cannot be empty")
	}
	if category == "" {
		category = StudentCategoryNormal
	}
	if !category.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Invalid student category %q", category))
	}
	s.Name = name
	s.AdmissionNo = admissionNo
	s.Category = category
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetSelectedFees replaces the student's fee selection
func (s *Student) SetSelectedFees(keys FeeKeys) {
	s.SelectedFees = keys
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// ToggleFee adds the key to the selection when absent, removes it when
// present. The effective default set is materialized first so toggling off
// a term key behaves the same for students with and without an explicit
// selection.
func (s *Student) ToggleFee(key FeeKey) {
	current := s.EffectiveSelectedFees()
	updated := make(FeeKeys, 0, len(current)+1)
	found := false
	for _, candidate := range current {
		if candidate == key {
			found = true
			continue
		}
		updated = append(updated, candidate)
	}
	if !found {
		updated = append(updated, key)
	}
	s.SetSelectedFees(updated)
}
