package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/edutrack/backend/internal/domain/shared"
)

// StudentSnapshots is the archived roster state for one year, stored as JSONB
type StudentSnapshots []Student

// Value implements driver.Valuer for JSONB storage
func (s StudentSnapshots) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB retrieval
func (s *StudentSnapshots) Scan(value interface{}) error {
	if value == nil {
		*s = StudentSnapshots{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan StudentSnapshots: unsupported type")
	}
	if len(bytes) == 0 {
		*s = StudentSnapshots{}
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// PaymentSnapshots is the archived ledger for one year, stored as JSONB
type PaymentSnapshots []Payment

// Value implements driver.Valuer for JSONB storage
func (p PaymentSnapshots) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval
func (p *PaymentSnapshots) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentSnapshots{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentSnapshots: unsupported type")
	}
	if len(bytes) == 0 {
		*p = PaymentSnapshots{}
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// YearArchive is the immutable end-of-year snapshot: the full roster state
// and the full payment ledger as they stood when the year was closed, keyed
// by the outgoing academic year label. Archives are written once and never
// modified afterwards.
type YearArchive struct {
	shared.BaseEntity
	Year       string           `json:"year"`
	Students   StudentSnapshots `json:"students"`
	Payments   PaymentSnapshots `json:"payments"`
	ArchivedAt time.Time        `json:"archived_at"`
}

// NewYearArchive snapshots the given roster and ledger under the outgoing
// year label. Slices are deep-copied so later roster mutations cannot leak
// into the archive.
func NewYearArchive(year string, students []Student, payments []Payment) (*YearArchive, error) {
	if year == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Archive year cannot be empty")
	}

	studentCopy := make(StudentSnapshots, len(students))
	copy(studentCopy, students)
	paymentCopy := make(PaymentSnapshots, len(payments))
	for i := range payments {
		paymentCopy[i] = payments[i]
		paymentCopy[i].Items = payments[i].Items.Clone()
	}

	return &YearArchive{
		BaseEntity: shared.NewBaseEntity(),
		Year:       year,
		Students:   studentCopy,
		Payments:   paymentCopy,
		ArchivedAt: time.Now(),
	}, nil
}
