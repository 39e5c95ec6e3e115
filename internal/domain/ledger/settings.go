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

// Settings is the school configuration aggregate: identity, the ordered
// grade sequence, the fee catalog and the per-grade fee structures. Catalog
// mutations go through this aggregate so that adding or removing a fee item
// is all-or-nothing across every grade.
type Settings struct {
	shared.BaseAggregateRoot
	SchoolName    string        `json:"school_name"`
	Currency      string        `json:"currency"`
	AcademicYear  string        `json:"academic_year"`
	Grades        GradeList     `json:"grades"`
	FeeItems      FeeItems      `json:"fee_items"`
	FeeStructures FeeStructures `json:"fee_structures"`
}

// NewSettings creates settings with the given grade sequence. Every grade
// gets an empty fee structure; the catalog is seeded with the default items.
func NewSettings(schoolName, currency, academicYear string, grades []string) (*Settings, error) {
	if academicYear == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Academic year cannot be empty")
	}
	if len(grades) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Grade sequence cannot be empty")
	}
	seen := make(map[string]bool, len(grades))
	structures := make(FeeStructures, 0, len(grades))
	for _, g := range grades {
		if g == "" {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Grade name cannot be empty")
		}
		if seen[g] {
			return nil, shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Duplicate grade %q in grade sequence", g))
		}
		seen[g] = true
		structures = append(structures, NewFeeStructure(g))
	}
	return &Settings{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SchoolName:        schoolName,
		Currency:          currency,
		AcademicYear:      academicYear,
		Grades:            GradeList(grades),
		FeeItems:          DefaultFeeItems(),
		FeeStructures:     structures,
	}, nil
}

// StructureFor returns the fee structure for a grade, or nil when none is
// configured. Callers treat a missing structure as zero dues, not an error.
func (s *Settings) StructureFor(grade string) *FeeStructure {
	return s.FeeStructures.FindByGrade(grade)
}

// NextGrade resolves the grade that follows the given one in the ordered
// sequence. Returns ErrNoFurtherGrade when the grade is last or unknown.
func (s *Settings) NextGrade(current string) (string, error) {
	idx := s.Grades.IndexOf(current)
	if idx < 0 || idx == len(s.Grades)-1 {
		return "", shared.ErrNoFurtherGrade
	}
	return s.Grades[idx+1], nil
}

// AddFeeItem adds a new item to the catalog and propagates its default
// amount to every grade's structure. The addition is all-or-nothing: a
// duplicate key anywhere fails the whole operation and nothing changes.
func (s *Settings) AddFeeItem(key, label string, category FeeCategory, defaultAmount decimal.Decimal) (*FeeItem, error) {
	item, err := NewFeeItem(key, label, category, defaultAmount)
	if err != nil {
		return nil, err
	}
	if s.FeeItems.Contains(item.Key) || s.FeeStructures.HasKey(item.Key) {
		return nil, shared.NewDomainError("DUPLICATE_FEE_KEY",
			fmt.Sprintf("Fee key %q already exists", item.Key))
	}

	s.FeeItems = append(s.FeeItems, *item)
	for i := range s.FeeStructures {
		s.FeeStructures[i].SetAmount(item.Key, defaultAmount)
	}
	s.touch()
	s.AddDomainEvent(NewFeeItemAddedEvent(s, item.Key))
	return item, nil
}

// DeleteFeeItem removes an item from the catalog and from every grade's
// structure. Historical payments that reference the key keep their recorded
// breakdown; student fee selections referencing it are left dangling and
// simply contribute zero from then on.
func (s *Settings) DeleteFeeItem(key FeeKey) error {
	if !s.FeeItems.Contains(key) && !s.FeeStructures.HasKey(key) {
		return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Fee item %q not found", key))
	}

	kept := make(FeeItems, 0, len(s.FeeItems))
	for _, item := range s.FeeItems {
		if item.Key != key {
			kept = append(kept, item)
		}
	}
	s.FeeItems = kept
	for i := range s.FeeStructures {
		s.FeeStructures[i].RemoveItem(key)
	}
	s.touch()
	s.AddDomainEvent(NewFeeItemDeletedEvent(s, key))
	return nil
}

// UpdateFeeAmount sets the amount for a key in one grade's structure.
// Negative amounts are accepted to support discounts and credits.
func (s *Settings) UpdateFeeAmount(grade string, key FeeKey, amount decimal.Decimal) error {
	structure := s.StructureFor(grade)
	if structure == nil {
		return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("No fee structure for grade %q", grade))
	}
	structure.SetAmount(key, amount)
	s.touch()
	s.AddDomainEvent(NewFeeAmountUpdatedEvent(s, grade, key, amount))
	return nil
}

// AdvanceAcademicYear moves the settings to the next academic year label
func (s *Settings) AdvanceAcademicYear(nextYear string) error {
	if nextYear == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Next academic year cannot be empty")
	}
	if nextYear == s.AcademicYear {
		return shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Next academic year must differ from the current year %q", s.AcademicYear))
	}
	previous := s.AcademicYear
	s.AcademicYear = nextYear
	s.touch()
	s.AddDomainEvent(NewAcademicYearAdvancedEvent(s, previous, nextYear))
	return nil
}

func (s *Settings) touch() {
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// GradeList is the ordered grade sequence, stored as JSONB
type GradeList []string

// Value implements driver.Valuer for JSONB storage
func (g GradeList) Value() (driver.Value, error) {
	if g == nil {
		return "[]", nil
	}
	return json.Marshal(g)
}

// Scan implements sql.Scanner for JSONB retrieval
func (g *GradeList) Scan(value interface{}) error {
	if value == nil {
		*g = GradeList{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan GradeList: unsupported type")
	}
	if len(bytes) == 0 {
		*g = GradeList{}
		return nil
	}
	return json.Unmarshal(bytes, g)
}

// IndexOf returns the position of a grade in the sequence, or -1
func (g GradeList) IndexOf(grade string) int {
	for i, name := range g {
		if name == grade {
			return i
		}
	}
	return -1
}

// Contains reports whether the sequence holds the grade
func (g GradeList) Contains(grade string) bool {
	return g.IndexOf(grade) >= 0
}
