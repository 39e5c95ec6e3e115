package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FeeKey identifies a chargeable fee item. Keys are stable and immutable
// once created; the format is lowercase letters, digits and underscores.
type FeeKey string

var feeKeyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Reserved fee keys
const (
	// KeyTerm1..KeyTerm3 are the tuition keys mapped to academic terms
	KeyTerm1 FeeKey = "t1"
	KeyTerm2 FeeKey = "t2"
	KeyTerm3 FeeKey = "t3"

	// KeyPreviousArrears is the pseudo-key used inside payment item maps to
	// record an amount paid towards the carried-forward balance. It never
	// appears in a fee structure.
	KeyPreviousArrears FeeKey = "previousArrears"
)

// ParseFeeKey validates a raw string as a fee key
func ParseFeeKey(raw string) (FeeKey, error) {
	if raw == "" {
		return "", shared.NewDomainError("VALIDATION_ERROR", "Fee key cannot be empty")
	}
	if !feeKeyPattern.MatchString(raw) {
		return "", shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Fee key %q must contain only lowercase letters, numbers or underscores", raw))
	}
	return FeeKey(raw), nil
}

// String returns the string representation of the key
func (k FeeKey) String() string {
	return string(k)
}

// IsTuition returns true for the reserved term tuition keys
func (k FeeKey) IsTuition() bool {
	return k == KeyTerm1 || k == KeyTerm2 || k == KeyTerm3
}

// DefaultSelectedFees is the fee selection applied to students without an
// explicit selection: the three term tuition keys.
func DefaultSelectedFees() FeeKeys {
	return FeeKeys{KeyTerm1, KeyTerm2, KeyTerm3}
}

// FeeCategory classifies a fee item
type FeeCategory string

const (
	CategoryTuition   FeeCategory = "tuition"
	CategoryMandatory FeeCategory = "mandatory"
	CategoryOptional  FeeCategory = "optional"
	CategoryMisc      FeeCategory = "misc"
)

// IsValid checks if the category is a valid FeeCategory
func (c FeeCategory) IsValid() bool {
	switch c {
	case CategoryTuition, CategoryMandatory, CategoryOptional, CategoryMisc:
		return true
	}
	return false
}

// String returns the string representation of FeeCategory
func (c FeeCategory) String() string {
	return string(c)
}

// FeeItem describes a chargeable category in the fee catalog. The key is
// immutable once created; label and default amount are display concerns.
type FeeItem struct {
	Key           FeeKey          `json:"key"`
	Label         string          `json:"label"`
	Category      FeeCategory     `json:"category"`
	DefaultAmount decimal.Decimal `json:"default_amount"`
}

// NewFeeItem creates a validated fee item
func NewFeeItem(key, label string, category FeeCategory, defaultAmount decimal.Decimal) (*FeeItem, error) {
	k, err := ParseFeeKey(key)
	if err != nil {
		return nil, err
	}
	if k == KeyPreviousArrears {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("%q is a reserved key and cannot be used as a fee item", key))
	}
	if label == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Fee item label cannot be empty")
	}
	if category == "" {
		category = CategoryMisc
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Invalid fee category %q", category))
	}
	if defaultAmount.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Default amount cannot be negative")
	}
	return &FeeItem{
		Key:           k,
		Label:         label,
		Category:      category,
		DefaultAmount: defaultAmount,
	}, nil
}

// FeeItems is the fee catalog, stored as JSONB alongside settings
type FeeItems []FeeItem

// Value implements driver.Valuer for JSONB storage
func (f FeeItems) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner for JSONB retrieval
func (f *FeeItems) Scan(value interface{}) error {
	if value == nil {
		*f = FeeItems{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan FeeItems: unsupported type")
	}
	if len(bytes) == 0 {
		*f = FeeItems{}
		return nil
	}
	return json.Unmarshal(bytes, f)
}

// Contains reports whether the catalog holds the given key
func (f FeeItems) Contains(key FeeKey) bool {
	for _, item := range f {
		if item.Key == key {
			return true
		}
	}
	return false
}

// Find returns the item with the given key, or nil
func (f FeeItems) Find(key FeeKey) *FeeItem {
	for i := range f {
		if f[i].Key == key {
			return &f[i]
		}
	}
	return nil
}

// ByCategory returns the items belonging to the given category
func (f FeeItems) ByCategory(category FeeCategory) FeeItems {
	var out FeeItems
	for _, item := range f {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

// DefaultFeeItems returns the seed catalog of a fresh installation
func DefaultFeeItems() FeeItems {
	items := []struct {
		key      FeeKey
		label    string
		category FeeCategory
	}{
		{"admission", "Admission Fee", CategoryTuition},
		{KeyTerm1, "Term 1 Tuition", CategoryTuition},
		{KeyTerm2, "Term 2 Tuition", CategoryTuition},
		{KeyTerm3, "Term 3 Tuition", CategoryTuition},
		{"diary", "School Diary", CategoryMandatory},
		{"development", "Development Fee", CategoryMandatory},
		{"book_fund", "Book Fund", CategoryMandatory},
		{"caution", "Caution Money", CategoryMandatory},
		{"student_card", "Student ID Card", CategoryMandatory},
		{"assessment_fee", "Examination Fee", CategoryMandatory},
		{"boarding", "Boarding Fee", CategoryOptional},
		{"breakfast", "Breakfast", CategoryOptional},
		{"lunch", "Lunch", CategoryOptional},
		{"trip", "Educational Trip", CategoryOptional},
		{"uniform", "Uniform", CategoryOptional},
		{"remedial", "Remedial Classes", CategoryOptional},
		{"project_fee", "Project Fee", CategoryOptional},
	}
	catalog := make(FeeItems, 0, len(items))
	for _, it := range items {
		catalog = append(catalog, FeeItem{
			Key:           it.key,
			Label:         it.label,
			Category:      it.category,
			DefaultAmount: decimal.Zero,
		})
	}
	return catalog
}
