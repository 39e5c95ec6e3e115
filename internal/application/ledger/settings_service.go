package ledger

import (
	"context"
	"time"

	"github.com/edutrack/backend/internal/domain/ledger"
	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SettingsService handles school configuration and fee catalog operations
type SettingsService struct {
	store     ledger.Store
	publisher shared.EventPublisher
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(store ledger.Store, publisher shared.EventPublisher) *SettingsService {
	return &SettingsService{store: store, publisher: publisher}
}

// SettingsResponse represents the school configuration in API responses
type SettingsResponse struct {
	SchoolName    string               `json:"school_name"`
	Currency      string               `json:"currency"`
	AcademicYear  string               `json:"academic_year"`
	Grades        []string             `json:"grades"`
	FeeItems      ledger.FeeItems      `json:"fee_items"`
	FeeStructures ledger.FeeStructures `json:"fee_structures"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Version       int                  `json:"version"`
}

func toSettingsResponse(s *ledger.Settings) *SettingsResponse {
	return &SettingsResponse{
		SchoolName:    s.SchoolName,
		Currency:      s.Currency,
		AcademicYear:  s.AcademicYear,
		Grades:        s.Grades,
		FeeItems:      s.FeeItems,
		FeeStructures: s.FeeStructures,
		UpdatedAt:     s.UpdatedAt,
		Version:       s.GetVersion(),
	}
}

// GetSettings returns the current school configuration
func (s *SettingsService) GetSettings(ctx context.Context) (*SettingsResponse, error) {
	settings, err := s.store.Repositories().Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(settings), nil
}

// UpdateSchoolInfoRequest carries the editable identity fields
type UpdateSchoolInfoRequest struct {
	SchoolName string
	Currency   string
}

// UpdateSchoolInfo changes the school's display identity
func (s *SettingsService) UpdateSchoolInfo(ctx context.Context, req UpdateSchoolInfoRequest) (*SettingsResponse, error) {
	return s.mutate(ctx, func(settings *ledger.Settings) error {
		if req.SchoolName != "" {
			settings.SchoolName = req.SchoolName
		}
		if req.Currency != "" {
			settings.Currency = req.Currency
		}
		return nil
	})
}

// AddFeeItemRequest describes a new catalog entry
type AddFeeItemRequest struct {
	Key           string
	Label         string
	Category      ledger.FeeCategory
	DefaultAmount decimal.Decimal
}

// AddFeeItem adds a fee item to the catalog and to every grade's structure
// in one transaction. A duplicate key anywhere fails the whole operation.
func (s *SettingsService) AddFeeItem(ctx context.Context, req AddFeeItemRequest) (*SettingsResponse, error) {
	return s.mutate(ctx, func(settings *ledger.Settings) error {
		_, err := settings.AddFeeItem(req.Key, req.Label, req.Category, req.DefaultAmount)
		return err
	})
}

// DeleteFeeItem removes a fee item from the catalog and every structure.
// Recorded payments keep their itemized breakdown.
func (s *SettingsService) DeleteFeeItem(ctx context.Context, key ledger.FeeKey) (*SettingsResponse, error) {
	return s.mutate(ctx, func(settings *ledger.Settings) error {
		return settings.DeleteFeeItem(key)
	})
}

// UpdateFeeAmount sets one grade's amount for a fee key
func (s *SettingsService) UpdateFeeAmount(ctx context.Context, grade string, key ledger.FeeKey, amount decimal.Decimal) (*SettingsResponse, error) {
	return s.mutate(ctx, func(settings *ledger.Settings) error {
		return settings.UpdateFeeAmount(grade, key, amount)
	})
}

// mutate loads the settings aggregate, applies fn and saves, all in one
// transaction. Aggregate events are published after commit.
func (s *SettingsService) mutate(ctx context.Context, fn func(settings *ledger.Settings) error) (*SettingsResponse, error) {
	var mutated *ledger.Settings

	err := s.store.WithinTx(ctx, func(repos ledger.Repositories) error {
		settings, err := repos.Settings.Get(ctx)
		if err != nil {
			return err
		}
		if err := fn(settings); err != nil {
			return err
		}
		if err := repos.Settings.Save(ctx, settings); err != nil {
			return err
		}
		mutated = settings
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if events := mutated.GetDomainEvents(); len(events) > 0 {
			_ = s.publisher.Publish(ctx, events...)
			mutated.ClearDomainEvents()
		}
	}
	return toSettingsResponse(mutated), nil
}
