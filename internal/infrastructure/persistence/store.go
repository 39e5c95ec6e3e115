package persistence

import (
	"context"

	"github.com/edutrack/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormStore implements ledger.Store on a gorm database handle
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Repositories returns repositories bound to the store's base handle
func (s *GormStore) Repositories() ledger.Repositories {
	return newRepositories(s.db)
}

// WithinTx runs fn against repositories bound to a single transaction. Any
// error rolls the whole unit back.
func (s *GormStore) WithinTx(ctx context.Context, fn func(repos ledger.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx))
	})
}

func newRepositories(db *gorm.DB) ledger.Repositories {
	return ledger.Repositories{
		Students: NewGormStudentRepository(db),
		Payments: NewGormPaymentRepository(db),
		Settings: NewGormSettingsRepository(db),
		Archives: NewGormArchiveRepository(db),
	}
}

var _ ledger.Store = (*GormStore)(nil)
