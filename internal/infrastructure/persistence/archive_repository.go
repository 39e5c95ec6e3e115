package persistence

import (
	"context"
	"errors"

	"github.com/edutrack/backend/internal/domain/ledger"
	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/edutrack/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormArchiveRepository implements ledger.ArchiveRepository using GORM.
// Archives are write-once; there is no update or delete path.
type GormArchiveRepository struct {
	db *gorm.DB
}

// NewGormArchiveRepository creates a new GormArchiveRepository
func NewGormArchiveRepository(db *gorm.DB) *GormArchiveRepository {
	return &GormArchiveRepository{db: db}
}

// Save inserts a new archive snapshot
func (r *GormArchiveRepository) Save(ctx context.Context, archive *ledger.YearArchive) error {
	return r.db.WithContext(ctx).
		Create(models.YearArchiveModelFromDomain(archive)).Error
}

// FindByYear returns the archive for one academic year
func (r *GormArchiveRepository) FindByYear(ctx context.Context, year string) (*ledger.YearArchive, error) {
	var model models.YearArchiveModel
	if err := r.db.WithContext(ctx).First(&model, "year = ?", year).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every archive, most recent year first
func (r *GormArchiveRepository) FindAll(ctx context.Context) ([]ledger.YearArchive, error) {
	var rows []models.YearArchiveModel
	if err := r.db.WithContext(ctx).Order("year DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	archives := make([]ledger.YearArchive, len(rows))
	for i := range rows {
		archives[i] = *rows[i].ToDomain()
	}
	return archives, nil
}

var _ ledger.ArchiveRepository = (*GormArchiveRepository)(nil)
