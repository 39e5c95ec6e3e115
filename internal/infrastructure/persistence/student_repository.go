package persistence

import (
	"context"
	"errors"

	"github.com/edutrack/backend/internal/domain/ledger"
	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/edutrack/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStudentRepository implements ledger.StudentRepository using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// Save creates or updates a student
func (r *GormStudentRepository) Save(ctx context.Context, student *ledger.Student) error {
	model := models.StudentModelFromDomain(student)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error
}

// FindByID finds a student by ID
func (r *GormStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns the full roster ordered by grade then name
func (r *GormStudentRepository) FindAll(ctx context.Context) ([]ledger.Student, error) {
	var rows []models.StudentModel
	if err := r.db.WithContext(ctx).
		Order("grade, name").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainStudents(rows), nil
}

// FindByGrade returns the students of one grade ordered by name
func (r *GormStudentRepository) FindByGrade(ctx context.Context, grade string) ([]ledger.Student, error) {
	var rows []models.StudentModel
	if err := r.db.WithContext(ctx).
		Where("grade = ?", grade).
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainStudents(rows), nil
}

// Delete removes a student; returns ErrNotFound when the row does not exist
func (r *GormStudentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.StudentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReplaceAll swaps the entire roster for the given set
func (r *GormStudentRepository) ReplaceAll(ctx context.Context, students []ledger.Student) error {
	db := r.db.WithContext(ctx)
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.StudentModel{}).Error; err != nil {
		return err
	}
	if len(students) == 0 {
		return nil
	}
	rows := make([]models.StudentModel, len(students))
	for i := range students {
		rows[i] = *models.StudentModelFromDomain(&students[i])
	}
	return db.Create(&rows).Error
}

func toDomainStudents(rows []models.StudentModel) []ledger.Student {
	students := make([]ledger.Student, len(rows))
	for i := range rows {
		students[i] = *rows[i].ToDomain()
	}
	return students
}

var _ ledger.StudentRepository = (*GormStudentRepository)(nil)
