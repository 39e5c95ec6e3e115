package persistence

import (
	"context"
	"errors"

	"github.com/edutrack/backend/internal/domain/ledger"
	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/edutrack/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements ledger.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Append inserts a payment at the end of the ledger, assigning its Seq.
// Callers run this inside the store transaction, which serializes appends.
func (r *GormPaymentRepository) Append(ctx context.Context, payment *ledger.Payment) error {
	db := r.db.WithContext(ctx)

	var maxSeq int64
	if err := db.Model(&models.PaymentModel{}).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error; err != nil {
		return err
	}
	payment.Seq = maxSeq + 1

	return db.Create(models.PaymentModelFromDomain(payment)).Error
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStudent returns one student's payments in ledger order
func (r *GormPaymentRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]ledger.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("seq").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(rows), nil
}

// FindAll returns the active ledger in ledger order
func (r *GormPaymentRepository) FindAll(ctx context.Context) ([]ledger.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(rows), nil
}

// Delete removes a payment entirely; returns ErrNotFound when the row does
// not exist. Remaining payments keep their Seq values.
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReceiptNoExists reports whether a receipt number is in use by an active
// payment
func (r *GormPaymentRepository) ReceiptNoExists(ctx context.Context, receiptNo string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("receipt_no = ?", receiptNo).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of active payments
func (r *GormPaymentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteAll clears the active ledger
func (r *GormPaymentRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.PaymentModel{}).Error
}

// ReplaceAll swaps the entire active ledger for the given set
func (r *GormPaymentRepository) ReplaceAll(ctx context.Context, payments []ledger.Payment) error {
	if err := r.DeleteAll(ctx); err != nil {
		return err
	}
	if len(payments) == 0 {
		return nil
	}
	rows := make([]models.PaymentModel, len(payments))
	for i := range payments {
		rows[i] = *models.PaymentModelFromDomain(&payments[i])
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func toDomainPayments(rows []models.PaymentModel) []ledger.Payment {
	payments := make([]ledger.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments
}

var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)
