package models

import (
	"time"

	"github.com/edutrack/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StudentModel is the persistence model for ledger.Student
type StudentModel struct {
	AggregateModel
	Name            string                 `gorm:"type:varchar(200);not null"`
	AdmissionNo     string                 `gorm:"type:varchar(50);index"`
	Grade           string                 `gorm:"type:varchar(50);not null;index"`
	Category        ledger.StudentCategory `gorm:"type:varchar(20);not null;default:'normal'"`
	SelectedFees    ledger.FeeKeys         `gorm:"type:jsonb;default:'[]'"`
	PreviousArrears decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StudentModel) TableName() string {
	return "students"
}

// ToDomain converts the persistence model to a domain Student
func (m *StudentModel) ToDomain() *ledger.Student {
	return &ledger.Student{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		AdmissionNo:       m.AdmissionNo,
		Grade:             m.Grade,
		Category:          m.Category,
		SelectedFees:      m.SelectedFees,
		PreviousArrears:   m.PreviousArrears,
	}
}

// StudentModelFromDomain creates a persistence model from a domain Student
func StudentModelFromDomain(s *ledger.Student) *StudentModel {
	m := &StudentModel{
		Name:            s.Name,
		AdmissionNo:     s.AdmissionNo,
		Grade:           s.Grade,
		Category:        s.Category,
		SelectedFees:    s.SelectedFees,
		PreviousArrears: s.PreviousArrears,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// PaymentModel is the persistence model for ledger.Payment. Seq carries the
// append order of the active ledger and is unique among live rows.
type PaymentModel struct {
	BaseModel
	Seq            int64               `gorm:"not null;uniqueIndex"`
	StudentID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Items          ledger.PaymentItems `gorm:"type:jsonb;default:'{}'"`
	Term           ledger.Term         `gorm:"type:varchar(5);not null"`
	Date           time.Time           `gorm:"not null"`
	ReceiptNo      string              `gorm:"type:varchar(30);not null;uniqueIndex"`
	GradeAtPayment string              `gorm:"type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *ledger.Payment {
	return &ledger.Payment{
		BaseEntity:     m.BaseModel.ToDomain(),
		Seq:            m.Seq,
		StudentID:      m.StudentID,
		Amount:         m.Amount,
		Items:          m.Items,
		Term:           m.Term,
		Date:           m.Date,
		ReceiptNo:      m.ReceiptNo,
		GradeAtPayment: m.GradeAtPayment,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{
		Seq:            p.Seq,
		StudentID:      p.StudentID,
		Amount:         p.Amount,
		Items:          p.Items,
		Term:           p.Term,
		Date:           p.Date,
		ReceiptNo:      p.ReceiptNo,
		GradeAtPayment: p.GradeAtPayment,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// SettingsModel is the persistence model for ledger.Settings. There is a
// single row per installation.
type SettingsModel struct {
	AggregateModel
	SchoolName    string               `gorm:"type:varchar(200);not null"`
	Currency      string               `gorm:"type:varchar(10);not null"`
	AcademicYear  string               `gorm:"type:varchar(20);not null"`
	Grades        ledger.GradeList     `gorm:"type:jsonb;default:'[]'"`
	FeeItems      ledger.FeeItems      `gorm:"type:jsonb;default:'[]'"`
	FeeStructures ledger.FeeStructures `gorm:"type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (SettingsModel) TableName() string {
	return "settings"
}

// ToDomain converts the persistence model to a domain Settings
func (m *SettingsModel) ToDomain() *ledger.Settings {
	return &ledger.Settings{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SchoolName:        m.SchoolName,
		Currency:          m.Currency,
		AcademicYear:      m.AcademicYear,
		Grades:            m.Grades,
		FeeItems:          m.FeeItems,
		FeeStructures:     m.FeeStructures,
	}
}

// SettingsModelFromDomain creates a persistence model from domain Settings
func SettingsModelFromDomain(s *ledger.Settings) *SettingsModel {
	m := &SettingsModel{
		SchoolName:    s.SchoolName,
		Currency:      s.Currency,
		AcademicYear:  s.AcademicYear,
		Grades:        s.Grades,
		FeeItems:      s.FeeItems,
		FeeStructures: s.FeeStructures,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// YearArchiveModel is the persistence model for ledger.YearArchive
type YearArchiveModel struct {
	BaseModel
	Year       string                  `gorm:"type:varchar(20);not null;uniqueIndex"`
	Students   ledger.StudentSnapshots `gorm:"type:jsonb;default:'[]'"`
	Payments   ledger.PaymentSnapshots `gorm:"type:jsonb;default:'[]'"`
	ArchivedAt time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (YearArchiveModel) TableName() string {
	return "year_archives"
}

// ToDomain converts the persistence model to a domain YearArchive
func (m *YearArchiveModel) ToDomain() *ledger.YearArchive {
	return &ledger.YearArchive{
		BaseEntity: m.BaseModel.ToDomain(),
		Year:       m.Year,
		Students:   m.Students,
		Payments:   m.Payments,
		ArchivedAt: m.ArchivedAt,
	}
}

// YearArchiveModelFromDomain creates a persistence model from a domain YearArchive
func YearArchiveModelFromDomain(a *ledger.YearArchive) *YearArchiveModel {
	m := &YearArchiveModel{
		Year:       a.Year,
		Students:   a.Students,
		Payments:   a.Payments,
		ArchivedAt: a.ArchivedAt,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// All returns every model registered for auto-migration
func All() []any {
	return []any{
		&StudentModel{},
		&PaymentModel{},
		&SettingsModel{},
		&YearArchiveModel{},
	}
}
