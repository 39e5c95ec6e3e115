package ledger

import (
	"context"
	"time"

	"github.com/edutrack/backend/internal/domain/ledger"
	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// backupVersion is bumped whenever the document layout changes
const backupVersion = 1

// BackupService exports and restores the full dataset as a JSON document.
// Field names follow the wire shape of the exported edutrack_backup files,
// so documents produced by earlier exports restore cleanly.
type BackupService struct {
	store ledger.Store
}

// NewBackupService creates a new BackupService
func NewBackupService(store ledger.Store) *BackupService {
	return &BackupService{store: store}
}

// StudentBackup is one roster entry in the backup document
type StudentBackup struct {
	ID              uuid.UUID                  `json:"id"`
	Name            string                     `json:"name"`
	AdmissionNo     string                     `json:"admissionNo"`
	Grade           string                     `json:"grade"`
	Category        string                     `json:"category"`
	SelectedFees    []ledger.FeeKey            `json:"selectedFees"`
	PreviousArrears decimal.Decimal            `json:"previousArrears"`
}

// PaymentBackup is one ledger entry in the backup document
type PaymentBackup struct {
	ID             uuid.UUID                         `json:"id"`
	Seq            int64                             `json:"seq"`
	StudentID      uuid.UUID                         `json:"studentId"`
	Amount         decimal.Decimal                   `json:"amount"`
	Items          map[ledger.FeeKey]decimal.Decimal `json:"items"`
	Term           string                            `json:"term"`
	Date           time.Time                         `json:"date"`
	ReceiptNo      string                            `json:"receiptNo"`
	GradeAtPayment string                            `json:"gradeAtPayment"`
}

// SettingsBackup is the configuration section of the backup document
type SettingsBackup struct {
	SchoolName    string                                `json:"schoolName"`
	Currency      string                                `json:"currency"`
	AcademicYear  string                                `json:"academicYear"`
	Grades        []string                              `json:"grades"`
	FeeItems      ledger.FeeItems                       `json:"feeItems"`
	FeeStructures map[string]map[string]decimal.Decimal `json:"feeStructures"`
}

// BackupDocument is the complete exported dataset
type BackupDocument struct {
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exportedAt"`
	Students   []StudentBackup `json:"students"`
	Payments   []PaymentBackup `json:"payments"`
	Settings   SettingsBackup  `json:"settings"`
}

// BackupSections selects which parts of a document to restore
type BackupSections struct {
	Students bool `json:"students"`
	Finance  bool `json:"finance"`
	Settings bool `json:"settings"`
}

// Any reports whether at least one section is selected
func (s BackupSections) Any() bool {
	return s.Students || s.Finance || s.Settings
}

// ExportBackup produces the full backup document
func (s *BackupService) ExportBackup(ctx context.Context) (*BackupDocument, error) {
	repos := s.store.Repositories()

	students, err := repos.Students.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := repos.Payments.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := repos.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	doc := &BackupDocument{
		Version:    backupVersion,
		ExportedAt: time.Now(),
		Students:   make([]StudentBackup, len(students)),
		Payments:   make([]PaymentBackup, len(payments)),
		Settings:   toSettingsBackup(settings),
	}
	for i := range students {
		doc.Students[i] = toStudentBackup(&students[i])
	}
	for i := range payments {
		doc.Payments[i] = toPaymentBackup(&payments[i])
	}
	return doc, nil
}

// ImportBackup restores the selected sections of a backup document. The
// restore is atomic: a malformed record anywhere rolls back every section.
func (s *BackupService) ImportBackup(ctx context.Context, doc *BackupDocument, sections BackupSections) error {
	if doc == nil {
		return shared.NewDomainError("VALIDATION_ERROR", "Backup document cannot be empty")
	}
	if !sections.Any() {
		return shared.NewDomainError("VALIDATION_ERROR", "At least one backup section must be selected")
	}

	return s.store.WithinTx(ctx, func(repos ledger.Repositories) error {
		if sections.Students {
			students, err := fromStudentBackups(doc.Students)
			if err != nil {
				return err
			}
			if err := repos.Students.ReplaceAll(ctx, students); err != nil {
				return err
			}
		}
		if sections.Finance {
			payments, err := fromPaymentBackups(doc.Payments)
			if err != nil {
				return err
			}
			if err := repos.Payments.ReplaceAll(ctx, payments); err != nil {
				return err
			}
		}
		if sections.Settings {
			settings, err := repos.Settings.Get(ctx)
			if err != nil {
				return err
			}
			if err := applySettingsBackup(settings, doc.Settings); err != nil {
				return err
			}
			if err := repos.Settings.Save(ctx, settings); err != nil {
				return err
			}
		}
		return nil
	})
}

func toStudentBackup(s *ledger.Student) StudentBackup {
	return StudentBackup{
		ID:              s.ID,
		Name:            s.Name,
		AdmissionNo:     s.AdmissionNo,
		Grade:           s.Grade,
		Category:        s.Category.String(),
		SelectedFees:    s.SelectedFees,
		PreviousArrears: s.PreviousArrears,
	}
}

func toPaymentBackup(p *ledger.Payment) PaymentBackup {
	return PaymentBackup{
		ID:             p.ID,
		Seq:            p.Seq,
		StudentID:      p.StudentID,
		Amount:         p.Amount,
		Items:          p.Items.Clone(),
		Term:           p.Term.String(),
		Date:           p.Date,
		ReceiptNo:      p.ReceiptNo,
		GradeAtPayment: p.GradeAtPayment,
	}
}

func toSettingsBackup(s *ledger.Settings) SettingsBackup {
	structures := make(map[string]map[string]decimal.Decimal, len(s.FeeStructures))
	for _, structure := range s.FeeStructures {
		amounts := make(map[string]decimal.Decimal, len(structure.Amounts))
		for key, amount := range structure.Amounts {
			amounts[key.String()] = amount
		}
		structures[structure.Grade] = amounts
	}
	return SettingsBackup{
		SchoolName:    s.SchoolName,
		Currency:      s.Currency,
		AcademicYear:  s.AcademicYear,
		Grades:        s.Grades,
		FeeItems:      s.FeeItems,
		FeeStructures: structures,
	}
}

func fromStudentBackups(backups []StudentBackup) ([]ledger.Student, error) {
	students := make([]ledger.Student, 0, len(backups))
	for _, b := range backups {
		// RestoreStudent, not NewStudent: exported rosters may carry
		// negative arrears for promoted students in credit.
		student, err := ledger.RestoreStudent(b.Name, b.AdmissionNo, b.Grade,
			ledger.StudentCategory(b.Category), b.SelectedFees, b.PreviousArrears)
		if err != nil {
			return nil, err
		}
		if b.ID != uuid.Nil {
			student.ID = b.ID
		}
		students = append(students, *student)
	}
	return students, nil
}

func fromPaymentBackups(backups []PaymentBackup) ([]ledger.Payment, error) {
	payments := make([]ledger.Payment, 0, len(backups))
	for _, b := range backups {
		payment, err := ledger.NewPayment(b.StudentID, b.GradeAtPayment,
			ledger.Term(b.Term), b.Items, b.ReceiptNo)
		if err != nil {
			return nil, err
		}
		if b.ID != uuid.Nil {
			payment.ID = b.ID
		}
		payment.Seq = b.Seq
		if !b.Date.IsZero() {
			payment.Date = b.Date
		}
		payments = append(payments, *payment)
	}
	return payments, nil
}

func applySettingsBackup(settings *ledger.Settings, backup SettingsBackup) error {
	if backup.AcademicYear == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Backup settings are missing the academic year")
	}
	structures := make(ledger.FeeStructures, 0, len(backup.FeeStructures))
	for grade, amounts := range backup.FeeStructures {
		structure := ledger.NewFeeStructure(grade)
		for raw, amount := range amounts {
			key, err := ledger.ParseFeeKey(raw)
			if err != nil {
				return err
			}
			structure.SetAmount(key, amount)
		}
		structures = append(structures, structure)
	}

	if backup.SchoolName != "" {
		settings.SchoolName = backup.SchoolName
	}
	if backup.Currency != "" {
		settings.Currency = backup.Currency
	}
	settings.AcademicYear = backup.AcademicYear
	if len(backup.Grades) > 0 {
		settings.Grades = ledger.GradeList(backup.Grades)
	}
	if len(backup.FeeItems) > 0 {
		settings.FeeItems = backup.FeeItems
	}
	if len(structures) > 0 {
		settings.FeeStructures = structures
	}
	return nil
}
