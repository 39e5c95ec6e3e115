package ledger

import (
	"context"

	"github.com/google/uuid"
)

// StudentRepository persists the student roster
type StudentRepository interface {
	Save(ctx context.Context, student *Student) error
	FindByID(ctx context.Context, id uuid.UUID) (*Student, error)
	FindAll(ctx context.Context) ([]Student, error)
	FindByGrade(ctx context.Context, grade string) ([]Student, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceAll(ctx context.Context, students []Student) error
}

// PaymentRepository persists the append-only payment ledger. Append assigns
// the payment's Seq; Delete is the void operation and removes the row
// entirely.
type PaymentRepository interface {
	Append(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]Payment, error)
	FindAll(ctx context.Context) ([]Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReceiptNoExists(ctx context.Context, receiptNo string) (bool, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
	ReplaceAll(ctx context.Context, payments []Payment) error
}

// SettingsRepository persists the single settings aggregate
type SettingsRepository interface {
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}

// ArchiveRepository persists year-end snapshots
type ArchiveRepository interface {
	Save(ctx context.Context, archive *YearArchive) error
	FindByYear(ctx context.Context, year string) (*YearArchive, error)
	FindAll(ctx context.Context) ([]YearArchive, error)
}

// Repositories bundles the ledger repositories bound to one database handle
type Repositories struct {
	Students StudentRepository
	Payments PaymentRepository
	Settings SettingsRepository
	Archives ArchiveRepository
}

// Store exposes the repositories and transactional execution. WithinTx runs
// the function against repositories bound to a single transaction; any error
// rolls the whole unit back.
type Store interface {
	Repositories() Repositories
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}
