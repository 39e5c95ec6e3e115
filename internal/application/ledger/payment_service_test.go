package ledger

import (
	"context"
	"testing"

	domain "github.com/edutrack/backend/internal/domain/ledger"
	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/edutrack/backend/internal/infrastructure/persistence"
	"github.com/edutrack/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	store    domain.Store
	payments *PaymentService
	students *StudentService
	settings *SettingsService
	archives *ArchiveService
	backups  *BackupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	store := persistence.NewGormStore(db)
	_, err = EnsureSettings(context.Background(), store,
		"Hilltop Academy", "KES", "2026", []string{"G1", "G2", "G3"})
	require.NoError(t, err)

	return &testEnv{
		store:    store,
		payments: NewPaymentService(store, nil),
		students: NewStudentService(store, nil),
		settings: NewSettingsService(store, nil),
		archives: NewArchiveService(store, nil),
		backups:  NewBackupService(store),
	}
}

func (e *testEnv) setFee(t *testing.T, grade string, key domain.FeeKey, amount int64) {
	t.Helper()
	_, err := e.settings.UpdateFeeAmount(context.Background(), grade, key, decimal.NewFromInt(amount))
	require.NoError(t, err)
}

func (e *testEnv) addStudent(t *testing.T, name, grade string, selected []domain.FeeKey) *StudentResponse {
	t.Helper()
	student, err := e.students.RegisterStudent(context.Background(), RegisterStudentRequest{
		Name:            name,
		Grade:           grade,
		Category:        domain.StudentCategoryNormal,
		SelectedFees:    selected,
		PreviousArrears: decimal.Zero,
	})
	require.NoError(t, err)
	return student
}

func (e *testEnv) pay(t *testing.T, studentID uuid.UUID, items map[domain.FeeKey]decimal.Decimal) *ReceiptSnapshot {
	t.Helper()
	receipt, err := e.payments.RecordPayment(context.Background(), RecordPaymentRequest{
		StudentID: studentID,
		Term:      domain.TermOne,
		Items:     items,
	})
	require.NoError(t, err)
	return receipt
}

func TestRecordPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setFee(t, "G1", domain.KeyTerm1, 3000)
	student := env.addStudent(t, "Amina Odhiambo", "G1", []domain.FeeKey{domain.KeyTerm1})

	t.Run("partial payment leaves the remainder due", func(t *testing.T) {
		receipt := env.pay(t, student.ID, map[domain.FeeKey]decimal.Decimal{
			domain.KeyTerm1: decimal.NewFromInt(500),
		})

		assert.Equal(t, "RCP-0001", receipt.Payment.ReceiptNo)
		assert.Equal(t, int64(1), receipt.Payment.Seq)
		assert.True(t, receipt.TotalDue.Equal(decimal.NewFromInt(3000)))
		assert.True(t, receipt.BalanceAfter.Equal(decimal.NewFromInt(2500)))
		assert.Len(t, receipt.History, 1)

		view, err := env.students.GetStudent(ctx, student.ID)
		require.NoError(t, err)
		assert.True(t, view.Balance.Equal(decimal.NewFromInt(2500)))
	})

	t.Run("receipt numbers increment", func(t *testing.T) {
		receipt := env.pay(t, student.ID, map[domain.FeeKey]decimal.Decimal{
			domain.KeyTerm1: decimal.NewFromInt(100),
		})
		assert.Equal(t, "RCP-0002", receipt.Payment.ReceiptNo)
	})

	t.Run("all non-positive items are rejected and the ledger is unchanged", func(t *testing.T) {
		before, err := env.payments.ListPayments(ctx)
		require.NoError(t, err)

		_, err = env.payments.RecordPayment(ctx, RecordPaymentRequest{
			StudentID: student.ID,
			Term:      domain.TermOne,
			Items: map[domain.FeeKey]decimal.Decimal{
				domain.KeyTerm1: decimal.Zero,
				"lunch":         decimal.NewFromInt(-5),
			},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no payment amount entered")

		after, err := env.payments.ListPayments(ctx)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("unknown student is not found", func(t *testing.T) {
		_, err := env.payments.RecordPayment(ctx, RecordPaymentRequest{
			StudentID: uuid.New(),
			Term:      domain.TermOne,
			Items:     map[domain.FeeKey]decimal.Decimal{domain.KeyTerm1: decimal.NewFromInt(10)},
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestReceiptNumberCollisionDetection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setFee(t, "G1", domain.KeyTerm1, 3000)
	student := env.addStudent(t, "Amina Odhiambo", "G1", []domain.FeeKey{domain.KeyTerm1})

	first := env.pay(t, student.ID, map[domain.FeeKey]decimal.Decimal{domain.KeyTerm1: decimal.NewFromInt(100)})
	env.pay(t, student.ID, map[domain.FeeKey]decimal.Decimal{domain.KeyTerm1: decimal.NewFromInt(100)})

	// voiding the first payment shrinks the count while RCP-0002 stays taken;
	// the allocator has to walk past the collision
	require.NoError(t, env.payments.VoidPayment(ctx, first.Payment.ID))

	third := env.pay(t, student.ID, map[domain.FeeKey]decimal.Decimal{domain.KeyTerm1: decimal.NewFromInt(100)})
	assert.Equal(t, "RCP-0003", third.Payment.ReceiptNo)
}

func TestVoidPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setFee(t, "G1", domain.KeyTerm1, 3000)
	student := env.addStudent(t, "Amina Odhiambo", "G1", []domain.FeeKey{domain.KeyTerm1})

	before, err := env.students.GetStudent(ctx, student.ID)
	require.NoError(t, err)

	receipt := env.pay(t, student.ID, map[domain.FeeKey]decimal.Decimal{
		domain.KeyTerm1: decimal.NewFromInt(500),
	})
	require.NoError(t, env.payments.VoidPayment(ctx, receipt.Payment.ID))

	t.Run("record then void restores the exact prior state", func(t *testing.T) {
		after, err := env.students.GetStudent(ctx, student.ID)
		require.NoError(t, err)
		assert.True(t, before.TotalDue.Equal(after.TotalDue))
		assert.True(t, before.TotalPaid.Equal(after.TotalPaid))
		assert.True(t, before.Balance.Equal(after.Balance))

		history, err := env.payments.ListStudentPayments(ctx, student.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("voiding twice is not found", func(t *testing.T) {
		assert.ErrorIs(t, env.payments.VoidPayment(ctx, receipt.Payment.ID), shared.ErrNotFound)
	})
}

func TestViewReceipt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setFee(t, "G1", domain.KeyTerm1, 3000)
	env.setFee(t, "G1", domain.KeyTerm2, 2000)
	student := env.addStudent(t, "Amina Odhiambo", "G1", []domain.FeeKey{domain.KeyTerm1, domain.KeyTerm2})

	first := env.pay(t, student.ID, map[domain.FeeKey]decimal.Decimal{domain.KeyTerm1: decimal.NewFromInt(1000)})
	env.pay(t, student.ID, map[domain.FeeKey]decimal.Decimal{domain.KeyTerm2: decimal.NewFromInt(700)})

	t.Run("later payments do not change an older receipt", func(t *testing.T) {
		snapshot, err := env.payments.ViewReceipt(ctx, first.Payment.ID)
		require.NoError(t, err)
		assert.True(t, snapshot.BalanceAfter.Equal(decimal.NewFromInt(4000)))
		assert.Len(t, snapshot.History, 1)
	})

	t.Run("a retroactive fee change shifts the historical balance", func(t *testing.T) {
		env.setFee(t, "G1", domain.KeyTerm1, 3500)

		snapshot, err := env.payments.ViewReceipt(ctx, first.Payment.ID)
		require.NoError(t, err)
		assert.True(t, snapshot.BalanceAfter.Equal(decimal.NewFromInt(4500)))
	})

	t.Run("unknown payment is not found", func(t *testing.T) {
		_, err := env.payments.ViewReceipt(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
