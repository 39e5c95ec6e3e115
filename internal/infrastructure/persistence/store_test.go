package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/edutrack/backend/internal/domain/ledger"
	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/edutrack/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(models.All()...)
	require.NoError(t, err)

	return db
}

func seedStudent(t *testing.T, repo ledger.StudentRepository, name, grade string) *ledger.Student {
	t.Helper()
	student, err := ledger.NewStudent(name, "", grade, ledger.StudentCategoryNormal, nil, decimal.Zero)
	require.NoError(t, err)
	student.ClearDomainEvents()
	require.NoError(t, repo.Save(context.Background(), student))
	return student
}

func seedPayment(t *testing.T, repo ledger.PaymentRepository, studentID uuid.UUID, receiptNo string, amount int64) *ledger.Payment {
	t.Helper()
	payment, err := ledger.NewPayment(studentID, "P1", ledger.TermOne,
		map[ledger.FeeKey]decimal.Decimal{ledger.KeyTerm1: decimal.NewFromInt(amount)}, receiptNo)
	require.NoError(t, err)
	require.NoError(t, repo.Append(context.Background(), payment))
	return payment
}

func TestGormStudentRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStudentRepository(db)
	ctx := context.Background()

	t.Run("save and find round-trip", func(t *testing.T) {
		student, err := ledger.NewStudent("Amina Odhiambo", "ADM-001", "P1",
			ledger.StudentCategoryStaff, ledger.FeeKeys{ledger.KeyTerm1, "lunch"},
			decimal.NewFromInt(750))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, student))

		found, err := repo.FindByID(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, student.Name, found.Name)
		assert.Equal(t, ledger.StudentCategoryStaff, found.Category)
		assert.Equal(t, ledger.FeeKeys{ledger.KeyTerm1, "lunch"}, found.SelectedFees)
		assert.True(t, decimal.NewFromInt(750).Equal(found.PreviousArrears))
	})

	t.Run("save updates existing row", func(t *testing.T) {
		student := seedStudent(t, repo, "Brian Mutua", "P1")
		student.PromoteTo("P2", decimal.NewFromInt(1200))
		require.NoError(t, repo.Save(ctx, student))

		found, err := repo.FindByID(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, "P2", found.Grade)
		assert.True(t, decimal.NewFromInt(1200).Equal(found.PreviousArrears))
		assert.Equal(t, 2, found.GetVersion())
	})

	t.Run("find by grade", func(t *testing.T) {
		seedStudent(t, repo, "Joy Wanjiru", "P3")
		seedStudent(t, repo, "Kevin Otieno", "P3")

		students, err := repo.FindByGrade(ctx, "P3")
		require.NoError(t, err)
		assert.Len(t, students, 2)
		assert.Equal(t, "Joy Wanjiru", students[0].Name)
	})

	t.Run("missing student is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)

		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
	})

	t.Run("replace all swaps the roster", func(t *testing.T) {
		replacement, err := ledger.NewStudent("Faith Njeri", "", "P1",
			ledger.StudentCategoryNormal, nil, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, repo.ReplaceAll(ctx, []ledger.Student{*replacement}))

		students, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, students, 1)
		assert.Equal(t, "Faith Njeri", students[0].Name)
	})
}

func TestGormPaymentRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	students := NewGormStudentRepository(db)
	ctx := context.Background()

	student := seedStudent(t, students, "Amina Odhiambo", "P1")

	t.Run("append assigns monotonic seq", func(t *testing.T) {
		first := seedPayment(t, repo, student.ID, "RCP-0001", 1000)
		second := seedPayment(t, repo, student.ID, "RCP-0002", 500)

		assert.Equal(t, int64(1), first.Seq)
		assert.Equal(t, int64(2), second.Seq)
	})

	t.Run("voiding the newest payment frees its seq for reuse", func(t *testing.T) {
		third := seedPayment(t, repo, student.ID, "RCP-0003", 200)
		require.NoError(t, repo.Delete(ctx, third.ID))

		fourth := seedPayment(t, repo, student.ID, "RCP-0004", 300)
		assert.Equal(t, int64(3), fourth.Seq)
	})

	t.Run("find by student in ledger order", func(t *testing.T) {
		payments, err := repo.FindByStudent(ctx, student.ID)
		require.NoError(t, err)
		require.Len(t, payments, 3)
		assert.True(t, payments[0].Seq < payments[1].Seq)
		assert.True(t, payments[1].Seq < payments[2].Seq)
	})

	t.Run("items survive the round-trip", func(t *testing.T) {
		payments, err := repo.FindByStudent(ctx, student.ID)
		require.NoError(t, err)
		assert.True(t, payments[0].Items.Get(ledger.KeyTerm1).Equal(decimal.NewFromInt(1000)))
		assert.True(t, payments[0].Items.Sum().Equal(payments[0].Amount))
	})

	t.Run("receipt number existence", func(t *testing.T) {
		exists, err := repo.ReceiptNoExists(ctx, "RCP-0001")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ReceiptNoExists(ctx, "RCP-0003")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("delete missing payment is not found", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
	})

	t.Run("delete all clears the ledger", func(t *testing.T) {
		require.NoError(t, repo.DeleteAll(ctx))
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestGormSettingsRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSettingsRepository(db)
	ctx := context.Background()

	t.Run("get before seed is not found", func(t *testing.T) {
		_, err := repo.Get(ctx)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("save and get round-trip", func(t *testing.T) {
		settings, err := ledger.NewSettings("Hilltop Academy", "KES", "2026", []string{"P1", "P2"})
		require.NoError(t, err)
		require.NoError(t, settings.UpdateFeeAmount("P1", ledger.KeyTerm1, decimal.NewFromInt(5000)))
		settings.ClearDomainEvents()
		require.NoError(t, repo.Save(ctx, settings))

		found, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Hilltop Academy", found.SchoolName)
		assert.Equal(t, ledger.GradeList{"P1", "P2"}, found.Grades)
		assert.True(t, found.FeeItems.Contains(ledger.KeyTerm1))
		require.NotNil(t, found.StructureFor("P1"))
		assert.True(t, found.StructureFor("P1").Amount(ledger.KeyTerm1).Equal(decimal.NewFromInt(5000)))
	})

	t.Run("save persists catalog mutations", func(t *testing.T) {
		settings, err := repo.Get(ctx)
		require.NoError(t, err)
		_, err = settings.AddFeeItem("swimming", "Swimming", ledger.CategoryOptional, decimal.NewFromInt(400))
		require.NoError(t, err)
		settings.ClearDomainEvents()
		require.NoError(t, repo.Save(ctx, settings))

		found, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.True(t, found.FeeItems.Contains("swimming"))
		assert.True(t, found.StructureFor("P2").Amount("swimming").Equal(decimal.NewFromInt(400)))
	})
}

func TestGormArchiveRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormArchiveRepository(db)
	ctx := context.Background()

	student, err := ledger.NewStudent("Amina Odhiambo", "", "P1", ledger.StudentCategoryNormal, nil, decimal.Zero)
	require.NoError(t, err)
	payment, err := ledger.NewPayment(student.ID, "P1", ledger.TermOne,
		map[ledger.FeeKey]decimal.Decimal{ledger.KeyTerm1: decimal.NewFromInt(1000)}, "RCP-0001")
	require.NoError(t, err)
	payment.Seq = 1

	archive, err := ledger.NewYearArchive("2025", []ledger.Student{*student}, []ledger.Payment{*payment})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, archive))

	t.Run("find by year round-trip", func(t *testing.T) {
		found, err := repo.FindByYear(ctx, "2025")
		require.NoError(t, err)
		require.Len(t, found.Students, 1)
		require.Len(t, found.Payments, 1)
		assert.Equal(t, "Amina Odhiambo", found.Students[0].Name)
		assert.True(t, found.Payments[0].Amount.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("missing year is not found", func(t *testing.T) {
		_, err := repo.FindByYear(ctx, "1999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("list orders by year descending", func(t *testing.T) {
		older, err := ledger.NewYearArchive("2024", nil, nil)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, older))

		archives, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, archives, 2)
		assert.Equal(t, "2025", archives[0].Year)
		assert.Equal(t, "2024", archives[1].Year)
	})
}

func TestGormStoreWithinTxRollsBack(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(repos ledger.Repositories) error {
		student, err := ledger.NewStudent("Amina Odhiambo", "", "P1", ledger.StudentCategoryNormal, nil, decimal.Zero)
		if err != nil {
			return err
		}
		if err := repos.Students.Save(ctx, student); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	students, err := store.Repositories().Students.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)
}
