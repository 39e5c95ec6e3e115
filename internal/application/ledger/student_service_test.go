package ledger

import (
	"context"
	"testing"

	domain "github.com/edutrack/backend/internal/domain/ledger"
	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setFee(t, "G1", domain.KeyTerm1, 3000)

	t.Run("registered student shows structure-derived dues", func(t *testing.T) {
		student := env.addStudent(t, "Amina Odhiambo", "G1", []domain.FeeKey{domain.KeyTerm1})
		assert.True(t, student.TotalDue.Equal(decimal.NewFromInt(3000)))
		assert.True(t, student.Balance.Equal(decimal.NewFromInt(3000)))
	})

	t.Run("grade outside the sequence is rejected", func(t *testing.T) {
		_, err := env.students.RegisterStudent(ctx, RegisterStudentRequest{
			Name:            "Brian Mutua",
			Grade:           "G9",
			PreviousArrears: decimal.Zero,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not in the configured grade sequence")
	})

	t.Run("empty selection falls back to term tuition", func(t *testing.T) {
		student := env.addStudent(t, "Joy Wanjiru", "G1", nil)
		assert.Equal(t, []domain.FeeKey{domain.KeyTerm1, domain.KeyTerm2, domain.KeyTerm3},
			student.SelectedFees)
	})
}

func TestPromote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setFee(t, "G1", domain.KeyTerm1, 3000)
	env.setFee(t, "G2", domain.KeyTerm1, 3300)

	student := env.addStudent(t, "Amina Odhiambo", "G1", []domain.FeeKey{domain.KeyTerm1})
	env.pay(t, student.ID, map[domain.FeeKey]decimal.Decimal{domain.KeyTerm1: decimal.NewFromInt(500)})

	t.Run("outstanding balance becomes the carried arrears", func(t *testing.T) {
		promoted, err := env.students.Promote(ctx, student.ID)
		require.NoError(t, err)

		assert.Equal(t, "G2", promoted.Grade)
		assert.True(t, promoted.PreviousArrears.Equal(decimal.NewFromInt(2500)))
		// selection is untouched across the grade change
		assert.Equal(t, []domain.FeeKey{domain.KeyTerm1}, promoted.SelectedFees)
	})

	t.Run("new year dues include the carry once payments are archived", func(t *testing.T) {
		_, err := env.archives.ArchiveYear(ctx, "2027")
		require.NoError(t, err)

		view, err := env.students.GetStudent(ctx, student.ID)
		require.NoError(t, err)
		assert.True(t, view.TotalDue.Equal(decimal.NewFromInt(5800)))
		assert.True(t, view.TotalPaid.IsZero())
		assert.True(t, view.Balance.Equal(decimal.NewFromInt(5800)))
	})

	t.Run("promotion at the last grade fails", func(t *testing.T) {
		atCeiling := env.addStudent(t, "Brian Mutua", "G3", nil)
		_, err := env.students.Promote(ctx, atCeiling.ID)
		assert.ErrorIs(t, err, shared.ErrNoFurtherGrade)
	})

	t.Run("credit balance carries as negative arrears", func(t *testing.T) {
		overpaid := env.addStudent(t, "Joy Wanjiru", "G1", []domain.FeeKey{domain.KeyTerm1})
		env.pay(t, overpaid.ID, map[domain.FeeKey]decimal.Decimal{domain.KeyTerm1: decimal.NewFromInt(4000)})

		promoted, err := env.students.Promote(ctx, overpaid.ID)
		require.NoError(t, err)
		assert.True(t, promoted.PreviousArrears.Equal(decimal.NewFromInt(-1000)))
	})
}

func TestToggleFee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setFee(t, "G1", domain.KeyTerm1, 3000)
	env.setFee(t, "G1", "lunch", 1500)

	student := env.addStudent(t, "Amina Odhiambo", "G1", []domain.FeeKey{domain.KeyTerm1})

	view, err := env.students.ToggleFee(ctx, student.ID, "lunch")
	require.NoError(t, err)
	assert.True(t, view.TotalDue.Equal(decimal.NewFromInt(4500)))

	view, err = env.students.ToggleFee(ctx, student.ID, "lunch")
	require.NoError(t, err)
	assert.True(t, view.TotalDue.Equal(decimal.NewFromInt(3000)))
}

func TestRemoveStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setFee(t, "G1", domain.KeyTerm1, 3000)

	student := env.addStudent(t, "Amina Odhiambo", "G1", []domain.FeeKey{domain.KeyTerm1})
	env.pay(t, student.ID, map[domain.FeeKey]decimal.Decimal{domain.KeyTerm1: decimal.NewFromInt(100)})

	require.NoError(t, env.students.RemoveStudent(ctx, student.ID))

	_, err := env.students.GetStudent(ctx, student.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	payments, err := env.payments.ListPayments(ctx)
	require.NoError(t, err)
	assert.Empty(t, payments)

	assert.ErrorIs(t, env.students.RemoveStudent(ctx, uuid.New()), shared.ErrNotFound)
}

func TestListStudentsByGrade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addStudent(t, "Amina Odhiambo", "G1", nil)
	env.addStudent(t, "Brian Mutua", "G2", nil)

	all, err := env.students.ListStudents(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	g1, err := env.students.ListStudents(ctx, "G1")
	require.NoError(t, err)
	require.Len(t, g1, 1)
	assert.Equal(t, "Amina Odhiambo", g1[0].Name)
}
