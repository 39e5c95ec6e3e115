package ledger

import (
	"context"
	"testing"

	domain "github.com/edutrack/backend/internal/domain/ledger"
	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeItemLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setFee(t, "G1", domain.KeyTerm1, 3000)

	student := env.addStudent(t, "Amina Odhiambo", "G1", []domain.FeeKey{domain.KeyTerm1})

	t.Run("adding an item propagates to every grade", func(t *testing.T) {
		settings, err := env.settings.AddFeeItem(ctx, AddFeeItemRequest{
			Key:           "medical",
			Label:         "Medical Cover",
			Category:      domain.CategoryMandatory,
			DefaultAmount: decimal.NewFromInt(200),
		})
		require.NoError(t, err)

		for _, grade := range []string{"G1", "G2", "G3"} {
			structure := settings.FeeStructures.FindByGrade(grade)
			require.NotNil(t, structure)
			assert.True(t, structure.Amount("medical").Equal(decimal.NewFromInt(200)))
		}
	})

	t.Run("selected students are charged for the new item", func(t *testing.T) {
		view, err := env.students.ToggleFee(ctx, student.ID, "medical")
		require.NoError(t, err)
		assert.True(t, view.TotalDue.Equal(decimal.NewFromInt(3200)))
	})

	t.Run("duplicate key is rejected", func(t *testing.T) {
		_, err := env.settings.AddFeeItem(ctx, AddFeeItemRequest{
			Key:      "medical",
			Label:    "Medical Again",
			Category: domain.CategoryMandatory,
		})
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "DUPLICATE_FEE_KEY", derr.Code)
	})

	t.Run("deleting the item removes it everywhere but keeps history", func(t *testing.T) {
		receipt := env.pay(t, student.ID, map[domain.FeeKey]decimal.Decimal{
			"medical": decimal.NewFromInt(200),
		})

		settings, err := env.settings.DeleteFeeItem(ctx, "medical")
		require.NoError(t, err)
		assert.False(t, settings.FeeItems.Contains("medical"))
		assert.False(t, settings.FeeStructures.HasKey("medical"))

		// the recorded payment keeps its itemized breakdown
		snapshot, err := env.payments.ViewReceipt(ctx, receipt.Payment.ID)
		require.NoError(t, err)
		assert.True(t, snapshot.Payment.Items["medical"].Equal(decimal.NewFromInt(200)))

		// dues no longer include the deleted item; the payment still counts
		view, err := env.students.GetStudent(ctx, student.ID)
		require.NoError(t, err)
		assert.True(t, view.TotalDue.Equal(decimal.NewFromInt(3000)))
		assert.True(t, view.TotalPaid.Equal(decimal.NewFromInt(200)))
	})
}

func TestUpdateFeeAmountService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	settings, err := env.settings.UpdateFeeAmount(ctx, "G2", domain.KeyTerm2, decimal.NewFromInt(2750))
	require.NoError(t, err)
	assert.True(t, settings.FeeStructures.FindByGrade("G2").Amount(domain.KeyTerm2).Equal(decimal.NewFromInt(2750)))

	// other grades are untouched
	assert.True(t, settings.FeeStructures.FindByGrade("G1").Amount(domain.KeyTerm2).IsZero())
}

func TestUpdateSchoolInfo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	settings, err := env.settings.UpdateSchoolInfo(ctx, UpdateSchoolInfoRequest{
		SchoolName: "Riverside Primary",
		Currency:   "UGX",
	})
	require.NoError(t, err)
	assert.Equal(t, "Riverside Primary", settings.SchoolName)
	assert.Equal(t, "UGX", settings.Currency)

	// blank fields keep their current values
	settings, err = env.settings.UpdateSchoolInfo(ctx, UpdateSchoolInfoRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Riverside Primary", settings.SchoolName)
}
