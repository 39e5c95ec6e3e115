package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	studentID := uuid.New()

	tests := []struct {
		name      string
		studentID uuid.UUID
		term      Term
		receiptNo string
		items     map[FeeKey]decimal.Decimal
		wantErr   string
		wantTotal int64
		wantItems int
	}{
		{
			name:      "valid itemized payment",
			studentID: studentID,
			term:      TermOne,
			receiptNo: "RCP-0001",
			items: map[FeeKey]decimal.Decimal{
				KeyTerm1: decimal.NewFromInt(3000),
				"lunch":  decimal.NewFromInt(500),
			},
			wantTotal: 3500,
			wantItems: 2,
		},
		{
			name:      "non-positive entries are dropped",
			studentID: studentID,
			term:      TermTwo,
			receiptNo: "RCP-0002",
			items: map[FeeKey]decimal.Decimal{
				KeyTerm2:  decimal.NewFromInt(2000),
				"lunch":   decimal.Zero,
				"uniform": decimal.NewFromInt(-50),
			},
			wantTotal: 2000,
			wantItems: 1,
		},
		{
			name:      "all entries non-positive",
			studentID: studentID,
			term:      TermOne,
			receiptNo: "RCP-0003",
			items: map[FeeKey]decimal.Decimal{
				KeyTerm1: decimal.Zero,
				"lunch":  decimal.NewFromInt(-10),
			},
			wantErr: "no payment amount entered",
		},
		{
			name:      "empty items",
			studentID: studentID,
			term:      TermOne,
			receiptNo: "RCP-0004",
			items:     map[FeeKey]decimal.Decimal{},
			wantErr:   "no payment amount entered",
		},
		{
			name:      "missing student",
			studentID: uuid.Nil,
			term:      TermOne,
			receiptNo: "RCP-0005",
			items:     map[FeeKey]decimal.Decimal{KeyTerm1: decimal.NewFromInt(100)},
			wantErr:   "Student ID cannot be empty",
		},
		{
			name:      "invalid term",
			studentID: studentID,
			term:      Term("T9"),
			receiptNo: "RCP-0006",
			items:     map[FeeKey]decimal.Decimal{KeyTerm1: decimal.NewFromInt(100)},
			wantErr:   "Invalid term",
		},
		{
			name:      "missing receipt number",
			studentID: studentID,
			term:      TermOne,
			receiptNo: "",
			items:     map[FeeKey]decimal.Decimal{KeyTerm1: decimal.NewFromInt(100)},
			wantErr:   "Receipt number cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPayment(tt.studentID, "P1", tt.term, tt.items, tt.receiptNo)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.studentID, p.StudentID)
			assert.Equal(t, tt.receiptNo, p.ReceiptNo)
			assert.Equal(t, "P1", p.GradeAtPayment)
			assert.Len(t, p.Items, tt.wantItems)
			assert.True(t, decimal.NewFromInt(tt.wantTotal).Equal(p.Amount))
			assert.True(t, p.Items.Sum().Equal(p.Amount))
			assert.False(t, p.Date.IsZero())
		})
	}
}

func TestTermTuitionKey(t *testing.T) {
	assert.Equal(t, KeyTerm1, TermOne.TuitionKey())
	assert.Equal(t, KeyTerm2, TermTwo.TuitionKey())
	assert.Equal(t, KeyTerm3, TermThree.TuitionKey())
	assert.Equal(t, FeeKey(""), Term("T9").TuitionKey())
}

func TestPaymentItemsHelpers(t *testing.T) {
	items := PaymentItems{
		KeyTerm1: decimal.NewFromInt(100),
		"lunch":  decimal.NewFromInt(50),
	}

	assert.True(t, decimal.NewFromInt(150).Equal(items.Sum()))
	assert.True(t, decimal.NewFromInt(50).Equal(items.Get("lunch")))
	assert.True(t, decimal.Zero.Equal(items.Get("boarding")))

	clone := items.Clone()
	clone["lunch"] = decimal.NewFromInt(999)
	assert.True(t, decimal.NewFromInt(50).Equal(items.Get("lunch")))
}
