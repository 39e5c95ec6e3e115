package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStudent(t *testing.T) {
	tests := []struct {
		name         string
		studentName  string
		grade        string
		category     StudentCategory
		arrears      decimal.Decimal
		wantErr      string
		wantCategory StudentCategory
	}{
		{
			name:         "valid student",
			studentName:  "Brian Mutua",
			grade:        "P1",
			category:     StudentCategoryStaff,
			arrears:      decimal.NewFromInt(500),
			wantCategory: StudentCategoryStaff,
		},
		{
			name:         "empty category defaults to normal",
			studentName:  "Brian Mutua",
			grade:        "P1",
			category:     "",
			arrears:      decimal.Zero,
			wantCategory: StudentCategoryNormal,
		},
		{
			name:        "missing name",
			studentName: "",
			grade:       "P1",
			arrears:     decimal.Zero,
			wantErr:     "Student name cannot be empty",
		},
		{
			name:        "missing grade",
			studentName: "Brian Mutua",
			grade:       "",
			arrears:     decimal.Zero,
			wantErr:     "Student grade cannot be empty",
		},
		{
			name:        "invalid category",
			studentName: "Brian Mutua",
			grade:       "P1",
			category:    "alumni",
			arrears:     decimal.Zero,
			wantErr:     "Invalid student category",
		},
		{
			name:        "negative arrears",
			studentName: "Brian Mutua",
			grade:       "P1",
			arrears:     decimal.NewFromInt(-1),
			wantErr:     "Previous arrears cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStudent(tt.studentName, "ADM-007", tt.grade, tt.category, nil, tt.arrears)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCategory, s.Category)
			assert.Equal(t, 1, s.GetVersion())
			events := s.GetDomainEvents()
			require.Len(t, events, 1)
			assert.Equal(t, EventTypeStudentRegistered, events[0].EventType())
		})
	}
}

func TestRestoreStudent(t *testing.T) {
	t.Run("accepts negative arrears carried by a credit promotion", func(t *testing.T) {
		s, err := RestoreStudent("Brian Mutua", "ADM-007", "P2", StudentCategoryNormal,
			FeeKeys{KeyTerm1}, decimal.NewFromInt(-1000))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(-1000).Equal(s.PreviousArrears))
		assert.Empty(t, s.GetDomainEvents())
	})

	t.Run("still rejects a missing name", func(t *testing.T) {
		_, err := RestoreStudent("", "ADM-007", "P2", StudentCategoryNormal, nil, decimal.Zero)
		require.Error(t, err)
	})
}

func TestStudentPromoteTo(t *testing.T) {
	s, err := NewStudent("Joy Wanjiru", "ADM-010", "P1", StudentCategoryNormal,
		FeeKeys{KeyTerm1, "lunch"}, decimal.NewFromInt(300))
	require.NoError(t, err)
	s.ClearDomainEvents()

	s.PromoteTo("P2", decimal.NewFromInt(1250))

	assert.Equal(t, "P2", s.Grade)
	// carried arrears are replaced, not accumulated
	assert.True(t, decimal.NewFromInt(1250).Equal(s.PreviousArrears))
	assert.Equal(t, FeeKeys{KeyTerm1, "lunch"}, s.SelectedFees)
	assert.Equal(t, 2, s.GetVersion())

	events := s.GetDomainEvents()
	require.Len(t, events, 1)
	promoted, ok := events[0].(*StudentPromotedEvent)
	require.True(t, ok)
	assert.Equal(t, "P1", promoted.FromGrade)
	assert.Equal(t, "P2", promoted.ToGrade)
}

func TestStudentPromoteToNegativeBalance(t *testing.T) {
	s, err := NewStudent("Joy Wanjiru", "ADM-010", "P1", StudentCategoryNormal, nil, decimal.Zero)
	require.NoError(t, err)

	s.PromoteTo("P2", decimal.NewFromInt(-400))
	assert.True(t, decimal.NewFromInt(-400).Equal(s.PreviousArrears))
}

func TestStudentEffectiveSelectedFees(t *testing.T) {
	s, err := NewStudent("Joy Wanjiru", "ADM-010", "P1", StudentCategoryNormal, nil, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, DefaultSelectedFees(), s.EffectiveSelectedFees())

	s.SetSelectedFees(FeeKeys{"lunch"})
	assert.Equal(t, FeeKeys{"lunch"}, s.EffectiveSelectedFees())
}

func TestStudentToggleFee(t *testing.T) {
	s, err := NewStudent("Joy Wanjiru", "ADM-010", "P1", StudentCategoryNormal, nil, decimal.Zero)
	require.NoError(t, err)

	// toggling off a default key materializes the default set first
	s.ToggleFee(KeyTerm2)
	assert.Equal(t, FeeKeys{KeyTerm1, KeyTerm3}, s.SelectedFees)

	s.ToggleFee("lunch")
	assert.True(t, s.SelectedFees.Contains("lunch"))

	s.ToggleFee("lunch")
	assert.False(t, s.SelectedFees.Contains("lunch"))
	assert.Equal(t, FeeKeys{KeyTerm1, KeyTerm3}, s.SelectedFees)
}
