package ledger

import (
	"fmt"
	"sort"

	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Financials is the derived account position of one student
type Financials struct {
	TotalDue  decimal.Decimal `json:"total_due"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Balance   decimal.Decimal `json:"balance"`
}

// ComputeFinancials derives a student's dues, paid total and balance from
// the fee structure of the student's current grade and the payment ledger.
// It is a pure function: identical inputs always yield identical results.
//
// A grade without a configured fee structure contributes zero dues; only
// the carried arrears remain. This permissive default mirrors the way the
// catalog is administered (structures can lag behind roster changes) and is
// deliberately not an error.
func ComputeFinancials(student *Student, payments []Payment, settings *Settings) Financials {
	totalDue := student.PreviousArrears
	if structure := settings.StructureFor(student.Grade); structure != nil {
		for _, key := range student.EffectiveSelectedFees() {
			totalDue = totalDue.Add(structure.Amount(key))
		}
	}

	totalPaid := decimal.Zero
	for i := range payments {
		if payments[i].StudentID == student.ID {
			totalPaid = totalPaid.Add(payments[i].Amount)
		}
	}

	return Financials{
		TotalDue:  totalDue,
		TotalPaid: totalPaid,
		Balance:   totalDue.Sub(totalPaid),
	}
}

// StudentHistory returns the student's payments in ledger order (by Seq)
func StudentHistory(payments []Payment, studentID uuid.UUID) []Payment {
	var history []Payment
	for i := range payments {
		if payments[i].StudentID == studentID {
			history = append(history, payments[i])
		}
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].Seq < history[j].Seq
	})
	return history
}

// BalanceAsOf reconstructs the balance that existed immediately after the
// given payment: the student's payments in ledger order up to and including
// the target, summed and subtracted from the live total due. Later payments
// and voids do not affect the figure; a retroactive fee structure change
// does, because total due is always evaluated against the live catalog.
//
// Returns the as-of balance together with the history slice that produced
// it (for itemized receipt rendering).
func BalanceAsOf(student *Student, payments []Payment, paymentID uuid.UUID, settings *Settings) (decimal.Decimal, []Payment, error) {
	history := StudentHistory(payments, student.ID)
	idx := -1
	for i := range history {
		if history[i].ID == paymentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return decimal.Zero, nil, shared.NewDomainError("NOT_FOUND",
			fmt.Sprintf("Payment %s not found in student ledger", paymentID))
	}

	upTo := history[:idx+1]
	paidUpTo := decimal.Zero
	for i := range upTo {
		paidUpTo = paidUpTo.Add(upTo[i].Amount)
	}

	totalDue := ComputeFinancials(student, nil, settings).TotalDue
	return totalDue.Sub(paidUpTo), upTo, nil
}

// ItemBalance derives the outstanding amount on a single fee item: the
// structure amount for selected items minus everything paid towards the key
// across the given history. Used for the per-item receipt breakdown.
func ItemBalance(student *Student, structure *FeeStructure, history []Payment, key FeeKey) decimal.Decimal {
	due := decimal.Zero
	if structure != nil && student.EffectiveSelectedFees().Contains(key) {
		due = structure.Amount(key)
	}
	if key == KeyPreviousArrears {
		due = student.PreviousArrears
	}
	for i := range history {
		due = due.Sub(history[i].Items.Get(key))
	}
	return due
}
