package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/edutrack/backend/internal/domain/ledger"
	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// receiptNoFormat is the active-ledger receipt numbering scheme
const receiptNoFormat = "RCP-%04d"

// PaymentService handles ledger mutations and receipt reconstruction
type PaymentService struct {
	store     ledger.Store
	publisher shared.EventPublisher
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(store ledger.Store, publisher shared.EventPublisher) *PaymentService {
	return &PaymentService{store: store, publisher: publisher}
}

// RecordPaymentRequest carries the itemized amounts entered for one receipt.
// The reserved key "previousArrears" pays down the carried balance.
type RecordPaymentRequest struct {
	StudentID uuid.UUID
	Term      ledger.Term
	Items     map[ledger.FeeKey]decimal.Decimal
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID             uuid.UUID                          `json:"id"`
	Seq            int64                              `json:"seq"`
	StudentID      uuid.UUID                          `json:"student_id"`
	Amount         decimal.Decimal                    `json:"amount"`
	Items          map[ledger.FeeKey]decimal.Decimal  `json:"items"`
	Term           string                             `json:"term"`
	Date           time.Time                          `json:"date"`
	ReceiptNo      string                             `json:"receipt_no"`
	GradeAtPayment string                             `json:"grade_at_payment"`
}

// ReceiptSnapshot is the printable receipt view: the payment itself, the
// student's identity, and the balance as it stood immediately after this
// payment, together with the history that produced it.
type ReceiptSnapshot struct {
	Payment      PaymentResponse   `json:"payment"`
	StudentName  string            `json:"student_name"`
	AdmissionNo  string            `json:"admission_no"`
	Grade        string            `json:"grade"`
	SchoolName   string            `json:"school_name"`
	Currency     string            `json:"currency"`
	AcademicYear string            `json:"academic_year"`
	TotalDue     decimal.Decimal   `json:"total_due"`
	BalanceAfter decimal.Decimal   `json:"balance_after"`
	History      []PaymentResponse `json:"history"`
}

func toPaymentResponse(p *ledger.Payment) PaymentResponse {
	return PaymentResponse{
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

func toPaymentResponses(payments []ledger.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = toPaymentResponse(&payments[i])
	}
	return out
}

// RecordPayment appends a payment to the ledger and returns the receipt
// snapshot. The receipt number is allocated from a zero-padded counter;
// numbers already present in the active ledger are skipped, so uniqueness
// holds by detection rather than by chance.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*ReceiptSnapshot, error) {
	var snapshot *ReceiptSnapshot
	var recorded *ledger.Payment

	err := s.store.WithinTx(ctx, func(repos ledger.Repositories) error {
		student, err := repos.Students.FindByID(ctx, req.StudentID)
		if err != nil {
			return err
		}
		settings, err := repos.Settings.Get(ctx)
		if err != nil {
			return err
		}

		receiptNo, err := s.nextReceiptNo(ctx, repos.Payments)
		if err != nil {
			return err
		}

		payment, err := ledger.NewPayment(student.ID, student.Grade, req.Term, req.Items, receiptNo)
		if err != nil {
			return err
		}
		if err := repos.Payments.Append(ctx, payment); err != nil {
			return err
		}

		history, err := repos.Payments.FindByStudent(ctx, student.ID)
		if err != nil {
			return err
		}
		snapshot, err = buildReceiptSnapshot(student, settings, history, payment.ID)
		if err != nil {
			return err
		}
		recorded = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, ledger.NewPaymentRecordedEvent(recorded))
	return snapshot, nil
}

// VoidPayment removes a payment from the ledger entirely. No reversal entry
// is written; the ledger afterwards reads exactly as if the payment had never
// been recorded.
func (s *PaymentService) VoidPayment(ctx context.Context, paymentID uuid.UUID) error {
	var voided *ledger.Payment

	err := s.store.WithinTx(ctx, func(repos ledger.Repositories) error {
		payment, err := repos.Payments.FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := repos.Payments.Delete(ctx, paymentID); err != nil {
			return err
		}
		voided = payment
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, ledger.NewPaymentVoidedEvent(voided))
	return nil
}

// ViewReceipt reconstructs the receipt snapshot for a past payment. Totals
// are evaluated against the live fee structure, so a retroactive price change
// is reflected; later payments and voids are not.
func (s *PaymentService) ViewReceipt(ctx context.Context, paymentID uuid.UUID) (*ReceiptSnapshot, error) {
	repos := s.store.Repositories()

	payment, err := repos.Payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	student, err := repos.Students.FindByID(ctx, payment.StudentID)
	if err != nil {
		return nil, err
	}
	settings, err := repos.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	history, err := repos.Payments.FindByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	return buildReceiptSnapshot(student, settings, history, paymentID)
}

// ListPayments returns the full active ledger in Seq order
func (s *PaymentService) ListPayments(ctx context.Context) ([]PaymentResponse, error) {
	payments, err := s.store.Repositories().Payments.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toPaymentResponses(payments), nil
}

// ListStudentPayments returns one student's payments in Seq order
func (s *PaymentService) ListStudentPayments(ctx context.Context, studentID uuid.UUID) ([]PaymentResponse, error) {
	repos := s.store.Repositories()
	if _, err := repos.Students.FindByID(ctx, studentID); err != nil {
		return nil, err
	}
	payments, err := repos.Payments.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return toPaymentResponses(payments), nil
}

// nextReceiptNo allocates the next free receipt number. Voided payments free
// their numbers; the counter starts past the current ledger size and walks
// forward over any number still in use.
func (s *PaymentService) nextReceiptNo(ctx context.Context, payments ledger.PaymentRepository) (string, error) {
	count, err := payments.Count(ctx)
	if err != nil {
		return "", err
	}
	for candidate := count + 1; ; candidate++ {
		receiptNo := fmt.Sprintf(receiptNoFormat, candidate)
		exists, err := payments.ReceiptNoExists(ctx, receiptNo)
		if err != nil {
			return "", err
		}
		if !exists {
			return receiptNo, nil
		}
	}
}

func buildReceiptSnapshot(student *ledger.Student, settings *ledger.Settings, history []ledger.Payment, paymentID uuid.UUID) (*ReceiptSnapshot, error) {
	balance, upTo, err := ledger.BalanceAsOf(student, history, paymentID, settings)
	if err != nil {
		return nil, err
	}
	target := upTo[len(upTo)-1]

	return &ReceiptSnapshot{
		Payment:      toPaymentResponse(&target),
		StudentName:  student.Name,
		AdmissionNo:  student.AdmissionNo,
		Grade:        student.Grade,
		SchoolName:   settings.SchoolName,
		Currency:     settings.Currency,
		AcademicYear: settings.AcademicYear,
		TotalDue:     ledger.ComputeFinancials(student, nil, settings).TotalDue,
		BalanceAfter: balance,
		History:      toPaymentResponses(upTo),
	}, nil
}

func (s *PaymentService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
}
