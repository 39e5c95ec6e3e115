package ledger

import (
	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Domain event type constants
const (
	EventTypeStudentRegistered    = "ledger.student.registered"
	EventTypeStudentPromoted      = "ledger.student.promoted"
	EventTypePaymentRecorded      = "ledger.payment.recorded"
	EventTypePaymentVoided        = "ledger.payment.voided"
	EventTypeFeeItemAdded         = "ledger.fee_item.added"
	EventTypeFeeItemDeleted       = "ledger.fee_item.deleted"
	EventTypeFeeAmountUpdated     = "ledger.fee_amount.updated"
	EventTypeAcademicYearAdvanced = "ledger.academic_year.advanced"
	EventTypeYearArchived         = "ledger.year.archived"
)

// StudentRegisteredEvent is raised when a student joins the roster
type StudentRegisteredEvent struct {
	shared.BaseDomainEvent
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

// NewStudentRegisteredEvent creates a student registered event
func NewStudentRegisteredEvent(s *Student) *StudentRegisteredEvent {
	return &StudentRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStudentRegistered, "Student", s.ID),
		Name:            s.Name,
		Grade:           s.Grade,
	}
}

// StudentPromotedEvent is raised when a student moves to the next grade
type StudentPromotedEvent struct {
	shared.BaseDomainEvent
	FromGrade      string          `json:"from_grade"`
	ToGrade        string          `json:"to_grade"`
	CarriedBalance decimal.Decimal `json:"carried_balance"`
}

// NewStudentPromotedEvent creates a student promoted event
func NewStudentPromotedEvent(s *Student, fromGrade, toGrade string, carriedBalance decimal.Decimal) *StudentPromotedEvent {
	return &StudentPromotedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStudentPromoted, "Student", s.ID),
		FromGrade:       fromGrade,
		ToGrade:         toGrade,
		CarriedBalance:  carriedBalance,
	}
}

// PaymentRecordedEvent is raised when a payment is appended to the ledger
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	StudentID uuid.UUID       `json:"student_id"`
	Amount    decimal.Decimal `json:"amount"`
	ReceiptNo string          `json:"receipt_no"`
	Term      Term            `json:"term"`
}

// NewPaymentRecordedEvent creates a payment recorded event
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, "Payment", p.ID),
		StudentID:       p.StudentID,
		Amount:          p.Amount,
		ReceiptNo:       p.ReceiptNo,
		Term:            p.Term,
	}
}

// PaymentVoidedEvent is raised when a payment is removed from the ledger
type PaymentVoidedEvent struct {
	shared.BaseDomainEvent
	StudentID uuid.UUID       `json:"student_id"`
	Amount    decimal.Decimal `json:"amount"`
	ReceiptNo string          `json:"receipt_no"`
}

// NewPaymentVoidedEvent creates a payment voided event
func NewPaymentVoidedEvent(p *Payment) *PaymentVoidedEvent {
	return &PaymentVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentVoided, "Payment", p.ID),
		StudentID:       p.StudentID,
		Amount:          p.Amount,
		ReceiptNo:       p.ReceiptNo,
	}
}

// FeeItemAddedEvent is raised when a fee item enters the catalog
type FeeItemAddedEvent struct {
	shared.BaseDomainEvent
	Key FeeKey `json:"key"`
}

// NewFeeItemAddedEvent creates a fee item added event
func NewFeeItemAddedEvent(s *Settings, key FeeKey) *FeeItemAddedEvent {
	return &FeeItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFeeItemAdded, "Settings", s.ID),
		Key:             key,
	}
}

// FeeItemDeletedEvent is raised when a fee item leaves the catalog
type FeeItemDeletedEvent struct {
	shared.BaseDomainEvent
	Key FeeKey `json:"key"`
}

// NewFeeItemDeletedEvent creates a fee item deleted event
func NewFeeItemDeletedEvent(s *Settings, key FeeKey) *FeeItemDeletedEvent {
	return &FeeItemDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFeeItemDeleted, "Settings", s.ID),
		Key:             key,
	}
}

// FeeAmountUpdatedEvent is raised when a grade's amount for a key changes
type FeeAmountUpdatedEvent struct {
	shared.BaseDomainEvent
	Grade  string          `json:"grade"`
	Key    FeeKey          `json:"key"`
	Amount decimal.Decimal `json:"amount"`
}

// NewFeeAmountUpdatedEvent creates a fee amount updated event
func NewFeeAmountUpdatedEvent(s *Settings, grade string, key FeeKey, amount decimal.Decimal) *FeeAmountUpdatedEvent {
	return &FeeAmountUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFeeAmountUpdated, "Settings", s.ID),
		Grade:           grade,
		Key:             key,
		Amount:          amount,
	}
}

// AcademicYearAdvancedEvent is raised when the settings move to a new year
type AcademicYearAdvancedEvent struct {
	shared.BaseDomainEvent
	PreviousYear string `json:"previous_year"`
	NextYear     string `json:"next_year"`
}

// NewAcademicYearAdvancedEvent creates an academic year advanced event
func NewAcademicYearAdvancedEvent(s *Settings, previousYear, nextYear string) *AcademicYearAdvancedEvent {
	return &AcademicYearAdvancedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAcademicYearAdvanced, "Settings", s.ID),
		PreviousYear:    previousYear,
		NextYear:        nextYear,
	}
}

// YearArchivedEvent is raised when a year-end archive snapshot is taken
type YearArchivedEvent struct {
	shared.BaseDomainEvent
	Year         string `json:"year"`
	StudentCount int    `json:"student_count"`
	PaymentCount int    `json:"payment_count"`
}

// NewYearArchivedEvent creates a year archived event
func NewYearArchivedEvent(a *YearArchive) *YearArchivedEvent {
	return &YearArchivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeYearArchived, "YearArchive", a.ID),
		Year:            a.Year,
		StudentCount:    len(a.Students),
		PaymentCount:    len(a.Payments),
	}
}
