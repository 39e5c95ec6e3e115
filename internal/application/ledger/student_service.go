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

// StudentService handles roster operations and per-student financial views
type StudentService struct {
	store     ledger.Store
	publisher shared.EventPublisher
}

// NewStudentService creates a new StudentService
func NewStudentService(store ledger.Store, publisher shared.EventPublisher) *StudentService {
	return &StudentService{store: store, publisher: publisher}
}

// RegisterStudentRequest carries the roster entry for a new student
type RegisterStudentRequest struct {
	Name            string
	AdmissionNo     string
	Grade           string
	Category        ledger.StudentCategory
	SelectedFees    []ledger.FeeKey
	PreviousArrears decimal.Decimal
}

// UpdateStudentRequest carries the editable descriptive fields
type UpdateStudentRequest struct {
	Name        string
	AdmissionNo string
	Category    ledger.StudentCategory
}

// StudentResponse represents a student with derived financials
type StudentResponse struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	AdmissionNo     string           `json:"admission_no"`
	Grade           string           `json:"grade"`
	Category        string           `json:"category"`
	SelectedFees    []ledger.FeeKey  `json:"selected_fees"`
	PreviousArrears decimal.Decimal  `json:"previous_arrears"`
	TotalDue        decimal.Decimal  `json:"total_due"`
	TotalPaid       decimal.Decimal  `json:"total_paid"`
	Balance         decimal.Decimal  `json:"balance"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Version         int              `json:"version"`
}

func toStudentResponse(student *ledger.Student, fin ledger.Financials) *StudentResponse {
	return &StudentResponse{
		ID:              student.ID,
		Name:            student.Name,
		AdmissionNo:     student.AdmissionNo,
		Grade:           student.Grade,
		Category:        student.Category.String(),
		SelectedFees:    student.EffectiveSelectedFees(),
		PreviousArrears: student.PreviousArrears,
		TotalDue:        fin.TotalDue,
		TotalPaid:       fin.TotalPaid,
		Balance:         fin.Balance,
		CreatedAt:       student.CreatedAt,
		UpdatedAt:       student.UpdatedAt,
		Version:         student.GetVersion(),
	}
}

// RegisterStudent adds a student to the roster. The grade must be part of
// the configured grade sequence.
func (s *StudentService) RegisterStudent(ctx context.Context, req RegisterStudentRequest) (*StudentResponse, error) {
	var created *ledger.Student

	err := s.store.WithinTx(ctx, func(repos ledger.Repositories) error {
		settings, err := repos.Settings.Get(ctx)
		if err != nil {
			return err
		}
		if !settings.Grades.Contains(req.Grade) {
			return shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Grade %q is not in the configured grade sequence", req.Grade))
		}

		student, err := ledger.NewStudent(req.Name, req.AdmissionNo, req.Grade,
			req.Category, req.SelectedFees, req.PreviousArrears)
		if err != nil {
			return err
		}
		if err := repos.Students.Save(ctx, student); err != nil {
			return err
		}
		created = student
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishFrom(ctx, created)
	return s.GetStudent(ctx, created.ID)
}

// GetStudent returns a student with live financials
func (s *StudentService) GetStudent(ctx context.Context, id uuid.UUID) (*StudentResponse, error) {
	repos := s.store.Repositories()

	student, err := repos.Students.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	settings, err := repos.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := repos.Payments.FindByStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	return toStudentResponse(student, ledger.ComputeFinancials(student, payments, settings)), nil
}

// ListStudents returns the roster with live financials, optionally filtered
// by grade
func (s *StudentService) ListStudents(ctx context.Context, grade string) ([]StudentResponse, error) {
	repos := s.store.Repositories()

	var students []ledger.Student
	var err error
	if grade != "" {
		students, err = repos.Students.FindByGrade(ctx, grade)
	} else {
		students, err = repos.Students.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	settings, err := repos.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := repos.Payments.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]StudentResponse, len(students))
	for i := range students {
		fin := ledger.ComputeFinancials(&students[i], payments, settings)
		responses[i] = *toStudentResponse(&students[i], fin)
	}
	return responses, nil
}

// UpdateStudent changes descriptive fields; grade and arrears are managed by
// promotion
func (s *StudentService) UpdateStudent(ctx context.Context, id uuid.UUID, req UpdateStudentRequest) (*StudentResponse, error) {
	err := s.store.WithinTx(ctx, func(repos ledger.Repositories) error {
		student, err := repos.Students.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := student.UpdateDetails(req.Name, req.AdmissionNo, req.Category); err != nil {
			return err
		}
		return repos.Students.Save(ctx, student)
	})
	if err != nil {
		return nil, err
	}
	return s.GetStudent(ctx, id)
}

// RemoveStudent deletes a student and the student's active payments
func (s *StudentService) RemoveStudent(ctx context.Context, id uuid.UUID) error {
	return s.store.WithinTx(ctx, func(repos ledger.Repositories) error {
		if _, err := repos.Students.FindByID(ctx, id); err != nil {
			return err
		}
		payments, err := repos.Payments.FindByStudent(ctx, id)
		if err != nil {
			return err
		}
		for i := range payments {
			if err := repos.Payments.Delete(ctx, payments[i].ID); err != nil {
				return err
			}
		}
		return repos.Students.Delete(ctx, id)
	})
}

// ToggleFee flips one fee key in the student's selection and returns the
// recalculated financials
func (s *StudentService) ToggleFee(ctx context.Context, id uuid.UUID, key ledger.FeeKey) (*StudentResponse, error) {
	err := s.store.WithinTx(ctx, func(repos ledger.Repositories) error {
		student, err := repos.Students.FindByID(ctx, id)
		if err != nil {
			return err
		}
		student.ToggleFee(key)
		return repos.Students.Save(ctx, student)
	})
	if err != nil {
		return nil, err
	}
	return s.GetStudent(ctx, id)
}

// Promote moves a student to the next grade in the configured sequence. The
// outstanding balance is computed against the pre-promotion grade and becomes
// the student's carried arrears; prior arrears are already folded into that
// balance. Payments are left in place as the historical record.
func (s *StudentService) Promote(ctx context.Context, id uuid.UUID) (*StudentResponse, error) {
	var promoted *ledger.Student

	err := s.store.WithinTx(ctx, func(repos ledger.Repositories) error {
		student, err := repos.Students.FindByID(ctx, id)
		if err != nil {
			return err
		}
		settings, err := repos.Settings.Get(ctx)
		if err != nil {
			return err
		}
		nextGrade, err := settings.NextGrade(student.Grade)
		if err != nil {
			return err
		}
		payments, err := repos.Payments.FindByStudent(ctx, id)
		if err != nil {
			return err
		}

		fin := ledger.ComputeFinancials(student, payments, settings)
		student.PromoteTo(nextGrade, fin.Balance)
		if err := repos.Students.Save(ctx, student); err != nil {
			return err
		}
		promoted = student
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishFrom(ctx, promoted)
	return s.GetStudent(ctx, id)
}

func (s *StudentService) publishFrom(ctx context.Context, student *ledger.Student) {
	if s.publisher == nil || student == nil {
		return
	}
	events := student.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
	student.ClearDomainEvents()
}
