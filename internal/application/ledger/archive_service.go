package ledger

import (
	"context"
	"time"

	"github.com/edutrack/backend/internal/domain/ledger"
	"github.com/edutrack/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ArchiveService handles the end-of-year rollover and archive retrieval
type ArchiveService struct {
	store     ledger.Store
	publisher shared.EventPublisher
}

// NewArchiveService creates a new ArchiveService
func NewArchiveService(store ledger.Store, publisher shared.EventPublisher) *ArchiveService {
	return &ArchiveService{store: store, publisher: publisher}
}

// ArchiveSummary represents an archive in list responses
type ArchiveSummary struct {
	ID           uuid.UUID `json:"id"`
	Year         string    `json:"year"`
	StudentCount int       `json:"student_count"`
	PaymentCount int       `json:"payment_count"`
	ArchivedAt   time.Time `json:"archived_at"`
}

// ArchiveResponse is the full snapshot of one archived year
type ArchiveResponse struct {
	ArchiveSummary
	Students []ledger.Student  `json:"students"`
	Payments []PaymentResponse `json:"payments"`
}

func toArchiveSummary(a *ledger.YearArchive) ArchiveSummary {
	return ArchiveSummary{
		ID:           a.ID,
		Year:         a.Year,
		StudentCount: len(a.Students),
		PaymentCount: len(a.Payments),
		ArchivedAt:   a.ArchivedAt,
	}
}

// ArchiveYear closes the current academic year: the roster and the active
// payment ledger are snapshotted under the outgoing year label, active
// payments are cleared, and the settings advance to the next year. The
// roster itself, the fee catalog, fee selections and carried arrears are
// deliberately untouched; moving balances between years is promotion's job.
func (s *ArchiveService) ArchiveYear(ctx context.Context, nextAcademicYear string) (*ArchiveSummary, error) {
	var archived *ledger.YearArchive

	err := s.store.WithinTx(ctx, func(repos ledger.Repositories) error {
		settings, err := repos.Settings.Get(ctx)
		if err != nil {
			return err
		}
		students, err := repos.Students.FindAll(ctx)
		if err != nil {
			return err
		}
		payments, err := repos.Payments.FindAll(ctx)
		if err != nil {
			return err
		}

		archive, err := ledger.NewYearArchive(settings.AcademicYear, students, payments)
		if err != nil {
			return err
		}
		if err := repos.Archives.Save(ctx, archive); err != nil {
			return err
		}
		if err := repos.Payments.DeleteAll(ctx); err != nil {
			return err
		}
		if err := settings.AdvanceAcademicYear(nextAcademicYear); err != nil {
			return err
		}
		if err := repos.Settings.Save(ctx, settings); err != nil {
			return err
		}
		archived = archive
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, ledger.NewYearArchivedEvent(archived))
	}
	summary := toArchiveSummary(archived)
	return &summary, nil
}

// ListArchives returns summaries of every archived year
func (s *ArchiveService) ListArchives(ctx context.Context) ([]ArchiveSummary, error) {
	archives, err := s.store.Repositories().Archives.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]ArchiveSummary, len(archives))
	for i := range archives {
		summaries[i] = toArchiveSummary(&archives[i])
	}
	return summaries, nil
}

// GetArchive returns the full snapshot for one archived year
func (s *ArchiveService) GetArchive(ctx context.Context, year string) (*ArchiveResponse, error) {
	archive, err := s.store.Repositories().Archives.FindByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	return &ArchiveResponse{
		ArchiveSummary: toArchiveSummary(archive),
		Students:       archive.Students,
		Payments:       toPaymentResponses(archive.Payments),
	}, nil
}
