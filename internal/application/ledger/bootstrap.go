package ledger

import (
	"context"
	"errors"

	"github.com/edutrack/backend/internal/domain/ledger"
	"github.com/edutrack/backend/internal/domain/shared"
)

// EnsureSettings loads the settings aggregate, seeding it from the supplied
// school identity on first start. Once a row exists the seed values are
// ignored.
func EnsureSettings(ctx context.Context, store ledger.Store, schoolName, currency, academicYear string, grades []string) (*ledger.Settings, error) {
	repos := store.Repositories()

	settings, err := repos.Settings.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	settings, err = ledger.NewSettings(schoolName, currency, academicYear, grades)
	if err != nil {
		return nil, err
	}
	if err := repos.Settings.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
