// Package service implements the application's use cases on top of the
// repository Store. Every mutation spanning more than one table runs in a
// single transaction; notification side effects are returned as events and
// written by the Dispatcher inside that same transaction.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/observability"
	"github.com/madaghaxx/Noctua/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is a limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// toggleError maps a toggle failure onto the error taxonomy and records it.
func toggleError(ctx context.Context, kind string, actorID, targetID uint, err error) error {
	if errors.Is(err, repository.ErrToggleConflict) {
		observability.RelationshipToggles.WithLabelValues(kind, "conflict").Inc()
		slog.WarnContext(ctx, "concurrent toggle lost the insert race",
			slog.String("kind", kind),
			slog.Uint64("actor_id", uint64(actorID)),
			slog.Uint64("target_id", uint64(targetID)),
		)
		return models.NewConflictError("concurrent toggle, retry")
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}
