package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/madaghaxx/Noctua/internal/cache"
	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/repository"
)

const maxReasonLen = 2000

type CreateReportInput struct {
	ReporterID     uint
	ReportedUserID uint
	ReportedPostID *uint
	Reason         string
}

type ReportService struct {
	store repository.Store
	cache *cache.Cache
}

func NewReportService(store repository.Store, c *cache.Cache) *ReportService {
	return &ReportService{store: store, cache: c}
}

// CreateReport files one report per (reporter, reported user) pair, whatever
// the status of an earlier report.
func (s *ReportService) CreateReport(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	reason := strings.TrimSpace(in.Reason)

	var report *models.Report
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		users := tx.Users()
		if ok, err := users.Exists(ctx, in.ReporterID); err != nil {
			return err
		} else if !ok {
			return models.NewNotFoundError("User", in.ReporterID)
		}
		if ok, err := users.Exists(ctx, in.ReportedUserID); err != nil {
			return err
		} else if !ok {
			return models.NewNotFoundError("User", in.ReportedUserID)
		}
		if in.ReporterID == in.ReportedUserID {
			return models.NewBadRequestError("You cannot report yourself")
		}

		exists, err := tx.Reports().ExistsForPair(ctx, in.ReporterID, in.ReportedUserID)
		if err != nil {
			return err
		}
		if exists {
			return models.NewConflictError("You have already reported this user")
		}

		if in.ReportedPostID != nil {
			if _, err := tx.Posts().GetOwner(ctx, *in.ReportedPostID); err != nil {
				return err
			}
		}
		if reason == "" {
			return models.NewBadRequestError("Reason is required")
		}
		if len(reason) > maxReasonLen {
			return models.NewBadRequestError("Reason too long (max 2000 characters)")
		}

		report = &models.Report{
			ReporterID:     in.ReporterID,
			ReportedUserID: in.ReportedUserID,
			ReportedPostID: in.ReportedPostID,
			Reason:         reason,
			Status:         models.ReportPending,
		}
		// The unique index turns a lost race into the same CONFLICT.
		return tx.Reports().Create(ctx, report)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.AnalyticsKey)
	slog.InfoContext(ctx, "report created",
		slog.Uint64("report_id", uint64(report.ID)),
		slog.Uint64("reported_user_id", uint64(report.ReportedUserID)),
	)
	return report, nil
}
