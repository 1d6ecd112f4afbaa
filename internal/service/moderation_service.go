package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/madaghaxx/Noctua/internal/cache"
	"github.com/madaghaxx/Noctua/internal/cascade"
	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/observability"
	"github.com/madaghaxx/Noctua/internal/repository"
)

// Analytics is the admin dashboard summary.
type Analytics struct {
	TotalUsers     int64 `json:"total_users"`
	TotalPosts     int64 `json:"total_posts"`
	TotalComments  int64 `json:"total_comments"`
	TotalReports   int64 `json:"total_reports"`
	PendingReports int64 `json:"pending_reports"`
	BannedUsers    int64 `json:"banned_users"`
}

// DeletionSummary reports how many rows a cascade removed.
type DeletionSummary struct {
	Root        string           `json:"root"`
	RootID      uint             `json:"root_id"`
	RowsDeleted int64            `json:"rows_deleted"`
	ByStep      map[string]int64 `json:"by_step"`
}

func summarize(res cascade.Result) *DeletionSummary {
	sum := &DeletionSummary{
		Root:        string(res.Plan.Root),
		RootID:      res.Plan.RootID,
		RowsDeleted: res.Total(),
		ByStep:      make(map[string]int64),
	}
	for _, s := range res.Steps {
		sum.ByStep[string(s.Step.Kind)] += s.Rows
	}
	return sum
}

type ModerationService struct {
	store   repository.Store
	deleter *cascade.Deleter
	cache   *cache.Cache
	now     func() time.Time
}

func NewModerationService(store repository.Store, deleter *cascade.Deleter, c *cache.Cache) *ModerationService {
	return &ModerationService{store: store, deleter: deleter, cache: c, now: time.Now}
}

// ResolveReport moves a PENDING report to RESOLVED.
func (s *ModerationService) ResolveReport(ctx context.Context, reportID uint, note string) (*models.Report, error) {
	return s.transition(ctx, "resolve_report", reportID, models.ReportResolved, note)
}

// DismissReport moves a PENDING report to DISMISSED.
func (s *ModerationService) DismissReport(ctx context.Context, reportID uint, note string) (*models.Report, error) {
	return s.transition(ctx, "dismiss_report", reportID, models.ReportDismissed, note)
}

func (s *ModerationService) transition(ctx context.Context, action string, reportID uint, to models.ReportStatus, note string) (*models.Report, error) {
	reports := s.store.Reports()
	if _, err := reports.GetByID(ctx, reportID); err != nil {
		return nil, s.record(ctx, action, reportID, err)
	}
	ok, err := reports.Transition(ctx, reportID, to, note, s.now().UTC())
	if err != nil {
		return nil, s.record(ctx, action, reportID, err)
	}
	if !ok {
		return nil, s.record(ctx, action, reportID, models.NewConflictError("Report has already been resolved"))
	}

	s.cache.Invalidate(ctx, cache.AnalyticsKey)
	if err := s.record(ctx, action, reportID, nil); err != nil {
		return nil, err
	}
	return reports.GetByID(ctx, reportID)
}

// BanUser flips userID to BANNED. Nothing else is touched.
func (s *ModerationService) BanUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, s.record(ctx, "ban_user", userID, err)
	}
	if user.IsAdmin() {
		return nil, s.record(ctx, "ban_user", userID, models.NewBadRequestError("Cannot ban an administrator"))
	}
	return s.setStatus(ctx, "ban_user", user, models.StatusBanned)
}

// UnbanUser flips userID back to ACTIVE.
func (s *ModerationService) UnbanUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, s.record(ctx, "unban_user", userID, err)
	}
	return s.setStatus(ctx, "unban_user", user, models.StatusActive)
}

// SetRole promotes or demotes userID.
func (s *ModerationService) SetRole(ctx context.Context, userID uint, role models.Role) error {
	if role != models.RoleAdmin && role != models.RoleUser {
		return s.record(ctx, "set_role", userID, models.NewValidationError("Invalid role"))
	}
	return s.record(ctx, "set_role", userID, s.store.Users().SetRole(ctx, userID, role))
}

func (s *ModerationService) setStatus(ctx context.Context, action string, user *models.User, status models.UserStatus) (*models.User, error) {
	if err := s.store.Users().SetStatus(ctx, user.ID, status); err != nil {
		return nil, s.record(ctx, action, user.ID, err)
	}
	user.Status = status
	s.cache.Invalidate(ctx, cache.ModerationKeys(user.ID)...)
	return user, s.record(ctx, action, user.ID, nil)
}

// DeleteUser removes userID and everything tied to them in one transaction.
func (s *ModerationService) DeleteUser(ctx context.Context, adminID, userID uint) (*DeletionSummary, error) {
	if adminID == userID {
		return nil, s.record(ctx, "delete_user", userID, models.NewBadRequestError("Cannot delete your own account from the admin panel"))
	}
	res, err := s.deleter.DeleteUser(ctx, userID, nil)
	if err != nil {
		return nil, s.record(ctx, "delete_user", userID, err)
	}
	s.cache.Invalidate(ctx, cache.ModerationKeys(userID)...)
	return summarize(res), s.record(ctx, "delete_user", userID, nil)
}

// DeletePost removes a post as an administrator, regardless of owner.
func (s *ModerationService) DeletePost(ctx context.Context, postID uint) (*DeletionSummary, error) {
	res, err := s.deleter.DeletePost(ctx, postID, nil)
	if err != nil {
		return nil, s.record(ctx, "delete_post", postID, err)
	}
	s.cache.Invalidate(ctx, cache.AnalyticsKey)
	return summarize(res), s.record(ctx, "delete_post", postID, nil)
}

// HidePost removes a post from listings and the feed without deleting it.
func (s *ModerationService) HidePost(ctx context.Context, postID uint) error {
	return s.record(ctx, "hide_post", postID, s.store.Posts().SetHidden(ctx, postID, true))
}

// UnhidePost restores a hidden post.
func (s *ModerationService) UnhidePost(ctx context.Context, postID uint) error {
	return s.record(ctx, "unhide_post", postID, s.store.Posts().SetHidden(ctx, postID, false))
}

// ListReports returns reports newest first, optionally filtered by status.
func (s *ModerationService) ListReports(ctx context.Context, status models.ReportStatus, page Page) ([]models.Report, error) {
	if status != "" && !status.Valid() {
		return nil, models.NewValidationError("Invalid report status")
	}
	page = page.normalize()
	return s.store.Reports().List(ctx, status, page.Limit, page.Offset)
}

// ListUsersByStatus returns users with the given account status.
func (s *ModerationService) ListUsersByStatus(ctx context.Context, status models.UserStatus, page Page) ([]models.User, error) {
	page = page.normalize()
	if status == "" {
		return s.store.Users().List(ctx, page.Limit, page.Offset)
	}
	if !status.Valid() {
		return nil, models.NewValidationError("Invalid user status")
	}
	return s.store.Users().ListByStatus(ctx, status, page.Limit, page.Offset)
}

// Analytics returns dashboard counts, served from cache for a short TTL.
func (s *ModerationService) Analytics(ctx context.Context) (*Analytics, error) {
	var a Analytics
	err := s.cache.CacheAside(ctx, "analytics", cache.AnalyticsKey, &a, cache.AnalyticsTTL, func() error {
		var err error
		if a.TotalUsers, err = s.store.Users().Count(ctx); err != nil {
			return err
		}
		if a.BannedUsers, err = s.store.Users().CountByStatus(ctx, models.StatusBanned); err != nil {
			return err
		}
		if a.TotalPosts, err = s.store.Posts().Count(ctx); err != nil {
			return err
		}
		if a.TotalComments, err = s.store.Comments().Count(ctx); err != nil {
			return err
		}
		if a.TotalReports, err = s.store.Reports().Count(ctx); err != nil {
			return err
		}
		a.PendingReports, err = s.store.Reports().CountByStatus(ctx, models.ReportPending)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// record counts and logs a moderation action, passing err through.
func (s *ModerationService) record(ctx context.Context, action string, targetID uint, err error) error {
	result := "ok"
	if err != nil {
		result = models.ErrorCode(err)
	}
	observability.ModerationActions.WithLabelValues(action, result).Inc()

	attrs := []any{
		slog.String("action", action),
		slog.Uint64("target_id", uint64(targetID)),
	}
	switch {
	case err == nil:
		slog.InfoContext(ctx, "moderation action applied", attrs...)
	case models.ErrorCode(err) == models.CodeInternal:
		slog.ErrorContext(ctx, "moderation action failed", append(attrs, slog.String("error", err.Error()))...)
	default:
		slog.WarnContext(ctx, "moderation action rejected", append(attrs, slog.String("error", err.Error()))...)
	}
	return err
}
