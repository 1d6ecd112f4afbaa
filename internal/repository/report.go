package repository

import (
	"context"
	"time"

	"github.com/madaghaxx/Noctua/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines the moderation store operations.
type ReportRepository interface {
	// ExistsForPair reports whether reporterID already filed any report against reportedUserID.
	ExistsForPair(ctx context.Context, reporterID, reportedUserID uint) (bool, error)
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	// Transition moves a PENDING report to a terminal status. It affects nothing when
	// the report has already left PENDING and the returned flag is false.
	Transition(ctx context.Context, id uint, to models.ReportStatus, note string, at time.Time) (bool, error)
	// List returns reports newest first; an empty status lists every report.
	List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error)
	// DetachPost clears reported_post_id on every report pointing at postID.
	DetachPost(ctx context.Context, postID uint) (int64, error)
	// DeleteByUser removes every report where userID is the reporter or the reported user.
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) ExistsForPair(ctx context.Context, reporterID, reportedUserID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("reporter_id = ? AND reported_user_id = ?", reporterID, reportedUserID).
		Count(&count).Error
	return count > 0, internal(err)
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.Status == "" {
		report.Status = models.ReportPending
	}
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		if IsUniqueViolation(err) {
			return models.NewConflictError("You have already reported this user")
		}
		return internal(err)
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, mapError(err, "Report", id)
	}
	return &report, nil
}

func (r *reportRepository) Transition(ctx context.Context, id uint, to models.ReportStatus, note string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportPending).
		Updates(map[string]interface{}{
			"status":      to,
			"admin_note":  note,
			"resolved_at": at,
		})
	if res.Error != nil {
		return false, internal(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *reportRepository) List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, error) {
	var reports []models.Report
	db := r.db.WithContext(ctx).Order("created_at desc, id desc")
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Limit(limit).Offset(offset).Find(&reports).Error
	return reports, internal(err)
}

func (r *reportRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).Count(&count).Error
	return count, internal(err)
}

func (r *reportRepository) CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).Where("status = ?", status).Count(&count).Error
	return count, internal(err)
}

func (r *reportRepository) DetachPost(ctx context.Context, postID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("reported_post_id = ?", postID).
		Update("reported_post_id", nil)
	return res.RowsAffected, internal(res.Error)
}

func (r *reportRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("reporter_id = ? OR reported_user_id = ?", userID, userID).
		Delete(&models.Report{})
	return res.RowsAffected, internal(res.Error)
}
