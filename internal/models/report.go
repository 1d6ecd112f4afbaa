package models

import "time"

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "PENDING"
	ReportResolved  ReportStatus = "RESOLVED"
	ReportDismissed ReportStatus = "DISMISSED"
)

// Valid reports whether s is a known report status.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s ReportStatus) Terminal() bool {
	return s == ReportResolved || s == ReportDismissed
}

// Report is filed by one user against another, optionally pointing at a post.
// A reporter can file at most one report per reported user.
type Report struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	ReporterID     uint         `gorm:"not null;uniqueIndex:idx_reporter_reported" json:"reporter_id"`
	ReportedUserID uint         `gorm:"not null;uniqueIndex:idx_reporter_reported;index" json:"reported_user_id"`
	ReportedPostID *uint        `gorm:"index" json:"reported_post_id,omitempty"`
	Reason         string       `gorm:"type:text;not null" json:"reason"`
	Status         ReportStatus `gorm:"type:varchar(16);not null;default:PENDING;index" json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	ResolvedAt     *time.Time   `json:"resolved_at,omitempty"`
	AdminNote      string       `gorm:"type:text" json:"admin_note"`
}
