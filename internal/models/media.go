package models

import "time"

// Media is an attachment record owned by a post. File storage lives elsewhere.
type Media struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	FilePath  string    `gorm:"not null" json:"file_path"`
	FileType  string    `json:"file_type"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName pins the table name so it does not depend on pluralization rules.
func (Media) TableName() string {
	return "media"
}
