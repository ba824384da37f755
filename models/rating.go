package models

import "time"

// Rating is a 1-5 star review, at most one per (meeting, user). Writes are
// upserts keyed on that pair.
type Rating struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	MeetingID uint    `gorm:"not null;uniqueIndex:idx_rating_pair" json:"meeting_id"`
	UserID    uint    `gorm:"not null;uniqueIndex:idx_rating_pair" json:"user_id"`
	Stars     int     `gorm:"not null" json:"stars"`
	Review    *string `gorm:"size:500" json:"review"`
	Anonymous bool    `gorm:"not null;default:false" json:"anonymous"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Meeting *Meeting `gorm:"foreignKey:MeetingID" json:"-"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Rating) TableName() string {
	return "ratings"
}
