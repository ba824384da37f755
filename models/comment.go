package models

import "time"

// Comment on a meeting. ParentID threads replies; depth is unbounded.
type Comment struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	MeetingID uint   `gorm:"not null;index:idx_comments_meeting" json:"meeting_id"`
	AuthorID  uint   `gorm:"not null" json:"author_id"`
	Content   string `gorm:"size:1000;not null" json:"content"`
	ParentID  *uint  `json:"parent_id"`

	IsActive   bool `gorm:"not null" json:"is_active"`
	IsPinned   bool `gorm:"not null;default:false" json:"is_pinned"`
	LikesCount uint `gorm:"not null;default:0" json:"likes_count"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Meeting *Meeting  `gorm:"foreignKey:MeetingID" json:"-"`
	Author  *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Parent  *Comment  `gorm:"foreignKey:ParentID" json:"-"`
	Replies []Comment `gorm:"foreignKey:ParentID" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}
