package models

import "time"

// Notification types emitted by status transitions.
const (
	NotifyMeetingApproved       = "meeting_approved"
	NotifyMeetingRejected       = "meeting_rejected"
	NotifyMeetingCancelled      = "meeting_cancelled"
	NotifyParticipationRequest  = "participation_request"
	NotifyParticipationApproved = "participation_approved"
	NotifyParticipationRejected = "participation_rejected"
	NotifyCooperationRequest    = "cooperation_request"
	NotifyCooperationApproved   = "cooperation_approved"
	NotifyCooperationRejected   = "cooperation_rejected"
	NotifyCooperationRevoked    = "cooperation_revoked"
)

type Notification struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint   `gorm:"not null;index:idx_notifications_user_read" json:"user_id"`
	Type      string `gorm:"size:30;not null" json:"type"`
	Title     string `gorm:"size:100;not null" json:"title"`
	Message   string `gorm:"type:text;not null" json:"message"`
	MeetingID *uint  `json:"meeting_id"`
	IsRead    bool   `gorm:"not null;default:false;index:idx_notifications_user_read" json:"is_read"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User    *User    `gorm:"foreignKey:UserID" json:"-"`
	Meeting *Meeting `gorm:"foreignKey:MeetingID" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
