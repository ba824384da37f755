package models

import "time"

// MeetingParticipation is the join row between a user and a meeting they
// asked to attend. One row per (meeting, participant).
type MeetingParticipation struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	MeetingID     uint   `gorm:"not null;uniqueIndex:idx_participation_pair" json:"meeting_id"`
	ParticipantID uint   `gorm:"not null;uniqueIndex:idx_participation_pair" json:"participant_id"`
	Status        string `gorm:"size:20;not null;default:'pending'" json:"status"`

	Message         *string `gorm:"size:500" json:"message"`
	ResponseMessage *string `gorm:"size:500" json:"response_message"`
	ApprovedByID    *uint   `json:"approved_by_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Meeting     *Meeting `gorm:"foreignKey:MeetingID" json:"meeting,omitempty"`
	Participant *User    `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
}

func (MeetingParticipation) TableName() string {
	return "meeting_participations"
}

// Active reports whether the row still occupies a participant slot.
func (p MeetingParticipation) Active() bool {
	return p.Status == ParticipationPending || p.Status == ParticipationApproved || p.Status == ParticipationAttended
}
