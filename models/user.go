package models

import "time"

// User roles. Creators own meetings, cooperators can co-manage meetings of
// others, participants only attend.
const (
	RoleParticipant = "participant"
	RoleCooperator  = "cooperator"
	RoleCreator     = "creator"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Role         string    `gorm:"size:20;not null;default:'participant'" json:"role"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	Phone        *string   `gorm:"size:20" json:"phone"`
	Bio          *string   `gorm:"size:500" json:"bio"`
	AvatarURL    *string   `gorm:"size:255" json:"avatar_url"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	CreatedMeetings []Meeting              `gorm:"foreignKey:CreatorID" json:"-"`
	Participations  []MeetingParticipation `gorm:"foreignKey:ParticipantID" json:"-"`
	Cooperations    []MeetingCooperation   `gorm:"foreignKey:CooperatorID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func ValidRole(r string) bool {
	return r == RoleParticipant || r == RoleCooperator || r == RoleCreator
}

// CanCreateMeetings reports whether the role allows owning meetings.
func (u User) CanCreateMeetings() bool {
	return u.Role == RoleCreator || u.Role == RoleCooperator
}

// Public is the JSON shape exposed to other users and auth responses.
func (u User) Public() map[string]interface{} {
	return map[string]interface{}{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"role":       u.Role,
		"is_admin":   u.IsAdmin,
		"phone":      u.Phone,
		"bio":        u.Bio,
		"avatar_url": u.AvatarURL,
		"created_at": u.CreatedAt,
	}
}
