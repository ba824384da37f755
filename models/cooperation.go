package models

import (
	"encoding/json"
	"time"
)

// MeetingCooperation grants a user a scoped permission subset on one meeting.
// One row per (meeting, cooperator). Permission subsets are stored as JSON
// arrays; the requested set is what the cooperator asked for, the granted set
// is what the creator committed on approval and is the only one consulted by
// authorization checks.
type MeetingCooperation struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	MeetingID    uint   `gorm:"not null;uniqueIndex:idx_cooperation_pair" json:"meeting_id"`
	CooperatorID uint   `gorm:"not null;uniqueIndex:idx_cooperation_pair" json:"cooperator_id"`
	Status       string `gorm:"size:20;not null;default:'pending'" json:"status"`

	RequestedPermissionsJSON string `gorm:"column:requested_permissions;type:text" json:"-"`
	GrantedPermissionsJSON   string `gorm:"column:granted_permissions;type:text" json:"-"`

	Message         *string    `gorm:"size:500" json:"message"`
	ResponseMessage *string    `gorm:"size:500" json:"response_message"`
	ExpiresAt       *time.Time `json:"expires_at"`
	ApprovedByID    *uint      `json:"approved_by_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Meeting    *Meeting `gorm:"foreignKey:MeetingID" json:"meeting,omitempty"`
	Cooperator *User    `gorm:"foreignKey:CooperatorID" json:"cooperator,omitempty"`
}

func (MeetingCooperation) TableName() string {
	return "meeting_cooperations"
}

func encodePermissions(perms []string) string {
	if perms == nil {
		perms = []string{}
	}
	b, _ := json.Marshal(perms)
	return string(b)
}

func decodePermissions(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}

func (c *MeetingCooperation) SetRequestedPermissions(perms []string) {
	c.RequestedPermissionsJSON = encodePermissions(perms)
}

func (c *MeetingCooperation) SetGrantedPermissions(perms []string) {
	c.GrantedPermissionsJSON = encodePermissions(perms)
}

func (c MeetingCooperation) RequestedPermissions() []string {
	return decodePermissions(c.RequestedPermissionsJSON)
}

func (c MeetingCooperation) GrantedPermissions() []string {
	return decodePermissions(c.GrantedPermissionsJSON)
}

// IsActive is the single authorization gate for cooperations. A row past its
// expiry never authorizes, even while the sweep has not flipped its stored
// status to expired yet.
func (c MeetingCooperation) IsActive(now time.Time) bool {
	if c.Status != CooperationApproved {
		return false
	}
	return c.ExpiresAt == nil || c.ExpiresAt.After(now)
}

// HasPermission reports whether the cooperation currently authorizes perm.
func (c MeetingCooperation) HasPermission(perm string, now time.Time) bool {
	if !c.IsActive(now) {
		return false
	}
	for _, p := range c.GrantedPermissions() {
		if p == perm {
			return true
		}
	}
	return false
}
