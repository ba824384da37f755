package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Meeting formats (where the call happens).
const (
	FormatYouTube = "youtube"
	FormatZoom    = "zoom"
	FormatTeams   = "teams"
	FormatMeet    = "meet"
	FormatJitsi   = "jitsi"
	FormatDiscord = "discord"
	FormatOther   = "other"
)

type Meeting struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"size:60;not null" json:"title"`
	Responsible string `gorm:"size:40;not null" json:"responsible"`
	Description string `gorm:"size:300;not null" json:"description"`
	CategoryID  uint   `gorm:"not null" json:"category_id"`
	CreatorID   uint   `gorm:"not null;index:idx_meetings_creator_status" json:"creator_id"`

	StartsAt        time.Time `gorm:"not null;index" json:"starts_at"`
	DurationMinutes uint      `gorm:"not null;default:60" json:"duration_minutes"`

	// No gorm defaults on the flags: a default-tagged bool is dropped from
	// the INSERT when false, which would make false unstorable on Create.
	Format           string  `gorm:"size:20;not null" json:"format"`
	MeetingURL       string  `gorm:"size:255;not null" json:"meeting_url"`
	BackupURL        *string `gorm:"size:255" json:"backup_url"`
	MaxParticipants  *uint   `json:"max_participants"`
	RequiresApproval bool    `gorm:"not null" json:"requires_approval"`
	AllowComments    bool    `gorm:"not null" json:"allow_comments"`
	AllowRatings     bool    `gorm:"not null" json:"allow_ratings"`

	Agenda        *string `gorm:"type:text" json:"agenda"`
	Prerequisites *string `gorm:"type:text" json:"prerequisites"`
	Materials     *string `gorm:"type:text" json:"materials"`
	Tags          string  `gorm:"size:200" json:"tags"`

	Status          string     `gorm:"size:20;not null;default:'draft';index:idx_meetings_creator_status" json:"status"`
	PublishedAt     *time.Time `json:"published_at"`
	ApprovedByID    *uint      `json:"approved_by_id"`
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason"`

	ViewCount    uint `gorm:"not null;default:0" json:"view_count"`
	JoinAttempts uint `gorm:"not null;default:0" json:"join_attempts"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	Creator  *User     `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"-"`

	Participations []MeetingParticipation `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"-"`
	Cooperations   []MeetingCooperation   `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"-"`
	Comments       []Comment              `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"-"`
	Ratings        []Rating               `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Meeting) TableName() string {
	return "meetings"
}

func ValidFormat(f string) bool {
	switch f {
	case FormatYouTube, FormatZoom, FormatTeams, FormatMeet, FormatJitsi, FormatDiscord, FormatOther:
		return true
	}
	return false
}

// formatHosts restricts the meeting URL host per format. "other" accepts any.
var formatHosts = map[string][]string{
	FormatYouTube: {"youtube.com", "youtu.be"},
	FormatZoom:    {"zoom.us", "zoom.com"},
	FormatTeams:   {"teams.microsoft.com", "teams.live.com"},
	FormatMeet:    {"meet.google.com"},
	FormatJitsi:   {"meet.jit.si", "jitsi.org"},
	FormatDiscord: {"discord.gg", "discord.com"},
}

// ValidateMeetingURL checks the URL parses and its host matches the format.
func ValidateMeetingURL(format, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid URL %q", rawURL)
	}
	hosts, ok := formatHosts[format]
	if !ok {
		return nil
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return nil
		}
	}
	return fmt.Errorf("URL host %q does not match format %q (expected one of %s)",
		host, format, strings.Join(hosts, ", "))
}

func (m Meeting) EndsAt() time.Time {
	return m.StartsAt.Add(time.Duration(m.DurationMinutes) * time.Minute)
}

func (m Meeting) IsUpcoming(now time.Time) bool {
	return m.StartsAt.After(now)
}

func (m Meeting) IsPast(now time.Time) bool {
	return m.EndsAt().Before(now)
}

// TagList splits the comma-separated tags field.
func (m Meeting) TagList() []string {
	if m.Tags == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(m.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
