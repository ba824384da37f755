package models

import (
	"reflect"
	"testing"
	"time"
)

func TestValidateMeetingURL(t *testing.T) {
	cases := []struct {
		name    string
		format  string
		url     string
		wantErr bool
	}{
		{"youtube ok", FormatYouTube, "https://www.youtube.com/watch?v=abc", false},
		{"youtu.be ok", FormatYouTube, "https://youtu.be/abc", false},
		{"youtube wrong host", FormatYouTube, "https://vimeo.com/123", true},
		{"zoom ok", FormatZoom, "https://us02web.zoom.us/j/123", false},
		{"meet ok", FormatMeet, "https://meet.google.com/abc-defg-hij", false},
		{"meet wrong host", FormatMeet, "https://meet.example.com/x", true},
		{"teams ok", FormatTeams, "https://teams.microsoft.com/l/meetup/x", false},
		{"discord ok", FormatDiscord, "https://discord.gg/abc", false},
		{"other accepts anything", FormatOther, "https://example.com/room/1", false},
		{"no scheme", FormatOther, "example.com/room", true},
		{"empty", FormatZoom, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateMeetingURL(tc.format, tc.url)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateMeetingURL(%q, %q) err = %v, wantErr %v",
					tc.format, tc.url, err, tc.wantErr)
			}
		})
	}
}

func TestMeetingEndsAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	m := Meeting{StartsAt: start, DurationMinutes: 90}

	if got, want := m.EndsAt(), start.Add(90*time.Minute); !got.Equal(want) {
		t.Errorf("EndsAt = %v, want %v", got, want)
	}
	if m.IsUpcoming(start.Add(-time.Hour)) != true {
		t.Error("meeting should be upcoming before its start")
	}
	if m.IsPast(start.Add(time.Hour)) {
		t.Error("meeting is not past while still running")
	}
	if !m.IsPast(start.Add(2 * time.Hour)) {
		t.Error("meeting should be past after its end")
	}
}

func TestTagList(t *testing.T) {
	cases := []struct {
		tags string
		want []string
	}{
		{"", nil},
		{"poetry", []string{"poetry"}},
		{"poetry, fiction ,  classics", []string{"poetry", "fiction", "classics"}},
		{" , ,", nil},
	}
	for _, tc := range cases {
		m := Meeting{Tags: tc.tags}
		if got := m.TagList(); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("TagList(%q) = %v, want %v", tc.tags, got, tc.want)
		}
	}
}
