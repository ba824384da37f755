package models

import (
	"reflect"
	"testing"
)

func TestMeetingCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{MeetingDraft, MeetingPendingApproval, true},
		{MeetingDraft, MeetingCancelled, true},
		{MeetingDraft, MeetingPublished, false},
		{MeetingPendingApproval, MeetingPublished, true},
		{MeetingPendingApproval, MeetingDraft, true},
		{MeetingPendingApproval, MeetingCancelled, true},
		{MeetingPublished, MeetingFinished, true},
		{MeetingPublished, MeetingCancelled, true},
		{MeetingPublished, MeetingDraft, false},
		{MeetingFinished, MeetingCancelled, false},
		{MeetingFinished, MeetingPublished, false},
		{MeetingCancelled, MeetingDraft, false},
		{"bogus", MeetingDraft, false},
	}
	for _, tc := range cases {
		if got := MeetingCanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("MeetingCanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestParticipationCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{ParticipationPending, ParticipationApproved, true},
		{ParticipationPending, ParticipationRejected, true},
		{ParticipationPending, ParticipationCancelled, true},
		{ParticipationPending, ParticipationAttended, false},
		{ParticipationApproved, ParticipationAttended, true},
		{ParticipationApproved, ParticipationCancelled, true},
		{ParticipationApproved, ParticipationRejected, false},
		{ParticipationRejected, ParticipationApproved, false},
		{ParticipationCancelled, ParticipationPending, false},
		{ParticipationAttended, ParticipationCancelled, false},
	}
	for _, tc := range cases {
		if got := ParticipationCanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("ParticipationCanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCooperationCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{CooperationPending, CooperationApproved, true},
		{CooperationPending, CooperationRejected, true},
		{CooperationPending, CooperationRevoked, false},
		{CooperationApproved, CooperationRevoked, true},
		{CooperationApproved, CooperationExpired, true},
		{CooperationApproved, CooperationPending, false},
		{CooperationRejected, CooperationApproved, false},
		{CooperationRevoked, CooperationApproved, false},
		{CooperationExpired, CooperationApproved, false},
	}
	for _, tc := range cases {
		if got := CooperationCanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CooperationCanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestNormalizePermissions(t *testing.T) {
	cases := []struct {
		name  string
		in    []string
		want  []string
		valid bool
	}{
		{"empty", []string{}, []string{}, true},
		{"single", []string{"view"}, []string{"view"}, true},
		{"case and space", []string{" View ", "EDIT"}, []string{"view", "edit"}, true},
		{"dedupe", []string{"view", "view", "moderate"}, []string{"view", "moderate"}, true},
		{"all", []string{"view", "edit", "moderate", "manage_participants"},
			[]string{"view", "edit", "moderate", "manage_participants"}, true},
		{"unknown", []string{"view", "delete"}, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, valid := NormalizePermissions(tc.in)
			if valid != tc.valid {
				t.Fatalf("valid = %v, want %v", valid, tc.valid)
			}
			if tc.valid && !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
