package models

import "strings"

// Meeting lifecycle.
const (
	MeetingDraft           = "draft"
	MeetingPendingApproval = "pending_approval"
	MeetingPublished       = "published"
	MeetingFinished        = "finished"
	MeetingCancelled       = "cancelled"
)

// Participation lifecycle. "cancelled" is the withdrawn terminal state a
// participant reaches by leaving.
const (
	ParticipationPending   = "pending"
	ParticipationApproved  = "approved"
	ParticipationRejected  = "rejected"
	ParticipationCancelled = "cancelled"
	ParticipationAttended  = "attended"
)

// Cooperation lifecycle.
const (
	CooperationPending  = "pending"
	CooperationApproved = "approved"
	CooperationRejected = "rejected"
	CooperationRevoked  = "revoked"
	CooperationExpired  = "expired"
)

// Cooperator permissions, granted per meeting.
const (
	PermissionView               = "view"
	PermissionEdit               = "edit"
	PermissionModerate           = "moderate"
	PermissionManageParticipants = "manage_participants"
)

// Allowed-transition tables. A status missing from the map is terminal.
var meetingTransitions = map[string][]string{
	MeetingDraft:           {MeetingPendingApproval, MeetingCancelled},
	MeetingPendingApproval: {MeetingPublished, MeetingDraft, MeetingCancelled},
	MeetingPublished:       {MeetingFinished, MeetingCancelled},
}

var participationTransitions = map[string][]string{
	ParticipationPending:  {ParticipationApproved, ParticipationRejected, ParticipationCancelled},
	ParticipationApproved: {ParticipationAttended, ParticipationCancelled},
}

var cooperationTransitions = map[string][]string{
	CooperationPending:  {CooperationApproved, CooperationRejected},
	CooperationApproved: {CooperationRevoked, CooperationExpired},
}

func allowed(table map[string][]string, from, to string) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

func MeetingCanTransition(from, to string) bool {
	return allowed(meetingTransitions, from, to)
}

func ParticipationCanTransition(from, to string) bool {
	return allowed(participationTransitions, from, to)
}

func CooperationCanTransition(from, to string) bool {
	return allowed(cooperationTransitions, from, to)
}

var allPermissions = []string{
	PermissionView,
	PermissionEdit,
	PermissionModerate,
	PermissionManageParticipants,
}

func ValidPermission(p string) bool {
	for _, known := range allPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// NormalizePermissions validates and de-duplicates a requested permission
// subset. Returns false if any entry is unknown.
func NormalizePermissions(perms []string) ([]string, bool) {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if !ValidPermission(p) {
			return nil, false
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, true
}
