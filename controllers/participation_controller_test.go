package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/tertulia/meeting-server/config"
	"github.com/tertulia/meeting-server/models"
)

func TestJoinApprovalFlow(t *testing.T) {
	r := setupTest(t)
	owner, ownerToken := newUser(t, models.RoleCreator, false)
	participant, participantToken := newUser(t, models.RoleParticipant, false)
	m := newMeeting(t, owner, models.MeetingPublished)

	joinPath := fmt.Sprintf("/api/meetings/%d/join", m.ID)

	w := doJSON(r, "POST", joinPath, participantToken, map[string]interface{}{
		"message": "I love this author",
	})
	wantStatus(t, w, http.StatusCreated)
	body := decodeBody(t, w)
	if body["status"] != models.ParticipationPending {
		t.Fatalf("join status = %v, want pending", body["status"])
	}

	// A second join is a conflict, whatever the current status.
	w = doJSON(r, "POST", joinPath, participantToken, nil)
	wantStatus(t, w, http.StatusConflict)

	var p models.MeetingParticipation
	config.DB.Where("meeting_id = ? AND participant_id = ?", m.ID, participant.ID).First(&p)

	managePath := fmt.Sprintf("/api/meetings/%d/participants", m.ID)
	w = doJSON(r, "PUT", managePath, ownerToken, map[string]interface{}{
		"participation_id": p.ID,
		"action":           "approve",
	})
	wantStatus(t, w, http.StatusOK)

	config.DB.First(&p, p.ID)
	if p.Status != models.ParticipationApproved {
		t.Fatalf("status after approve = %q, want approved", p.Status)
	}
	if p.ApprovedByID == nil || *p.ApprovedByID != owner.ID {
		t.Fatalf("approved_by = %v, want %d", p.ApprovedByID, owner.ID)
	}

	// Approved to attended is allowed, rejected from attended is not.
	w = doJSON(r, "PUT", managePath, ownerToken, map[string]interface{}{
		"participation_id": p.ID,
		"action":           "attend",
	})
	wantStatus(t, w, http.StatusOK)

	w = doJSON(r, "PUT", managePath, ownerToken, map[string]interface{}{
		"participation_id": p.ID,
		"action":           "reject",
	})
	wantStatus(t, w, http.StatusBadRequest)
}

func TestJoinWithoutApprovalRequirement(t *testing.T) {
	r := setupTest(t)
	owner, _ := newUser(t, models.RoleCreator, false)
	_, participantToken := newUser(t, models.RoleParticipant, false)
	m := newMeeting(t, owner, models.MeetingPublished, func(m *models.Meeting) {
		m.RequiresApproval = false
	})

	w := doJSON(r, "POST", fmt.Sprintf("/api/meetings/%d/join", m.ID), participantToken, nil)
	wantStatus(t, w, http.StatusCreated)
	body := decodeBody(t, w)
	if body["status"] != models.ParticipationApproved {
		t.Fatalf("join status = %v, want approved", body["status"])
	}
}

func TestJoinUnpublishedMeeting(t *testing.T) {
	r := setupTest(t)
	owner, _ := newUser(t, models.RoleCreator, false)
	_, participantToken := newUser(t, models.RoleParticipant, false)
	m := newMeeting(t, owner, models.MeetingDraft)

	w := doJSON(r, "POST", fmt.Sprintf("/api/meetings/%d/join", m.ID), participantToken, nil)
	wantStatus(t, w, http.StatusBadRequest)
}

func TestJoinFullMeeting(t *testing.T) {
	r := setupTest(t)
	owner, _ := newUser(t, models.RoleCreator, false)
	first, _ := newUser(t, models.RoleParticipant, false)
	_, secondToken := newUser(t, models.RoleParticipant, false)

	one := uint(1)
	m := newMeeting(t, owner, models.MeetingPublished, func(m *models.Meeting) {
		m.MaxParticipants = &one
	})
	addParticipation(t, m, first, models.ParticipationApproved)

	w := doJSON(r, "POST", fmt.Sprintf("/api/meetings/%d/join", m.ID), secondToken, nil)
	wantStatus(t, w, http.StatusBadRequest)
}

func TestLeaveMeeting(t *testing.T) {
	r := setupTest(t)
	owner, _ := newUser(t, models.RoleCreator, false)
	participant, participantToken := newUser(t, models.RoleParticipant, false)
	m := newMeeting(t, owner, models.MeetingPublished)
	addParticipation(t, m, participant, models.ParticipationApproved)

	leavePath := fmt.Sprintf("/api/meetings/%d/leave", m.ID)
	w := doJSON(r, "POST", leavePath, participantToken, nil)
	wantStatus(t, w, http.StatusOK)

	// The record survives in the cancelled state.
	var p models.MeetingParticipation
	if err := config.DB.Where("meeting_id = ? AND participant_id = ?", m.ID, participant.ID).
		First(&p).Error; err != nil {
		t.Fatalf("participation deleted on leave: %v", err)
	}
	if p.Status != models.ParticipationCancelled {
		t.Fatalf("status after leave = %q, want cancelled", p.Status)
	}

	// Cancelled is terminal, leaving again fails.
	w = doJSON(r, "POST", leavePath, participantToken, nil)
	wantStatus(t, w, http.StatusBadRequest)

	// The cancelled record also blocks a second join: participation is
	// one-shot per meeting.
	w = doJSON(r, "POST", fmt.Sprintf("/api/meetings/%d/join", m.ID), participantToken, nil)
	wantStatus(t, w, http.StatusConflict)
}

func TestParticipantEmailsOnlyForManagers(t *testing.T) {
	r := setupTest(t)
	owner, ownerToken := newUser(t, models.RoleCreator, false)
	participant, _ := newUser(t, models.RoleParticipant, false)
	_, strangerToken := newUser(t, models.RoleParticipant, false)
	m := newMeeting(t, owner, models.MeetingPublished)
	addParticipation(t, m, participant, models.ParticipationApproved)

	path := fmt.Sprintf("/api/meetings/%d/participants", m.ID)

	w := doJSON(r, "GET", path, ownerToken, nil)
	wantStatus(t, w, http.StatusOK)
	if !jsonContains(w.Body.String(), participant.Email) {
		t.Error("owner should see participant emails")
	}

	w = doJSON(r, "GET", path, strangerToken, nil)
	wantStatus(t, w, http.StatusOK)
	if jsonContains(w.Body.String(), participant.Email) {
		t.Error("strangers must not see participant emails")
	}
}

func TestExportParticipantsCSV(t *testing.T) {
	r := setupTest(t)
	owner, ownerToken := newUser(t, models.RoleCreator, false)
	participant, _ := newUser(t, models.RoleParticipant, false)
	_, strangerToken := newUser(t, models.RoleParticipant, false)
	m := newMeeting(t, owner, models.MeetingPublished)
	addParticipation(t, m, participant, models.ParticipationApproved)

	path := fmt.Sprintf("/api/meetings/%d/participants/export", m.ID)

	w := doJSON(r, "GET", path, strangerToken, nil)
	wantStatus(t, w, http.StatusForbidden)

	w = doJSON(r, "GET", path, ownerToken, nil)
	wantStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if !jsonContains(w.Body.String(), participant.Email) {
		t.Error("export should include participant email")
	}
}
