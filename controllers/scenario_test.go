package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/tertulia/meeting-server/config"
	"github.com/tertulia/meeting-server/models"
)

// The whole happy path in one go: draft, approval queue, publication, a join
// request, its approval, and a comment — plus an outsider bouncing off.
func TestFullMeetingScenario(t *testing.T) {
	r := setupTest(t)
	_, creatorToken := newUser(t, models.RoleCreator, false)
	_, adminToken := newUser(t, models.RoleParticipant, true)
	joiner, joinerToken := newUser(t, models.RoleParticipant, false)
	_, outsiderToken := newUser(t, models.RoleParticipant, false)
	cat := newCategory(t)

	w := doJSON(r, "POST", "/api/meetings", creatorToken, meetingPayload(cat.ID))
	wantStatus(t, w, http.StatusCreated)
	meetingID := uint(decodeBody(t, w)["data"].(map[string]interface{})["id"].(float64))
	base := fmt.Sprintf("/api/meetings/%d", meetingID)

	w = doJSON(r, "POST", base+"/submit", creatorToken, nil)
	wantStatus(t, w, http.StatusOK)

	w = doJSON(r, "POST", base+"/approve", adminToken, map[string]interface{}{"action": "approve"})
	wantStatus(t, w, http.StatusOK)

	w = doJSON(r, "POST", base+"/join", joinerToken, nil)
	wantStatus(t, w, http.StatusCreated)

	var p models.MeetingParticipation
	config.DB.Where("meeting_id = ? AND participant_id = ?", meetingID, joiner.ID).First(&p)
	if p.Status != models.ParticipationPending {
		t.Fatalf("join status = %q, want pending", p.Status)
	}

	w = doJSON(r, "PUT", base+"/participants", creatorToken, map[string]interface{}{
		"participation_id": p.ID,
		"action":           "approve",
	})
	wantStatus(t, w, http.StatusOK)

	w = doJSON(r, "POST", "/api/comments", joinerToken, map[string]interface{}{
		"meeting_id": meetingID,
		"content":    "Looking forward to it",
	})
	wantStatus(t, w, http.StatusCreated)

	w = doJSON(r, "POST", "/api/comments", outsiderToken, map[string]interface{}{
		"meeting_id": meetingID,
		"content":    "I was never approved",
	})
	wantStatus(t, w, http.StatusForbidden)
}
