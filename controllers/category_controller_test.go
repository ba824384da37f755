package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/tertulia/meeting-server/models"
)

func TestCategoryWritesAreAdminOnly(t *testing.T) {
	r := setupTest(t)
	_, userToken := newUser(t, models.RoleCreator, false)
	_, adminToken := newUser(t, models.RoleParticipant, true)

	payload := map[string]interface{}{"name": "Poetry"}

	w := doJSON(r, "POST", "/api/categories", userToken, payload)
	wantStatus(t, w, http.StatusForbidden)

	w = doJSON(r, "POST", "/api/categories", adminToken, payload)
	wantStatus(t, w, http.StatusCreated)

	// Names are unique.
	w = doJSON(r, "POST", "/api/categories", adminToken, payload)
	wantStatus(t, w, http.StatusConflict)
}

func TestDeleteCategoryInUse(t *testing.T) {
	r := setupTest(t)
	owner, _ := newUser(t, models.RoleCreator, false)
	_, adminToken := newUser(t, models.RoleParticipant, true)
	m := newMeeting(t, owner, models.MeetingPublished)

	w := doJSON(r, "DELETE", fmt.Sprintf("/api/categories/%d", m.CategoryID), adminToken, nil)
	wantStatus(t, w, http.StatusConflict)
}

func TestListCategoriesPublic(t *testing.T) {
	r := setupTest(t)
	newCategory(t)

	w := doJSON(r, "GET", "/api/categories", "", nil)
	wantStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	if len(body["data"].([]interface{})) != 1 {
		t.Fatalf("categories = %v", body["data"])
	}
}
