package controllers_test

import (
	"net/http"
	"testing"

	"github.com/tertulia/meeting-server/models"
)

func TestRegisterAndLogin(t *testing.T) {
	r := setupTest(t)

	w := doJSON(r, "POST", "/api/auth/register", "", map[string]interface{}{
		"name":     "Ana",
		"email":    "ana@example.com",
		"password": "secret1",
		"role":     "creator",
	})
	wantStatus(t, w, http.StatusCreated)
	body := decodeBody(t, w)
	if body["token"] == "" || body["token"] == nil {
		t.Fatal("register should return a token")
	}

	// Same email again is a conflict.
	w = doJSON(r, "POST", "/api/auth/register", "", map[string]interface{}{
		"name":     "Ana Again",
		"email":    "ana@example.com",
		"password": "secret1",
	})
	wantStatus(t, w, http.StatusConflict)

	w = doJSON(r, "POST", "/api/auth/login", "", map[string]interface{}{
		"email":    "ana@example.com",
		"password": "secret1",
	})
	wantStatus(t, w, http.StatusOK)

	w = doJSON(r, "POST", "/api/auth/login", "", map[string]interface{}{
		"email":    "ana@example.com",
		"password": "wrong",
	})
	wantStatus(t, w, http.StatusUnauthorized)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	r := setupTest(t)

	w := doJSON(r, "POST", "/api/auth/register", "", map[string]interface{}{
		"name":     "Bad Role",
		"email":    "badrole@example.com",
		"password": "secret1",
		"role":     "overlord",
	})
	wantStatus(t, w, http.StatusBadRequest)
}

func TestMe(t *testing.T) {
	r := setupTest(t)
	u, token := newUser(t, models.RoleParticipant, false)

	w := doJSON(r, "GET", "/api/users/me", token, nil)
	wantStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	user, _ := body["user"].(map[string]interface{})
	if user == nil || user["email"] != u.Email {
		t.Fatalf("me response missing user email: %s", w.Body.String())
	}

	w = doJSON(r, "GET", "/api/users/me", "", nil)
	wantStatus(t, w, http.StatusUnauthorized)
}
