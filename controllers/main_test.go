package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tertulia/meeting-server/config"
	"github.com/tertulia/meeting-server/models"
	"github.com/tertulia/meeting-server/routes"
	"github.com/tertulia/meeting-server/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

var (
	ipSeq        int
	testClientIP string
)

// setupTest wires a fresh in-memory database and the full router. Each test
// gets its own client IP so the per-IP rate limiter never carries state
// across tests.
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	ipSeq++
	testClientIP = fmt.Sprintf("10.0.%d.%d", ipSeq/256, ipSeq%256)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	// One connection, or each pooled connection gets its own :memory: database.
	sqlDB.SetMaxOpenConns(1)

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.DB = db

	r := gin.New()
	routes.SetupRoutes(r)
	return r
}

var userSeq int

// newUser inserts a user directly and returns it with a valid token.
func newUser(t *testing.T, role string, admin bool) (models.User, string) {
	t.Helper()
	userSeq++
	u := models.User{
		Name:         fmt.Sprintf("User %d", userSeq),
		Email:        fmt.Sprintf("user%d@example.com", userSeq),
		PasswordHash: "x",
		Role:         role,
		IsAdmin:      admin,
		IsActive:     true,
	}
	if err := config.DB.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := utils.GenerateToken(strconv.FormatUint(uint64(u.ID), 10), u.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return u, token
}

var categorySeq int

func newCategory(t *testing.T) models.Category {
	t.Helper()
	categorySeq++
	cat := models.Category{
		Name:     fmt.Sprintf("Category %d", categorySeq),
		Color:    "#007bff",
		IsActive: true,
	}
	if err := config.DB.Create(&cat).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return cat
}

// newMeeting inserts a meeting directly, bypassing the API and its limits.
func newMeeting(t *testing.T, creator models.User, status string, mutate ...func(*models.Meeting)) models.Meeting {
	t.Helper()
	cat := newCategory(t)
	m := models.Meeting{
		Title:            "Evening readings",
		Responsible:      creator.Name,
		Description:      "A meeting about books",
		CategoryID:       cat.ID,
		CreatorID:        creator.ID,
		StartsAt:         time.Now().Add(48 * time.Hour),
		DurationMinutes:  60,
		Format:           models.FormatMeet,
		MeetingURL:       "https://meet.google.com/abc-defg-hij",
		RequiresApproval: true,
		AllowComments:    true,
		AllowRatings:     true,
		Status:           status,
	}
	for _, f := range mutate {
		f(&m)
	}
	if err := config.DB.Create(&m).Error; err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	return m
}

func addParticipation(t *testing.T, m models.Meeting, u models.User, status string) models.MeetingParticipation {
	t.Helper()
	p := models.MeetingParticipation{
		MeetingID:     m.ID,
		ParticipantID: u.ID,
		Status:        status,
	}
	if err := config.DB.Create(&p).Error; err != nil {
		t.Fatalf("create participation: %v", err)
	}
	return p
}

func addCooperation(t *testing.T, m models.Meeting, u models.User, status string,
	expires *time.Time, granted ...string) models.MeetingCooperation {
	t.Helper()
	coop := models.MeetingCooperation{
		MeetingID:    m.ID,
		CooperatorID: u.ID,
		Status:       status,
		ExpiresAt:    expires,
	}
	coop.SetGrantedPermissions(granted)
	if err := config.DB.Create(&coop).Error; err != nil {
		t.Fatalf("create cooperation: %v", err)
	}
	return coop
}

// doJSON performs a request against the router. A nil body sends no payload.
func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Forwarded-For", testClientIP)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func jsonContains(body, needle string) bool {
	return strings.Contains(body, needle)
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}
