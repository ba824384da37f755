package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tertulia/meeting-server/config"
	"github.com/tertulia/meeting-server/models"
)

func loadMeeting(c *gin.Context) (models.Meeting, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid meeting ID"})
		return models.Meeting{}, false
	}

	var m models.Meeting
	if err := config.DB.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Meeting not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Could not load meeting"})
		}
		return models.Meeting{}, false
	}
	return m, true
}

// CheckMeetingOwner loads the meeting into context and verifies the caller is
// its creator or an admin.
func CheckMeetingOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(CtxUser).(models.User)

		m, ok := loadMeeting(c)
		if !ok {
			return
		}

		if m.CreatorID != u.ID && !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You do not own this meeting"})
			return
		}

		c.Set(CtxMeeting, m)
		c.Next()
	}
}

// CheckMeetingManager loads the meeting into context and verifies the caller
// is its creator, an admin, or a cooperator whose active cooperation grants
// perm. Expired cooperations never authorize, whatever their stored status.
func CheckMeetingManager(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(CtxUser).(models.User)

		m, ok := loadMeeting(c)
		if !ok {
			return
		}

		if CanManageMeeting(u, m, perm) {
			c.Set(CtxMeeting, m)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You do not have permission to manage this meeting"})
	}
}

// CanManageMeeting is the capability check behind CheckMeetingManager,
// shared with controllers that decide per-field visibility.
func CanManageMeeting(u models.User, m models.Meeting, perm string) bool {
	if u.IsAdmin || m.CreatorID == u.ID {
		return true
	}
	var coop models.MeetingCooperation
	err := config.DB.Where("meeting_id = ? AND cooperator_id = ?", m.ID, u.ID).First(&coop).Error
	if err != nil {
		return false
	}
	return coop.HasPermission(perm, time.Now())
}
