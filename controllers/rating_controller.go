package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tertulia/meeting-server/config"
	"github.com/tertulia/meeting-server/middleware"
	"github.com/tertulia/meeting-server/models"
	"github.com/tertulia/meeting-server/utils"
)

type RateMeetingReq struct {
	Stars     int     `json:"stars" binding:"required,min=1,max=5"`
	Review    *string `json:"review" binding:"omitempty,max=500"`
	Anonymous bool    `json:"anonymous"`
}

// RateMeeting upserts the caller's rating. Only attended participants may
// rate, and only while the meeting allows ratings.
func RateMeeting(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)
	m, ok := getMeetingOr404(c)
	if !ok {
		return
	}

	if !m.AllowRatings {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Ratings are disabled for this meeting"})
		return
	}

	var req RateMeetingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var attended int64
	config.DB.Model(&models.MeetingParticipation{}).
		Where("meeting_id = ? AND participant_id = ? AND status = ?",
			m.ID, u.ID, models.ParticipationAttended).
		Count(&attended)
	if attended == 0 {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only attendees can rate this meeting"})
		return
	}

	var rating models.Rating
	err := config.DB.Where("meeting_id = ? AND user_id = ?", m.ID, u.ID).First(&rating).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save rating"})
		return
	}
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if created {
		rating = models.Rating{MeetingID: m.ID, UserID: u.ID}
	}
	rating.Stars = req.Stars
	rating.Review = req.Review
	rating.Anonymous = req.Anonymous

	if err := config.DB.Save(&rating).Error; err != nil {
		if utils.IsDuplicateErr(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "You have already rated this meeting"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save rating"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"data": rating})
}

// MeetingRatings lists ratings with aggregate stats. Anonymous ratings hide
// the reviewer's identity.
func MeetingRatings(c *gin.Context) {
	m, ok := getMeetingOr404(c)
	if !ok {
		return
	}

	var ratings []models.Rating
	if err := config.DB.Preload("User").
		Where("meeting_id = ?", m.ID).
		Order("created_at desc").
		Find(&ratings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list ratings"})
		return
	}

	distribution := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	total := 0
	results := make([]gin.H, 0, len(ratings))
	for _, r := range ratings {
		distribution[r.Stars]++
		total += r.Stars

		entry := gin.H{
			"id":         r.ID,
			"stars":      r.Stars,
			"review":     r.Review,
			"anonymous":  r.Anonymous,
			"created_at": r.CreatedAt,
		}
		if !r.Anonymous && r.User != nil {
			entry["user"] = gin.H{
				"id":   r.User.ID,
				"name": r.User.Name,
			}
		}
		results = append(results, entry)
	}

	var average float64
	if len(ratings) > 0 {
		average = float64(total) / float64(len(ratings))
	}

	c.JSON(http.StatusOK, gin.H{
		"data": results,
		"stats": gin.H{
			"count":        len(ratings),
			"average":      average,
			"distribution": distribution,
		},
	})
}

// MyMeetingRating returns the caller's own rating for the meeting, if any.
func MyMeetingRating(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)
	m, ok := getMeetingOr404(c)
	if !ok {
		return
	}

	var rating models.Rating
	if err := config.DB.Where("meeting_id = ? AND user_id = ?", m.ID, u.ID).
		First(&rating).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "You have not rated this meeting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rating})
}
