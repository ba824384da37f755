package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tertulia/meeting-server/config"
	"github.com/tertulia/meeting-server/middleware"
	"github.com/tertulia/meeting-server/models"
	"github.com/tertulia/meeting-server/utils"
)

type JoinMeetingReq struct {
	Message *string `json:"message"`
}

// JoinMeeting requests participation. A second request while any active row
// exists for the pair is a conflict.
func JoinMeeting(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	m, ok := getMeetingOr404(c)
	if !ok {
		return
	}

	if m.Status != models.MeetingPublished {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Meeting is not open for participation"})
		return
	}
	if m.IsPast(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Meeting has already ended"})
		return
	}

	var req JoinMeetingReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}
	}

	var existing models.MeetingParticipation
	if err := config.DB.Where("meeting_id = ? AND participant_id = ?", m.ID, u.ID).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "You already have a participation record for this meeting",
			"status":  existing.Status,
		})
		return
	}

	if m.MaxParticipants != nil {
		var approved int64
		config.DB.Model(&models.MeetingParticipation{}).
			Where("meeting_id = ? AND status IN ?", m.ID,
				[]string{models.ParticipationApproved, models.ParticipationAttended}).
			Count(&approved)
		if approved >= int64(*m.MaxParticipants) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Meeting is full"})
			return
		}
	}

	status := models.ParticipationPending
	if !m.RequiresApproval {
		status = models.ParticipationApproved
	}

	participation := models.MeetingParticipation{
		MeetingID:     m.ID,
		ParticipantID: u.ID,
		Status:        status,
		Message:       req.Message,
	}
	if err := config.DB.Create(&participation).Error; err != nil {
		if utils.IsDuplicateErr(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "You already have a participation record for this meeting"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create participation"})
		return
	}

	config.DB.Model(&m).UpdateColumn("join_attempts", gorm.Expr("join_attempts + 1"))

	if status == models.ParticipationPending {
		utils.Notify(config.DB, m.CreatorID, models.NotifyParticipationRequest,
			"New participation request", u.Name+" wants to join "+m.Title+".", &m.ID)
	}

	message := "Request sent, wait for approval."
	if status == models.ParticipationApproved {
		message = "Participation confirmed!"
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":           message,
		"status":            participation.Status,
		"requires_approval": m.RequiresApproval,
	})
}

// LeaveMeeting withdraws a pending or approved participation. The record is
// kept in the terminal cancelled state, it is not deleted.
func LeaveMeeting(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	m, ok := getMeetingOr404(c)
	if !ok {
		return
	}

	var participation models.MeetingParticipation
	if err := config.DB.Where("meeting_id = ? AND participant_id = ?", m.ID, u.ID).
		First(&participation).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "You are not participating in this meeting"})
		return
	}

	if m.Status == models.MeetingFinished {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Meeting already finished"})
		return
	}
	if !models.ParticipationCanTransition(participation.Status, models.ParticipationCancelled) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Participation cannot be withdrawn",
			"status":  participation.Status,
		})
		return
	}

	participation.Status = models.ParticipationCancelled
	if err := config.DB.Save(&participation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not withdraw participation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Participation withdrawn"})
}

// MeetingParticipants lists participation records with per-status counts.
// Emails are only included for callers who can manage the meeting.
func MeetingParticipants(c *gin.Context) {
	m, ok := getMeetingOr404(c)
	if !ok {
		return
	}

	manager := false
	if v, exists := c.Get(middleware.CtxUser); exists {
		manager = middleware.CanManageMeeting(v.(models.User), m, models.PermissionManageParticipants)
	}

	query := config.DB.Preload("Participant").
		Where("meeting_id = ?", m.ID)

	statusFilter := c.DefaultQuery("status", models.ParticipationApproved)
	if statusFilter != "all" {
		query = query.Where("status = ?", statusFilter)
	}

	var participations []models.MeetingParticipation
	if err := query.Order("created_at desc").Find(&participations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list participants"})
		return
	}

	results := make([]gin.H, 0, len(participations))
	for _, p := range participations {
		entry := gin.H{
			"id":               p.ID,
			"status":           p.Status,
			"message":          p.Message,
			"response_message": p.ResponseMessage,
			"created_at":       p.CreatedAt,
		}
		if p.Participant != nil {
			participant := gin.H{
				"id":   p.Participant.ID,
				"name": p.Participant.Name,
				"role": p.Participant.Role,
			}
			if manager {
				participant["email"] = p.Participant.Email
			}
			entry["participant"] = participant
		}
		results = append(results, entry)
	}

	stats := gin.H{}
	for _, s := range []string{
		models.ParticipationPending, models.ParticipationApproved,
		models.ParticipationRejected, models.ParticipationAttended,
	} {
		var n int64
		config.DB.Model(&models.MeetingParticipation{}).
			Where("meeting_id = ? AND status = ?", m.ID, s).Count(&n)
		stats[s] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"meeting": gin.H{
			"id":               m.ID,
			"title":            m.Title,
			"starts_at":        m.StartsAt,
			"max_participants": m.MaxParticipants,
		},
		"stats":        stats,
		"participants": results,
	})
}

// ExportParticipants streams the participant list as a CSV download. Caller
// was authorized by CheckMeetingManager(manage_participants).
func ExportParticipants(c *gin.Context) {
	m := c.MustGet(middleware.CtxMeeting).(models.Meeting)

	var participations []models.MeetingParticipation
	if err := config.DB.Preload("Participant").
		Where("meeting_id = ?", m.ID).
		Order("created_at asc").
		Find(&participations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not export participants"})
		return
	}

	filename := fmt.Sprintf("meeting_%d_participants.csv", m.ID)
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	w := csv.NewWriter(c.Writer)
	defer w.Flush()

	w.Write([]string{"participation_id", "name", "email", "status", "requested_at"})
	for _, p := range participations {
		name, email := "", ""
		if p.Participant != nil {
			name, email = p.Participant.Name, p.Participant.Email
		}
		w.Write([]string{
			fmt.Sprintf("%d", p.ID),
			name,
			email,
			p.Status,
			p.CreatedAt.Format(time.RFC3339),
		})
	}
}

type ManageParticipantReq struct {
	ParticipationID uint    `json:"participation_id" binding:"required"`
	Action          string  `json:"action" binding:"required"` // approve | reject | attend
	ResponseMessage *string `json:"response_message"`
}

// ManageParticipant approves, rejects or marks attendance. The caller was
// authorized by CheckMeetingManager(manage_participants).
func ManageParticipant(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)
	m := c.MustGet(middleware.CtxMeeting).(models.Meeting)

	var req ManageParticipantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var target string
	switch req.Action {
	case "approve":
		target = models.ParticipationApproved
	case "reject":
		target = models.ParticipationRejected
	case "attend":
		target = models.ParticipationAttended
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "action must be approve, reject or attend"})
		return
	}

	var participation models.MeetingParticipation
	if err := config.DB.Preload("Participant").
		Where("id = ? AND meeting_id = ?", req.ParticipationID, m.ID).
		First(&participation).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Participation not found"})
		return
	}

	if !models.ParticipationCanTransition(participation.Status, target) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid status transition",
			"from":    participation.Status,
			"to":      target,
		})
		return
	}

	// Capacity is re-checked at approval time.
	if target == models.ParticipationApproved && m.MaxParticipants != nil {
		var approved int64
		config.DB.Model(&models.MeetingParticipation{}).
			Where("meeting_id = ? AND status IN ?", m.ID,
				[]string{models.ParticipationApproved, models.ParticipationAttended}).
			Count(&approved)
		if approved >= int64(*m.MaxParticipants) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Meeting is full"})
			return
		}
	}

	participation.Status = target
	participation.ResponseMessage = req.ResponseMessage
	participation.ApprovedByID = &u.ID
	if err := config.DB.Save(&participation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update participation"})
		return
	}

	switch target {
	case models.ParticipationApproved:
		utils.Notify(config.DB, participation.ParticipantID, models.NotifyParticipationApproved,
			"Participation approved", "Your request to join "+m.Title+" was approved.", &m.ID)
	case models.ParticipationRejected:
		utils.Notify(config.DB, participation.ParticipantID, models.NotifyParticipationRejected,
			"Participation rejected", "Your request to join "+m.Title+" was rejected.", &m.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Participation updated",
		"data": gin.H{
			"id":               participation.ID,
			"status":           participation.Status,
			"response_message": participation.ResponseMessage,
		},
	})
}

// MyParticipations lists the caller's participations with optional status and
// period filters.
func MyParticipations(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	query := config.DB.Preload("Meeting").Preload("Meeting.Category").
		Where("participant_id = ?", u.ID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	now := time.Now()
	switch c.Query("period") {
	case "upcoming":
		query = query.Where("meeting_id IN (?)", config.DB.Model(&models.Meeting{}).
			Select("id").Where("starts_at >= ?", now))
	case "past":
		query = query.Where("meeting_id IN (?)", config.DB.Model(&models.Meeting{}).
			Select("id").Where("starts_at < ?", now))
	}

	var participations []models.MeetingParticipation
	if err := query.Order("created_at desc").Find(&participations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list participations"})
		return
	}

	stats := gin.H{}
	var total int64
	config.DB.Model(&models.MeetingParticipation{}).Where("participant_id = ?", u.ID).Count(&total)
	stats["total"] = total
	for _, s := range []string{
		models.ParticipationPending, models.ParticipationApproved, models.ParticipationAttended,
	} {
		var n int64
		config.DB.Model(&models.MeetingParticipation{}).
			Where("participant_id = ? AND status = ?", u.ID, s).Count(&n)
		stats[s] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":          stats,
		"participations": participations,
	})
}
