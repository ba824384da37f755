package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tertulia/meeting-server/config"
	"github.com/tertulia/meeting-server/middleware"
	"github.com/tertulia/meeting-server/models"
	"github.com/tertulia/meeting-server/utils"
)

// Cooperator-role creators may hold at most this many non-terminal meetings.
const maxActiveMeetingsPerCooperator = 5

type CreateMeetingReq struct {
	Title            string  `json:"title" binding:"required,max=60"`
	Responsible      string  `json:"responsible" binding:"required,max=40"`
	Description      string  `json:"description" binding:"required,max=300"`
	CategoryID       uint    `json:"category_id" binding:"required"`
	StartsAt         string  `json:"starts_at" binding:"required"` // RFC3339
	DurationMinutes  uint    `json:"duration_minutes"`
	Format           string  `json:"format" binding:"required"`
	MeetingURL       string  `json:"meeting_url" binding:"required"`
	BackupURL        *string `json:"backup_url"`
	MaxParticipants  *uint   `json:"max_participants"`
	RequiresApproval *bool   `json:"requires_approval"`
	AllowComments    *bool   `json:"allow_comments"`
	AllowRatings     *bool   `json:"allow_ratings"`
	Agenda           *string `json:"agenda"`
	Prerequisites    *string `json:"prerequisites"`
	Materials        *string `json:"materials"`
	Tags             string  `json:"tags"`
}

func CreateMeeting(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var req CreateMeetingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "starts_at must be RFC3339"})
		return
	}
	if !startsAt.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Meeting start must be in the future"})
		return
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = 60
	}
	if duration < 15 || duration > 480 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Duration must be between 15 minutes and 8 hours"})
		return
	}

	if !models.ValidFormat(req.Format) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown meeting format"})
		return
	}
	if err := models.ValidateMeetingURL(req.Format, req.MeetingURL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	var category models.Category
	if err := config.DB.Where("id = ? AND is_active = ?", req.CategoryID, true).First(&category).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Category does not exist"})
		return
	}

	// Cooperator-role creators are capped on simultaneous active meetings.
	if u.Role == models.RoleCooperator && !u.IsAdmin {
		var active int64
		config.DB.Model(&models.Meeting{}).
			Where("creator_id = ? AND status IN ?", u.ID,
				[]string{models.MeetingDraft, models.MeetingPendingApproval, models.MeetingPublished}).
			Count(&active)
		if active >= maxActiveMeetingsPerCooperator {
			c.JSON(http.StatusForbidden, gin.H{"message": "Active meeting limit reached"})
			return
		}
	}

	meeting := models.Meeting{
		Title:           req.Title,
		Responsible:     req.Responsible,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		CreatorID:       u.ID,
		StartsAt:        startsAt,
		DurationMinutes: duration,
		Format:          req.Format,
		MeetingURL:      req.MeetingURL,
		BackupURL:       req.BackupURL,
		MaxParticipants: req.MaxParticipants,
		RequiresApproval: true,
		AllowComments:    true,
		AllowRatings:     true,
		Agenda:          req.Agenda,
		Prerequisites:   req.Prerequisites,
		Materials:       req.Materials,
		Tags:            req.Tags,
		Status:          models.MeetingDraft,
	}
	if req.RequiresApproval != nil {
		meeting.RequiresApproval = *req.RequiresApproval
	}
	if req.AllowComments != nil {
		meeting.AllowComments = *req.AllowComments
	}
	if req.AllowRatings != nil {
		meeting.AllowRatings = *req.AllowRatings
	}

	// Create the meeting and enroll the creator in one transaction.
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&meeting).Error; err != nil {
			return err
		}
		enrollment := models.MeetingParticipation{
			MeetingID:     meeting.ID,
			ParticipantID: u.ID,
			Status:        models.ParticipationApproved,
			ApprovedByID:  &u.ID,
		}
		return tx.Create(&enrollment).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create meeting"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": meeting})
}

// ListMeetings shows published meetings to everyone; authenticated users also
// see their own and their cooperated meetings.
func ListMeetings(c *gin.Context) {
	query := config.DB.Model(&models.Meeting{}).Preload("Category")

	if v, ok := c.Get(middleware.CtxUser); ok {
		u := v.(models.User)
		if !u.IsAdmin {
			query = query.Where(
				"status = ? OR creator_id = ? OR id IN (?)",
				models.MeetingPublished, u.ID,
				config.DB.Model(&models.MeetingCooperation{}).
					Select("meeting_id").
					Where("cooperator_id = ? AND status = ?", u.ID, models.CooperationApproved),
			)
		}
	} else {
		query = query.Where("status = ?", models.MeetingPublished)
	}

	if categoryID := c.Query("category"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int64
	query.Count(&total)

	var meetings []models.Meeting
	if err := query.Offset(offset).Limit(limit).Order("starts_at desc").Find(&meetings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list meetings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  meetings,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func GetMeetingDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid meeting ID"})
		return
	}

	var m models.Meeting
	if err := config.DB.Preload("Category").First(&m, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Meeting not found"})
		return
	}

	// Unpublished meetings are only visible to their managers.
	if m.Status != models.MeetingPublished && m.Status != models.MeetingFinished {
		v, ok := c.Get(middleware.CtxUser)
		if !ok || !middleware.CanManageMeeting(v.(models.User), m, models.PermissionView) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Meeting not found"})
			return
		}
	}

	config.DB.Model(&m).UpdateColumn("view_count", gorm.Expr("view_count + 1"))

	var approvedCount int64
	config.DB.Model(&models.MeetingParticipation{}).
		Where("meeting_id = ? AND status IN ?", m.ID,
			[]string{models.ParticipationApproved, models.ParticipationAttended}).
		Count(&approvedCount)

	var avg *float64
	config.DB.Model(&models.Rating{}).Where("meeting_id = ?", m.ID).
		Select("AVG(stars)").Scan(&avg)
	average := 0.0
	if avg != nil {
		average = *avg
	}

	c.JSON(http.StatusOK, gin.H{
		"data": m,
		"stats": gin.H{
			"approved_participants": approvedCount,
			"average_rating":        average,
		},
	})
}

type UpdateMeetingReq struct {
	Title            *string `json:"title"`
	Responsible      *string `json:"responsible"`
	Description      *string `json:"description"`
	CategoryID       *uint   `json:"category_id"`
	StartsAt         *string `json:"starts_at"`
	DurationMinutes  *uint   `json:"duration_minutes"`
	Format           *string `json:"format"`
	MeetingURL       *string `json:"meeting_url"`
	BackupURL        *string `json:"backup_url"`
	MaxParticipants  *uint   `json:"max_participants"`
	RequiresApproval *bool   `json:"requires_approval"`
	AllowComments    *bool   `json:"allow_comments"`
	AllowRatings     *bool   `json:"allow_ratings"`
	Agenda           *string `json:"agenda"`
	Prerequisites    *string `json:"prerequisites"`
	Materials        *string `json:"materials"`
	Tags             *string `json:"tags"`
}

// UpdateMeeting mutates editable fields. The meeting was loaded and the
// caller authorized by middleware.CheckMeetingManager(edit).
func UpdateMeeting(c *gin.Context) {
	m := c.MustGet(middleware.CtxMeeting).(models.Meeting)

	if m.Status == models.MeetingFinished || m.Status == models.MeetingCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Finished or cancelled meetings cannot be edited"})
		return
	}

	var req UpdateMeetingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Responsible != nil {
		m.Responsible = *req.Responsible
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.CategoryID != nil {
		var category models.Category
		if err := config.DB.Where("id = ? AND is_active = ?", *req.CategoryID, true).First(&category).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Category does not exist"})
			return
		}
		m.CategoryID = *req.CategoryID
	}
	if req.StartsAt != nil {
		startsAt, err := time.Parse(time.RFC3339, *req.StartsAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "starts_at must be RFC3339"})
			return
		}
		if !startsAt.After(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Meeting start must be in the future"})
			return
		}
		m.StartsAt = startsAt
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes < 15 || *req.DurationMinutes > 480 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Duration must be between 15 minutes and 8 hours"})
			return
		}
		m.DurationMinutes = *req.DurationMinutes
	}
	if req.Format != nil {
		if !models.ValidFormat(*req.Format) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown meeting format"})
			return
		}
		m.Format = *req.Format
	}
	if req.MeetingURL != nil {
		m.MeetingURL = *req.MeetingURL
	}
	if err := models.ValidateMeetingURL(m.Format, m.MeetingURL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.BackupURL != nil {
		m.BackupURL = req.BackupURL
	}
	if req.MaxParticipants != nil {
		m.MaxParticipants = req.MaxParticipants
	}
	if req.RequiresApproval != nil {
		m.RequiresApproval = *req.RequiresApproval
	}
	if req.AllowComments != nil {
		m.AllowComments = *req.AllowComments
	}
	if req.AllowRatings != nil {
		m.AllowRatings = *req.AllowRatings
	}
	if req.Agenda != nil {
		m.Agenda = req.Agenda
	}
	if req.Prerequisites != nil {
		m.Prerequisites = req.Prerequisites
	}
	if req.Materials != nil {
		m.Materials = req.Materials
	}
	if req.Tags != nil {
		m.Tags = *req.Tags
	}

	if err := config.DB.Save(&m).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update meeting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": m})
}

// DeleteMeeting removes the meeting and everything attached to it.
func DeleteMeeting(c *gin.Context) {
	m := c.MustGet(middleware.CtxMeeting).(models.Meeting)

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for _, del := range []error{
			tx.Where("meeting_id = ?", m.ID).Delete(&models.MeetingParticipation{}).Error,
			tx.Where("meeting_id = ?", m.ID).Delete(&models.MeetingCooperation{}).Error,
			tx.Where("meeting_id = ?", m.ID).Delete(&models.Comment{}).Error,
			tx.Where("meeting_id = ?", m.ID).Delete(&models.Rating{}).Error,
			tx.Where("meeting_id = ?", m.ID).Delete(&models.Notification{}).Error,
		} {
			if del != nil {
				return del
			}
		}
		return tx.Delete(&m).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete meeting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Meeting deleted"})
}

// transitionMeeting applies one FSM step, rejecting moves the table forbids.
func transitionMeeting(c *gin.Context, m *models.Meeting, to string) bool {
	if !models.MeetingCanTransition(m.Status, to) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid status transition",
			"from":    m.Status,
			"to":      to,
		})
		return false
	}
	m.Status = to
	return true
}

// SubmitMeeting moves a draft into the approval queue.
func SubmitMeeting(c *gin.Context) {
	m := c.MustGet(middleware.CtxMeeting).(models.Meeting)

	if !transitionMeeting(c, &m, models.MeetingPendingApproval) {
		return
	}
	if err := config.DB.Save(&m).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not submit meeting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": m})
}

type ApproveMeetingReq struct {
	Action string  `json:"action" binding:"required"` // approve | reject
	Reason *string `json:"reason"`
}

// ApproveMeeting publishes or bounces a pending meeting. Admins may decide on
// any meeting; owners with the creator role may publish their own.
func ApproveMeeting(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid meeting ID"})
		return
	}
	var m models.Meeting
	if err := config.DB.First(&m, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Meeting not found"})
		return
	}

	selfPublish := m.CreatorID == u.ID && u.Role == models.RoleCreator
	if !u.IsAdmin && !selfPublish {
		c.JSON(http.StatusForbidden, gin.H{"message": "You cannot approve this meeting"})
		return
	}

	var req ApproveMeetingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	switch req.Action {
	case "approve":
		if !transitionMeeting(c, &m, models.MeetingPublished) {
			return
		}
		now := time.Now()
		m.PublishedAt = &now
		m.ApprovedByID = &u.ID
		m.RejectionReason = nil
		if err := config.DB.Save(&m).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not publish meeting"})
			return
		}
		utils.Notify(config.DB, m.CreatorID, models.NotifyMeetingApproved,
			"Meeting published", m.Title+" is now published.", &m.ID)
	case "reject":
		if !transitionMeeting(c, &m, models.MeetingDraft) {
			return
		}
		m.RejectionReason = req.Reason
		if err := config.DB.Save(&m).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not reject meeting"})
			return
		}
		utils.Notify(config.DB, m.CreatorID, models.NotifyMeetingRejected,
			"Meeting returned", m.Title+" was sent back to draft.", &m.ID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "action must be \"approve\" or \"reject\""})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": m})
}

// CancelMeeting is reachable from any non-terminal state, owner or admin only.
func CancelMeeting(c *gin.Context) {
	m := c.MustGet(middleware.CtxMeeting).(models.Meeting)

	if !transitionMeeting(c, &m, models.MeetingCancelled) {
		return
	}
	if err := config.DB.Save(&m).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not cancel meeting"})
		return
	}

	// Tell everyone with an active participation.
	var participantIDs []uint
	config.DB.Model(&models.MeetingParticipation{}).
		Where("meeting_id = ? AND status IN ?", m.ID,
			[]string{models.ParticipationPending, models.ParticipationApproved}).
		Pluck("participant_id", &participantIDs)
	utils.NotifyAll(config.DB, participantIDs, models.NotifyMeetingCancelled,
		"Meeting cancelled", m.Title+" was cancelled.", &m.ID)

	c.JSON(http.StatusOK, gin.H{"data": m})
}

// FinishMeeting closes a published meeting whose scheduled time has passed.
func FinishMeeting(c *gin.Context) {
	m := c.MustGet(middleware.CtxMeeting).(models.Meeting)

	if !m.IsPast(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Meeting has not ended yet"})
		return
	}
	if !transitionMeeting(c, &m, models.MeetingFinished) {
		return
	}
	if err := config.DB.Save(&m).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not finish meeting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": m})
}

// UpcomingMeetings lists the next published meetings.
func UpcomingMeetings(c *gin.Context) {
	var meetings []models.Meeting
	err := config.DB.Preload("Category").
		Where("status = ? AND starts_at >= ?", models.MeetingPublished, time.Now()).
		Order("starts_at asc").Limit(10).
		Find(&meetings).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list meetings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(meetings), "results": meetings})
}

// MyMeetings groups the caller's created / participated / cooperated meetings.
func MyMeetings(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var created []models.Meeting
	config.DB.Preload("Category").
		Where("creator_id = ?", u.ID).
		Order("created_at desc").Find(&created)

	var participated []models.Meeting
	config.DB.Preload("Category").
		Where("id IN (?)", config.DB.Model(&models.MeetingParticipation{}).
			Select("meeting_id").
			Where("participant_id = ? AND status IN ?", u.ID,
				[]string{models.ParticipationApproved, models.ParticipationAttended})).
		Order("starts_at desc").Find(&participated)

	var cooperated []models.Meeting
	config.DB.Preload("Category").
		Where("id IN (?)", config.DB.Model(&models.MeetingCooperation{}).
			Select("meeting_id").
			Where("cooperator_id = ? AND status = ?", u.ID, models.CooperationApproved)).
		Order("starts_at desc").Find(&cooperated)

	c.JSON(http.StatusOK, gin.H{
		"created":      created,
		"participated": participated,
		"cooperated":   cooperated,
		"stats": gin.H{
			"total_created":      len(created),
			"total_participated": len(participated),
			"total_cooperated":   len(cooperated),
		},
	})
}

// SearchMeetings filters published meetings by term, category, format and
// upcoming flag, with pagination.
func SearchMeetings(c *gin.Context) {
	query := config.DB.Model(&models.Meeting{}).Preload("Category").
		Where("status = ?", models.MeetingPublished)

	if term := c.Query("q"); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(responsible) LIKE ? OR LOWER(tags) LIKE ?",
			like, like, like, like,
		)
	}
	if categoryID := c.Query("category"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if format := c.Query("format"); format != "" {
		query = query.Where("format = ?", format)
	}
	if upcoming := c.Query("upcoming"); strings.EqualFold(upcoming, "true") {
		query = query.Where("starts_at >= ?", time.Now())
	}

	orderBy := c.DefaultQuery("order_by", "starts_at desc")
	switch orderBy {
	case "starts_at", "starts_at desc", "created_at desc", "title":
	default:
		orderBy = "starts_at desc"
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	query.Count(&total)

	var results []models.Meeting
	if err := query.Order(orderBy).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&results).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		"results":     results,
	})
}

// getMeetingOr404 is the shared lookup for subresource handlers that take the
// meeting id from the route but need no manager rights.
func getMeetingOr404(c *gin.Context) (models.Meeting, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid meeting ID"})
		return models.Meeting{}, false
	}
	var m models.Meeting
	if err := config.DB.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Meeting not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load meeting"})
		}
		return models.Meeting{}, false
	}
	return m, true
}
