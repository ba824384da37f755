package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tertulia/meeting-server/config"
	"github.com/tertulia/meeting-server/middleware"
	"github.com/tertulia/meeting-server/models"
	"github.com/tertulia/meeting-server/utils"
)

type RequestCooperationReq struct {
	Permissions []string `json:"permissions" binding:"required,min=1"`
	Message     *string  `json:"message"`
}

// RequestCooperation asks to co-manage a meeting with a requested permission
// subset. One record per (meeting, cooperator); duplicates are conflicts.
func RequestCooperation(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	m, ok := getMeetingOr404(c)
	if !ok {
		return
	}

	if !u.CanCreateMeetings() {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only cooperators and creators can request cooperation"})
		return
	}
	if m.CreatorID == u.ID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "You cannot request cooperation on your own meeting"})
		return
	}
	if m.Status == models.MeetingFinished || m.Status == models.MeetingCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Meeting is closed"})
		return
	}

	var req RequestCooperationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	perms, valid := models.NormalizePermissions(req.Permissions)
	if !valid || len(perms) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown permission in request"})
		return
	}

	var existing models.MeetingCooperation
	if err := config.DB.Where("meeting_id = ? AND cooperator_id = ?", m.ID, u.ID).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "A cooperation record already exists for this meeting",
			"status":  existing.Status,
		})
		return
	}

	coop := models.MeetingCooperation{
		MeetingID:    m.ID,
		CooperatorID: u.ID,
		Status:       models.CooperationPending,
		Message:      req.Message,
	}
	coop.SetRequestedPermissions(perms)

	if err := config.DB.Create(&coop).Error; err != nil {
		if utils.IsDuplicateErr(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "A cooperation record already exists for this meeting"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create cooperation request"})
		return
	}

	utils.Notify(config.DB, m.CreatorID, models.NotifyCooperationRequest,
		"New cooperation request", u.Name+" wants to cooperate on "+m.Title+".", &m.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Cooperation requested, wait for the creator's decision.",
		"data": gin.H{
			"id":                    coop.ID,
			"status":                coop.Status,
			"requested_permissions": coop.RequestedPermissions(),
		},
	})
}

type ManageCooperationReq struct {
	CooperationID   uint     `json:"cooperation_id" binding:"required"`
	Action          string   `json:"action" binding:"required"` // approve | reject | revoke
	Permissions     []string `json:"permissions"`               // granted subset; defaults to requested
	ResponseMessage *string  `json:"response_message"`
	ExpiresAt       *string  `json:"expires_at"` // RFC3339
}

// ManageCooperation decides on a request. Only the meeting creator or an
// admin may call it (enforced by CheckMeetingOwner). Approval commits the
// approver-specified permission subset, which may be narrower than requested.
func ManageCooperation(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)
	m := c.MustGet(middleware.CtxMeeting).(models.Meeting)

	var req ManageCooperationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var coop models.MeetingCooperation
	if err := config.DB.Preload("Cooperator").
		Where("id = ? AND meeting_id = ?", req.CooperationID, m.ID).
		First(&coop).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Cooperation not found"})
		return
	}

	switch req.Action {
	case "approve":
		if !models.CooperationCanTransition(coop.Status, models.CooperationApproved) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Invalid status transition",
				"from":    coop.Status,
				"to":      models.CooperationApproved,
			})
			return
		}

		granted := req.Permissions
		if granted == nil {
			granted = coop.RequestedPermissions()
		}
		perms, valid := models.NormalizePermissions(granted)
		if !valid || len(perms) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown permission in granted set"})
			return
		}

		var expiresAt *time.Time
		if req.ExpiresAt != nil {
			t, err := time.Parse(time.RFC3339, *req.ExpiresAt)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "expires_at must be RFC3339"})
				return
			}
			if !t.After(time.Now()) {
				c.JSON(http.StatusBadRequest, gin.H{"message": "expires_at must be in the future"})
				return
			}
			expiresAt = &t
		}

		coop.Status = models.CooperationApproved
		coop.SetGrantedPermissions(perms)
		coop.ExpiresAt = expiresAt
		coop.ResponseMessage = req.ResponseMessage
		coop.ApprovedByID = &u.ID
		if err := config.DB.Save(&coop).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update cooperation"})
			return
		}
		utils.Notify(config.DB, coop.CooperatorID, models.NotifyCooperationApproved,
			"Cooperation approved", "You can now cooperate on "+m.Title+".", &m.ID)

	case "reject":
		if !models.CooperationCanTransition(coop.Status, models.CooperationRejected) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Invalid status transition",
				"from":    coop.Status,
				"to":      models.CooperationRejected,
			})
			return
		}
		coop.Status = models.CooperationRejected
		coop.ResponseMessage = req.ResponseMessage
		coop.ApprovedByID = &u.ID
		if err := config.DB.Save(&coop).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update cooperation"})
			return
		}
		utils.Notify(config.DB, coop.CooperatorID, models.NotifyCooperationRejected,
			"Cooperation rejected", "Your request to cooperate on "+m.Title+" was rejected.", &m.ID)

	case "revoke":
		if !models.CooperationCanTransition(coop.Status, models.CooperationRevoked) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Invalid status transition",
				"from":    coop.Status,
				"to":      models.CooperationRevoked,
			})
			return
		}
		coop.Status = models.CooperationRevoked
		coop.ResponseMessage = req.ResponseMessage
		if err := config.DB.Save(&coop).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update cooperation"})
			return
		}
		utils.Notify(config.DB, coop.CooperatorID, models.NotifyCooperationRevoked,
			"Cooperation revoked", "Your cooperation on "+m.Title+" was revoked.", &m.ID)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "action must be approve, reject or revoke"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cooperation updated",
		"data": gin.H{
			"id":                  coop.ID,
			"status":              coop.Status,
			"granted_permissions": coop.GrantedPermissions(),
			"expires_at":          coop.ExpiresAt,
		},
	})
}

// MeetingCooperators lists cooperation records for a meeting. Permission sets
// are only visible to callers who can manage the meeting.
func MeetingCooperators(c *gin.Context) {
	m, ok := getMeetingOr404(c)
	if !ok {
		return
	}

	manager := false
	if v, exists := c.Get(middleware.CtxUser); exists {
		manager = middleware.CanManageMeeting(v.(models.User), m, models.PermissionView)
	}

	query := config.DB.Preload("Cooperator").Where("meeting_id = ?", m.ID)

	statusFilter := c.DefaultQuery("status", models.CooperationApproved)
	if statusFilter != "all" {
		query = query.Where("status = ?", statusFilter)
	}

	var cooperations []models.MeetingCooperation
	if err := query.Order("created_at desc").Find(&cooperations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list cooperators"})
		return
	}

	now := time.Now()
	results := make([]gin.H, 0, len(cooperations))
	for _, coop := range cooperations {
		entry := gin.H{
			"id":         coop.ID,
			"status":     coop.Status,
			"is_active":  coop.IsActive(now),
			"expires_at": coop.ExpiresAt,
			"created_at": coop.CreatedAt,
		}
		if coop.Cooperator != nil {
			entry["cooperator"] = gin.H{
				"id":   coop.Cooperator.ID,
				"name": coop.Cooperator.Name,
				"role": coop.Cooperator.Role,
			}
		}
		if manager {
			entry["requested_permissions"] = coop.RequestedPermissions()
			entry["granted_permissions"] = coop.GrantedPermissions()
			entry["message"] = coop.Message
			entry["response_message"] = coop.ResponseMessage
		}
		results = append(results, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"meeting": gin.H{
			"id":    m.ID,
			"title": m.Title,
		},
		"cooperators": results,
	})
}

// MyCooperations lists the caller's cooperation records.
func MyCooperations(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	query := config.DB.Preload("Meeting").Preload("Meeting.Category").
		Where("cooperator_id = ?", u.ID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	now := time.Now()
	switch c.Query("period") {
	case "active":
		query = query.Where("status = ? AND (expires_at IS NULL OR expires_at > ?)",
			models.CooperationApproved, now)
	case "expired":
		query = query.Where("status = ? OR (status = ? AND expires_at IS NOT NULL AND expires_at <= ?)",
			models.CooperationExpired, models.CooperationApproved, now)
	case "pending":
		query = query.Where("status = ?", models.CooperationPending)
	}

	var cooperations []models.MeetingCooperation
	if err := query.Order("created_at desc").Find(&cooperations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list cooperations"})
		return
	}

	results := make([]gin.H, 0, len(cooperations))
	for _, coop := range cooperations {
		entry := gin.H{
			"id":                    coop.ID,
			"status":                coop.Status,
			"is_active":             coop.IsActive(now),
			"requested_permissions": coop.RequestedPermissions(),
			"granted_permissions":   coop.GrantedPermissions(),
			"expires_at":            coop.ExpiresAt,
			"created_at":            coop.CreatedAt,
		}
		if coop.Meeting != nil {
			entry["meeting"] = gin.H{
				"id":        coop.Meeting.ID,
				"title":     coop.Meeting.Title,
				"starts_at": coop.Meeting.StartsAt,
				"status":    coop.Meeting.Status,
			}
		}
		results = append(results, entry)
	}

	c.JSON(http.StatusOK, gin.H{"cooperations": results})
}

// CooperationStats summarizes cooperation state for the caller: requests on
// their meetings and their own cooperations, with expiry warnings.
func CooperationStats(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)
	now := time.Now()
	soon := now.Add(7 * 24 * time.Hour)

	received := gin.H{}
	for _, s := range []string{
		models.CooperationPending, models.CooperationApproved,
		models.CooperationRejected, models.CooperationExpired,
	} {
		var n int64
		config.DB.Model(&models.MeetingCooperation{}).
			Where("status = ? AND meeting_id IN (?)", s,
				config.DB.Model(&models.Meeting{}).Select("id").Where("creator_id = ?", u.ID)).
			Count(&n)
		received[s] = n
	}

	mine := gin.H{}
	for _, s := range []string{
		models.CooperationPending, models.CooperationApproved,
		models.CooperationRejected, models.CooperationExpired,
	} {
		var n int64
		config.DB.Model(&models.MeetingCooperation{}).
			Where("cooperator_id = ? AND status = ?", u.ID, s).Count(&n)
		mine[s] = n
	}

	var activeNow, expiringSoon int64
	config.DB.Model(&models.MeetingCooperation{}).
		Where("cooperator_id = ? AND status = ? AND (expires_at IS NULL OR expires_at > ?)",
			u.ID, models.CooperationApproved, now).
		Count(&activeNow)
	config.DB.Model(&models.MeetingCooperation{}).
		Where("cooperator_id = ? AND status = ? AND expires_at IS NOT NULL AND expires_at > ? AND expires_at <= ?",
			u.ID, models.CooperationApproved, now, soon).
		Count(&expiringSoon)

	c.JSON(http.StatusOK, gin.H{
		"received":      received,
		"mine":          mine,
		"active_now":    activeNow,
		"expiring_soon": expiringSoon,
	})
}
