package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tertulia/meeting-server/config"
	"github.com/tertulia/meeting-server/middleware"
	"github.com/tertulia/meeting-server/models"
)

// canComment: the meeting creator, an admin, an active cooperator, or an
// approved/attended participant.
func canComment(u models.User, m models.Meeting) bool {
	if u.IsAdmin || m.CreatorID == u.ID {
		return true
	}

	var coop models.MeetingCooperation
	if err := config.DB.Where("meeting_id = ? AND cooperator_id = ?", m.ID, u.ID).
		First(&coop).Error; err == nil && coop.IsActive(time.Now()) {
		return true
	}

	var n int64
	config.DB.Model(&models.MeetingParticipation{}).
		Where("meeting_id = ? AND participant_id = ? AND status IN ?", m.ID, u.ID,
			[]string{models.ParticipationApproved, models.ParticipationAttended}).
		Count(&n)
	return n > 0
}

// canModerateComment: the author, an admin, the meeting creator, or an active
// cooperator holding moderate.
func canModerateComment(u models.User, comment models.Comment, m models.Meeting) bool {
	if comment.AuthorID == u.ID {
		return true
	}
	return middleware.CanManageMeeting(u, m, models.PermissionModerate)
}

type CreateCommentReq struct {
	MeetingID uint   `json:"meeting_id" binding:"required"`
	Content   string `json:"content" binding:"required,max=1000"`
	ParentID  *uint  `json:"parent_id"`
}

func CreateComment(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var req CreateCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var m models.Meeting
	if err := config.DB.First(&m, req.MeetingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Meeting not found"})
		return
	}

	if !m.AllowComments {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Comments are disabled for this meeting"})
		return
	}
	if !canComment(u, m) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only participants can comment on this meeting"})
		return
	}

	if req.ParentID != nil {
		var parent models.Comment
		if err := config.DB.Where("id = ? AND meeting_id = ? AND is_active = ?",
			*req.ParentID, m.ID, true).First(&parent).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Parent comment not found on this meeting"})
			return
		}
	}

	comment := models.Comment{
		MeetingID: m.ID,
		AuthorID:  u.ID,
		Content:   req.Content,
		ParentID:  req.ParentID,
		IsActive:  true,
	}
	if err := config.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create comment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": comment})
}

// MeetingComments lists active comments, pinned first.
func MeetingComments(c *gin.Context) {
	m, ok := getMeetingOr404(c)
	if !ok {
		return
	}

	var comments []models.Comment
	if err := config.DB.Preload("Author").
		Where("meeting_id = ? AND is_active = ?", m.ID, true).
		Order("is_pinned desc, created_at desc").
		Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list comments"})
		return
	}

	results := make([]gin.H, 0, len(comments))
	for _, comment := range comments {
		entry := gin.H{
			"id":          comment.ID,
			"content":     comment.Content,
			"parent_id":   comment.ParentID,
			"is_pinned":   comment.IsPinned,
			"likes_count": comment.LikesCount,
			"created_at":  comment.CreatedAt,
		}
		if comment.Author != nil {
			entry["author"] = gin.H{
				"id":   comment.Author.ID,
				"name": comment.Author.Name,
			}
		}
		results = append(results, entry)
	}

	c.JSON(http.StatusOK, gin.H{"data": results})
}

type UpdateCommentReq struct {
	Content  *string `json:"content"`
	IsPinned *bool   `json:"is_pinned"`
}

func UpdateComment(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid comment ID"})
		return
	}

	var comment models.Comment
	if err := config.DB.Where("id = ? AND is_active = ?", id, true).First(&comment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Comment not found"})
		return
	}
	var m models.Meeting
	if err := config.DB.First(&m, comment.MeetingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Meeting not found"})
		return
	}

	if !canModerateComment(u, comment, m) {
		c.JSON(http.StatusForbidden, gin.H{"message": "You cannot edit this comment"})
		return
	}

	var req UpdateCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	if req.Content != nil {
		if *req.Content == "" || len(*req.Content) > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid content"})
			return
		}
		// Only the author rewrites the text; moderators pin/unpin.
		if comment.AuthorID != u.ID {
			c.JSON(http.StatusForbidden, gin.H{"message": "Only the author can edit the text"})
			return
		}
		comment.Content = *req.Content
	}
	if req.IsPinned != nil {
		if !middleware.CanManageMeeting(u, m, models.PermissionModerate) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Only moderators can pin comments"})
			return
		}
		comment.IsPinned = *req.IsPinned
	}

	if err := config.DB.Save(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comment})
}

// DeleteComment deactivates rather than removing, keeping threads intact.
func DeleteComment(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid comment ID"})
		return
	}

	var comment models.Comment
	if err := config.DB.Where("id = ? AND is_active = ?", id, true).First(&comment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Comment not found"})
		return
	}
	var m models.Meeting
	if err := config.DB.First(&m, comment.MeetingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Meeting not found"})
		return
	}

	if !canModerateComment(u, comment, m) {
		c.JSON(http.StatusForbidden, gin.H{"message": "You cannot delete this comment"})
		return
	}

	comment.IsActive = false
	if err := config.DB.Save(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// LikeComment bumps the like counter.
func LikeComment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid comment ID"})
		return
	}

	var comment models.Comment
	if err := config.DB.Where("id = ? AND is_active = ?", id, true).First(&comment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Comment not found"})
		return
	}

	if err := config.DB.Model(&comment).
		UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not like comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"likes_count": comment.LikesCount + 1})
}
