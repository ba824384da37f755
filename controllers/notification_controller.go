package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tertulia/meeting-server/config"
	"github.com/tertulia/meeting-server/middleware"
	"github.com/tertulia/meeting-server/models"
)

// MyNotifications lists the caller's notifications, newest first.
// ?unread=true narrows to unread ones.
func MyNotifications(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	q := config.DB.Where("user_id = ?", u.ID)
	if c.Query("unread") == "true" {
		q = q.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := q.Order("created_at desc").Limit(100).Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list notifications"})
		return
	}

	var unread int64
	config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", u.ID, false).
		Count(&unread)

	c.JSON(http.StatusOK, gin.H{"data": notifications, "unread_count": unread})
}

// MarkNotificationRead flags a single notification as read.
func MarkNotificationRead(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid notification ID"})
		return
	}

	var n models.Notification
	if err := config.DB.Where("id = ? AND user_id = ?", id, u.ID).First(&n).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Notification not found"})
		return
	}

	if !n.IsRead {
		n.IsRead = true
		if err := config.DB.Save(&n).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update notification"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": n})
}

// MarkAllNotificationsRead flags everything unread as read.
func MarkAllNotificationsRead(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	res := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", u.ID, false).
		Update("is_read", true)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked_read": res.RowsAffected})
}
