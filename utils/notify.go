package utils

import (
	"log"

	"github.com/tertulia/meeting-server/models"
	"gorm.io/gorm"
)

// Notify records an in-app notification for one user. Transition handlers
// call this explicitly; a failed insert is logged and never fails the request.
func Notify(db *gorm.DB, userID uint, notifType, title, message string, meetingID *uint) {
	n := models.Notification{
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		MeetingID: meetingID,
	}
	if err := db.Create(&n).Error; err != nil {
		log.Printf("notify: could not store notification for user %d: %v", userID, err)
	}
}

// NotifyAll fans one notification out to several users.
func NotifyAll(db *gorm.DB, userIDs []uint, notifType, title, message string, meetingID *uint) {
	for _, id := range userIDs {
		Notify(db, id, notifType, title, message, meetingID)
	}
}
