package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tertulia/meeting-server/controllers"
	"github.com/tertulia/meeting-server/middleware"
	"github.com/tertulia/meeting-server/models"
)

func SetupRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.POST("/google/login", controllers.GoogleLoginHandler)
			auth.POST("/logout", middleware.AuthJWT(), controllers.Logout)
		}

		users := api.Group("/users")
		users.Use(middleware.AuthJWT())
		{
			users.GET("", controllers.GetUserByEmail)
			users.GET("/me", controllers.Me)
			users.PUT("/me", controllers.UpdateProfile)
			users.PUT("/me/password", controllers.ChangePassword)
			users.POST("/me/avatar", controllers.UploadAvatar)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", controllers.ListCategories)
			categories.GET("/:id", controllers.GetCategory)
			categories.POST("", middleware.AuthJWT(), middleware.RequireAdmin(), controllers.CreateCategory)
			categories.PUT("/:id", middleware.AuthJWT(), middleware.RequireAdmin(), controllers.UpdateCategory)
			categories.DELETE("/:id", middleware.AuthJWT(), middleware.RequireAdmin(), controllers.DeleteCategory)
		}

		meetings := api.Group("/meetings")
		{
			meetings.GET("", middleware.OptionalAuth(), controllers.ListMeetings)
			meetings.GET("/search", middleware.OptionalAuth(), controllers.SearchMeetings)
			meetings.GET("/upcoming", controllers.UpcomingMeetings)
			meetings.GET("/my", middleware.AuthJWT(), controllers.MyMeetings)
			meetings.GET("/:id", middleware.OptionalAuth(), controllers.GetMeetingDetail)

			meetings.POST("", middleware.AuthJWT(), middleware.RequireOrganizerRole(),
				middleware.RateLimitMeetingsCreate(), controllers.CreateMeeting)
			meetings.PUT("/:id", middleware.AuthJWT(),
				middleware.CheckMeetingManager(models.PermissionEdit), controllers.UpdateMeeting)
			meetings.DELETE("/:id", middleware.AuthJWT(),
				middleware.CheckMeetingOwner(), controllers.DeleteMeeting)

			// Lifecycle
			meetings.POST("/:id/submit", middleware.AuthJWT(),
				middleware.CheckMeetingOwner(), controllers.SubmitMeeting)
			meetings.POST("/:id/approve", middleware.AuthJWT(), controllers.ApproveMeeting)
			meetings.POST("/:id/cancel", middleware.AuthJWT(),
				middleware.CheckMeetingOwner(), controllers.CancelMeeting)
			meetings.POST("/:id/finish", middleware.AuthJWT(),
				middleware.CheckMeetingOwner(), controllers.FinishMeeting)

			// Participation
			meetings.POST("/:id/join", middleware.AuthJWT(), controllers.JoinMeeting)
			meetings.POST("/:id/leave", middleware.AuthJWT(), controllers.LeaveMeeting)
			meetings.GET("/:id/participants", middleware.OptionalAuth(), controllers.MeetingParticipants)
			meetings.GET("/:id/participants/export", middleware.AuthJWT(),
				middleware.CheckMeetingManager(models.PermissionManageParticipants), controllers.ExportParticipants)
			meetings.PUT("/:id/participants", middleware.AuthJWT(),
				middleware.CheckMeetingManager(models.PermissionManageParticipants), controllers.ManageParticipant)

			// Cooperation
			meetings.POST("/:id/cooperate", middleware.AuthJWT(), controllers.RequestCooperation)
			meetings.GET("/:id/cooperators", middleware.OptionalAuth(), controllers.MeetingCooperators)
			meetings.PUT("/:id/cooperators", middleware.AuthJWT(),
				middleware.CheckMeetingOwner(), controllers.ManageCooperation)

			// Engagement
			meetings.GET("/:id/comments", controllers.MeetingComments)
			meetings.POST("/:id/ratings", middleware.AuthJWT(), controllers.RateMeeting)
			meetings.GET("/:id/ratings", controllers.MeetingRatings)
			meetings.GET("/:id/ratings/my", middleware.AuthJWT(), controllers.MyMeetingRating)
		}

		comments := api.Group("/comments")
		comments.Use(middleware.AuthJWT())
		{
			comments.POST("", controllers.CreateComment)
			comments.PUT("/:id", controllers.UpdateComment)
			comments.DELETE("/:id", controllers.DeleteComment)
			comments.POST("/:id/like", controllers.LikeComment)
		}

		participations := api.Group("/participations")
		participations.Use(middleware.AuthJWT())
		{
			participations.GET("/my", controllers.MyParticipations)
		}

		cooperations := api.Group("/cooperations")
		cooperations.Use(middleware.AuthJWT())
		{
			cooperations.GET("/my", controllers.MyCooperations)
			cooperations.GET("/stats", controllers.CooperationStats)
		}

		notifications := api.Group("/notifications")
		notifications.Use(middleware.AuthJWT())
		{
			notifications.GET("", controllers.MyNotifications)
			notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
		}
	}
}
