package handlers

import (
	"github.com/Hicham-Azeroual/chatApplication/internal/websocket"
	"github.com/gin-gonic/gin"
)

// Routes wires the handlers into an /api router group
type Routes struct {
	Chat     *Handlers
	Auth     *AuthHandlers
	Realtime *websocket.Handler

	// Optional per-route limiters
	AuthLimiter   gin.HandlerFunc
	UploadLimiter gin.HandlerFunc
}

// Register mounts every API route under api
func (r Routes) Register(api *gin.RouterGroup) {
	authLimit := orPass(r.AuthLimiter)
	uploadLimit := orPass(r.UploadLimiter)
	requireAuth := r.Auth.AuthMiddleware()

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", authLimit, r.Auth.Signup)
		authGroup.POST("/login", authLimit, r.Auth.Login)
		authGroup.POST("/logout", r.Auth.Logout)
		authGroup.POST("/forgot-password", authLimit, r.Auth.ForgotPassword)
		authGroup.POST("/reset-password/:token", authLimit, r.Auth.ResetPassword)
		authGroup.PUT("/update-profile", requireAuth, uploadLimit, r.Auth.UpdateProfile)
		authGroup.GET("/check", requireAuth, r.Auth.CheckAuth)
	}

	messages := api.Group("/messages", requireAuth)
	{
		messages.GET("/users", r.Chat.GetUsersForSidebar)
		messages.GET("/:id", r.Chat.GetMessages)
		messages.POST("/send/:id", uploadLimit, r.Chat.SendMessage)
		messages.POST("/forward/:messageId", r.Chat.ForwardMessage)
		messages.PATCH("/update/:messageId", r.Chat.UpdateMessage)
		messages.DELETE("/delete/:messageId", r.Chat.DeleteMessage)
		messages.POST("/react/:messageId", r.Chat.AddReaction)
		messages.DELETE("/react/:messageId", r.Chat.RemoveReaction)
	}

	groups := api.Group("/groups", requireAuth)
	{
		groups.POST("", uploadLimit, r.Chat.CreateGroup)
		groups.GET("", r.Chat.GetGroups)
		groups.POST("/:groupId/add-members", r.Chat.AddGroupMembers)
		groups.POST("/:groupId/remove-members", r.Chat.RemoveGroupMembers)
		groups.POST("/:groupId/messages", uploadLimit, r.Chat.SendGroupMessage)
		groups.GET("/:groupId/messages", r.Chat.GetGroupMessages)
	}

	statuses := api.Group("/status", requireAuth)
	{
		statuses.POST("", uploadLimit, r.Chat.CreateStatus)
		statuses.GET("", r.Chat.GetStatuses)
		statuses.POST("/reply", r.Chat.ReplyToStatus)
	}

	notifications := api.Group("/notifications", requireAuth)
	{
		notifications.GET("", r.Chat.GetNotifications)
		notifications.GET("/counts", r.Chat.GetNotificationCounts)
		notifications.POST("/read", r.Chat.MarkNotificationsRead)
		notifications.PATCH("/:id/read", r.Chat.MarkNotificationRead)
		notifications.DELETE("/:id", r.Chat.DeleteNotification)
	}

	if r.Realtime != nil {
		presence := api.Group("/presence", requireAuth)
		{
			presence.GET("/online", r.Realtime.HandleOnlineUsers)
			presence.POST("/status", r.Realtime.HandleOnlineStatus)
			presence.GET("/metrics", r.Realtime.HandleMetrics)
		}
	}
}

func orPass(h gin.HandlerFunc) gin.HandlerFunc {
	if h != nil {
		return h
	}
	return func(c *gin.Context) { c.Next() }
}
