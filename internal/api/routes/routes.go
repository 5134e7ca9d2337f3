package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/halcyonchat/halcyon/internal/api/handlers"
)

type Deps struct {
	Auth         *handlers.AuthHandler
	Conversation *handlers.ConversationHandler
	Message      *handlers.MessageHandler
	Chat         *handlers.ChatHandler
	Profile      *handlers.ProfileHandler

	// SessionAuth guards the owner-scoped routes.
	SessionAuth gin.HandlerFunc
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")

	// Public surface
	api.POST("/auth/signup", d.Auth.Signup)
	api.POST("/auth/login", d.Auth.Login)
	api.POST("/generate-response", d.Chat.GenerateResponse)
	api.POST("/generate-title", d.Chat.GenerateTitle)

	// Session-scoped surface
	auth := api.Group("/")
	auth.Use(d.SessionAuth)

	auth.POST("/auth/change-password", d.Auth.ChangePassword)
	auth.DELETE("/auth/account", d.Auth.DeleteAccount)

	auth.GET("/conversations", d.Conversation.List)
	auth.POST("/conversations", d.Conversation.Create)
	auth.GET("/conversations/:conversation_id", d.Conversation.Get)
	auth.PUT("/conversations/:conversation_id", d.Conversation.Update)
	auth.GET("/conversations/:conversation_id/messages", d.Message.List)
	auth.POST("/messages", d.Message.Create)

	auth.GET("/me", d.Profile.Me)
	auth.POST("/update-user-profile", d.Profile.Update)
	auth.POST("/upload-avatar", d.Profile.UploadAvatar)
}
