package router

import (
	"github.com/labstack/echo/v4"

	"balikin/internal/adapter/api/handler"
	"balikin/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all chat-related routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chats := e.Group("/v1/chats")
	chats.Use(authMiddleware.Authenticate) // All chat endpoints require authentication

	chats.POST("", chatHandler.StartChat)                  // POST /v1/chats - Get or create the room for a pair
	chats.GET("", chatHandler.GetUserRooms)                // GET /v1/chats - Caller's rooms, last activity first
	chats.GET("/unread-count", chatHandler.GetUnreadCount) // GET /v1/chats/unread-count - Live unread total
	chats.GET("/:id", chatHandler.GetRoom)                 // GET /v1/chats/:id - Room detail + message history
	chats.PUT("/:id/read", chatHandler.MarkRoomAsRead)     // PUT /v1/chats/:id/read - Mark room as read
	chats.POST("/:id/messages", chatHandler.SendMessage)   // POST /v1/chats/:id/messages - Send message
}
