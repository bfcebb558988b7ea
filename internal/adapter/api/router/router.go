package router

import (
	"github.com/labstack/echo/v4"

	"balikin/internal/adapter/api/handler"
	"balikin/internal/adapter/api/middleware"
)

// Routers receives every handler the HTTP surface mounts.
type Routers struct {
	Listing      *handler.ListingHandler
	Chat         *handler.ChatHandler
	Notification *handler.NotificationHandler
	WebSocket    *handler.WebSocketHandler
	Health       *handler.HealthHandler
	DevToken     *handler.DevTokenHandler
}

func Setup(e *echo.Echo, r Routers, authMiddleware *middleware.AuthMiddleware, environment string) {
	SetupListingRouter(e, r.Listing, authMiddleware)
	SetupChatRouter(e, r.Chat, authMiddleware)
	SetupNotificationRouter(e, r.Notification, authMiddleware)
	SetupWebSocketRouter(e, r.WebSocket)
	SetupHealthRouter(e, r.Health)
	SetupDevRouter(e, r.DevToken, environment)
}
