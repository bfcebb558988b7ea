package router

import (
	"github.com/labstack/echo/v4"

	"balikin/internal/adapter/api/handler"
	"balikin/internal/adapter/api/middleware"
)

// SetupNotificationRouter sets up the notification outbox routes
func SetupNotificationRouter(e *echo.Echo, notificationHandler *handler.NotificationHandler, authMiddleware *middleware.AuthMiddleware) {
	notifications := e.Group("/v1/notifications")
	notifications.Use(authMiddleware.Authenticate)

	notifications.GET("", notificationHandler.ListNotifications)      // GET /v1/notifications
	notifications.PUT("/read-all", notificationHandler.MarkAllAsRead) // PUT /v1/notifications/read-all
	notifications.PUT("/:id/read", notificationHandler.MarkAsRead)    // PUT /v1/notifications/:id/read
	notifications.DELETE("/:id", notificationHandler.DeleteNotification)
}
