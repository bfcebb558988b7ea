package router

import (
	"github.com/labstack/echo/v4"

	"balikin/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up WebSocket routes
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	// Auth happens inside the handler: the credential is a handshake
	// query parameter, not a bearer header.
	e.GET("/ws", wsHandler.HandleWebSocket)
}
