package handler

import (
	"github.com/labstack/echo/v4"

	"balikin/internal/usecase"
	"balikin/pkg/response"
	"balikin/pkg/utils"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

// ListNotifications returns the caller's notifications, newest first.
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.PageFromQuery(c)

	notifications, total, err := h.notificationUseCase.ListForUser(c.Request().Context(), userID, params.PageSize, params.Offset())
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, notifications, total, params.PageSize, params.Offset())
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	notification, err := h.notificationUseCase.MarkRead(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, notification)
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	updated, err := h.notificationUseCase.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"updated": updated,
	})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.notificationUseCase.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"deleted": true,
	})
}
