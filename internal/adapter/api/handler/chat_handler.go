package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"balikin/internal/infrastructure/ratelimit"
	"balikin/internal/usecase"
	"balikin/pkg/errors"
	"balikin/pkg/response"
	"balikin/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
	rateLimiter *ratelimit.RateLimiter
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, rateLimiter *ratelimit.RateLimiter) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
		rateLimiter: rateLimiter,
	}
}

type startChatRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *ChatHandler) allow(userID, action string) error {
	allowed, wait := h.rateLimiter.Allow(userID, action)
	if !allowed {
		return errors.TooManyRequests("Rate limit exceeded, retry in " + wait.Round(time.Second).String())
	}
	return nil
}

// StartChat returns the room shared with the recipient, creating it when no
// room exists yet. Calling it from either side of the pair yields the same
// room.
func (h *ChatHandler) StartChat(c echo.Context) error {
	var req startChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if err := h.allow(userID, "start_chat"); err != nil {
		return response.Error(c, err)
	}

	room, err := h.chatUseCase.StartChat(c.Request().Context(), userID, req.RecipientID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, room)
}

// GetUserRooms lists the caller's rooms, most recently active first.
func (h *ChatHandler) GetUserRooms(c echo.Context) error {
	userID := c.Get("uid").(string)

	rooms, err := h.chatUseCase.ListRoomsForUser(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, rooms)
}

// GetRoom returns one room with a page of message history.
func (h *ChatHandler) GetRoom(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.PageFromQuery(c)

	detail, err := h.chatUseCase.GetRoomDetail(c.Request().Context(), c.Param("id"), userID, params.PageSize, params.Offset())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if err := h.allow(userID, "send_message"); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// MarkRoomAsRead flips every unread message from the other participant.
func (h *ChatHandler) MarkRoomAsRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	updated, err := h.chatUseCase.MarkRoomRead(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"updated": updated,
	})
}

// GetUnreadCount returns the caller's live unread total across all rooms.
func (h *ChatHandler) GetUnreadCount(c echo.Context) error {
	userID := c.Get("uid").(string)

	return response.Success(c, map[string]interface{}{
		"totalUnread": h.chatUseCase.GetTotalUnreadCount(c.Request().Context(), userID),
	})
}
