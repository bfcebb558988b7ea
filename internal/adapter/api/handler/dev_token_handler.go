package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"balikin/internal/domain/entity"
	"balikin/internal/domain/repository"
	"balikin/internal/infrastructure/auth"
	"balikin/pkg/response"
)

// DevTokenHandler mints development tokens against the in-memory driver so
// the API can be exercised without a real identity provider. Only mounted in
// the development environment.
type DevTokenHandler struct {
	verifier *auth.DevVerifier
	userRepo repository.UserRepository
}

func NewDevTokenHandler(verifier *auth.DevVerifier, userRepo repository.UserRepository) *DevTokenHandler {
	return &DevTokenHandler{
		verifier: verifier,
		userRepo: userRepo,
	}
}

type devTokenRequest struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username"`
}

// GenerateToken creates the user when it does not exist yet and returns a
// signed token for it.
func (h *DevTokenHandler) GenerateToken(c echo.Context) error {
	var req devTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if req.UserID == "" {
		req.UserID = uuid.New().String()
	}
	if req.Username == "" {
		// Caller-supplied ids can be arbitrarily short.
		suffix := req.UserID
		if len(suffix) > 8 {
			suffix = suffix[:8]
		}
		req.Username = "dev-" + suffix
	}

	ctx := c.Request().Context()
	if _, err := h.userRepo.GetByID(ctx, req.UserID); err != nil {
		user := &entity.User{
			ID:       req.UserID,
			Email:    req.Email,
			Username: req.Username,
			Status:   "active",
		}
		if err := h.userRepo.Create(ctx, user); err != nil {
			return response.Error(c, err)
		}
	}

	token, err := h.verifier.Issue(req.UserID, req.Email, req.Username)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"user_id": req.UserID,
		"token":   token,
	})
}
