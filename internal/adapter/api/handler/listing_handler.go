package handler

import (
	"github.com/labstack/echo/v4"

	"balikin/internal/usecase"
	"balikin/pkg/response"
	"balikin/pkg/utils"
)

type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active resolved closed"`
}

// CreateListing persists a new listing and returns it together with its
// initial match suggestions.
func (h *ListingHandler) CreateListing(c echo.Context) error {
	var req usecase.CreateListingInput
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	listing, matches, err := h.listingUseCase.Create(c.Request().Context(), userID, req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"listing":       listing,
		"matches":       matches,
		"maxMatchScore": usecase.MaxMatchScore,
	})
}

// ListListings returns listings filtered by optional type, category and
// status query parameters.
func (h *ListingHandler) ListListings(c echo.Context) error {
	params := utils.PageFromQuery(c)

	filter := map[string]interface{}{}
	for _, key := range []string{"type", "category", "status"} {
		if value := c.QueryParam(key); value != "" {
			filter[key] = value
		}
	}

	listings, total, err := h.listingUseCase.List(c.Request().Context(), filter, params.PageSize, params.Offset())
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, listings, total, params.PageSize, params.Offset())
}

func (h *ListingHandler) GetListing(c echo.Context) error {
	listing, err := h.listingUseCase.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

// UpdateListingStatus moves the caller's listing through its lifecycle.
func (h *ListingHandler) UpdateListingStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	listing, err := h.listingUseCase.UpdateStatus(c.Request().Context(), c.Param("id"), userID, req.Status)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

// GetListingMatches recomputes match suggestions for the caller's listing.
func (h *ListingHandler) GetListingMatches(c echo.Context) error {
	userID := c.Get("uid").(string)

	matches, err := h.listingUseCase.FindMatchesForOwner(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"matches":       matches,
		"maxMatchScore": usecase.MaxMatchScore,
	})
}
