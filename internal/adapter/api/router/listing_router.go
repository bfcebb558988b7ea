package router

import (
	"github.com/labstack/echo/v4"

	"balikin/internal/adapter/api/handler"
	"balikin/internal/adapter/api/middleware"
)

// SetupListingRouter sets up listing routes
func SetupListingRouter(e *echo.Echo, listingHandler *handler.ListingHandler, authMiddleware *middleware.AuthMiddleware) {
	listings := e.Group("/v1/listings")
	listings.Use(authMiddleware.Authenticate)

	listings.POST("", listingHandler.CreateListing)                 // POST /v1/listings - Create listing + match suggestions
	listings.GET("", listingHandler.ListListings)                   // GET /v1/listings - Browse listings
	listings.GET("/:id", listingHandler.GetListing)                 // GET /v1/listings/:id
	listings.PUT("/:id/status", listingHandler.UpdateListingStatus) // PUT /v1/listings/:id/status - Owner only
	listings.GET("/:id/matches", listingHandler.GetListingMatches)  // GET /v1/listings/:id/matches - Owner only
}
