package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// List endpoints page with ?page and ?page_size. Message history is the
// heaviest list in the API, so the cap is sized for it.
const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// PageWindow is the slice of a list a single request returns.
type PageWindow struct {
	Page     int
	PageSize int
}

// Offset converts the one-based page into the skip count repositories expect.
func (w PageWindow) Offset() int {
	return (w.Page - 1) * w.PageSize
}

// PageFromQuery reads ?page and ?page_size, clamping both into range.
// Anything missing or unparseable falls back to the defaults.
func PageFromQuery(c echo.Context) PageWindow {
	window := PageWindow{Page: 1, PageSize: DefaultPageSize}

	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil && page > 1 {
		window.Page = page
	}
	if size, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && size > 0 {
		if size > MaxPageSize {
			size = MaxPageSize
		}
		window.PageSize = size
	}
	return window
}
