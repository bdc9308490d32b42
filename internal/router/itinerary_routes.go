package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/thai-itinerary/internal/handler"
)

// RegisterItineraries registers the itinerary resource and the
// recommended lookup.  Creation is open to anonymous callers (the creator
// is recorded when a session is present); deletion is admin only.
func RegisterItineraries(e *echo.Echo, h *handler.ItineraryHandler, auth Auth, cache Cache) {
	both(e, "GET", "/itineraries", h.List, cache.read())
	both(e, "POST", "/itineraries", h.Create, auth.optional(), cache.invalidate())
	both(e, "GET", "/itineraries/:id", h.Get, cache.read())
	both(e, "DELETE", "/itineraries/:id", h.Delete, append(auth.admin(), cache.invalidate())...)

	both(e, "GET", "/mcp/recommended-itineraries", h.Recommended, cache.read())
}
