package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/thai-itinerary/internal/handler"
)

// RegisterCatalog registers the reference data.  Reads are public and
// cached; writes require the admin role and flush the cache.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, auth Auth, cache Cache) {
	write := append(auth.admin(), cache.invalidate())

	both(e, "GET", "/locations", h.ListLocations, cache.read())
	both(e, "GET", "/locations/:id", h.GetLocation, cache.read())
	both(e, "POST", "/locations", h.CreateLocation, write...)
	both(e, "DELETE", "/locations/:id", h.DeleteLocation, write...)

	both(e, "GET", "/hotels", h.ListHotels, cache.read())
	both(e, "GET", "/hotels/:id", h.GetHotel, cache.read())
	both(e, "POST", "/hotels", h.CreateHotel, write...)

	both(e, "GET", "/activities", h.ListActivities, cache.read())
	both(e, "GET", "/activities/:id", h.GetActivity, cache.read())
	both(e, "POST", "/activities", h.CreateActivity, write...)
}
