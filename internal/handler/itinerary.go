package handler

import (
    "errors"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/thai-itinerary/internal/middleware"
    "github.com/iliyamo/thai-itinerary/internal/model"
    "github.com/iliyamo/thai-itinerary/internal/service"
)

// ItineraryHandler serves the itinerary resource and the recommended
// lookup.
type ItineraryHandler struct {
    Svc *service.ItineraryService
}

func NewItineraryHandler(svc *service.ItineraryService) *ItineraryHandler {
    return &ItineraryHandler{Svc: svc}
}

// Create handles POST /itineraries/.  The body is the itinerary with its
// accommodations, transfers and itinerary_activities; the response is the
// stored itinerary with every reference resolved.
func (h *ItineraryHandler) Create(c echo.Context) error {
    var in service.CreateItineraryInput
    if err := c.Bind(&in); err != nil {
        return bindError(c, err)
    }
    var actor string
    if id, ok := middleware.IdentityFrom(c); ok {
        actor = id.Username
    }

    ctx, cancel := requestCtx(c)
    defer cancel()

    out, err := h.Svc.Create(ctx, in, actor)
    if err != nil {
        return respondError(c, err)
    }
    c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/itineraries/%d", out.ID))
    return c.JSON(http.StatusCreated, out)
}

// List handles GET /itineraries/?skip=&limit=.
func (h *ItineraryHandler) List(c echo.Context) error {
    skip, limit, err := pageParams(c)
    if err != nil {
        return respondError(c, err)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    items, err := h.Svc.List(ctx, skip, limit)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, items)
}

func (h *ItineraryHandler) Get(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return respondError(c, err)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    out, err := h.Svc.Get(ctx, id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, out)
}

// Delete removes the itinerary and, through the foreign keys, its children.
func (h *ItineraryHandler) Delete(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return respondError(c, err)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    if err := h.Svc.Delete(ctx, id); err != nil {
        return respondError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Recommended handles GET /mcp/recommended-itineraries/?nights=&region=.
// No match is a 404, never an empty list.
func (h *ItineraryHandler) Recommended(c echo.Context) error {
    if c.QueryParam("nights") == "" {
        return respondError(c, &service.ValidationError{Field: "nights", Message: "nights is required"})
    }
    nights, err := queryInt(c, "nights", 0)
    if err != nil {
        return respondError(c, err)
    }
    region := c.QueryParam("region")

    ctx, cancel := requestCtx(c)
    defer cancel()

    items, err := h.Svc.ListRecommended(ctx, nights, region)
    if errors.Is(err, service.ErrNoRecommendation) {
        msg := fmt.Sprintf("No recommended itineraries found for %d nights", nights)
        if r, ok := model.ParseRegion(region); ok {
            msg += " in " + string(r)
        }
        return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
    }
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"recommended_itineraries": items})
}
