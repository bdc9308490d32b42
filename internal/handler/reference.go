package handler

import (
    "context"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/thai-itinerary/internal/service"
)

// CatalogHandler exposes the reference data: locations, hotels and
// activities.  Reads are public; writes are wired behind the admin role.
type CatalogHandler struct {
    Svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
    return &CatalogHandler{Svc: svc}
}

// list runs one of the catalogue list calls with the shared query params.
func list[T any](c echo.Context, fn func(ctx context.Context, region string, skip, limit int) ([]T, error)) error {
    skip, limit, err := pageParams(c)
    if err != nil {
        return respondError(c, err)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    items, err := fn(ctx, c.QueryParam("region"), skip, limit)
    if err != nil {
        return respondError(c, err)
    }
    if items == nil {
        items = []T{}
    }
    return c.JSON(http.StatusOK, items)
}

func get[T any](c echo.Context, fn func(ctx context.Context, id uint64) (*T, error)) error {
    id, err := parseID(c)
    if err != nil {
        return respondError(c, err)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    out, err := fn(ctx, id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) ListLocations(c echo.Context) error { return list(c, h.Svc.ListLocations) }
func (h *CatalogHandler) ListHotels(c echo.Context) error    { return list(c, h.Svc.ListHotels) }
func (h *CatalogHandler) ListActivities(c echo.Context) error {
    return list(c, h.Svc.ListActivities)
}

func (h *CatalogHandler) GetLocation(c echo.Context) error { return get(c, h.Svc.GetLocation) }
func (h *CatalogHandler) GetHotel(c echo.Context) error    { return get(c, h.Svc.GetHotel) }
func (h *CatalogHandler) GetActivity(c echo.Context) error { return get(c, h.Svc.GetActivity) }

func (h *CatalogHandler) CreateLocation(c echo.Context) error {
    var in service.LocationInput
    if err := c.Bind(&in); err != nil {
        return bindError(c, err)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    out, err := h.Svc.CreateLocation(ctx, in)
    if err != nil {
        return respondError(c, err)
    }
    c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/locations/%d", out.ID))
    return c.JSON(http.StatusCreated, out)
}

func (h *CatalogHandler) CreateHotel(c echo.Context) error {
    var in service.HotelInput
    if err := c.Bind(&in); err != nil {
        return bindError(c, err)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    out, err := h.Svc.CreateHotel(ctx, in)
    if err != nil {
        return respondError(c, err)
    }
    c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/hotels/%d", out.ID))
    return c.JSON(http.StatusCreated, out)
}

func (h *CatalogHandler) CreateActivity(c echo.Context) error {
    var in service.ActivityInput
    if err := c.Bind(&in); err != nil {
        return bindError(c, err)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    out, err := h.Svc.CreateActivity(ctx, in)
    if err != nil {
        return respondError(c, err)
    }
    c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/activities/%d", out.ID))
    return c.JSON(http.StatusCreated, out)
}

// DeleteLocation answers 409 while hotels, activities or transfers still
// point at the location.
func (h *CatalogHandler) DeleteLocation(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return respondError(c, err)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    if err := h.Svc.DeleteLocation(ctx, id); err != nil {
        return respondError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
