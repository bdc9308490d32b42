package handler

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/thai-itinerary/internal/repository"
    "github.com/iliyamo/thai-itinerary/internal/service"
)

// requestTimeout bounds the storage work of a single request.
const requestTimeout = 5 * time.Second

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// respondError maps service and repository errors onto HTTP responses.
// Anything unrecognised is a storage failure: it is logged and the client
// only sees a generic message.
func respondError(c echo.Context, err error) error {
    var ve *service.ValidationError
    switch {
    case errors.As(err, &ve):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message, "field": ve.Field})
    case errors.Is(err, repository.ErrItineraryNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "Itinerary not found"})
    case errors.Is(err, repository.ErrLocationNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "Location not found"})
    case errors.Is(err, repository.ErrHotelNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "Hotel not found"})
    case errors.Is(err, repository.ErrActivityNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "Activity not found"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "resource is still referenced"})
    case errors.Is(err, context.DeadlineExceeded):
        c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
        return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "request timed out"})
    default:
        c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}

// bindError answers a body that could not be decoded.  A JSON value of
// the wrong type is reported against its field.
func bindError(c echo.Context, err error) error {
    var ute *json.UnmarshalTypeError
    if errors.As(err, &ute) && ute.Field != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{
            "error": fmt.Sprintf("%s must be of type %s", ute.Field, ute.Type),
            "field": ute.Field,
        })
    }
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body", "field": "body"})
}

// parseID reads the :id path parameter.
func parseID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, &service.ValidationError{Field: "id", Message: "id must be a positive integer"}
    }
    return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(c echo.Context, name string, def int) (int, error) {
    v := c.QueryParam(name)
    if v == "" {
        return def, nil
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        return 0, &service.ValidationError{Field: name, Message: name + " must be an integer"}
    }
    return n, nil
}

// pageParams reads skip and limit; limit 0 lets the service apply its default.
func pageParams(c echo.Context) (skip, limit int, err error) {
    if skip, err = queryInt(c, "skip", 0); err != nil {
        return 0, 0, err
    }
    limit, err = queryInt(c, "limit", 0)
    return skip, limit, err
}
