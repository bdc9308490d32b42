package handler

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/thai-itinerary/internal/repository"
    "github.com/iliyamo/thai-itinerary/internal/service"
)

func newCtx(target string) (echo.Context, *httptest.ResponseRecorder) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, target, nil)
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

func TestRespondErrorStatusMapping(t *testing.T) {
    cases := []struct {
        err    error
        status int
        msg    string
    }{
        {&service.ValidationError{Field: "region", Message: "bad region"}, http.StatusBadRequest, "bad region"},
        {repository.ErrItineraryNotFound, http.StatusNotFound, "Itinerary not found"},
        {fmt.Errorf("load: %w", repository.ErrHotelNotFound), http.StatusNotFound, "Hotel not found"},
        {repository.ErrConflict, http.StatusConflict, "resource is still referenced"},
        {fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "request timed out"},
        {errors.New("driver: bad connection"), http.StatusInternalServerError, "database error"},
    }
    for _, tc := range cases {
        c, rec := newCtx("/")
        require.NoError(t, respondError(c, tc.err))
        assert.Equal(t, tc.status, rec.Code, tc.err.Error())

        var body map[string]string
        require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
        assert.Equal(t, tc.msg, body["error"])
    }
}

func TestValidationErrorCarriesField(t *testing.T) {
    c, rec := newCtx("/")
    require.NoError(t, respondError(c, &service.ValidationError{Field: "transfers[1].day_number", Message: "too late"}))
    assert.JSONEq(t, `{"error":"too late","field":"transfers[1].day_number"}`, rec.Body.String())
}

func TestParseID(t *testing.T) {
    for _, raw := range []string{"0", "-3", "abc", ""} {
        c, _ := newCtx("/")
        c.SetParamNames("id")
        c.SetParamValues(raw)
        _, err := parseID(c)
        var ve *service.ValidationError
        assert.ErrorAs(t, err, &ve, raw)
    }

    c, _ := newCtx("/")
    c.SetParamNames("id")
    c.SetParamValues("42")
    id, err := parseID(c)
    require.NoError(t, err)
    assert.Equal(t, uint64(42), id)
}

func TestPageParams(t *testing.T) {
    c, _ := newCtx("/?skip=5&limit=20")
    skip, limit, err := pageParams(c)
    require.NoError(t, err)
    assert.Equal(t, 5, skip)
    assert.Equal(t, 20, limit)

    c, _ = newCtx("/")
    skip, limit, err = pageParams(c)
    require.NoError(t, err)
    assert.Zero(t, skip)
    assert.Zero(t, limit)

    c, _ = newCtx("/?skip=two")
    _, _, err = pageParams(c)
    var ve *service.ValidationError
    require.ErrorAs(t, err, &ve)
    assert.Equal(t, "skip", ve.Field)
}
