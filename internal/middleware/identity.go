package middleware

// identity.go holds the authenticated principal that the auth middleware
// stores on the echo context, and the helpers other middleware and the
// handlers use to read it back.

import (
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/thai-itinerary/internal/model"
)

const identityKey = "identity"

// Identity is the verified content of a session token.
type Identity struct {
    Username  string
    Role      model.Role
    TokenID   string
    ExpiresAt time.Time
}

// IdentityFrom returns the identity set by CookieAuth or OptionalAuth.
func IdentityFrom(c echo.Context) (Identity, bool) {
    id, ok := c.Get(identityKey).(Identity)
    return id, ok && id.Username != ""
}

func setIdentity(c echo.Context, id Identity) { c.Set(identityKey, id) }

// principal names the caller for rate-limit keys, "guest" when anonymous.
func principal(c echo.Context) string {
    if id, ok := IdentityFrom(c); ok {
        return id.Username
    }
    return "guest"
}
