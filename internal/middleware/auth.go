package middleware

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/thai-itinerary/internal/model"
    "github.com/iliyamo/thai-itinerary/internal/utils"
)

// SessionCookie is the HTTP-only cookie that carries the access token.
const SessionCookie = "token"

// RevocationChecker reports whether a token id was logged out.
// *repository.TokenRepo satisfies it.
type RevocationChecker interface {
    IsRevoked(ctx context.Context, jti string) (bool, error)
}

// tokenFromRequest reads the session cookie and falls back to an
// "Authorization: Bearer" header for non-browser clients.
func tokenFromRequest(c echo.Context) string {
    if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
        return ck.Value
    }
    if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    }
    return ""
}

// authenticate validates the request token.  It returns a non-zero status
// and message when the request must be rejected.
func authenticate(c echo.Context, secret string, revoked RevocationChecker) (Identity, int, string) {
    raw := tokenFromRequest(c)
    if raw == "" {
        return Identity{}, http.StatusUnauthorized, "Not authenticated"
    }
    claims, err := utils.ParseAccessToken(secret, raw)
    if err != nil {
        return Identity{}, http.StatusUnauthorized, "Invalid or expired token"
    }
    if revoked != nil {
        isRevoked, err := revoked.IsRevoked(c.Request().Context(), claims.ID)
        if err != nil {
            c.Logger().Errorf("auth: revocation lookup for %s: %v", claims.ID, err)
            return Identity{}, http.StatusInternalServerError, "database error"
        }
        if isRevoked {
            return Identity{}, http.StatusUnauthorized, "Invalid or expired token"
        }
    }
    return Identity{
        Username:  claims.Subject,
        Role:      model.Role(claims.Role),
        TokenID:   claims.ID,
        ExpiresAt: claims.ExpiresAt.Time,
    }, 0, ""
}

// CookieAuth rejects requests without a valid, unexpired, non-revoked
// token and stores the caller's Identity on the context.  An identity
// already set by OptionalAuth earlier in the chain is trusted.
func CookieAuth(secret string, revoked RevocationChecker) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if _, ok := IdentityFrom(c); ok {
                return next(c)
            }
            id, status, msg := authenticate(c, secret, revoked)
            if status != 0 {
                return c.JSON(status, echo.Map{"error": msg})
            }
            setIdentity(c, id)
            return next(c)
        }
    }
}

// OptionalAuth records the caller's Identity when a valid token is
// present and lets every request through.
func OptionalAuth(secret string, revoked RevocationChecker) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if _, ok := IdentityFrom(c); !ok && tokenFromRequest(c) != "" {
                if id, status, _ := authenticate(c, secret, revoked); status == 0 {
                    setIdentity(c, id)
                }
            }
            return next(c)
        }
    }
}
