package middleware // middleware provides shared request processing for handlers

import (
    "context"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/thai-itinerary/internal/model"
    "github.com/iliyamo/thai-itinerary/internal/repository"
)

// UserLookup loads the stored account behind an identity.
// *repository.UserRepo satisfies it.
type UserLookup interface {
    GetByUsername(ctx context.Context, username string) (model.User, error)
}

// RequireRole enforces that the authenticated caller has one of roles.
// It must run after CookieAuth; a request without an identity gets 401,
// one with the wrong role gets 403.  With a non-nil users the role is
// taken from the stored account, so a demoted or deleted admin loses
// access on the next request instead of when the token expires.
func RequireRole(users UserLookup, roles ...model.Role) echo.MiddlewareFunc {
    allowed := make(map[model.Role]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, ok := IdentityFrom(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Not authenticated"})
            }
            role := id.Role
            if users != nil {
                u, err := users.GetByUsername(c.Request().Context(), id.Username)
                if errors.Is(err, repository.ErrUserNotFound) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Could not validate credentials"})
                }
                if err != nil {
                    c.Logger().Errorf("auth: load user %q: %v", id.Username, err)
                    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
                }
                role = u.Role
            }
            if !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
