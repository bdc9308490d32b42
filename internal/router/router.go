package router // package router defines how HTTP routes are registered for the API

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/thai-itinerary/internal/handler"
	"github.com/iliyamo/thai-itinerary/internal/middleware"
	"github.com/iliyamo/thai-itinerary/internal/model"
)

// Auth carries what protected routes need to verify a session.  Users,
// when set, is consulted for the current role on admin routes.
type Auth struct {
	Secret  string
	Revoked middleware.RevocationChecker
	Users   middleware.UserLookup
}

func (a Auth) required() echo.MiddlewareFunc { return middleware.CookieAuth(a.Secret, a.Revoked) }
func (a Auth) optional() echo.MiddlewareFunc { return middleware.OptionalAuth(a.Secret, a.Revoked) }

func (a Auth) admin() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{a.required(), middleware.RequireRole(a.Users, model.RoleAdmin)}
}

// Cache pairs the read-through response cache with the invalidation hook
// that write routes run.
type Cache struct {
	Read       echo.MiddlewareFunc
	Invalidate echo.MiddlewareFunc
}

func (c Cache) read() echo.MiddlewareFunc {
	if c.Read == nil {
		return noop
	}
	return c.Read
}

func (c Cache) invalidate() echo.MiddlewareFunc {
	if c.Invalidate == nil {
		return noop
	}
	return c.Invalidate
}

func noop(next echo.HandlerFunc) echo.HandlerFunc { return next }

// both registers path with and without its trailing slash, so
// "/itineraries" and "/itineraries/" reach the same handler.
func both(e *echo.Echo, method, path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	base := strings.TrimSuffix(path, "/")
	e.Add(method, base, h, m...)
	e.Add(method, base+"/", h, m...)
}

// RegisterRoutes registers the unauthenticated probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers the session endpoints.  Register and login are
// open; logout accepts anonymous callers so a stale cookie can always be
// cleared; me and protected require a valid session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth Auth) {
	both(e, "POST", "/register", a.Register)
	both(e, "POST", "/login", a.Login)
	both(e, "POST", "/logout", a.Logout, auth.optional())
	both(e, "GET", "/me", a.Me, auth.required())
	both(e, "GET", "/protected", a.Protected, auth.required())
}
