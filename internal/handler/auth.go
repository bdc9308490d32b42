package handler

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"
    "unicode/utf8"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/thai-itinerary/internal/config"
    "github.com/iliyamo/thai-itinerary/internal/middleware"
    "github.com/iliyamo/thai-itinerary/internal/model"
    "github.com/iliyamo/thai-itinerary/internal/repository"
    "github.com/iliyamo/thai-itinerary/internal/utils"
)

// UserStore is the part of *repository.UserRepo the auth handler uses.
type UserStore interface {
    Create(ctx context.Context, username, fullName, password string, role model.Role, cost int) (uint64, error)
    GetByUsername(ctx context.Context, username string) (model.User, error)
}

// TokenRevoker is the part of *repository.TokenRepo the auth handler uses.
type TokenRevoker interface {
    Revoke(ctx context.Context, jti, username string, exp time.Time) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  UserStore
    Tokens TokenRevoker
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenRevoker) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// users.username is VARCHAR(64), users.full_name VARCHAR(255).
const (
    maxUsernameLen = 64
    maxFullNameLen = 255
)

type registerReq struct {
    Username string `json:"username" form:"username"`
    Password string `json:"password" form:"password"`
    FullName string `json:"full_name" form:"full_name"`
}

type loginReq struct {
    Username string `json:"username" form:"username"`
    Password string `json:"password" form:"password"`
}

// Register creates a user with the "user" role.  Duplicate usernames and
// short passwords are rejected before anything is written.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return bindError(c, err)
    }
    req.Username = strings.TrimSpace(req.Username)
    req.FullName = strings.TrimSpace(req.FullName)
    switch {
    case req.Username == "":
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username is required", "field": "username"})
    case utf8.RuneCountInString(req.Username) > maxUsernameLen:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("Username must be at most %d characters long", maxUsernameLen), "field": "username"})
    case utf8.RuneCountInString(req.FullName) > maxFullNameLen:
        return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("Full name must be at most %d characters long", maxFullNameLen), "field": "full_name"})
    }
    switch err := utils.CheckPassword(req.Password); {
    case errors.Is(err, utils.ErrPasswordTooShort):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("Password must be at least %d characters long", utils.MinPasswordLen), "field": "password"})
    case errors.Is(err, utils.ErrPasswordTooLong):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("Password must be at most %d bytes long", utils.MaxPasswordBytes), "field": "password"})
    }

    ctx, cancel := requestCtx(c)
    defer cancel()

    if _, err := h.Users.Create(ctx, req.Username, req.FullName, req.Password, model.RoleUser, h.Cfg.BcryptCost); err != nil {
        if errors.Is(err, repository.ErrUsernameExists) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username already registered", "field": "username"})
        }
        c.Logger().Errorf("register %q: %v", req.Username, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    c.Logger().Infof("user registered: %s", req.Username)
    return c.JSON(http.StatusCreated, echo.Map{
        "message":   "User registered successfully",
        "username":  req.Username,
        "full_name": req.FullName,
    })
}

// Login verifies credentials (form-encoded or JSON) and sets the session
// cookie.  The token never appears in the body.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return bindError(c, err)
    }
    req.Username = strings.TrimSpace(req.Username)
    if req.Username == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
    }

    ctx, cancel := requestCtx(c)
    defer cancel()

    u, err := h.Users.GetByUsername(ctx, req.Username)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Incorrect username or password"})
        }
        c.Logger().Errorf("login %q: %v", req.Username, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Incorrect username or password"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.Username, string(u.Role), h.Cfg.AccessTTLMin)
    if err != nil {
        c.Logger().Errorf("issue token for %q: %v", u.Username, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }
    c.SetCookie(h.sessionCookie(access.Token, h.Cfg.AccessTTLMin*60))
    return c.JSON(http.StatusOK, echo.Map{"message": "Login successful"})
}

// Logout clears the cookie and deny-lists the presented token so a copy
// of it stops working before it expires.  Calling it without a session is
// not an error.
func (h *AuthHandler) Logout(c echo.Context) error {
    c.SetCookie(h.sessionCookie("", -1))

    id, ok := middleware.IdentityFrom(c)
    if ok && h.Tokens != nil {
        ctx, cancel := requestCtx(c)
        defer cancel()
        if err := h.Tokens.Revoke(ctx, id.TokenID, id.Username, id.ExpiresAt); err != nil {
            c.Logger().Errorf("revoke %s: %v", id.TokenID, err)
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// Me returns the current user.  A valid token for a user that has since
// been removed is treated as unauthenticated.
func (h *AuthHandler) Me(c echo.Context) error {
    return h.withUser(c, func(u model.User) error {
        return c.JSON(http.StatusOK, echo.Map{
            "username":  u.Username,
            "full_name": u.FullName,
            "role":      u.Role,
        })
    })
}

func (h *AuthHandler) Protected(c echo.Context) error {
    return h.withUser(c, func(u model.User) error {
        return c.JSON(http.StatusOK, echo.Map{
            "message": "Hello, " + u.Username + "! This is a protected route.",
        })
    })
}

// withUser loads the user named by the request identity and hands it to fn.
func (h *AuthHandler) withUser(c echo.Context, fn func(model.User) error) error {
    id, ok := middleware.IdentityFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Could not validate credentials"})
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    u, err := h.Users.GetByUsername(ctx, id.Username)
    if errors.Is(err, repository.ErrUserNotFound) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Could not validate credentials"})
    }
    if err != nil {
        c.Logger().Errorf("load user %q: %v", id.Username, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return fn(u)
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
    return &http.Cookie{
        Name:     middleware.SessionCookie,
        Value:    value,
        Path:     "/",
        MaxAge:   maxAge,
        HttpOnly: true,
        Secure:   h.Cfg.CookieSecure,
        SameSite: http.SameSiteLaxMode,
    }
}
