package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/traveltales/api/internal/domain"
	"github.com/traveltales/api/internal/service"
	"github.com/traveltales/api/internal/util"
)

// Tokens travel in a custom header rather than Authorization, matching the
// client.
const headerAuthToken = "X-Auth-Token"

const (
	contextUserKey  = "currentUser"
	contextTokenKey = "authToken"
)

func RequireAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := strings.TrimSpace(c.Request().Header.Get(headerAuthToken))
			if token == "" {
				return c.JSON(http.StatusUnauthorized, util.Error(util.KindUnauthorized, "missing auth token"))
			}
			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, util.Error(util.KindUnauthorized, "invalid or expired token"))
			}
			c.Set(contextUserKey, user)
			c.Set(contextTokenKey, token)
			return next(c)
		}
	}
}

// OptionalAuth resolves the caller when a valid token is present and treats
// everything else, including a bad token, as an anonymous request.
func OptionalAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := strings.TrimSpace(c.Request().Header.Get(headerAuthToken))
			if token != "" {
				if user, err := auth.Authenticate(c.Request().Context(), token); err == nil {
					c.Set(contextUserKey, user)
					c.Set(contextTokenKey, token)
				}
			}
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextUserKey).(*domain.User)
	return user, ok && user != nil
}

// CallerID returns the authenticated caller's id, or nil for anonymous
// requests on optional-auth routes.
func CallerID(c echo.Context) *uuid.UUID {
	user, ok := CurrentUser(c)
	if !ok {
		return nil
	}
	id := user.ID
	return &id
}
