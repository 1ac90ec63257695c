package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/traveltales/api/internal/service"
	"github.com/traveltales/api/internal/util"
)

type AuthHandler struct {
	auth    *service.AuthService
	uploads *Uploader
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService, uploads *Uploader) {
	handler := &AuthHandler{auth: auth, uploads: uploads}

	group := e.Group("/api/auth")
	group.POST("/register", handler.register)
	group.POST("/login", handler.login)
	group.GET("/user", handler.currentUser, RequireAuth(auth))
}

func (h *AuthHandler) register(c echo.Context) error {
	input := service.RegisterInput{
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	}

	if header, err := c.FormFile("avatar"); err == nil && header != nil {
		url, uploadErr := h.uploads.SaveImage(c.Request().Context(), "avatar", header)
		if uploadErr != nil {
			return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "avatar must be a valid image"))
		}
		input.AvatarURL = &url
	}

	user, token, err := h.auth.Register(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserValidation):
			return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, err.Error()))
		case errors.Is(err, service.ErrEmailInUse):
			return c.JSON(http.StatusConflict, util.Error(util.KindValidation, "email already registered"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error(util.KindInternal, "could not register user"))
		}
	}

	return c.JSON(http.StatusOK, util.Envelope{"token": token, "user": user})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(util.KindValidation, "invalid request body"))
	}

	user, token, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, util.Error(util.KindUnauthorized, "invalid email or password"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error(util.KindInternal, "could not log in"))
		}
	}

	return c.JSON(http.StatusOK, util.Envelope{"token": token, "user": user})
}

func (h *AuthHandler) currentUser(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error(util.KindUnauthorized, "authentication required"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"user": user})
}
