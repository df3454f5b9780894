package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pdv/internal/hash"
	"github.com/Skotchmaster/pdv/internal/logging"
	"github.com/Skotchmaster/pdv/internal/models"
	"github.com/Skotchmaster/pdv/internal/mykafka"
	"github.com/Skotchmaster/pdv/internal/service"
	"github.com/Skotchmaster/pdv/internal/util"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
	Producer  *mykafka.Producer
}

type userSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(event["user_id"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name, email and password are required")
	}

	var existing models.User
	err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	util.UsersRegisteredTotal.Inc()
	h.publish(c, map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusCreated, userSummary{ID: user.ID, Name: user.Name, Email: user.Email})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, err := service.SignAccessToken(&user, h.JWTSecret)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot sign token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	util.LoginsTotal.Inc()
	h.publish(c, map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  userSummary{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}
