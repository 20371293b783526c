package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/panemexpress/rail-booking/internal/config"
	"github.com/panemexpress/rail-booking/internal/middleware"
	"github.com/panemexpress/rail-booking/internal/model"
	"github.com/panemexpress/rail-booking/internal/repository"
	"github.com/panemexpress/rail-booking/internal/utils"
)

// UserAccounts is the user storage used by the auth endpoints.
type UserAccounts interface {
	Create(ctx context.Context, username, email, password string, cost int) (uint64, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RefreshTokens is the refresh token storage used by the auth endpoints.
type RefreshTokens interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	Rotate(ctx context.Context, userID uint64, oldHash, newHash string, exp time.Time) error
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserAccounts
	Tokens RefreshTokens
}

func NewAuthHandler(cfg config.Config, u UserAccounts, t RefreshTokens) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username" validate:"required,min=3,max=64,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}
type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Username: u.Username, Email: u.Email}
}

// issue signs an access token and stores a new refresh token.
func (h *AuthHandler) issue(ctx context.Context, u model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindAndValidate(c, &req); err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.Cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusConflict, errorBody("username_taken", "username already exists"))
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, errorBody("email_taken", "email already exists"))
	case err != nil:
		return writeError(c, err)
	}

	resp, err := h.issue(ctx, model.User{
		ID:       uid,
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login: verify and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusUnauthorized, errorBody("invalid_credentials", "invalid username or password"))
	case err != nil:
		return writeError(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, errorBody("invalid_credentials", "invalid username or password"))
	}

	resp, err := h.issue(ctx, u)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh: validate by hash, rotate, issue a new access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, errorBody("validation_error", "refresh_token is required"))
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, errorBody("invalid_refresh", "refresh token is invalid or expired"))
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, errorBody("invalid_refresh", "refresh token is invalid or expired"))
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, h.Cfg.AccessTTLMin)
	if err != nil {
		return writeError(c, err)
	}
	newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return writeError(c, err)
	}
	err = h.Tokens.Rotate(ctx, u.ID, hash, utils.HashRefreshRaw(newRef.Raw), newRef.Exp)
	switch {
	case errors.Is(err, repository.ErrTokenInvalid):
		return c.JSON(http.StatusUnauthorized, errorBody("invalid_refresh", "refresh token already used"))
	case err != nil:
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
	})
}

// Logout revokes the refresh token in the body, or every refresh token of
// the bearer when the body carries none.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, errorBody("invalid_refresh", "refresh token is invalid or expired"))
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorBody("unauthenticated", "invalid token"))
		}
		uid, err := claims.UserID()
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorBody("unauthenticated", "invalid token"))
		}
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusBadRequest, errorBody("validation_error", "provide Authorization header or refresh_token"))
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	uid := middleware.CurrentUserID(c)
	u, err := h.Users.GetByID(c.Request().Context(), uid)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusUnauthorized, errorBody("unauthenticated", "user no longer exists"))
	case err != nil:
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":       toUserPart(u),
		"created_at": u.CreatedAt,
	})
}
