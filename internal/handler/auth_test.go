package handler

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/panemexpress/rail-booking/internal/config"
	"github.com/panemexpress/rail-booking/internal/middleware"
	"github.com/panemexpress/rail-booking/internal/model"
	"github.com/panemexpress/rail-booking/internal/repository"
	"github.com/panemexpress/rail-booking/internal/utils"
)

type memUsers struct {
	mu    sync.Mutex
	users []model.User
}

func (m *memUsers) Create(ctx context.Context, username, email, password string, cost int) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return 0, repository.ErrUsernameExists
		}
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	id := uint64(len(m.users) + 1)
	m.users = append(m.users, model.User{ID: id, Username: username, Email: email, PasswordHash: hash})
	return id, nil
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

type memTokens struct {
	mu     sync.Mutex
	owner  map[string]uint64
	revoke map[string]bool
}

func newMemTokens() *memTokens {
	return &memTokens{owner: map[string]uint64{}, revoke: map[string]bool{}}
}

func (m *memTokens) StoreRefresh(ctx context.Context, userID uint64, hash string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owner[hash] = userID
	return nil
}

func (m *memTokens) ValidateRefresh(ctx context.Context, hash string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.owner[hash]
	if !ok || m.revoke[hash] {
		return 0, repository.ErrTokenInvalid
	}
	return id, nil
}

func (m *memTokens) Rotate(ctx context.Context, userID uint64, oldHash, newHash string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoke[oldHash] || m.owner[oldHash] != userID {
		return repository.ErrTokenInvalid
	}
	m.revoke[oldHash] = true
	m.owner[newHash] = userID
	return nil
}

func (m *memTokens) RevokeByHash(ctx context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoke[hash] = true
	return nil
}

func (m *memTokens) RevokeAllForUser(ctx context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h, id := range m.owner {
		if id == userID {
			m.revoke[h] = true
		}
	}
	return nil
}

func newAuthServer() (*echo.Echo, *memUsers, *memTokens) {
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: bcrypt.MinCost}
	users, tokens := &memUsers{}, newMemTokens()
	h := NewAuthHandler(cfg, users, tokens)

	e := echo.New()
	e.Validator = NewRequestValidator()
	e.POST("/v1/auth/register", h.Register)
	e.POST("/v1/auth/login", h.Login)
	e.POST("/v1/auth/refresh", h.Refresh)
	e.POST("/v1/auth/logout", h.Logout)
	e.GET("/v1/me", h.Me, middleware.JWTAuth(cfg.JWTSecret))
	return e, users, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	e, users, _ := newAuthServer()

	rec := do(e, http.MethodPost, "/v1/auth/register", `{"username":"ana","email":"Ana@Example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "ana@example.com", body["user"].(map[string]any)["email"])
	assert.NotEmpty(t, body["access"].(map[string]any)["token"])
	require.Len(t, users.users, 1)

	rec = do(e, http.MethodPost, "/v1/auth/register", `{"username":"ana","email":"other@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "username_taken", decode(t, rec)["error"])

	rec = do(e, http.MethodPost, "/v1/auth/login", `{"username":"ana","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	access := decode(t, rec)["access"].(map[string]any)["token"].(string)

	req := bearerRequest(http.MethodGet, "/v1/me", access)
	rec = serve(e, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ana", decode(t, rec)["user"].(map[string]any)["username"])
}

func TestRegisterValidation(t *testing.T) {
	e, _, _ := newAuthServer()
	cases := map[string]string{
		"username": `{"username":"an","email":"ana@example.com","password":"secret1"}`,
		"email":    `{"username":"ana","email":"not-an-email","password":"secret1"}`,
		"password": `{"username":"ana","email":"ana@example.com","password":"12345"}`,
	}
	for field, payload := range cases {
		t.Run(field, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/v1/auth/register", payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, "validation_error", body["error"])
			assert.Equal(t, field, body["field"])
		})
	}

	rec := do(e, http.MethodPost, "/v1/auth/register", `{"username":"ana smith","email":"ana@example.com","password":"secret1"}`)
	assert.Equal(t, "username", decode(t, rec)["field"])
}

func TestLoginFailure(t *testing.T) {
	e, _, _ := newAuthServer()
	require.Equal(t, http.StatusCreated,
		do(e, http.MethodPost, "/v1/auth/register", `{"username":"ana","email":"ana@example.com","password":"secret1"}`).Code)

	for _, payload := range []string{
		`{"username":"ana","password":"wrong-one"}`,
		`{"username":"bob","password":"secret1"}`,
	} {
		rec := do(e, http.MethodPost, "/v1/auth/login", payload)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_credentials", decode(t, rec)["error"])
	}
}

func TestRefreshRotatesOnce(t *testing.T) {
	e, _, _ := newAuthServer()
	rec := do(e, http.MethodPost, "/v1/auth/register", `{"username":"ana","email":"ana@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	refresh := decode(t, rec)["refresh"].(map[string]any)["token"].(string)

	rec = do(e, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	next := decode(t, rec)["refresh"].(map[string]any)["token"].(string)
	assert.NotEqual(t, refresh, next)

	rec = do(e, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/v1/auth/logout", `{"refresh_token":"`+next+`"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(e, http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+next+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeRequiresToken(t *testing.T) {
	e, _, _ := newAuthServer()
	rec := do(e, http.MethodGet, "/v1/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
