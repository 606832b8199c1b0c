package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	mw "storefront/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	panic("not used in middleware tests")
}

func (m *userRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	panic("not used in middleware tests")
}

func (m *userRepoMock) FindByOAuth(ctx context.Context, provider string, oauthID string) (*model.User, error) {
	panic("not used in middleware tests")
}

func (m *userRepoMock) Update(ctx context.Context, user *model.User) error {
	panic("not used in middleware tests")
}

func (m *userRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	panic("not used in middleware tests")
}

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":  int64(1),
		"role": "USER",
		"tv":   0,
		"iat":  now.Unix(),
		"exp":  now.Add(15 * time.Minute).Unix(),
	}
}

func runAuthJWT(t *testing.T, authz string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw.AuthJWT(config.Config{JWTSecret: testSecret})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := h(c)
	assert.NoError(t, err)
	return rec, c
}

func TestAuthJWT_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, validClaims())

	rec, c := runAuthJWT(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), c.Get(mw.CtxUserIDKey))
	assert.Equal(t, "USER", c.Get(mw.CtxUserRoleKey))
	assert.Equal(t, 0, c.Get(mw.CtxTokenVersionKey))
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	rec, _ := runAuthJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongScheme(t *testing.T) {
	token := signToken(t, testSecret, validClaims())
	rec, _ := runAuthJWT(t, "Basic "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", validClaims())
	rec, _ := runAuthJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signToken(t, testSecret, claims)

	rec, _ := runAuthJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func runTokenVersionGuard(t *testing.T, userRepo *userRepoMock, userID interface{}, tv interface{}) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set(mw.CtxUserIDKey, userID)
	}
	if tv != nil {
		c.Set(mw.CtxTokenVersionKey, tv)
	}

	h := mw.TokenVersionGuard(userRepo)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := h(c)
	assert.NoError(t, err)
	return rec
}

func TestTokenVersionGuard_Match(t *testing.T) {
	userRepo := new(userRepoMock)
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, TokenVersion: 3}, nil)

	rec := runTokenVersionGuard(t, userRepo, int64(1), 3)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenVersionGuard_Mismatch(t *testing.T) {
	// 強制ログアウト後はDB側のtoken_versionが進んでいる
	userRepo := new(userRepoMock)
	userRepo.On("FindByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, TokenVersion: 4}, nil)

	rec := runTokenVersionGuard(t, userRepo, int64(1), 3)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenVersionGuard_MissingContext(t *testing.T) {
	rec := runTokenVersionGuard(t, new(userRepoMock), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
