package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dreambees-be/internal/pkg/apperror"
	"dreambees-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	log := logger.NewNopLogger()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	app.Use(RequestLogger(log))
	return app
}

func decode(t *testing.T, res *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestErrorHandler(t *testing.T) {
	app := newApp()
	app.Get("/app", func(c *fiber.Ctx) error { return apperror.NotFound("Chat not found") })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusRequestEntityTooLarge, "too big") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db is down") })

	cases := []struct {
		path    string
		status  int
		message string
		code    string
	}{
		{"/app", http.StatusNotFound, "Chat not found", apperror.CodeNotFound},
		{"/fiber", http.StatusRequestEntityTooLarge, "too big", apperror.CodeBadRequest},
		{"/boom", http.StatusInternalServerError, "Internal server error", apperror.CodeInternal},
	}
	for _, tc := range cases {
		res, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.status, res.StatusCode, tc.path)

		body := decode(t, res)
		assert.Equal(t, tc.message, body["error"], tc.path)
		assert.Equal(t, tc.code, body["code"], tc.path)
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	app := newApp()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(c.Locals(RequestIDLocal).(string)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", res.Header.Get(RequestIDHeader))

	res, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Header.Get(RequestIDHeader))
}

func TestValidateRequest(t *testing.T) {
	type body struct {
		Role  string `validate:"required,oneof=user assistant"`
		Title string `validate:"max=3"`
	}

	assert.NoError(t, ValidateRequest(body{Role: "user"}))

	err := ValidateRequest(body{})
	appErr := apperror.From(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Equal(t, "role is required", appErr.Message)

	appErr = apperror.From(ValidateRequest(body{Role: "system"}))
	require.NotNil(t, appErr)
	assert.Equal(t, "role must be one of: user, assistant", appErr.Message)

	appErr = apperror.From(ValidateRequest(body{Role: "user", Title: "long"}))
	require.NotNil(t, appErr)
	assert.Equal(t, "title must be at most 3 characters", appErr.Message)
}

func TestJwtMiddleware(t *testing.T) {
	const secret = "s3cret"
	app := newApp()
	app.Get("/", JwtMiddleware(secret), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		body, _ := io.ReadAll(res.Body)
		assert.Equal(t, "user-1", string(body))
	})

	t.Run("query token", func(t *testing.T) {
		res, err := app.Test(httptest.NewRequest(http.MethodGet, "/?token="+signed, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("wrong secret", func(t *testing.T) {
		forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("other"))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}
