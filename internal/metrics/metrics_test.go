package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRoute(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/chats/:chatId", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/chats/7", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, res.StatusCode)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/chats/:chatId", "204")))
}

func TestEditStarted(t *testing.T) {
	m := New()

	done := m.EditStarted()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.editsInFlight))

	done("completed")
	assert.Equal(t, float64(0), testutil.ToFloat64(m.editsInFlight))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.editJobs.WithLabelValues("completed")))
}

func TestCounters(t *testing.T) {
	m := New()
	m.UploadFinished("ok")
	m.MessageCreated("user")
	m.MessageCreated("user")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.uploads.WithLabelValues("ok")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.messagesByRole.WithLabelValues("user")))
}
