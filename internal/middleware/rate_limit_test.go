package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRateLimitKeyFallsBackToIP(t *testing.T) {
	cases := []struct {
		name   string
		userID interface{}
		want   string
	}{
		{name: "anonymous", userID: nil, want: "submissions:0.0.0.0"},
		{name: "blank id", userID: "  ", want: "submissions:0.0.0.0"},
		{name: "zero id", userID: 0, want: "submissions:0.0.0.0"},
		{name: "string id", userID: "stu-7", want: "submissions:stu-7"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/key", func(c *fiber.Ctx) error {
				if tc.userID != nil {
					c.Locals("user_id", tc.userID)
				}
				return c.SendString(rateLimitKey(c, "submissions"))
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/key", nil))
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Equal(t, tc.want, string(body))
		})
	}
}

func TestRateLimitSeparatesUsers(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user := c.Get("X-User"); user != "" {
			c.Locals("user_id", user)
		}
		return c.Next()
	})
	app.Use(RateLimit("submissions", 1, time.Minute))
	app.Get("/submit", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	call := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/submit", nil)
		if user != "" {
			req.Header.Set("X-User", user)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusOK, call("stu-1"))
	require.Equal(t, fiber.StatusTooManyRequests, call("stu-1"))
	require.Equal(t, fiber.StatusOK, call("stu-2"))
	require.Equal(t, fiber.StatusOK, call(""))
	require.Equal(t, fiber.StatusTooManyRequests, call(""))
}
