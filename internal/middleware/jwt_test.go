package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assessment-api/internal/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newJWTApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", middleware.JWTProtected(testSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   c.Locals("user_id"),
			"user_role": c.Locals("user_role"),
		})
	})
	return app
}

func callWithToken(t *testing.T, app *fiber.App, header string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedBindsSubjectAndRole(t *testing.T) {
	app := newJWTApp()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "7f1c2d9e-student",
		"role": "Student",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	resp := callWithToken(t, app, "Bearer "+token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	require.Equal(t, "7f1c2d9e-student", body["user_id"])
	require.Equal(t, "student", body["user_role"])
}

func TestJWTProtectedAcceptsNumericSubject(t *testing.T) {
	app := newJWTApp()
	token := signToken(t, testSecret, jwt.MapClaims{"user_id": 42, "roles": []string{"admin"}})

	resp := callWithToken(t, app, "Bearer "+token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	require.Equal(t, "42", body["user_id"])
	require.Equal(t, "admin", body["user_role"])
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	app := newJWTApp()

	cases := map[string]string{
		"missing header":   "",
		"wrong scheme":     "Basic abc",
		"wrong secret":     "Bearer " + signToken(t, "other", jwt.MapClaims{"sub": "u1"}),
		"expired":          "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix()}),
		"no subject":       "Bearer " + signToken(t, testSecret, jwt.MapClaims{"role": "admin"}),
		"empty bearer":     "Bearer ",
		"negative subject": "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": -3}),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			resp := callWithToken(t, app, header)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}
