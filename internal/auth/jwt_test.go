package auth

import (
	"net/http/httptest"
	"testing"

	"lezzet-backend/internal/config"
	"lezzet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-32ch"

func TestGenerateTokenRoundTrip(t *testing.T) {
	user := &models.User{
		ID:       7,
		Username: "ayse",
		Email:    "ayse@example.com",
		Role:     models.RoleChef,
	}

	tokenStr, err := GenerateToken(testSecret, user)
	require.NoError(t, err)

	token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(*JWTCustomClaims)
	require.True(t, ok)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ayse", claims.Username)
	assert.Equal(t, "ayse@example.com", claims.Email)
	assert.Equal(t, models.RoleChef, claims.Role)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestJWTMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}

	newApp := func() *fiber.App {
		app := fiber.New()
		app.Use(JWTMiddleware(cfg))
		app.Get("/protected", func(c *fiber.Ctx) error {
			ident, err := CurrentIdentity(c)
			if err != nil {
				return err
			}
			return c.JSON(fiber.Map{"user_id": ident.UserID})
		})
		return app
	}

	t.Run("geçerli token geçer", func(t *testing.T) {
		user := &models.User{ID: 3, Username: "mehmet", Email: "m@example.com", Role: models.RoleOwner}
		tokenStr, err := GenerateToken(testSecret, user)
		require.NoError(t, err)

		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)

		resp, err := newApp().Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("header yoksa 401", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)

		resp, err := newApp().Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("bozuk token 401", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer bozuk.token.degeri")

		resp, err := newApp().Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("yanlış secret ile imzalanan token 401", func(t *testing.T) {
		user := &models.User{ID: 3, Username: "mehmet", Email: "m@example.com", Role: models.RoleOwner}
		tokenStr, err := GenerateToken("baska-bir-secret-ayni-uzunlukta-32ch", user)
		require.NoError(t, err)

		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)

		resp, err := newApp().Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRequireRole(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}

	app := fiber.New()
	app.Use(JWTMiddleware(cfg))
	app.Get("/owner-only", RequireRole(models.RoleOwner), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	tokenFor := func(role models.UserRole) string {
		tokenStr, err := GenerateToken(testSecret, &models.User{ID: 1, Username: "u", Email: "u@example.com", Role: role})
		require.NoError(t, err)
		return tokenStr
	}

	t.Run("yetkili rol geçer", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/owner-only", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(models.RoleOwner))

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("yetkisiz rol 403", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/owner-only", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(models.RoleCustomer))

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}
