package auth

import (
	"fmt"
	"strings"

	"lezzet-backend/internal/config"
	"lezzet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserNameKey = "user_name"
	CtxUserMailKey = "user_email"
	CtxUserRoleKey = "user_role"
)

// Identity: doğrulanmış isteğin kimliği. Handler'lar session benzeri global
// durum yerine bunu kullanır.
type Identity struct {
	UserID   uint
	Username string
	Email    string
	Role     models.UserRole
}

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header eksik")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization formatı 'Bearer <token>' olmalı")
		}

		tokenStr := parts[1]

		token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("geçersiz imzalama yöntemi")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Geçersiz veya süresi dolmuş token")
		}

		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Token çözümlenemedi")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserNameKey, claims.Username)
		c.Locals(CtxUserMailKey, claims.Email)
		c.Locals(CtxUserRoleKey, claims.Role)

		return c.Next()
	}
}

// RequireRole: durum değiştiren her route sunucu tarafında rol kontrolünden geçer.
func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleVal := c.Locals(CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Rol bilgisi alınamadı")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Bu işlem için yetkiniz yok")
	}
}

// CurrentIdentity: middleware'in locals'a koyduğu kimliği toplar.
func CurrentIdentity(c *fiber.Ctx) (Identity, error) {
	id, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok {
		return Identity{}, fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	ident := Identity{UserID: id}
	if name, ok := c.Locals(CtxUserNameKey).(string); ok {
		ident.Username = name
	}
	if mail, ok := c.Locals(CtxUserMailKey).(string); ok {
		ident.Email = mail
	}
	if role, ok := c.Locals(CtxUserRoleKey).(models.UserRole); ok {
		ident.Role = role
	}
	return ident, nil
}
