package http

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/servicedesk-api/internal/application/authz"
	"github.com/jhoicas/servicedesk-api/internal/application/dto"
	"github.com/jhoicas/servicedesk-api/pkg/jwt"
)

// LocalIdentity key de la identidad resuelta en c.Locals.
const LocalIdentity = "identity"

// HeaderAPIKey credencial de integración de sistemas.
const HeaderAPIKey = "X-API-Key"

// IdentityResolver carga papeles y vínculo organizacional del usuario en cada solicitud.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID, sourceIP string) (authz.Identity, error)
}

// AuthConfig credenciales aceptadas por el middleware.
type AuthConfig struct {
	JWTSecret    string
	SystemAPIKey string // vacío = API key deshabilitada
}

// AuthMiddleware acepta X-API-Key (identidad SYSTEM) o Bearer JWT; con JWT la identidad se recarga
// desde la base para que papeles revocados o usuarios desactivados dejen de valer de inmediato.
func AuthMiddleware(cfg AuthConfig, resolver IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key := c.Get(HeaderAPIKey); key != "" {
			if cfg.SystemAPIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(cfg.SystemAPIKey)) != 1 {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_API_KEY", Message: "API key inválida"})
			}
			c.Locals(LocalIdentity, authz.SystemIdentity(c.IP()))
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(cfg.JWTSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		id, err := resolver.Resolve(c.UserContext(), claims.UserID, c.IP())
		if err != nil {
			return writeError(c, err)
		}
		c.Locals(LocalIdentity, id)
		return c.Next()
	}
}

// GetIdentity devuelve la identidad del contexto (después del middleware de auth).
func GetIdentity(c *fiber.Ctx) authz.Identity {
	id, _ := c.Locals(LocalIdentity).(authz.Identity)
	return id
}
