package serverutils

import (
	"strings"

	"dreambees-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtMiddleware accepts an HS256 bearer token signed with secret. Websocket
// clients that cannot set headers may pass it as ?token=.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := ""
		if authHeader := ctx.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
		} else {
			tokenStr = ctx.Query("token")
		}
		if tokenStr == "" {
			return apperror.Unauthorized("Missing token")
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return apperror.Unauthorized("Invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return apperror.Unauthorized("Invalid claims")
		}

		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			ctx.Locals("user_id", sub)
		} else {
			ctx.Locals("user_id", claims["user_id"])
		}
		return ctx.Next()
	}
}
