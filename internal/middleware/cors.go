package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSErrorMessage is the body of a rejected cross-origin request.
const CORSErrorMessage = "Error de CORS"

// CORS allows exactly one origin. A request whose Origin header differs is
// rejected with a plain fiber error; requests without Origin pass through.
func CORS(allowedOrigin string) fiber.Handler {
	allow := cors.New(cors.Config{
		AllowOrigins: allowedOrigin,
	})

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}
		if origin != allowedOrigin {
			return fiber.NewError(fiber.StatusForbidden, CORSErrorMessage)
		}
		return allow(c)
	}
}
