package middleware

import (
	"productsapi/internal/models"
	"productsapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// HandleInputErrors stops the request with 400 and every recorded validation
// failure. Without failures the next handler runs.
func HandleInputErrors(c *fiber.Ctx) error {
	if errs := validation.Errors(c); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse{Errors: errs})
	}
	return c.Next()
}
