package serverutils

import (
	"errors"

	"image-search-be/internal/pkg/logger"
	"image-search-be/internal/service"
	"image-search-be/pkg/embedding"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps domain errors to HTTP statuses. Anything
// unmapped is a 500 with a generic message so internals never leak to
// clients.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		if errors.Is(err, service.ErrFolderAccessDenied) {
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse("Folder access denied"))
		}

		if errors.Is(err, embedding.ErrEmptyText) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(err.Error()))
		}

		log.Error("http", "Unhandled request error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error"))
	}
}
