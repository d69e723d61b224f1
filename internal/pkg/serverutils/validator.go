package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest checks struct tags and turns violations into a 400 with a
// readable field list.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	invalidFields := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		invalidFields = append(invalidFields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
	}
	return fiber.NewError(fiber.StatusBadRequest, "Invalid fields: "+strings.Join(invalidFields, ", "))
}
