package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/koli-api/internal/application/dto"
	"github.com/jhoicas/koli-api/internal/domain"
)

// writeError traduce un error de dominio a su status HTTP y cuerpo de error.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrValidation):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrTransport):
		status, code = fiber.StatusBadGateway, "INVENTORY_UNAVAILABLE"
	case errors.Is(err, domain.ErrServer):
		status, code = fiber.StatusBadGateway, "INVENTORY_REJECTED"
	}
	return c.Status(status).JSON(dto.ErrorResponse{
		Code:     code,
		Message:  domain.MessageOf(err),
		Severity: domain.SeverityOf(err),
	})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido", Severity: domain.SeverityWarning})
}
