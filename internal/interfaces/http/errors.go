package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/oficialia-api/internal/application/dto"
	"github.com/jhoicas/oficialia-api/internal/domain"
	"github.com/jhoicas/oficialia-api/pkg/logger"
)

// writeError traduce los errores de dominio a status HTTP y al sobre {success:false,...}.
// El detalle del error (lo que va tras "%w:") se expone en errors[].
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, code, msg := classify(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		return c.Status(status).JSON(dto.Fail(code, msg))
	}
	return c.Status(status).JSON(dto.Fail(code, msg, err.Error()))
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION", "datos inválidos"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED", "no autenticado"
	case errors.Is(err, domain.ErrUpstream):
		return fiber.StatusBadGateway, "UPSTREAM", "servicio de directorio no disponible"
	default:
		return fiber.StatusInternalServerError, "INTERNAL", "error interno"
	}
}
