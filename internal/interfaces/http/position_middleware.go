package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/oficialia-api/internal/application/dto"
)

// positionChecker contrato mínimo para resolver los puestos vigentes de un usuario.
// Lo implementa *correspondence.CorrespondenceUseCase.
type positionChecker interface {
	HeldPositionIDs(ctx context.Context, userID int64) ([]int64, error)
}

// RequirePosition exige que el usuario del token ocupe al menos un puesto vigente.
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 → no hay user_id en el contexto.
//   - 403 → el usuario no ocupa ningún puesto.
//   - 503 → fallo de infraestructura al consultar los puestos.
func RequirePosition(checker positionChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("UNAUTHORIZED", "user_id no encontrado en el token"))
		}
		ids, err := checker.HeldPositionIDs(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.Fail("POSITION_CHECK_FAILED", "no se pudieron verificar los puestos, intente más tarde"))
		}
		if len(ids) == 0 {
			return c.Status(fiber.StatusForbidden).JSON(dto.Fail("NO_POSITION", "el usuario no ocupa ningún puesto vigente"))
		}
		return c.Next()
	}
}
