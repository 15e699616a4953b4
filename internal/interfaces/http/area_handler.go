package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/oficialia-api/internal/application/dto"
	"github.com/jhoicas/oficialia-api/pkg/logger"
)

type areaLister interface {
	ListAreas(ctx context.Context) ([]dto.AreaResponse, error)
}

// AreaHandler expone el catálogo de áreas del directorio externo.
type AreaHandler struct {
	svc areaLister
	log *logger.Logger
}

// NewAreaHandler construye el handler.
func NewAreaHandler(svc areaLister, log *logger.Logger) *AreaHandler {
	return &AreaHandler{svc: svc, log: log}
}

// List GET /api/areas. Si el directorio no responde la lista llega vacía.
func (h *AreaHandler) List(c *fiber.Ctx) error {
	areas, err := h.svc.ListAreas(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.OK("áreas", areas))
}
