package repository

import (
	"context"

	"github.com/jhoicas/oficialia-api/internal/domain/entity"
)

// PositionRepository lectura de los puestos de los usuarios (datos de otro sistema).
type PositionRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Position, error)
	// ListHeldByUser puestos activos y sin fecha de término del usuario.
	ListHeldByUser(ctx context.Context, userID int64) ([]entity.Position, error)
}
