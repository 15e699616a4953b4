package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/oficialia-api/internal/domain/entity"
	"github.com/jhoicas/oficialia-api/internal/domain/repository"
)

var _ repository.PositionRepository = (*PositionRepo)(nil)

// PositionRepo lectura de rl_usuario_puesto.
type PositionRepo struct {
	q Querier
}

// NewPositionRepository construye el adaptador de puestos.
func NewPositionRepository(q Querier) *PositionRepo {
	return &PositionRepo{q: q}
}

// GetByID obtiene un puesto; (nil, nil) si no existe.
func (r *PositionRepo) GetByID(ctx context.Context, id int64) (*entity.Position, error) {
	query := `
		SELECT id_usuario_puesto, ct_usuario_id, ct_area_id, estado, periodo_final
		FROM rl_usuario_puesto WHERE id_usuario_puesto = $1`
	var p entity.Position
	err := r.q.QueryRow(ctx, query, id).Scan(&p.ID, &p.UserID, &p.AreaID, &p.Active, &p.EndDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get puesto: %w", err)
	}
	return &p, nil
}

// ListHeldByUser puestos vigentes (activos y sin periodo final) del usuario.
func (r *PositionRepo) ListHeldByUser(ctx context.Context, userID int64) ([]entity.Position, error) {
	query := `
		SELECT id_usuario_puesto, ct_usuario_id, ct_area_id, estado, periodo_final
		FROM rl_usuario_puesto
		WHERE ct_usuario_id = $1 AND estado AND periodo_final IS NULL
		ORDER BY id_usuario_puesto`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list puestos: %w", err)
	}
	defer rows.Close()

	var list []entity.Position
	for rows.Next() {
		var p entity.Position
		if err := rows.Scan(&p.ID, &p.UserID, &p.AreaID, &p.Active, &p.EndDate); err != nil {
			return nil, fmt.Errorf("scan puesto: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
