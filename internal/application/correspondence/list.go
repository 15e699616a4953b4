package correspondence

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/oficialia-api/internal/application/dto"
	"github.com/jhoicas/oficialia-api/internal/domain"
	lifecycle "github.com/jhoicas/oficialia-api/internal/domain/correspondence"
	"github.com/jhoicas/oficialia-api/internal/domain/entity"
	"github.com/jhoicas/oficialia-api/internal/domain/repository"
)

// StatusAll valor del filtro de estado que devuelve todo lo visible.
const StatusAll = "todos"

// ListVisible correspondencia visible para el usuario con los puestos dados.
// status nil = bandeja de entrada (estado 1).
func (uc *CorrespondenceUseCase) ListVisible(ctx context.Context, userID int64, positionIDs []int64, status *entity.Status) ([]entity.CorrespondenceWithFullHistory, error) {
	vq := lifecycle.VisibilityQuery{UserID: userID, PositionIDs: positionIDs, Status: status}
	return uc.listVisible(ctx, repository.CorrespondenceFilter{UserID: userID, PositionIDs: positionIDs}, vq)
}

// List listado paginado con filtros de consulta; los puestos se obtienen de los vigentes del usuario.
func (uc *CorrespondenceUseCase) List(ctx context.Context, userID int64, q dto.ListCorrespondenceQuery) (*dto.CorrespondenceListResponse, error) {
	positionIDs, err := uc.HeldPositionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	vq := lifecycle.VisibilityQuery{UserID: userID, PositionIDs: positionIDs}
	switch s := strings.ToLower(strings.TrimSpace(q.Status)); s {
	case "":
	case StatusAll:
		vq.All = true
	default:
		n, err := strconv.Atoi(s)
		if err != nil || !entity.Status(n).Valid() {
			return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, q.Status)
		}
		st := entity.Status(n)
		vq.Status = &st
	}

	f := repository.CorrespondenceFilter{UserID: userID, PositionIDs: positionIDs}
	if q.DateFrom != "" {
		d, err := parseDate(q.DateFrom)
		if err != nil {
			return nil, err
		}
		f.DateFrom = &d
	}
	if q.DateTo != "" {
		d, err := parseDate(q.DateTo)
		if err != nil {
			return nil, err
		}
		f.DateTo = &d
	}
	if q.PriorityID > 0 {
		f.PriorityID = &q.PriorityID
	}
	if q.DeliveryMethodID > 0 {
		f.DeliveryMethodID = &q.DeliveryMethodID
	}
	if q.CreatedBy > 0 {
		f.CreatedBy = &q.CreatedBy
	}

	visible, err := uc.listVisible(ctx, f, vq)
	if err != nil {
		return nil, err
	}

	page := q.Page
	page.DefaultPage()
	total := len(visible)
	start := page.Offset
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	items := make([]dto.CorrespondenceResponse, 0, end-start)
	for i := start; i < end; i++ {
		c := visible[i]
		items = append(items, *toCorrespondenceResponse(&c.Correspondence, c.Latest(), nil))
	}
	return &dto.CorrespondenceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Get detalle con historial completo. Si el usuario no puede verla se responde como inexistente.
func (uc *CorrespondenceUseCase) Get(ctx context.Context, userID, id int64) (*dto.CorrespondenceResponse, error) {
	c, err := uc.getVisible(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return toCorrespondenceResponse(&c.Correspondence, c.Latest(), c.History), nil
}

// HeldPositionIDs IDs de los puestos vigentes del usuario.
func (uc *CorrespondenceUseCase) HeldPositionIDs(ctx context.Context, userID int64) ([]int64, error) {
	positions, err := uc.positions.ListHeldByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("obtener puestos del usuario: %w", err)
	}
	ids := make([]int64, 0, len(positions))
	for _, p := range positions {
		if p.IsHeld() {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

// listVisible pide a la BD los candidatos ya acotados por estado y aplica encima la regla de visibilidad.
func (uc *CorrespondenceUseCase) listVisible(ctx context.Context, f repository.CorrespondenceFilter, vq lifecycle.VisibilityQuery) ([]entity.CorrespondenceWithFullHistory, error) {
	if !vq.All {
		status := entity.StatusReceived
		if vq.Status != nil {
			status = *vq.Status
		}
		f.Status = &status
	}
	candidates, err := uc.repo.ListCandidates(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listar correspondencia: %w", err)
	}
	return lifecycle.Filter(candidates, vq), nil
}

func (uc *CorrespondenceUseCase) getVisible(ctx context.Context, userID, id int64) (*entity.CorrespondenceWithFullHistory, error) {
	c, err := uc.repo.GetWithHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: correspondencia %d", domain.ErrNotFound, id)
	}
	positionIDs, err := uc.HeldPositionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.IsVisible(c, userID, positionIDs) {
		return nil, fmt.Errorf("%w: correspondencia %d", domain.ErrNotFound, id)
	}
	return c, nil
}
