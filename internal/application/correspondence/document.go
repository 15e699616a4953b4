package correspondence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/jhoicas/oficialia-api/internal/application/dto"
	"github.com/jhoicas/oficialia-api/internal/domain"
	lifecycle "github.com/jhoicas/oficialia-api/internal/domain/correspondence"
)

const areaNotFound = "Área no encontrada"

// OpenDocument abre el PDF <folio>.pdf si la correspondencia es visible para el usuario.
// El caller debe cerrar el lector.
func (uc *CorrespondenceUseCase) OpenDocument(ctx context.Context, userID int64, fileRoute string) (io.ReadCloser, error) {
	name := path.Base(fileRoute)
	if name != fileRoute || !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return nil, fmt.Errorf("%w: nombre de archivo inválido", domain.ErrInvalidInput)
	}
	c, err := uc.repo.GetByFolio(ctx, strings.TrimSuffix(name, path.Ext(name)))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: documento %s", domain.ErrNotFound, name)
	}
	positionIDs, err := uc.HeldPositionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.IsVisible(c, userID, positionIDs) {
		return nil, fmt.Errorf("%w: documento %s", domain.ErrNotFound, name)
	}
	return uc.store.Open(ctx, c.FileName)
}

// Receipt genera el acuse de recibo en PDF. Devuelve los bytes y el nombre sugerido del archivo.
func (uc *CorrespondenceUseCase) Receipt(ctx context.Context, userID, id int64) ([]byte, string, error) {
	c, err := uc.getVisible(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	data := ReceiptData{
		Correspondence: *c,
		SenderArea:     uc.areaNameForPosition(ctx, c.SenderPositionID),
		RecipientArea:  areaNotFound,
		GeneratedAt:    uc.now(),
	}
	if len(c.History) > 0 {
		data.RecipientArea = uc.areaNameForPosition(ctx, c.History[0].HolderPositionID)
	}
	pdf, err := uc.receipts.GenerateReceipt(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("generar acuse: %w", err)
	}
	return pdf, "acuse_" + c.FolioSistema + ".pdf", nil
}

// ListAreas catálogo de áreas del directorio. Si el directorio no responde se devuelve
// una lista vacía y se registra la falla.
func (uc *CorrespondenceUseCase) ListAreas(ctx context.Context) ([]dto.AreaResponse, error) {
	areas, err := uc.directory.ListAreas(ctx)
	if errors.Is(err, domain.ErrUpstream) {
		uc.log.Warn().Err(err).Msg("directorio no disponible, catálogo de áreas vacío")
		return []dto.AreaResponse{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.AreaResponse, 0, len(areas))
	for _, a := range areas {
		out = append(out, dto.AreaResponse{ID: a.ID, Name: a.Name})
	}
	return out, nil
}

// areaNameForPosition nombre del área del puesto; ante cualquier falla devuelve un texto genérico.
func (uc *CorrespondenceUseCase) areaNameForPosition(ctx context.Context, positionID int64) string {
	pos, err := uc.positions.GetByID(ctx, positionID)
	if err != nil || pos == nil {
		return areaNotFound
	}
	area, err := uc.directory.GetArea(ctx, pos.AreaID)
	if err != nil || area == nil {
		if errors.Is(err, domain.ErrUpstream) {
			uc.log.Warn().Err(err).Int64("area_id", pos.AreaID).Msg("directorio no disponible para el acuse")
		}
		return areaNotFound
	}
	return area.Name
}
