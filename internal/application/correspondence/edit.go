package correspondence

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/oficialia-api/internal/application/dto"
	"github.com/jhoicas/oficialia-api/internal/domain"
	"github.com/jhoicas/oficialia-api/internal/domain/entity"
	"github.com/jhoicas/oficialia-api/internal/domain/repository"
)

// Edit modifica los datos capturados de una correspondencia original. Solo su creador puede
// hacerlo y solo mientras el estado vigente sea 1 (recibida). Las respuestas no se editan.
// Si viene documento, reemplaza el PDF.
func (uc *CorrespondenceUseCase) Edit(ctx context.Context, userID int64, in dto.EditCorrespondenceRequest, doc *Attachment) (*dto.CorrespondenceResponse, error) {
	if in.CorrespondenceID <= 0 {
		return nil, fmt.Errorf("%w: dt_correspondencia_id requerido", domain.ErrInvalidInput)
	}
	var content []byte
	if doc != nil {
		var err error
		if content, err = readPDF(doc); err != nil {
			return nil, err
		}
	}

	var out *dto.CorrespondenceResponse
	err := uc.txRunner.Run(ctx, func(repo repository.CorrespondenceRepository) error {
		current, err := repo.GetForUpdate(ctx, in.CorrespondenceID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: correspondencia %d", domain.ErrNotFound, in.CorrespondenceID)
		}
		if current.IsReply() {
			return fmt.Errorf("%w: %s es una respuesta y no se puede editar", domain.ErrInvalidInput, current.FolioSistema)
		}
		if current.CreatedBy != userID {
			return fmt.Errorf("%w: solo quien registró la correspondencia puede editarla", domain.ErrForbidden)
		}
		if current.Latest == nil || current.Latest.Status != entity.StatusReceived {
			return fmt.Errorf("%w: solo se puede editar correspondencia en estado recibida", domain.ErrInvalidInput)
		}

		c := current.Correspondence
		if v := strings.TrimSpace(in.FolioCorrespondencia); v != "" {
			c.FolioCorrespondencia = v
		}
		if v := strings.TrimSpace(in.Summary); v != "" {
			c.Summary = v
		}
		if in.PriorityID > 0 {
			c.PriorityID = in.PriorityID
		}
		if in.DeliveryMethodID > 0 {
			c.DeliveryMethodID = in.DeliveryMethodID
		}
		if in.CorrespondenceDate != "" {
			d, err := parseDate(in.CorrespondenceDate)
			if err != nil {
				return err
			}
			c.CorrespondenceDate = d
		}
		editor := userID
		c.EditedBy = &editor
		c.UpdatedAt = uc.now()
		if err := repo.Update(ctx, &c); err != nil {
			return err
		}
		// El PDF se reemplaza al final para que un fallo previo no lo toque.
		if content != nil {
			if err := uc.store.Put(ctx, c.FileName, bytes.NewReader(content)); err != nil {
				return fmt.Errorf("reemplazar documento: %w", err)
			}
		}
		out = toCorrespondenceResponse(&c, current.Latest, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
