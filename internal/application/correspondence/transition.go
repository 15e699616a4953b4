package correspondence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jhoicas/oficialia-api/internal/application/dto"
	"github.com/jhoicas/oficialia-api/internal/domain"
	lifecycle "github.com/jhoicas/oficialia-api/internal/domain/correspondence"
	"github.com/jhoicas/oficialia-api/internal/domain/entity"
	"github.com/jhoicas/oficialia-api/internal/domain/repository"
)

// ChangeStatus aplica un cambio de estado. Todos los pasos del plan (crear respuesta,
// agregar entradas, actualizar la vigente) se ejecutan en una transacción con la fila de la
// correspondencia bloqueada; si algo falla se revierte y se borra el adjunto ya guardado.
func (uc *CorrespondenceUseCase) ChangeStatus(ctx context.Context, userID int64, in dto.ChangeStatusRequest, attachment *Attachment) (*dto.TransitionResponse, error) {
	out, err := uc.changeStatus(ctx, userID, in, attachment)
	result := "ok"
	if err != nil {
		result = "error"
	}
	transitionsTotal.WithLabelValues(statusLabel(in.Status), result).Inc()
	return out, err
}

// statusLabel acota el label "estado" a los destinos válidos; el resto cae en "invalido".
func statusLabel(status int) string {
	if !lifecycle.IsTransitionTarget(entity.Status(status)) {
		return "invalido"
	}
	return strconv.Itoa(status)
}

func (uc *CorrespondenceUseCase) changeStatus(ctx context.Context, userID int64, in dto.ChangeStatusRequest, attachment *Attachment) (*dto.TransitionResponse, error) {
	if in.CorrespondenceID <= 0 {
		return nil, fmt.Errorf("%w: dt_correspondencia_id requerido", domain.ErrInvalidInput)
	}
	if !lifecycle.IsTransitionTarget(entity.Status(in.Status)) {
		return nil, fmt.Errorf("%w: estado %d no permitido", domain.ErrInvalidInput, in.Status)
	}
	req := lifecycle.TransitionRequest{
		ActorUserID:   userID,
		Status:        entity.Status(in.Status),
		Observations:  in.Observations,
		HasAttachment: attachment != nil,
	}
	if in.TargetPositionID > 0 {
		target := in.TargetPositionID
		req.TargetPositionID = &target
		pos, err := uc.positions.GetByID(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("obtener puesto destino: %w", err)
		}
		if pos == nil {
			return nil, fmt.Errorf("%w: puesto %d", domain.ErrNotFound, target)
		}
	}
	var content []byte
	if attachment != nil {
		var err error
		if content, err = readPDF(attachment); err != nil {
			return nil, err
		}
	}

	out := &dto.TransitionResponse{CorrespondenceID: in.CorrespondenceID, Status: in.Status}
	var stored string
	err := uc.txRunner.Run(ctx, func(repo repository.CorrespondenceRepository) error {
		current, err := repo.GetForUpdate(ctx, in.CorrespondenceID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: correspondencia %d", domain.ErrNotFound, in.CorrespondenceID)
		}

		st := lifecycle.TransitionState{Current: *current}
		if req.Status == entity.StatusResponded && req.HasAttachment {
			exists, err := repo.HasReply(ctx, current.ID, current.FolioSistema+entity.ReplySuffix)
			if err != nil {
				return err
			}
			st.ReplyExists = exists
		}
		plan, err := lifecycle.PlanTransition(st, req)
		if err != nil {
			return err
		}

		now := uc.now()
		var reply *entity.Correspondence
		for _, step := range plan.Steps {
			switch s := step.(type) {
			case lifecycle.CreateReply:
				name := FileNameFor(s.Folio)
				if err := uc.store.Put(ctx, name, bytes.NewReader(content)); err != nil {
					return fmt.Errorf("guardar respuesta: %w", err)
				}
				stored = name
				reply = cloneAsReply(current.Correspondence, s.Folio, now)
				if err := repo.Create(ctx, reply); err != nil {
					if errors.Is(err, domain.ErrDuplicate) {
						return fmt.Errorf("%w: el folio %s ya tiene respuesta", domain.ErrConflict, current.FolioSistema)
					}
					return err
				}
			case lifecycle.Append:
				e := s.Entry
				if s.ForReply {
					e.CorrespondenceID = reply.ID
				}
				e.CreatedAt = now
				if err := repo.AppendEntry(ctx, &e); err != nil {
					return err
				}
			case lifecycle.Mutate:
				if err := repo.UpdateEntry(ctx, s.EntryID, s.Status, s.Observations, s.HolderPositionID); err != nil {
					return err
				}
			}
		}
		if reply != nil {
			id := reply.ID
			out.ReplyID = &id
			out.ReplyFolio = reply.FolioSistema
		}
		return nil
	})
	if err != nil {
		if stored != "" {
			uc.discard(ctx, stored)
		}
		return nil, err
	}
	uc.log.Info().
		Int64("correspondencia", in.CorrespondenceID).
		Int("estado", in.Status).
		Int64("usuario", userID).
		Str("respuesta", out.ReplyFolio).
		Msg("cambio de estado aplicado")
	return out, nil
}

// cloneAsReply copia los datos de la original en un registro nuevo con el folio de respuesta.
func cloneAsReply(original entity.Correspondence, replyFolio string, now time.Time) *entity.Correspondence {
	parentID := original.ID
	reply := original
	reply.ID = 0
	reply.FolioSistema = replyFolio
	reply.FileName = FileNameFor(replyFolio)
	reply.ParentID = &parentID
	reply.EditedBy = nil
	reply.CreatedAt = now
	reply.UpdatedAt = now
	return &reply
}
