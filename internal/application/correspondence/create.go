package correspondence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/oficialia-api/internal/application/dto"
	"github.com/jhoicas/oficialia-api/internal/domain"
	"github.com/jhoicas/oficialia-api/internal/domain/entity"
	"github.com/jhoicas/oficialia-api/internal/domain/repository"
)

// Create registra una correspondencia: asigna folio, crea la entrada inicial (estado 1 para el
// puesto destinatario) y guarda el PDF como <folio>.pdf, todo en una transacción.
// Si otro registro concurrente toma el mismo folio se reintenta con la siguiente secuencia.
func (uc *CorrespondenceUseCase) Create(ctx context.Context, userID int64, in dto.CreateCorrespondenceRequest, doc *Attachment) (*dto.CorrespondenceResponse, error) {
	// ── 1. Validar entrada ────────────────────────────────────────────────────
	var missing []string
	if strings.TrimSpace(in.FolioCorrespondencia) == "" {
		missing = append(missing, "folio_correspondencia")
	}
	if strings.TrimSpace(in.Summary) == "" {
		missing = append(missing, "resumen")
	}
	if in.PriorityID <= 0 {
		missing = append(missing, "ct_clasificacion_prioridad_id")
	}
	if in.DeliveryMethodID <= 0 {
		missing = append(missing, "ct_forma_entrega_id")
	}
	if in.SenderPositionID <= 0 {
		missing = append(missing, "id_usuario_puesto")
	}
	if in.RecipientPositionID <= 0 {
		missing = append(missing, "id_usuario_puesto_2")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: campos requeridos: %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	date, err := parseDate(in.CorrespondenceDate)
	if err != nil {
		return nil, err
	}
	content, err := readPDF(doc)
	if err != nil {
		return nil, err
	}

	// ── 2. El remitente debe ser un puesto vigente del usuario ────────────────
	sender, err := uc.positions.GetByID(ctx, in.SenderPositionID)
	if err != nil {
		return nil, fmt.Errorf("obtener puesto remitente: %w", err)
	}
	if sender == nil {
		return nil, fmt.Errorf("%w: puesto %d", domain.ErrNotFound, in.SenderPositionID)
	}
	if sender.UserID != userID || !sender.IsHeld() {
		return nil, fmt.Errorf("%w: el puesto %d no pertenece al usuario", domain.ErrForbidden, in.SenderPositionID)
	}

	// ── 3. Abreviaturas (fuera de la transacción: implica llamadas al directorio)
	prefix, err := uc.folios.Prefix(ctx, in.SenderPositionID, in.RecipientPositionID)
	if err != nil {
		return nil, err
	}

	// ── 4. Transacción con reintento por folio duplicado ──────────────────────
	var out *dto.CorrespondenceResponse
	for attempt := 1; attempt <= maxFolioAttempts; attempt++ {
		out, err = uc.createOnce(ctx, userID, in, date, prefix, content)
		if !errors.Is(err, domain.ErrDuplicate) {
			break
		}
		folioRetriesTotal.Inc()
		uc.log.Warn().Int("intento", attempt).Msg("folio duplicado, se reintenta con la siguiente secuencia")
	}
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: no se pudo asignar un folio único", domain.ErrConflict)
		}
		return nil, err
	}
	correspondenceCreatedTotal.Inc()
	uc.log.Info().Str("folio", out.FolioSistema).Int64("usuario", userID).Msg("correspondencia registrada")
	return out, nil
}

func (uc *CorrespondenceUseCase) createOnce(
	ctx context.Context,
	userID int64,
	in dto.CreateCorrespondenceRequest,
	date time.Time,
	prefix FolioPrefix,
	content []byte,
) (*dto.CorrespondenceResponse, error) {
	var (
		created *entity.Correspondence
		entry   *entity.StateEntry
		stored  string
	)
	err := uc.txRunner.Run(ctx, func(repo repository.CorrespondenceRepository) error {
		folioSistema, err := prefix.Next(ctx, repo)
		if err != nil {
			return err
		}
		now := uc.now()
		c := &entity.Correspondence{
			FolioSistema:         folioSistema,
			FolioCorrespondencia: strings.TrimSpace(in.FolioCorrespondencia),
			PriorityID:           in.PriorityID,
			DeliveryMethodID:     in.DeliveryMethodID,
			Summary:              strings.TrimSpace(in.Summary),
			CorrespondenceDate:   date,
			FileName:             FileNameFor(folioSistema),
			SenderPositionID:     in.SenderPositionID,
			CreatedBy:            userID,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := repo.Create(ctx, c); err != nil {
			return err
		}
		e := &entity.StateEntry{
			CorrespondenceID: c.ID,
			HolderPositionID: in.RecipientPositionID,
			Status:           entity.StatusReceived,
			ActorUserID:      userID,
			CreatedAt:        now,
		}
		if err := repo.AppendEntry(ctx, e); err != nil {
			return err
		}
		if err := uc.store.Put(ctx, c.FileName, bytes.NewReader(content)); err != nil {
			return fmt.Errorf("guardar documento: %w", err)
		}
		stored = c.FileName
		created, entry = c, e
		return nil
	})
	if err != nil {
		if stored != "" {
			uc.discard(ctx, stored)
		}
		return nil, err
	}
	return toCorrespondenceResponse(created, entry, nil), nil
}
