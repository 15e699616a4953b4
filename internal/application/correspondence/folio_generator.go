package correspondence

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/oficialia-api/internal/domain"
	"github.com/jhoicas/oficialia-api/internal/domain/folio"
	"github.com/jhoicas/oficialia-api/internal/domain/repository"
	"github.com/jhoicas/oficialia-api/pkg/logger"
)

// FolioGenerator construye el folio de sistema <destinatario>-<remitente>-<secuencia>.
type FolioGenerator struct {
	positions repository.PositionRepository
	directory DirectoryClient
	log       *logger.Logger
}

// NewFolioGenerator construye el generador.
func NewFolioGenerator(positions repository.PositionRepository, directory DirectoryClient, log *logger.Logger) *FolioGenerator {
	return &FolioGenerator{positions: positions, directory: directory, log: log}
}

// FolioPrefix abreviaturas ya resueltas de destinatario y remitente.
type FolioPrefix struct {
	Recipient string
	Sender    string
}

// Next reserva la siguiente secuencia en repo (que debe estar atado a una transacción) y compone el folio.
func (p FolioPrefix) Next(ctx context.Context, repo repository.CorrespondenceRepository) (string, error) {
	seq, err := repo.NextSequence(ctx)
	if err != nil {
		return "", fmt.Errorf("folio: reservar secuencia: %w", err)
	}
	return folio.Compose(p.Recipient, p.Sender, seq)
}

// Generate resuelve las abreviaturas y compone el folio con la siguiente secuencia.
func (g *FolioGenerator) Generate(ctx context.Context, repo repository.CorrespondenceRepository, senderPositionID, recipientPositionID int64) (string, error) {
	prefix, err := g.Prefix(ctx, senderPositionID, recipientPositionID)
	if err != nil {
		return "", err
	}
	return prefix.Next(ctx, repo)
}

// Prefix resuelve en paralelo las áreas de ambos puestos y calcula sus abreviaturas.
// Si el directorio no responde se usa folio.PlaceholderAbbrev en lugar de fallar.
func (g *FolioGenerator) Prefix(ctx context.Context, senderPositionID, recipientPositionID int64) (FolioPrefix, error) {
	var p FolioPrefix
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		abbrev, err := g.abbreviationFor(egCtx, recipientPositionID)
		p.Recipient = abbrev
		return err
	})
	eg.Go(func() error {
		abbrev, err := g.abbreviationFor(egCtx, senderPositionID)
		p.Sender = abbrev
		return err
	})
	if err := eg.Wait(); err != nil {
		return FolioPrefix{}, err
	}
	return p, nil
}

func (g *FolioGenerator) abbreviationFor(ctx context.Context, positionID int64) (string, error) {
	pos, err := g.positions.GetByID(ctx, positionID)
	if err != nil {
		return "", fmt.Errorf("folio: obtener puesto %d: %w", positionID, err)
	}
	if pos == nil {
		return "", fmt.Errorf("%w: puesto %d", domain.ErrNotFound, positionID)
	}
	area, err := g.directory.GetArea(ctx, pos.AreaID)
	if err != nil {
		if errors.Is(err, domain.ErrUpstream) {
			g.log.Warn().Err(err).Int64("area_id", pos.AreaID).Msg("directorio no disponible, se usa abreviatura genérica")
			return folio.PlaceholderAbbrev, nil
		}
		return "", fmt.Errorf("folio: área del puesto %d: %w", positionID, err)
	}
	if area == nil {
		return "", fmt.Errorf("%w: área %d", domain.ErrNotFound, pos.AreaID)
	}
	return folio.Abbreviate(area.Name), nil
}
