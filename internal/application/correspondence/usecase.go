// Package correspondence casos de uso de oficialía de partes: registro con folio,
// cambios de estado, edición, bandeja por usuario y documentos.
package correspondence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhoicas/oficialia-api/internal/domain"
	"github.com/jhoicas/oficialia-api/internal/domain/repository"
	"github.com/jhoicas/oficialia-api/pkg/logger"
)

const (
	maxDocumentSize  = 20 << 20 // 20 MiB
	maxFolioAttempts = 3
	dateLayout       = "2006-01-02"
)

var pdfMagic = []byte("%PDF-")

// CorrespondenceUseCase orquesta repositorio, directorio y almacén de documentos.
type CorrespondenceUseCase struct {
	txRunner  TxRunner
	repo      repository.CorrespondenceRepository
	positions repository.PositionRepository
	directory DirectoryClient
	store     DocumentStore
	receipts  ReceiptGenerator
	folios    *FolioGenerator
	log       *logger.Logger
	now       func() time.Time
}

// NewCorrespondenceUseCase construye el caso de uso inyectando todas sus dependencias.
func NewCorrespondenceUseCase(
	txRunner TxRunner,
	repo repository.CorrespondenceRepository,
	positions repository.PositionRepository,
	directory DirectoryClient,
	store DocumentStore,
	receipts ReceiptGenerator,
	log *logger.Logger,
) *CorrespondenceUseCase {
	return &CorrespondenceUseCase{
		txRunner:  txRunner,
		repo:      repo,
		positions: positions,
		directory: directory,
		store:     store,
		receipts:  receipts,
		folios:    NewFolioGenerator(positions, directory, log),
		log:       log,
		now:       time.Now,
	}
}

// FileNameFor nombre del PDF almacenado para un folio.
func FileNameFor(folioSistema string) string {
	return folioSistema + ".pdf"
}

// readPDF lee el adjunto completo y verifica extensión, tamaño y firma %PDF-.
func readPDF(a *Attachment) ([]byte, error) {
	if a == nil || a.Content == nil {
		return nil, fmt.Errorf("%w: documento PDF requerido", domain.ErrInvalidInput)
	}
	if !strings.EqualFold(filepath.Ext(a.Name), ".pdf") {
		return nil, fmt.Errorf("%w: el documento debe ser PDF", domain.ErrInvalidInput)
	}
	data, err := io.ReadAll(io.LimitReader(a.Content, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("leer documento: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("%w: el documento excede %d MiB", domain.ErrInvalidInput, maxDocumentSize>>20)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, fmt.Errorf("%w: el documento no es un PDF válido", domain.ErrInvalidInput)
	}
	return data, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha %q, formato esperado AAAA-MM-DD", domain.ErrInvalidInput, s)
	}
	return d, nil
}

// discard elimina un documento que quedó huérfano tras un Rollback.
func (uc *CorrespondenceUseCase) discard(ctx context.Context, name string) {
	if err := uc.store.Delete(ctx, name); err != nil {
		uc.log.Error().Err(err).Str("archivo", name).Msg("no se pudo eliminar documento huérfano")
	}
}
