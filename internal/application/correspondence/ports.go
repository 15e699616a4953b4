package correspondence

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/oficialia-api/internal/domain/entity"
	"github.com/jhoicas/oficialia-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD con un repositorio atado a ella.
// Si fn devuelve error se hace Rollback de todas las escrituras.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.CorrespondenceRepository) error) error
}

// DirectoryClient directorio externo de áreas.
// GetArea devuelve domain.ErrNotFound si el área no existe y domain.ErrUpstream si el servicio falla.
type DirectoryClient interface {
	GetArea(ctx context.Context, id int64) (*entity.Area, error)
	ListAreas(ctx context.Context) ([]entity.Area, error)
}

// DocumentStore almacén de PDFs indexado por nombre de archivo (<folio>.pdf).
type DocumentStore interface {
	Put(ctx context.Context, name string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// ReceiptGenerator genera el acuse de recibo en PDF.
type ReceiptGenerator interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
}

// ReceiptData datos que se imprimen en el acuse.
type ReceiptData struct {
	Correspondence entity.CorrespondenceWithFullHistory
	SenderArea     string
	RecipientArea  string
	GeneratedAt    time.Time
}

// Attachment archivo recibido en una petición multipart.
type Attachment struct {
	Name    string
	Content io.Reader
}
