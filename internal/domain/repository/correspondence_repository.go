package repository

import (
	"context"
	"time"

	"github.com/jhoicas/oficialia-api/internal/domain/entity"
)

// CorrespondenceFilter criterios de la consulta previa al filtro de visibilidad.
// UserID y PositionIDs acotan a lo que el usuario creó o tuvo en algún momento.
// Status, si viene, deja solo lo que tiene ese estado en la última entrada de alguno
// de los puestos (y sin respuestas cuando es 3); nil no filtra por estado.
type CorrespondenceFilter struct {
	UserID           int64
	PositionIDs      []int64
	DateFrom         *time.Time
	DateTo           *time.Time
	PriorityID       *int64
	DeliveryMethodID *int64
	CreatedBy        *int64
	Status           *entity.Status
}

// CorrespondenceRepository puerto de persistencia de la correspondencia y su historial de estados (DIP).
// Los métodos Get* devuelven (nil, nil) si el registro no existe.
type CorrespondenceRepository interface {
	// Create inserta la correspondencia y asigna su ID.
	// Devuelve domain.ErrDuplicate si el folio ya existe.
	Create(ctx context.Context, c *entity.Correspondence) error
	Update(ctx context.Context, c *entity.Correspondence) error
	GetByID(ctx context.Context, id int64) (*entity.Correspondence, error)
	GetWithLatestEntry(ctx context.Context, id int64) (*entity.CorrespondenceWithLatestEntry, error)
	// GetForUpdate igual que GetWithLatestEntry pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id int64) (*entity.CorrespondenceWithLatestEntry, error)
	GetWithHistory(ctx context.Context, id int64) (*entity.CorrespondenceWithFullHistory, error)
	GetByFolio(ctx context.Context, folioSistema string) (*entity.CorrespondenceWithFullHistory, error)
	// HasReply indica si ya existe una respuesta para la correspondencia.
	HasReply(ctx context.Context, id int64, replyFolio string) (bool, error)
	ListCandidates(ctx context.Context, f CorrespondenceFilter) ([]entity.CorrespondenceWithFullHistory, error)
	// NextSequence reserva la siguiente secuencia global de folio; debe llamarse dentro de una transacción.
	NextSequence(ctx context.Context) (int, error)

	AppendEntry(ctx context.Context, e *entity.StateEntry) error
	// UpdateEntry modifica en sitio una entrada. holder nil conserva el puesto.
	// Devuelve domain.ErrNotFound si la entrada no existe.
	UpdateEntry(ctx context.Context, entryID int64, status entity.Status, observations string, holder *int64) error
}
