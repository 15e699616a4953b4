package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/oficialia-api/internal/domain"
	"github.com/jhoicas/oficialia-api/internal/domain/entity"
	"github.com/jhoicas/oficialia-api/internal/domain/repository"
)

var _ repository.CorrespondenceRepository = (*CorrespondenceRepo)(nil)

const correspondenceColumns = `
	c.id_correspondencia, c.folio_sistema, c.folio_correspondencia, c.ct_clasificacion_prioridad_id,
	c.ct_forma_entrega_id, c.resumen, c.fecha_correspondencia, c.archivo, c.id_usuario_puesto_remitente,
	c.correspondencia_padre_id, c.ct_usuario_id, c.ct_usuario_editor_id, c.created_at, c.updated_at`

const entryColumns = `
	e.id, e.dt_correspondencia_id, e.id_usuario_puesto, e.ct_correspondencia_estado,
	e.observaciones, e.ct_usuario_id, e.created_at`

// La entrada vigente es la de created_at más reciente; en empate, la de mayor id.
const entryOrder = `e.created_at, e.id`

// CorrespondenceRepo implementación de CorrespondenceRepository sobre PostgreSQL (usable con pool o tx).
type CorrespondenceRepo struct {
	q Querier
}

// NewCorrespondenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCorrespondenceRepository(q Querier) *CorrespondenceRepo {
	return &CorrespondenceRepo{q: q}
}

func scanCorrespondence(row pgx.Row, c *entity.Correspondence) error {
	return row.Scan(
		&c.ID, &c.FolioSistema, &c.FolioCorrespondencia, &c.PriorityID,
		&c.DeliveryMethodID, &c.Summary, &c.CorrespondenceDate, &c.FileName, &c.SenderPositionID,
		&c.ParentID, &c.CreatedBy, &c.EditedBy, &c.CreatedAt, &c.UpdatedAt,
	)
}

func scanEntry(row pgx.Row, e *entity.StateEntry) error {
	var status int16
	if err := row.Scan(&e.ID, &e.CorrespondenceID, &e.HolderPositionID, &status,
		&e.Observations, &e.ActorUserID, &e.CreatedAt); err != nil {
		return err
	}
	e.Status = entity.Status(status)
	return nil
}

// writeError traduce violaciones de constraints a errores de dominio.
func writeError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s: %v", domain.ErrDuplicate, op, err)
	case isForeignKeyViolation(err), isCheckViolation(err):
		return fmt.Errorf("%w: %s: referencia inválida: %v", domain.ErrInvalidInput, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// Create inserta la correspondencia y asigna ID y timestamps.
func (r *CorrespondenceRepo) Create(ctx context.Context, c *entity.Correspondence) error {
	query := `
		INSERT INTO dt_correspondencia (
			folio_sistema, folio_correspondencia, ct_clasificacion_prioridad_id, ct_forma_entrega_id,
			resumen, fecha_correspondencia, archivo, id_usuario_puesto_remitente,
			correspondencia_padre_id, ct_usuario_id, ct_usuario_editor_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id_correspondencia`
	err := r.q.QueryRow(ctx, query,
		c.FolioSistema, c.FolioCorrespondencia, c.PriorityID, c.DeliveryMethodID,
		c.Summary, c.CorrespondenceDate, c.FileName, c.SenderPositionID,
		c.ParentID, c.CreatedBy, c.EditedBy, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return writeError("create correspondencia", err)
	}
	return nil
}

// Update guarda los campos editables. El folio y el archivo no cambian.
func (r *CorrespondenceRepo) Update(ctx context.Context, c *entity.Correspondence) error {
	query := `
		UPDATE dt_correspondencia SET
			folio_correspondencia = $2, ct_clasificacion_prioridad_id = $3, ct_forma_entrega_id = $4,
			resumen = $5, fecha_correspondencia = $6, ct_usuario_editor_id = $7, updated_at = $8
		WHERE id_correspondencia = $1`
	tag, err := r.q.Exec(ctx, query,
		c.ID, c.FolioCorrespondencia, c.PriorityID, c.DeliveryMethodID,
		c.Summary, c.CorrespondenceDate, c.EditedBy, c.UpdatedAt,
	)
	if err != nil {
		return writeError("update correspondencia", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: correspondencia %d", domain.ErrNotFound, c.ID)
	}
	return nil
}

func (r *CorrespondenceRepo) getOne(ctx context.Context, op, where string, args ...any) (*entity.Correspondence, error) {
	query := `SELECT ` + correspondenceColumns + ` FROM dt_correspondencia c WHERE ` + where
	var c entity.Correspondence
	if err := scanCorrespondence(r.q.QueryRow(ctx, query, args...), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// GetByID obtiene la correspondencia sin historial.
func (r *CorrespondenceRepo) GetByID(ctx context.Context, id int64) (*entity.Correspondence, error) {
	return r.getOne(ctx, "get correspondencia", `c.id_correspondencia = $1`, id)
}

// GetWithLatestEntry correspondencia con su entrada vigente.
func (r *CorrespondenceRepo) GetWithLatestEntry(ctx context.Context, id int64) (*entity.CorrespondenceWithLatestEntry, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	return r.withLatest(ctx, c)
}

// GetForUpdate igual que GetWithLatestEntry pero con SELECT ... FOR UPDATE sobre la correspondencia.
func (r *CorrespondenceRepo) GetForUpdate(ctx context.Context, id int64) (*entity.CorrespondenceWithLatestEntry, error) {
	c, err := r.getOne(ctx, "get correspondencia for update", `c.id_correspondencia = $1 FOR UPDATE`, id)
	if err != nil || c == nil {
		return nil, err
	}
	return r.withLatest(ctx, c)
}

func (r *CorrespondenceRepo) withLatest(ctx context.Context, c *entity.Correspondence) (*entity.CorrespondenceWithLatestEntry, error) {
	query := `SELECT ` + entryColumns + `
		FROM rl_correspondencia_usuario_estado e
		WHERE e.dt_correspondencia_id = $1
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT 1`
	out := &entity.CorrespondenceWithLatestEntry{Correspondence: *c}
	var e entity.StateEntry
	if err := scanEntry(r.q.QueryRow(ctx, query, c.ID), &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return out, nil
		}
		return nil, fmt.Errorf("get estado vigente: %w", err)
	}
	out.Latest = &e
	return out, nil
}

// GetWithHistory correspondencia con todo su historial, del más antiguo al más reciente.
func (r *CorrespondenceRepo) GetWithHistory(ctx context.Context, id int64) (*entity.CorrespondenceWithFullHistory, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	return r.withHistory(ctx, c)
}

// GetByFolio busca por folio_sistema (se usa para servir <folio>.pdf).
func (r *CorrespondenceRepo) GetByFolio(ctx context.Context, folioSistema string) (*entity.CorrespondenceWithFullHistory, error) {
	c, err := r.getOne(ctx, "get correspondencia por folio", `c.folio_sistema = $1`, folioSistema)
	if err != nil || c == nil {
		return nil, err
	}
	return r.withHistory(ctx, c)
}

func (r *CorrespondenceRepo) withHistory(ctx context.Context, c *entity.Correspondence) (*entity.CorrespondenceWithFullHistory, error) {
	histories, err := r.histories(ctx, []int64{c.ID})
	if err != nil {
		return nil, err
	}
	return &entity.CorrespondenceWithFullHistory{Correspondence: *c, History: histories[c.ID]}, nil
}

// histories carga los historiales de varias correspondencias en una sola consulta.
func (r *CorrespondenceRepo) histories(ctx context.Context, ids []int64) (map[int64][]entity.StateEntry, error) {
	query := `SELECT ` + entryColumns + `
		FROM rl_correspondencia_usuario_estado e
		WHERE e.dt_correspondencia_id = ANY($1)
		ORDER BY e.dt_correspondencia_id, ` + entryOrder
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list historial: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]entity.StateEntry, len(ids))
	for rows.Next() {
		var e entity.StateEntry
		if err := scanEntry(rows, &e); err != nil {
			return nil, fmt.Errorf("scan historial: %w", err)
		}
		out[e.CorrespondenceID] = append(out[e.CorrespondenceID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list historial: %w", err)
	}
	return out, nil
}

// HasReply true si ya existe una correspondencia hija o con el folio de respuesta.
func (r *CorrespondenceRepo) HasReply(ctx context.Context, id int64, replyFolio string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM dt_correspondencia
			WHERE correspondencia_padre_id = $1 OR folio_sistema = $2)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, id, replyFolio).Scan(&exists); err != nil {
		return false, fmt.Errorf("has reply: %w", err)
	}
	return exists, nil
}

// ListCandidates correspondencia creada por el usuario o que pasó por alguno de sus puestos,
// más recientes primero, con su historial. Con f.Status el estado vigente por puesto se
// filtra aquí; el dominio vuelve a aplicar la regla completa sobre el resultado.
func (r *CorrespondenceRepo) ListCandidates(ctx context.Context, f repository.CorrespondenceFilter) ([]entity.CorrespondenceWithFullHistory, error) {
	positions := f.PositionIDs
	if positions == nil {
		positions = []int64{}
	}
	where := []string{`(c.ct_usuario_id = $1 OR EXISTS (
		SELECT 1 FROM rl_correspondencia_usuario_estado h
		WHERE h.dt_correspondencia_id = c.id_correspondencia AND h.id_usuario_puesto = ANY($2)))`}
	args := []any{f.UserID, positions}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.DateFrom != nil {
		add(`c.fecha_correspondencia >= $%d`, *f.DateFrom)
	}
	if f.DateTo != nil {
		add(`c.fecha_correspondencia <= $%d`, *f.DateTo)
	}
	if f.PriorityID != nil {
		add(`c.ct_clasificacion_prioridad_id = $%d`, *f.PriorityID)
	}
	if f.DeliveryMethodID != nil {
		add(`c.ct_forma_entrega_id = $%d`, *f.DeliveryMethodID)
	}
	if f.CreatedBy != nil {
		add(`c.ct_usuario_id = $%d`, *f.CreatedBy)
	}
	if f.Status != nil {
		add(`EXISTS (
			SELECT 1 FROM (
				SELECT DISTINCT ON (h.id_usuario_puesto) h.ct_correspondencia_estado
				FROM rl_correspondencia_usuario_estado h
				WHERE h.dt_correspondencia_id = c.id_correspondencia AND h.id_usuario_puesto = ANY($2)
				ORDER BY h.id_usuario_puesto, h.created_at DESC, h.id DESC
			) ultima
			WHERE ultima.ct_correspondencia_estado = $%d)`, int16(*f.Status))
		if *f.Status == entity.StatusResponded {
			where = append(where, `c.correspondencia_padre_id IS NULL`)
			add(`c.folio_sistema NOT LIKE $%d`, "%"+entity.ReplySuffix)
		}
	}

	query := `SELECT ` + correspondenceColumns + `
		FROM dt_correspondencia c
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY c.created_at DESC, c.id_correspondencia DESC`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list correspondencia: %w", err)
	}
	defer rows.Close()

	var list []entity.CorrespondenceWithFullHistory
	var ids []int64
	for rows.Next() {
		var c entity.Correspondence
		if err := scanCorrespondence(rows, &c); err != nil {
			return nil, fmt.Errorf("scan correspondencia: %w", err)
		}
		list = append(list, entity.CorrespondenceWithFullHistory{Correspondence: c})
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list correspondencia: %w", err)
	}
	rows.Close()
	if len(list) == 0 {
		return list, nil
	}

	histories, err := r.histories(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].History = histories[list[i].ID]
	}
	return list, nil
}

// NextSequence reserva la siguiente secuencia global. Bloquea la fila del contador hasta el fin
// de la transacción y toma max(contador, mayor secuencia registrada) + 1, de modo que los folios
// cargados antes de existir el contador también se respetan.
func (r *CorrespondenceRepo) NextSequence(ctx context.Context) (int, error) {
	if _, err := r.q.Exec(ctx,
		`INSERT INTO ct_folio_secuencia (id, ultimo) VALUES (1, 0) ON CONFLICT (id) DO NOTHING`); err != nil {
		return 0, fmt.Errorf("init contador de folio: %w", err)
	}
	var counter int
	if err := r.q.QueryRow(ctx,
		`SELECT ultimo FROM ct_folio_secuencia WHERE id = 1 FOR UPDATE`).Scan(&counter); err != nil {
		return 0, fmt.Errorf("bloquear contador de folio: %w", err)
	}

	var scanned int
	query := `
		SELECT COALESCE(MAX(CAST(substring(folio_sistema FROM '-([0-9]+)$') AS INTEGER)), 0)
		FROM dt_correspondencia
		WHERE folio_sistema NOT LIKE '%-1'`
	if err := r.q.QueryRow(ctx, query).Scan(&scanned); err != nil {
		return 0, fmt.Errorf("max secuencia de folio: %w", err)
	}

	next := max(counter, scanned) + 1
	if _, err := r.q.Exec(ctx, `UPDATE ct_folio_secuencia SET ultimo = $1 WHERE id = 1`, next); err != nil {
		return 0, fmt.Errorf("actualizar contador de folio: %w", err)
	}
	return next, nil
}

// AppendEntry agrega una entrada al historial y asigna su ID.
func (r *CorrespondenceRepo) AppendEntry(ctx context.Context, e *entity.StateEntry) error {
	query := `
		INSERT INTO rl_correspondencia_usuario_estado (
			dt_correspondencia_id, id_usuario_puesto, ct_correspondencia_estado,
			observaciones, ct_usuario_id, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
		RETURNING id, created_at`
	var createdAt any
	if !e.CreatedAt.IsZero() {
		createdAt = e.CreatedAt
	}
	err := r.q.QueryRow(ctx, query,
		e.CorrespondenceID, e.HolderPositionID, int16(e.Status), e.Observations, e.ActorUserID, createdAt,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return writeError("append estado", err)
	}
	return nil
}

// UpdateEntry modifica en sitio una entrada; holder nil conserva el puesto actual.
func (r *CorrespondenceRepo) UpdateEntry(ctx context.Context, entryID int64, status entity.Status, observations string, holder *int64) error {
	query := `
		UPDATE rl_correspondencia_usuario_estado SET
			ct_correspondencia_estado = $2,
			observaciones = $3,
			id_usuario_puesto = COALESCE($4, id_usuario_puesto)
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, entryID, int16(status), observations, holder)
	if err != nil {
		return writeError("update estado", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entrada de estado %d", domain.ErrNotFound, entryID)
	}
	return nil
}
