package correspondence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/oficialia-api/internal/domain"
	"github.com/jhoicas/oficialia-api/internal/domain/entity"
	"github.com/jhoicas/oficialia-api/internal/domain/folio"
	"github.com/jhoicas/oficialia-api/internal/domain/repository"
	"github.com/jhoicas/oficialia-api/pkg/logger"
)

// ── Repositorio en memoria ─────────────────────────────────────────────────────

type memState struct {
	rows      map[int64]entity.Correspondence
	entries   []entity.StateEntry
	nextID    int64
	nextEntry int64
	counter   int
}

func (s memState) clone() memState {
	out := s
	out.rows = make(map[int64]entity.Correspondence, len(s.rows))
	for k, v := range s.rows {
		out.rows[k] = v
	}
	out.entries = append([]entity.StateEntry(nil), s.entries...)
	return out
}

type fakeRepo struct {
	mu sync.Mutex
	st memState
	// failAppend hace fallar AppendEntry a partir de la llamada indicada (0 = nunca).
	failAppend  int
	appendCalls int
	// dupCreates simula folios tomados por otra transacción en las primeras N llamadas a Create.
	dupCreates int
	// filters filtros recibidos por ListCandidates, en orden.
	filters []repository.CorrespondenceFilter
}

var _ repository.CorrespondenceRepository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{st: memState{rows: map[int64]entity.Correspondence{}}}
}

// seed inserta directamente una correspondencia con su historial.
func (r *fakeRepo) seed(c entity.Correspondence, history ...entity.StateEntry) int64 {
	r.st.nextID++
	c.ID = r.st.nextID
	r.st.rows[c.ID] = c
	for _, e := range history {
		r.st.nextEntry++
		e.ID = r.st.nextEntry
		e.CorrespondenceID = c.ID
		r.st.entries = append(r.st.entries, e)
	}
	return c.ID
}

func (r *fakeRepo) history(id int64) []entity.StateEntry {
	var out []entity.StateEntry
	for _, e := range r.st.entries {
		if e.CorrespondenceID == id {
			out = append(out, e)
		}
	}
	return out
}

func (r *fakeRepo) Create(_ context.Context, c *entity.Correspondence) error {
	if r.dupCreates > 0 {
		r.dupCreates--
		return fmt.Errorf("%w: folio %s", domain.ErrDuplicate, c.FolioSistema)
	}
	for _, row := range r.st.rows {
		if row.FolioSistema == c.FolioSistema {
			return fmt.Errorf("%w: folio %s", domain.ErrDuplicate, c.FolioSistema)
		}
		if c.ParentID != nil && row.ParentID != nil && *row.ParentID == *c.ParentID {
			return fmt.Errorf("%w: respuesta de %d", domain.ErrDuplicate, *c.ParentID)
		}
	}
	r.st.nextID++
	c.ID = r.st.nextID
	r.st.rows[c.ID] = *c
	return nil
}

func (r *fakeRepo) Update(_ context.Context, c *entity.Correspondence) error {
	if _, ok := r.st.rows[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.st.rows[c.ID] = *c
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*entity.Correspondence, error) {
	c, ok := r.st.rows[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeRepo) GetWithLatestEntry(_ context.Context, id int64) (*entity.CorrespondenceWithLatestEntry, error) {
	c, ok := r.st.rows[id]
	if !ok {
		return nil, nil
	}
	out := &entity.CorrespondenceWithLatestEntry{Correspondence: c}
	if h := r.history(id); len(h) > 0 {
		latest := h[len(h)-1]
		out.Latest = &latest
	}
	return out, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, id int64) (*entity.CorrespondenceWithLatestEntry, error) {
	return r.GetWithLatestEntry(ctx, id)
}

func (r *fakeRepo) GetWithHistory(_ context.Context, id int64) (*entity.CorrespondenceWithFullHistory, error) {
	c, ok := r.st.rows[id]
	if !ok {
		return nil, nil
	}
	return &entity.CorrespondenceWithFullHistory{Correspondence: c, History: r.history(id)}, nil
}

func (r *fakeRepo) GetByFolio(ctx context.Context, folioSistema string) (*entity.CorrespondenceWithFullHistory, error) {
	for id, c := range r.st.rows {
		if c.FolioSistema == folioSistema {
			return r.GetWithHistory(ctx, id)
		}
	}
	return nil, nil
}

func (r *fakeRepo) HasReply(_ context.Context, id int64, replyFolio string) (bool, error) {
	for _, c := range r.st.rows {
		if (c.ParentID != nil && *c.ParentID == id) || c.FolioSistema == replyFolio {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) ListCandidates(_ context.Context, f repository.CorrespondenceFilter) ([]entity.CorrespondenceWithFullHistory, error) {
	r.filters = append(r.filters, f)
	var out []entity.CorrespondenceWithFullHistory
	for id, c := range r.st.rows {
		if f.PriorityID != nil && c.PriorityID != *f.PriorityID {
			continue
		}
		if f.DateFrom != nil && c.CorrespondenceDate.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && c.CorrespondenceDate.After(*f.DateTo) {
			continue
		}
		out = append(out, entity.CorrespondenceWithFullHistory{Correspondence: c, History: r.history(id)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeRepo) NextSequence(_ context.Context) (int, error) {
	folios := make([]string, 0, len(r.st.rows))
	for _, c := range r.st.rows {
		folios = append(folios, c.FolioSistema)
	}
	next := folio.NextSequence(folios)
	if r.st.counter+1 > next {
		next = r.st.counter + 1
	}
	r.st.counter = next
	return next, nil
}

func (r *fakeRepo) AppendEntry(_ context.Context, e *entity.StateEntry) error {
	r.appendCalls++
	if r.failAppend > 0 && r.appendCalls >= r.failAppend {
		return fmt.Errorf("fallo simulado de inserción")
	}
	r.st.nextEntry++
	e.ID = r.st.nextEntry
	r.st.entries = append(r.st.entries, *e)
	return nil
}

func (r *fakeRepo) UpdateEntry(_ context.Context, entryID int64, status entity.Status, observations string, holder *int64) error {
	for i := range r.st.entries {
		if r.st.entries[i].ID == entryID {
			r.st.entries[i].Status = status
			r.st.entries[i].Observations = observations
			if holder != nil {
				r.st.entries[i].HolderPositionID = *holder
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeTxRunner restaura el estado del repositorio si fn falla (Rollback).
type fakeTxRunner struct {
	repo *fakeRepo
}

func (t fakeTxRunner) Run(_ context.Context, fn func(repo repository.CorrespondenceRepository) error) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	snapshot := t.repo.st.clone()
	if err := fn(t.repo); err != nil {
		t.repo.st = snapshot
		return err
	}
	return nil
}

// ── Puestos ────────────────────────────────────────────────────────────────────

type fakePositions map[int64]entity.Position

func (p fakePositions) GetByID(_ context.Context, id int64) (*entity.Position, error) {
	pos, ok := p[id]
	if !ok {
		return nil, nil
	}
	return &pos, nil
}

func (p fakePositions) ListHeldByUser(_ context.Context, userID int64) ([]entity.Position, error) {
	var out []entity.Position
	for _, pos := range p {
		if pos.UserID == userID && pos.IsHeld() {
			out = append(out, pos)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── Directorio ─────────────────────────────────────────────────────────────────

type fakeDirectory struct {
	areas map[int64]string
	err   error
}

func (d *fakeDirectory) GetArea(_ context.Context, id int64) (*entity.Area, error) {
	if d.err != nil {
		return nil, d.err
	}
	name, ok := d.areas[id]
	if !ok {
		return nil, fmt.Errorf("%w: área %d", domain.ErrNotFound, id)
	}
	return &entity.Area{ID: id, Name: name}, nil
}

func (d *fakeDirectory) ListAreas(_ context.Context) ([]entity.Area, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := make([]entity.Area, 0, len(d.areas))
	for id, name := range d.areas {
		out = append(out, entity.Area{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── Almacén de documentos ──────────────────────────────────────────────────────

type fakeStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
	putErr  error
}

func newFakeStore() *fakeStore { return &fakeStore{files: map[string][]byte{}} }

func (s *fakeStore) Put(_ context.Context, name string, r io.Reader) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = data
	return nil
}

func (s *fakeStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
	s.deleted = append(s.deleted, name)
	return nil
}

// ── Acuse ──────────────────────────────────────────────────────────────────────

type fakeReceipts struct {
	last ReceiptData
}

func (f *fakeReceipts) GenerateReceipt(_ context.Context, data ReceiptData) ([]byte, error) {
	f.last = data
	return []byte("%PDF-acuse"), nil
}

// ── Fixture ────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	uc        *CorrespondenceUseCase
	repo      *fakeRepo
	positions fakePositions
	directory *fakeDirectory
	store     *fakeStore
	receipts  *fakeReceipts
}

const (
	userOficialia int64 = 1 // ocupa el puesto 10
	userDestino   int64 = 2 // ocupa el puesto 20
	userAjeno     int64 = 3 // ocupa el puesto 30

	areaDAF  int64 = 100
	areaUSET int64 = 200
	areaSEP  int64 = 300
)

func newFixture() *fixture {
	repo := newFakeRepo()
	positions := fakePositions{
		10: {ID: 10, UserID: userOficialia, AreaID: areaDAF, Active: true},
		20: {ID: 20, UserID: userDestino, AreaID: areaUSET, Active: true},
		30: {ID: 30, UserID: userAjeno, AreaID: areaSEP, Active: true},
	}
	directory := &fakeDirectory{areas: map[int64]string{
		areaDAF:  "Dirección de Administración y Finanzas (DAF)",
		areaUSET: "Unidad de Servicios Educativos del Estado de Tlaxcala (USET)",
		areaSEP:  "Secretaría de Educación Pública",
	}}
	store := newFakeStore()
	receipts := &fakeReceipts{}
	uc := NewCorrespondenceUseCase(fakeTxRunner{repo: repo}, repo, positions, directory, store, receipts, logger.Nop())
	uc.now = func() time.Time { return fixedNow }
	return &fixture{uc: uc, repo: repo, positions: positions, directory: directory, store: store, receipts: receipts}
}

func pdfAttachment(name string) *Attachment {
	return &Attachment{Name: name, Content: bytes.NewReader([]byte("%PDF-1.4 contenido"))}
}
