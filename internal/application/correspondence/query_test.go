package correspondence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/oficialia-api/internal/application/dto"
	"github.com/jhoicas/oficialia-api/internal/domain"
	"github.com/jhoicas/oficialia-api/internal/domain/entity"
)

func folios(list *dto.CorrespondenceListResponse) []string {
	out := make([]string, 0, len(list.Items))
	for _, it := range list.Items {
		out = append(out, it.FolioSistema)
	}
	return out
}

func TestList_BandejaTrasTurnar(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := seedReceived(f, "USET-DAF-0001", 10)
	_, err := f.uc.ChangeStatus(ctx, userOficialia,
		dto.ChangeStatusRequest{CorrespondenceID: id, Status: 4, TargetPositionID: 20}, nil)
	require.NoError(t, err)

	inbox, err := f.uc.List(ctx, userDestino, dto.ListCorrespondenceQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"USET-DAF-0001"}, folios(inbox))
	require.NotNil(t, inbox.Items[0].Current)
	assert.Equal(t, int64(20), inbox.Items[0].Current.HolderPositionID)

	// El creador ocupa el puesto 10, cuya última entrada quedó en 4.
	own, err := f.uc.List(ctx, userOficialia, dto.ListCorrespondenceQuery{})
	require.NoError(t, err)
	assert.Empty(t, own.Items)

	derived, err := f.uc.List(ctx, userOficialia, dto.ListCorrespondenceQuery{Status: "4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"USET-DAF-0001"}, folios(derived))
}

func TestList_UsuarioAjenoNoVe(t *testing.T) {
	f := newFixture()
	seedReceived(f, "USET-DAF-0001", 20)

	out, err := f.uc.List(context.Background(), userAjeno, dto.ListCorrespondenceQuery{Status: StatusAll})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, 0, out.Page.Total)
}

func TestList_Respondidas_ExcluyeRespuestas(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := seedReceived(f, "ABCD-WXYZ-0007", 20)
	_, err := f.uc.ChangeStatus(ctx, userDestino, dto.ChangeStatusRequest{CorrespondenceID: id, Status: 3}, pdfAttachment("r.pdf"))
	require.NoError(t, err)

	out, err := f.uc.List(ctx, userDestino, dto.ListCorrespondenceQuery{Status: "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ABCD-WXYZ-0007"}, folios(out))

	all, err := f.uc.List(ctx, userDestino, dto.ListCorrespondenceQuery{Status: "todos"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ABCD-WXYZ-0007", "ABCD-WXYZ-0007-1"}, folios(all))
}

func TestList_EstadoInvalido(t *testing.T) {
	f := newFixture()
	for _, s := range []string{"0", "7", "abc"} {
		_, err := f.uc.List(context.Background(), userDestino, dto.ListCorrespondenceQuery{Status: s})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, s)
	}
}

func TestList_Paginacion(t *testing.T) {
	f := newFixture()
	for _, fs := range []string{"A-B-0001", "A-B-0002", "A-B-0003"} {
		seedReceived(f, fs, 20)
	}
	seedReceived(f, "A-B-0004", 30)

	out, err := f.uc.List(context.Background(), userDestino,
		dto.ListCorrespondenceQuery{Page: dto.PageRequest{Limit: 2, Offset: 1}})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Page.Total)
	assert.Equal(t, []string{"A-B-0002", "A-B-0001"}, folios(out))

	beyond, err := f.uc.List(context.Background(), userDestino,
		dto.ListCorrespondenceQuery{Page: dto.PageRequest{Limit: 2, Offset: 10}})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
}

func TestList_EstadoLlegaAlRepositorio(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  *entity.Status
	}{
		{"bandeja por defecto", "", statusPtr(entity.StatusReceived)},
		{"estado explícito", "4", statusPtr(entity.StatusDerived)},
		{"todos", StatusAll, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.uc.List(context.Background(), userDestino, dto.ListCorrespondenceQuery{Status: tt.query})
			require.NoError(t, err)
			require.Len(t, f.repo.filters, 1)
			assert.Equal(t, tt.want, f.repo.filters[0].Status)
			assert.Equal(t, []int64{20}, f.repo.filters[0].PositionIDs)
		})
	}
}

func statusPtr(s entity.Status) *entity.Status { return &s }

func TestListVisible_PuestosExplicitos(t *testing.T) {
	f := newFixture()
	seedReceived(f, "A-B-0001", 20)
	seedReceived(f, "A-B-0002", 30)

	out, err := f.uc.ListVisible(context.Background(), 99, []int64{20, 30}, nil)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestGet_Visibilidad(t *testing.T) {
	f := newFixture()
	id := seedReceived(f, "USET-DAF-0001", 20)
	ctx := context.Background()

	got, err := f.uc.Get(ctx, userDestino, id)
	require.NoError(t, err)
	assert.Len(t, got.History, 1)

	_, err = f.uc.Get(ctx, userOficialia, id) // creador
	assert.NoError(t, err)

	_, err = f.uc.Get(ctx, userAjeno, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEdit_SoloCreadorEnEstadoRecibida(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := seedReceived(f, "USET-DAF-0001", 20)

	_, err := f.uc.Edit(ctx, userDestino, dto.EditCorrespondenceRequest{CorrespondenceID: id, Summary: "otro"}, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := f.uc.Edit(ctx, userOficialia, dto.EditCorrespondenceRequest{
		CorrespondenceID: id, Summary: "corregido", CorrespondenceDate: "2024-01-31",
	}, pdfAttachment("nuevo.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "corregido", out.Summary)
	assert.Equal(t, "2024-01-31", out.CorrespondenceDate)
	require.NotNil(t, out.EditedBy)
	assert.Equal(t, userOficialia, *out.EditedBy)
	assert.Contains(t, f.store.files, "USET-DAF-0001.pdf")

	_, err = f.uc.ChangeStatus(ctx, userDestino, dto.ChangeStatusRequest{CorrespondenceID: id, Status: 2}, nil)
	require.NoError(t, err)

	_, err = f.uc.Edit(ctx, userOficialia, dto.EditCorrespondenceRequest{CorrespondenceID: id, Summary: "tarde"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	row := f.repo.st.rows[id]
	assert.Equal(t, "corregido", row.Summary)
}

func TestEdit_RespuestaTurnadaNoEditable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := seedReceived(f, "ABCD-WXYZ-0007", 20)

	out, err := f.uc.ChangeStatus(ctx, userDestino,
		dto.ChangeStatusRequest{CorrespondenceID: id, Status: 3}, pdfAttachment("respuesta.pdf"))
	require.NoError(t, err)
	require.NotNil(t, out.ReplyID)
	replyID := *out.ReplyID

	// Al turnar la respuesta su entrada vigente vuelve a estado 1 y su creador es userOficialia.
	_, err = f.uc.ChangeStatus(ctx, userDestino,
		dto.ChangeStatusRequest{CorrespondenceID: replyID, Status: 4, TargetPositionID: 30}, nil)
	require.NoError(t, err)

	_, err = f.uc.Edit(ctx, userOficialia, dto.EditCorrespondenceRequest{CorrespondenceID: replyID, Summary: "editada"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	row := f.repo.st.rows[replyID]
	assert.Equal(t, "original", row.Summary)
	assert.Nil(t, row.EditedBy)
}

func TestEdit_Inexistente(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Edit(context.Background(), userOficialia, dto.EditCorrespondenceRequest{CorrespondenceID: 5}, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOpenDocument(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	out, err := f.uc.Create(ctx, userOficialia, validCreate(), pdfAttachment("oficio.pdf"))
	require.NoError(t, err)

	rc, err := f.uc.OpenDocument(ctx, userDestino, out.FileName)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "%PDF-1.4 contenido", string(data))

	_, err = f.uc.OpenDocument(ctx, userAjeno, out.FileName)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.OpenDocument(ctx, userDestino, "../"+out.FileName)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.OpenDocument(ctx, userDestino, "NO-EXISTE-0001.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceipt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	out, err := f.uc.Create(ctx, userOficialia, validCreate(), pdfAttachment("oficio.pdf"))
	require.NoError(t, err)

	pdf, name, err := f.uc.Receipt(ctx, userOficialia, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "acuse_USET-DAF-0001.pdf", name)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "Dirección de Administración y Finanzas (DAF)", f.receipts.last.SenderArea)
	assert.Equal(t, "Unidad de Servicios Educativos del Estado de Tlaxcala (USET)", f.receipts.last.RecipientArea)

	f.directory.err = domain.ErrUpstream
	_, _, err = f.uc.Receipt(ctx, userOficialia, out.ID)
	require.NoError(t, err)
	assert.Equal(t, areaNotFound, f.receipts.last.SenderArea)
}

func TestListAreas_DirectorioCaidoDevuelveListaVacia(t *testing.T) {
	f := newFixture()
	areas, err := f.uc.ListAreas(context.Background())
	require.NoError(t, err)
	assert.Len(t, areas, 3)

	f.directory.err = fmt.Errorf("%w: directorio 503", domain.ErrUpstream)
	areas, err = f.uc.ListAreas(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, areas)
	assert.Empty(t, areas)
}

func TestListAreas_OtrosErroresSePropagan(t *testing.T) {
	f := newFixture()
	f.directory.err = errors.New("respuesta ilegible")
	_, err := f.uc.ListAreas(context.Background())
	assert.Error(t, err)
}

