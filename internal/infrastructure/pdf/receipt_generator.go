// Package pdf genera el acuse de recibo de correspondencia con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Oficialía de Partes     │  Folio + fecha de emisión │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: Remitente / Destinatario / Folio externo / Fecha     │
//	│  RESUMEN                                                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  HISTORIAL: Fecha | Estado | Puesto | Observaciones          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el folio + leyenda                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/oficialia-api/internal/application/correspondence"
	"github.com/jhoicas/oficialia-api/internal/domain/entity"
)

var _ correspondence.ReceiptGenerator = (*ReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 105, Green: 28, Blue: 50}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ReceiptGenerator implementa correspondence.ReceiptGenerator.
type ReceiptGenerator struct {
	institution string
}

// NewReceiptGenerator institution aparece en el encabezado del acuse.
func NewReceiptGenerator(institution string) *ReceiptGenerator {
	return &ReceiptGenerator{institution: institution}
}

// GenerateReceipt genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) GenerateReceipt(_ context.Context, data correspondence.ReceiptData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Acuse de recibo "+data.Correspondence.FolioSistema, true).
		WithAuthor(g.institution, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(data))
	m.AddRows(summaryRows(data.Correspondence.Summary)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(historyHeaderRow())
	m.AddRows(historyRows(data.Correspondence.History)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(data.Correspondence.FolioSistema))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar acuse: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *ReceiptGenerator) headerRow(data correspondence.ReceiptData) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.institution, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Oficialía de Partes", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("ACUSE DE RECIBO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(data.Correspondence.FolioSistema, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emitido: "+data.GeneratedAt.Format(dateTimeLayout), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func partiesRow(data correspondence.ReceiptData) core.Row {
	c := data.Correspondence
	field := func(label, value string, top float64) []core.Component {
		return []core.Component{
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: top}),
			text.New(nonEmpty(value, "-"), props.Text{Size: 9, Top: top + 4}),
		}
	}
	left := append(field("REMITENTE", data.SenderArea, 1), field("FOLIO DEL DOCUMENTO", c.FolioCorrespondencia, 12)...)
	right := append(field("DESTINATARIO", data.RecipientArea, 1),
		field("FECHA DEL DOCUMENTO", c.CorrespondenceDate.Format(dateLayout), 12)...)
	right = append(right, field("REGISTRADO", c.CreatedAt.Format(dateTimeLayout), 23)...)
	return row.New(32).Add(col.New(6).Add(left...), col.New(6).Add(right...))
}

func summaryRows(summary string) []core.Row {
	rows := []core.Row{row.New(6).Add(col.New(12).Add(
		text.New("RESUMEN", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))}
	for _, chunk := range splitEvery([]rune(summary), 110) {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(chunk, props.Text{Size: 9, Top: 0.5}),
		)))
	}
	return rows
}

func historyHeaderRow() core.Row {
	h := func(label string, size int) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2, Left: 1,
		}))
	}
	return row.New(8).Add(h("Fecha", 3), h("Estado", 2), h("Puesto", 2), h("Observaciones", 5))
}

func historyRows(history []entity.StateEntry) []core.Row {
	out := make([]core.Row, 0, len(history))
	for _, e := range history {
		out = append(out, row.New(7).Add(
			col.New(3).Add(text.New(e.CreatedAt.Format(dateTimeLayout), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(e.Status.String(), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(strconv.FormatInt(e.HolderPositionID, 10), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(5).Add(text.New(nonEmpty(e.Observations, "-"), props.Text{Size: 8, Top: 1, Left: 1})),
		))
	}
	return out
}

func footerRow(folio string) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(folio, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Este acuse hace constar la recepción del documento en la Oficialía de Partes.", props.Text{
				Size: 8, Top: 6, Left: 3, Color: colorGray,
			}),
			text.New("Folio de sistema: "+folio, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 16, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// splitEvery divide s en trozos de max n runas.
func splitEvery(s []rune, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, string(s[:n]))
		s = s[n:]
	}
	if len(s) > 0 {
		parts = append(parts, string(s))
	}
	return parts
}
