// Package pdf genera la ficha imprimible de una orden de servicio.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre de la app      │  OS #id + fecha + estado    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre / Documento / Dirección / Contacto          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: Contrato | Prioridad | Agendada | N° secuencial      │
//	│  DESCRIPCIÓN (texto partido)                                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PENDENCIA: estado / responsable / conclusión                │
//	│  FOOTER: QR con el ID + firmas                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

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

	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// SheetGenerator implementa serviceorder.SheetRenderer usando Maroto v2.
type SheetGenerator struct {
	appName string
}

// NewSheetGenerator construye el generador.
func NewSheetGenerator(appName string) *SheetGenerator {
	return &SheetGenerator{appName: appName}
}

// RenderServiceOrder genera el PDF y devuelve sus bytes. p puede ser nil.
func (g *SheetGenerator) RenderServiceOrder(_ context.Context, order *entity.ServiceOrder, p *entity.Pendency) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Orden de servicio "+order.DisplayID(), true).
		WithAuthor(g.appName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.appName, order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(order.Client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(detailRow(order))
	m.AddRows(descriptionRows(order.Description)...)

	if p != nil {
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(pendencyRows(p)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(order))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(appName string, o *entity.ServiceOrder) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(appName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Ficha de atención en campo", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ORDEN DE SERVICIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("OS #"+o.DisplayID(), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New(fmt.Sprintf("Abierta: %s   |   Estado: %s", o.CreatedAt.Format("02/01/2006 15:04"), o.Status), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func clientRow(c entity.ClientSnapshot) core.Row {
	code := "—"
	if c.Code != 0 {
		code = fmt.Sprint(c.Code)
	}
	return row.New(20).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(c.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Código: %s   |   CPF/CNPJ: %s   |   Contacto: %s",
				code, nonEmpty(c.Document, "—"), nonEmpty(c.Contact, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
			text.New("Dirección: "+nonEmpty(c.Address, "—"), props.Text{Size: 8, Top: 16, Color: colorGray}),
		),
	)
}

func detailRow(o *entity.ServiceOrder) core.Row {
	scheduled := "—"
	if !o.ScheduledDate.IsZero() {
		scheduled = o.ScheduledDate.Format("02/01/2006")
	}
	cell := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1}),
			text.New(value, props.Text{Size: 9, Top: 5}),
		)
	}
	return row.New(12).Add(
		cell("Contrato", nonEmpty(o.Contract, "—")),
		cell("Prioridad", string(o.Priority)),
		cell("Agendada para", scheduled),
		cell("N° secuencial", fmt.Sprint(o.Number)),
	)
}

func descriptionRows(description string) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("DESCRIPCIÓN", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
	}
	if strings.TrimSpace(description) == "" {
		description = "—"
	}
	for _, paragraph := range strings.Split(description, "\n") {
		for _, chunk := range wrap(paragraph, 110) {
			rows = append(rows, row.New(5).Add(col.New(12).Add(
				text.New(chunk, props.Text{Size: 8.5, Top: 0.5, Left: 2}),
			)))
		}
	}
	return rows
}

func pendencyRows(p *entity.Pendency) []core.Row {
	responsible := "sin asignar"
	if p.ResponsibleID != nil {
		responsible = *p.ResponsibleID
	}
	conclusion := "—"
	if p.ConclusionType != nil {
		conclusion = string(*p.ConclusionType)
	}
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("PENDENCIA ASOCIADA", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
		row.New(6).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Estado: %s   |   Responsable: %s   |   Conclusión: %s", p.Status, responsible, conclusion),
				props.Text{Size: 8, Top: 1, Color: colorGray}),
		)),
	}
	if p.ConclusionText != "" {
		for _, chunk := range wrap(p.ConclusionText, 110) {
			rows = append(rows, row.New(5).Add(col.New(12).Add(
				text.New(chunk, props.Text{Size: 8, Top: 0.5, Left: 2}),
			)))
		}
	}
	return rows
}

// footerRow QR con el ID de la OS y espacio para firmas.
func footerRow(o *entity.ServiceOrder) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(o.ID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Firma del técnico: ______________________________", props.Text{
				Size: 9, Top: 8, Left: 3,
			}),
			text.New("Firma del cliente: ______________________________", props.Text{
				Size: 9, Top: 22, Left: 3,
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

// wrap parte el texto en líneas de hasta n runas cortando en espacios cuando se puede.
func wrap(s string, n int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var (
		lines []string
		cur   []rune
	)
	for _, w := range words {
		r := []rune(w)
		for len(r) > n {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(r[:n]))
			r = r[n:]
		}
		switch {
		case len(cur) == 0:
			cur = r
		case len(cur)+1+len(r) <= n:
			cur = append(append(cur, ' '), r...)
		default:
			lines = append(lines, string(cur))
			cur = r
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
