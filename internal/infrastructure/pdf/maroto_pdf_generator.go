// Package pdf genera la vista previa PDF de una factura.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Cabinet + SIRET      │  FACTURE N° + Date          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FACTURÉ À: Raison sociale + dossier + adresse              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Prestation | Montant HT                             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Total HT / TVA (taux) / Total TTC                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR del enlace de pago (si existe) + mentions       │
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
	mconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	appbilling "github.com/jhoicas/smartcompta/internal/application/billing"
	"github.com/jhoicas/smartcompta/internal/domain/entity"
	"github.com/jhoicas/smartcompta/pkg/config"
)

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	cabinet config.CabinetConfig
}

// NewMarotoPDFGenerator construye el generador con los datos del emisor.
func NewMarotoPDFGenerator(cabinet config.CabinetConfig) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{cabinet: cabinet}
}

// GenerateFacturePDF genera el PDF y devuelve sus bytes. f.Client debe venir cargado.
func (g *MarotoPDFGenerator) GenerateFacturePDF(_ context.Context, f *entity.Facture) ([]byte, error) {
	if f.Client == nil {
		return nil, fmt.Errorf("pdf: factura %s sin cliente", f.NumeroComplet)
	}

	cfg := mconfig.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Facture "+f.NumeroComplet, true).
		WithAuthor(g.cabinet.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(f))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(f.Client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(prestationRow(f))

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(f))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(f)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: cabinet + SIRET (izq) y número + fecha (der).
func (g *MarotoPDFGenerator) headerRow(f *entity.Facture) core.Row {
	emitter := []core.Component{
		text.New(g.cabinet.Name, props.Text{
			Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
		}),
	}
	var details []string
	if g.cabinet.Address != "" {
		details = append(details, g.cabinet.Address)
	}
	if g.cabinet.Siret != "" {
		details = append(details, "SIRET : "+g.cabinet.Siret)
	}
	if g.cabinet.Email != "" {
		details = append(details, g.cabinet.Email)
	}
	if len(details) > 0 {
		emitter = append(emitter, text.New(strings.Join(details, "   |   "), props.Text{
			Size: 8, Top: 9, Color: colorGray,
		}))
	}

	return row.New(20).Add(
		col.New(7).Add(emitter...),
		col.New(5).Add(
			text.New("FACTURE", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(f.NumeroComplet, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Date : "+f.CreatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// clientRow: destinatario de la factura.
func clientRow(c *entity.Client) core.Row {
	info := "Dossier : " + c.NumDossier
	if c.Siret != "" {
		info += "   |   SIRET : " + c.Siret
	}
	return row.New(20).Add(
		col.New(12).Add(
			text.New("FACTURÉ À", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(c.RaisonSociale, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(info, props.Text{Size: 8, Top: 12, Color: colorGray}),
			text.New(nonEmpty(c.Adresse, "—"), props.Text{Size: 8, Top: 16, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de prestaciones.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Prestation", 9, align.Left),
		h("Montant HT", 3, align.Right),
	)
}

// prestationRow: una única línea por factura.
func prestationRow(f *entity.Facture) core.Row {
	return row.New(10).Add(
		col.New(9).Add(text.New(f.Prestation, props.Text{Size: 9, Align: align.Left, Top: 2, Left: 1})),
		col.New(3).Add(text.New(formatEuros(f.MontantHT), props.Text{Size: 9, Align: align.Right, Top: 2, Right: 1})),
	)
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(f *entity.Facture) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	grandLabel := text.New("Total TTC :", props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 13,
	})
	grandValue := text.New(formatEuros(f.MontantTTC), props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 13,
	})

	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Total HT :", 1),
			label(fmt.Sprintf("TVA (%s %%) :", formatRate(f.TauxTVA)), 7),
			grandLabel,
		),
		col.New(3).Add(
			value(formatEuros(f.MontantHT), 1),
			value(formatEuros(f.MontantTVA), 7),
			grandValue,
		),
	)
}

// footerRows: QR del enlace de pago (si existe) y mentions légales.
func footerRows(f *entity.Facture) []core.Row {
	var rows []core.Row
	if f.StripePaymentLink != "" {
		rows = append(rows, row.New(40).Add(
			col.New(3).Add(code.NewQr(f.StripePaymentLink, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("Paiement en ligne", props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 6, Left: 3, Color: colorPrimary,
				}),
				text.New("Scannez le QR code ou ouvrez le lien :", props.Text{
					Size: 8, Top: 14, Left: 3, Color: colorGray,
				}),
				text.New(f.StripePaymentLink, props.Text{Size: 7, Top: 19, Left: 3}),
			),
		))
	}

	rows = append(rows, row.New(12).Add(col.New(12).Add(
		text.New(
			"En cas de retard de paiement, une pénalité égale à trois fois le taux d'intérêt légal "+
				"ainsi qu'une indemnité forfaitaire de 40 € pour frais de recouvrement seront exigibles "+
				"(art. L441-10 du Code de commerce).",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

var frPrinter = message.NewPrinter(language.French)

// spaceNormalizer: Helvetica no tiene los espacios finos que usa el formato francés.
var spaceNormalizer = strings.NewReplacer("\u202f", " ", "\u00a0", " ")

// formatEuros "1234.5" → "1 234,50 €".
func formatEuros(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	s := frPrinter.Sprint(number.Decimal(f, number.Scale(2)))
	return spaceNormalizer.Replace(s) + " €"
}

// formatRate "20" → "20", "5.5" → "5,5".
func formatRate(d decimal.Decimal) string {
	return strings.Replace(d.String(), ".", ",", 1)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
