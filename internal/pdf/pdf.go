// Package pdf renders invoices as PDF documents using maroto.
package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// InvoiceData is the structured input of the renderer. Company settings are
// passed in explicitly; the renderer reads no ambient state.
type InvoiceData struct {
	InvoiceNumber string
	Kind          string
	IssueDate     string
	DueDate       string

	InterventionRef         string
	InterventionDate        string
	InterventionDescription string

	Items []InvoiceItem

	SubtotalHT float64
	TotalTVA   float64
	TotalTTC   float64
	Notes      string

	Client  ClientData
	Company CompanyData
}

type InvoiceItem struct {
	Description string
	Quantity    float64
	UnitPrice   float64
	TaxRate     float64
	Total       float64
}

type ClientData struct {
	Name    string
	Address string
	Email   string
}

type CompanyData struct {
	Name            string
	SIRET           string
	TVAIntra        string
	Address         string
	Email           string
	IBAN            string
	MentionsLegales string
}

// Renderer produces invoice PDFs. Zero value is usable.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// RenderInvoice builds the invoice document and returns its bytes.
func (r *Renderer) RenderInvoice(data InvoiceData) ([]byte, error) {
	cfg := config.NewBuilder().Build()
	m := maroto.New(cfg)

	title := "FACTURE"
	if data.Kind == "proforma" {
		title = "FACTURE PROFORMA"
	}
	m.AddRow(10,
		text.NewCol(8, data.Company.Name, props.Text{Size: 14, Style: fontstyle.Bold}),
		text.NewCol(4, title, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(5,
		text.NewCol(8, data.Company.Address, props.Text{Size: 9}),
		text.NewCol(4, "N° "+data.InvoiceNumber, props.Text{Size: 10, Align: align.Right}),
	)
	m.AddRow(5,
		text.NewCol(8, "SIRET "+data.Company.SIRET, props.Text{Size: 9}),
		text.NewCol(4, "Date : "+data.IssueDate, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(5,
		text.NewCol(8, data.Company.Email, props.Text{Size: 9}),
		text.NewCol(4, "Échéance : "+data.DueDate, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8, line.NewCol(12))

	m.AddRow(6, text.NewCol(12, "Client : "+data.Client.Name, props.Text{Size: 10, Style: fontstyle.Bold}))
	if data.Client.Address != "" {
		m.AddRow(5, text.NewCol(12, data.Client.Address, props.Text{Size: 9}))
	}
	if data.InterventionRef != "" {
		m.AddRow(5, text.NewCol(12, fmt.Sprintf("Intervention %s du %s", data.InterventionRef, data.InterventionDate), props.Text{Size: 9}))
	}
	if data.InterventionDescription != "" {
		m.AddRow(5, text.NewCol(12, data.InterventionDescription, props.Text{Size: 9}))
	}

	// Item table
	m.AddRow(7,
		text.NewCol(6, "Désignation", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, "Qté", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "PU HT", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(1, "TVA", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(1, "Total HT", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))
	for _, it := range data.Items {
		m.AddRow(6,
			text.NewCol(6, it.Description, props.Text{Size: 9}),
			text.NewCol(2, formatQty(it.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatAmount(it.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, formatRate(it.TaxRate), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, formatAmount(it.Total), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(4, line.NewCol(12))

	m.AddRow(6,
		col.New(8),
		text.NewCol(2, "Total HT", props.Text{Size: 9, Align: align.Right}),
		text.NewCol(2, formatAmount(data.SubtotalHT)+" €", props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(6,
		col.New(8),
		text.NewCol(2, "Total TVA", props.Text{Size: 9, Align: align.Right}),
		text.NewCol(2, formatAmount(data.TotalTVA)+" €", props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(7,
		col.New(8),
		text.NewCol(2, "Total TTC", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, formatAmount(data.TotalTTC)+" €", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)

	if data.Notes != "" {
		m.AddRow(8, text.NewCol(12, data.Notes, props.Text{Size: 8}))
	}
	if data.Company.IBAN != "" {
		m.AddRow(6, text.NewCol(12, "Règlement par virement : "+data.Company.IBAN, props.Text{Size: 8}))
	}
	if data.Company.TVAIntra != "" {
		m.AddRow(5, text.NewCol(12, "TVA intracommunautaire : "+data.Company.TVAIntra, props.Text{Size: 8}))
	}
	if data.Company.MentionsLegales != "" {
		m.AddRow(8, text.NewCol(12, data.Company.MentionsLegales, props.Text{Size: 7}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func formatAmount(v float64) string { return fmt.Sprintf("%.2f", v) }

func formatQty(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func formatRate(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d%%", int64(v))
	}
	return fmt.Sprintf("%.1f%%", v)
}
