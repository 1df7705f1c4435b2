package pdf

import (
	"bytes"
	"testing"
)

func TestRenderInvoiceProducesPDF(t *testing.T) {
	r := NewRenderer()
	doc, err := r.RenderInvoice(InvoiceData{
		InvoiceNumber: "FAC-2026-0001",
		Kind:          "final",
		IssueDate:     "01/03/2026",
		DueDate:       "31/03/2026",
		Items: []InvoiceItem{
			{Description: "Main d'œuvre (2h)", Quantity: 2, UnitPrice: 45, TaxRate: 20, Total: 90},
			{Description: "Chlore choc 5kg", Quantity: 1, UnitPrice: 28, TaxRate: 10, Total: 28},
		},
		SubtotalHT: 138,
		TotalTVA:   24.8,
		TotalTTC:   162.8,
		Client:     ClientData{Name: "Dupont & Fils", Address: "4 allée des Cyprès, 24000 Périgueux"},
		Company:    CompanyData{Name: "Piscines Delmas", SIRET: "123 456 789 00012", Email: "facturation@delmas.example"},
	})
	if err != nil {
		t.Fatalf("RenderInvoice: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF: %q", doc[:min(len(doc), 8)])
	}
	if len(doc) < 500 {
		t.Errorf("suspiciously small document: %d bytes", len(doc))
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatQty(2); got != "2" {
		t.Errorf("formatQty(2) = %s", got)
	}
	if got := formatQty(1.5); got != "1.50" {
		t.Errorf("formatQty(1.5) = %s", got)
	}
	if got := formatRate(20); got != "20%" {
		t.Errorf("formatRate(20) = %s", got)
	}
	if got := formatRate(5.5); got != "5.5%" {
		t.Errorf("formatRate(5.5) = %s", got)
	}
	if got := formatAmount(162.8); got != "162.80" {
		t.Errorf("formatAmount(162.8) = %s", got)
	}
}
