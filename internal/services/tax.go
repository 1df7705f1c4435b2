package services

import (
	"math"

	"github.com/ecron24/delmas-app-sub000/internal/models"
)

// StandardTaxRate is the percentage always applied to labor and travel,
// regardless of per-item configuration.
const StandardTaxRate = 20.0

// TaxLine is the HT/TVA contribution of one block of the invoice.
type TaxLine struct {
	HT  float64 `json:"ht"`
	TVA float64 `json:"tva"`
}

// TaxBreakdown is the full HT/TVA/TTC decomposition of an invoice. It is
// the single source of truth written back to the invoice header on save.
type TaxBreakdown struct {
	Labor  TaxLine `json:"labor"`
	Travel TaxLine `json:"travel"`
	Items  TaxLine `json:"items"`

	SubtotalHT float64 `json:"subtotal_ht"`
	TotalTVA   float64 `json:"total_tva"`
	TotalTTC   float64 `json:"total_ttc"`
}

// ComputeTotals computes the tax breakdown from an intervention's labor and
// travel figures plus its priced line items. Pure and side-effect free; it
// must be re-invoked on every edit. No rounding happens here — only the
// persisted/displayed header totals go through Round2.
func ComputeTotals(laborHours, laborRate, travelFee float64, items []models.InvoiceItem) TaxBreakdown {
	var b TaxBreakdown
	b.Labor.HT = laborHours * laborRate
	b.Labor.TVA = b.Labor.HT * StandardTaxRate / 100
	b.Travel.HT = travelFee
	b.Travel.TVA = b.Travel.HT * StandardTaxRate / 100
	for _, it := range items {
		rate := it.TaxRate
		if rate < 0 {
			rate = 0
		}
		lineHT := it.Quantity * it.UnitPrice
		b.Items.HT += lineHT
		b.Items.TVA += lineHT * rate / 100
	}
	b.SubtotalHT = b.Labor.HT + b.Travel.HT + b.Items.HT
	b.TotalTVA = b.Labor.TVA + b.Travel.TVA + b.Items.TVA
	b.TotalTTC = b.SubtotalHT + b.TotalTVA
	return b
}

// Round2 rounds a monetary amount to 2 decimals for display/persistence.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
