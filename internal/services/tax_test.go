package services

import (
	"testing"

	"github.com/ecron24/delmas-app-sub000/internal/models"
)

const eps = 0.01

func almostEqual(a, b float64) bool {
	diff := a - b
	return diff < eps && diff > -eps
}

func TestComputeTotalsPoolJob(t *testing.T) {
	// 2h at 45€/h, 20€ travel, one product line at 10% TVA.
	items := []models.InvoiceItem{
		{Description: "Chlore choc", Quantity: 1, UnitPrice: 28, TaxRate: 10},
	}
	b := ComputeTotals(2, 45, 20, items)

	if !almostEqual(b.Labor.HT, 90) || !almostEqual(b.Labor.TVA, 18) {
		t.Errorf("labor = %+v, want HT=90 TVA=18", b.Labor)
	}
	if !almostEqual(b.Travel.HT, 20) || !almostEqual(b.Travel.TVA, 4) {
		t.Errorf("travel = %+v, want HT=20 TVA=4", b.Travel)
	}
	if !almostEqual(b.Items.HT, 28) || !almostEqual(b.Items.TVA, 2.8) {
		t.Errorf("items = %+v, want HT=28 TVA=2.8", b.Items)
	}
	if !almostEqual(b.SubtotalHT, 138) {
		t.Errorf("SubtotalHT = %f, want 138", b.SubtotalHT)
	}
	if !almostEqual(b.TotalTVA, 24.8) {
		t.Errorf("TotalTVA = %f, want 24.8", b.TotalTVA)
	}
	if !almostEqual(b.TotalTTC, 162.8) {
		t.Errorf("TotalTTC = %f, want 162.8", b.TotalTTC)
	}
}

func TestComputeTotalsPerLineRates(t *testing.T) {
	tests := []struct {
		name    string
		hours   float64
		rate    float64
		travel  float64
		items   []models.InvoiceItem
		wantHT  float64
		wantTVA float64
	}{
		{"no items", 1, 50, 0, nil, 50, 10},
		{"zero rate item", 0, 0, 0, []models.InvoiceItem{{Quantity: 2, UnitPrice: 10, TaxRate: 0}}, 20, 0},
		{"reduced rate 5.5", 0, 0, 0, []models.InvoiceItem{{Quantity: 1, UnitPrice: 200, TaxRate: 5.5}}, 200, 11},
		{"mixed rates", 0, 0, 0, []models.InvoiceItem{
			{Quantity: 1, UnitPrice: 100, TaxRate: 20},
			{Quantity: 1, UnitPrice: 100, TaxRate: 10},
			{Quantity: 1, UnitPrice: 100, TaxRate: 5.5},
		}, 300, 35.5},
		{"arbitrary rate", 0, 0, 0, []models.InvoiceItem{{Quantity: 1, UnitPrice: 100, TaxRate: 8.3}}, 100, 8.3},
		{"negative rate clamped", 0, 0, 0, []models.InvoiceItem{{Quantity: 1, UnitPrice: 100, TaxRate: -5}}, 100, 0},
		{"travel only", 0, 0, 35, nil, 35, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeTotals(tt.hours, tt.rate, tt.travel, tt.items)
			if !almostEqual(b.SubtotalHT, tt.wantHT) {
				t.Errorf("SubtotalHT = %f, want %f", b.SubtotalHT, tt.wantHT)
			}
			if !almostEqual(b.TotalTVA, tt.wantTVA) {
				t.Errorf("TotalTVA = %f, want %f", b.TotalTVA, tt.wantTVA)
			}
			// Invariant: TTC is always the sum of HT and TVA.
			if !almostEqual(b.TotalTTC, b.SubtotalHT+b.TotalTVA) {
				t.Errorf("TotalTTC = %f, want SubtotalHT+TotalTVA = %f", b.TotalTTC, b.SubtotalHT+b.TotalTVA)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{162.8000000001, 162.8},
		{24.804, 24.8},
		{24.806, 24.81},
		{0, 0},
	}
	for _, tt := range tests {
		got := Round2(tt.in)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Round2(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}
