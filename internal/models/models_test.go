package models

import (
	"math"
	"testing"
)

func TestInvoiceCanEdit(t *testing.T) {
	cases := []struct {
		kind   InvoiceKind
		status InvoiceStatus
		want   bool
	}{
		{InvoiceKindProforma, InvoiceStatusDraft, true},
		{InvoiceKindProforma, InvoiceStatusSent, false},
		{InvoiceKindFinal, InvoiceStatusDraft, false},
		{InvoiceKindFinal, InvoiceStatusValidated, false},
		{InvoiceKindFinal, InvoiceStatusSent, false},
		{InvoiceKindFinal, InvoiceStatusPaid, false},
	}
	for _, c := range cases {
		inv := Invoice{Kind: c.kind, Status: c.status}
		if got := inv.CanEdit(); got != c.want {
			t.Errorf("CanEdit(%s, %s) = %v, want %v", c.kind, c.status, got, c.want)
		}
	}
}

func TestInvoiceIsFinal(t *testing.T) {
	if (&Invoice{Kind: InvoiceKindProforma}).IsFinal() {
		t.Error("proforma reported final")
	}
	if !(&Invoice{Kind: InvoiceKindFinal}).IsFinal() {
		t.Error("final invoice not reported final")
	}
}

func TestInvoiceItemTotals(t *testing.T) {
	cases := []struct {
		name     string
		item     InvoiceItem
		wantHT   float64
		wantTVA  float64
	}{
		{"reduced rate", InvoiceItem{Quantity: 2, UnitPrice: 14, TaxRate: 10}, 28, 2.8},
		{"standard rate", InvoiceItem{Quantity: 1, UnitPrice: 60, TaxRate: 20}, 60, 12},
		{"zero rate", InvoiceItem{Quantity: 3, UnitPrice: 10}, 30, 0},
		{"fractional quantity", InvoiceItem{Quantity: 1.5, UnitPrice: 40, TaxRate: 5.5}, 60, 3.3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.item.TotalHT(); math.Abs(got-c.wantHT) > 1e-9 {
				t.Errorf("TotalHT = %v, want %v", got, c.wantHT)
			}
			if got := c.item.TotalTVA(); math.Abs(got-c.wantTVA) > 1e-9 {
				t.Errorf("TotalTVA = %v, want %v", got, c.wantTVA)
			}
		})
	}
}
