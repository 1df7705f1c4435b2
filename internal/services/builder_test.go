package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ecron24/delmas-app-sub000/internal/models"
)

func TestBuildFromIntervention(t *testing.T) {
	db := setupTestDB(t)
	client, iv := seedBillingFixtures(t, db)
	b := NewInvoiceBuilder(db)

	res, err := b.BuildFromIntervention(iv.ID)
	if err != nil {
		t.Fatalf("BuildFromIntervention: %v", err)
	}
	if !res.Created {
		t.Fatal("expected Created=true on first build")
	}
	inv := res.Invoice
	if inv.Kind != models.InvoiceKindProforma || inv.Status != models.InvoiceStatusDraft {
		t.Errorf("kind/status = %s/%s, want proforma/draft", inv.Kind, inv.Status)
	}
	wantNumber := fmt.Sprintf("PRO-%d-0001", time.Now().Year())
	if inv.Number != wantNumber {
		t.Errorf("number = %s, want %s", inv.Number, wantNumber)
	}
	if inv.ClientID != client.ID {
		t.Errorf("client_id = %d, want %d", inv.ClientID, client.ID)
	}
	if inv.LaborHours != 2 || inv.LaborRate != 45 || inv.TravelFee != 20 {
		t.Errorf("snapshot = %v/%v/%v, want 2/45/20", inv.LaborHours, inv.LaborRate, inv.TravelFee)
	}
	if len(inv.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(inv.Items))
	}
	// Item without a recorded rate gets the company default.
	if inv.Items[0].TaxRate != 10 {
		t.Errorf("item[0] rate = %v, want 10", inv.Items[0].TaxRate)
	}
	if inv.Items[1].TaxRate != 20 {
		t.Errorf("item[1] rate = %v, want default 20", inv.Items[1].TaxRate)
	}
	// labor 90 + travel 20 + 28 + 60 = 198 HT; TVA 18 + 4 + 2.8 + 12 = 36.8
	if !almostEqual(inv.SubtotalHT, 198) || !almostEqual(inv.TotalTVA, 36.8) || !almostEqual(inv.TotalTTC, 234.8) {
		t.Errorf("totals = %v/%v/%v, want 198/36.8/234.8", inv.SubtotalHT, inv.TotalTVA, inv.TotalTTC)
	}
	wantDue := inv.IssueDate.AddDate(0, 0, 30)
	if !inv.DueDate.Equal(wantDue) {
		t.Errorf("due date = %v, want %v", inv.DueDate, wantDue)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	_, iv := seedBillingFixtures(t, db)
	b := NewInvoiceBuilder(db)

	first, err := b.BuildFromIntervention(iv.ID)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := b.BuildFromIntervention(iv.ID)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if second.Created {
		t.Error("expected Created=false on repeat build")
	}
	if second.Invoice.ID != first.Invoice.ID {
		t.Errorf("repeat build returned invoice %d, want %d", second.Invoice.ID, first.Invoice.ID)
	}
	var count int64
	db.Model(&models.Invoice{}).Count(&count)
	if count != 1 {
		t.Errorf("invoice rows = %d, want 1", count)
	}
}

func TestBuildRequiresCompletedIntervention(t *testing.T) {
	db := setupTestDB(t)
	client, _ := seedBillingFixtures(t, db)
	b := NewInvoiceBuilder(db)

	pending := models.Intervention{Status: models.InterventionScheduled, ClientID: client.ID, ScheduledAt: time.Now()}
	if err := db.Create(&pending).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := b.BuildFromIntervention(pending.ID)
	if !errors.Is(err, ErrNotBillable) {
		t.Fatalf("expected ErrNotBillable, got %v", err)
	}
}

func TestBuildMissingIntervention(t *testing.T) {
	db := setupTestDB(t)
	b := NewInvoiceBuilder(db)
	_, err := b.BuildFromIntervention(9999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
