package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	appdb "github.com/ecron24/delmas-app-sub000/internal/db"
	"github.com/ecron24/delmas-app-sub000/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := appdb.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedBillingFixtures creates a client and a completed intervention with two
// product lines, one of which has no recorded tax rate.
func seedBillingFixtures(t *testing.T, db *gorm.DB) (models.Client, models.Intervention) {
	t.Helper()
	client := models.Client{Nom: "Dupont & Fils", Email: "contact@dupont.example", AdresseLigne: "4 allée des Cyprès", CodePostal: "24000", Ville: "Périgueux"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	now := time.Now()
	iv := models.Intervention{
		Reference:   "INT-2026-042",
		Status:      models.InterventionCompleted,
		ScheduledAt: now.AddDate(0, 0, -2),
		CompletedAt: &now,
		ClientID:    client.ID,
		LaborHours:  2,
		LaborRate:   45,
		TravelFee:   20,
		Description: "Nettoyage du bassin et remplacement du filtre",
		Items: []models.InterventionItem{
			{ProductName: "Chlore choc 5kg", Quantity: 1, UnitPrice: 28, TaxRate: 10},
			{ProductName: "Filtre à sable", Quantity: 1, UnitPrice: 60},
		},
	}
	if err := db.Create(&iv).Error; err != nil {
		t.Fatalf("intervention: %v", err)
	}
	settings := models.CompanySettings{RaisonSociale: "Piscines Delmas", DefaultTaxRate: 20, PaymentDelayDays: 30, Email: "facturation@delmas.example"}
	if err := db.Create(&settings).Error; err != nil {
		t.Fatalf("settings: %v", err)
	}
	return client, iv
}
