package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ecron24/delmas-app-sub000/internal/models"

	"gorm.io/gorm"
)

// Invoice number prefixes. Proforma and final invoices run separate
// sequences within each year.
const (
	PrefixProforma = "PRO"
	PrefixFinal    = "FAC"
)

// numberAssignRetries bounds the constraint-retry loop. Each retry re-reads
// the current maximum, so a loss in the race costs one round trip.
const numberAssignRetries = 5

func numberPrefix(kind models.InvoiceKind) string {
	if kind == models.InvoiceKindFinal {
		return PrefixFinal
	}
	return PrefixProforma
}

// NextInvoiceNumber reads the greatest existing number of the (year, kind)
// partition and returns its successor, zero-padded to 4 digits
// (e.g. FAC-2026-0012). First number of a partition is 0001.
//
// On its own this is read-then-increment and therefore racy; callers must
// go through assignNumberWithRetry so the unique index on invoices.number
// arbitrates concurrent invocations.
func NextInvoiceNumber(tx *gorm.DB, kind models.InvoiceKind, year int) (string, error) {
	prefix := numberPrefix(kind)
	pattern := fmt.Sprintf("%s-%d-%%", prefix, year)
	var last string
	err := tx.Model(&models.Invoice{}).
		Where("number LIKE ?", pattern).
		Select("number").
		Order("number desc").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}
	n := 0
	if last != "" {
		parts := strings.Split(last, "-")
		seq, perr := strconv.Atoi(parts[len(parts)-1])
		if perr != nil {
			return "", fmt.Errorf("malformed invoice number %q: %w", last, perr)
		}
		n = seq
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, n+1), nil
}

// assignNumberWithRetry runs assign with a fresh candidate number until the
// unique constraint stops complaining, up to numberAssignRetries attempts.
// assign receives the transaction it must persist the number in; a
// gorm.ErrDuplicatedKey result triggers a re-read and a new attempt.
func assignNumberWithRetry(db *gorm.DB, kind models.InvoiceKind, year int, assign func(tx *gorm.DB, number string) error) (string, error) {
	var lastErr error
	for attempt := 0; attempt < numberAssignRetries; attempt++ {
		var number string
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			number, err = NextInvoiceNumber(tx, kind, year)
			if err != nil {
				return err
			}
			return assign(tx, number)
		})
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("%w: %v", ErrNumberCollision, lastErr)
}
