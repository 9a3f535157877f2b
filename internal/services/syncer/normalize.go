package syncer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"bank-sync-backend/internal/models"
	"bank-sync-backend/internal/provider"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const lineSource = "banktransactions"

// creditTypes are receipt-like type tags treated as money in regardless of the
// raw numeric sign on the record.
var creditTypes = map[string]bool{
	"RECEIVE":             true,
	"RECEIVE-PREPAYMENT":  true,
	"RECEIVE-OVERPAYMENT": true,
	"RECEIVE-TRANSFER":    true,
}

// normalizeLine converts a raw provider record into a statement line for the
// given account and statement date. The spent/received/balance fields are fixed
// two-decimal strings because they participate in the natural dedup key and
// must be byte-stable across re-fetches.
func normalizeLine(accountID string, rec provider.Transaction, date time.Time) models.StatementLine {
	amount := math.Abs(rec.Total)
	line := models.StatementLine{
		ID:            uuid.New(),
		AccountID:     accountID,
		StatementDate: date,
		Description:   describe(rec),
		Reference:     rec.Reference,
		PaymentRef:    rec.ID,
		Source:        lineSource,
		Status:        strings.ToLower(rec.Status),
		CreatedAt:     time.Now().UTC(),
	}
	if creditTypes[strings.ToUpper(rec.Type)] {
		line.Received = fmt.Sprintf("%.2f", amount)
	} else {
		line.Spent = fmt.Sprintf("%.2f", amount)
	}
	if rec.RunningBalance != nil {
		line.Balance = fmt.Sprintf("%.2f", *rec.RunningBalance)
	}
	return line
}

// describe falls through reference -> first line item -> type tag -> a generic
// placeholder when the provider gives nothing usable.
func describe(rec provider.Transaction) string {
	if ref := strings.TrimSpace(rec.Reference); ref != "" {
		return ref
	}
	for _, item := range rec.LineItems {
		if desc := strings.TrimSpace(item.Description); desc != "" {
			return desc
		}
	}
	if t := strings.TrimSpace(rec.Type); t != "" {
		return t
	}
	return "Bank transaction"
}

var displayPrinter = message.NewPrinter(language.BritishEnglish)

// DisplayAmount renders a signed, locale-formatted amount for presentation,
// e.g. "GBP 1,234.50" or "-GBP 87.20". Never part of the stored row.
func DisplayAmount(line models.StatementLine, currencyCode string) string {
	if currencyCode == "" {
		currencyCode = "GBP"
	}
	if line.Received != "" {
		v, _ := strconv.ParseFloat(line.Received, 64)
		return displayPrinter.Sprintf("%s %.2f", currencyCode, v)
	}
	v, _ := strconv.ParseFloat(line.Spent, 64)
	return displayPrinter.Sprintf("-%s %.2f", currencyCode, v)
}
