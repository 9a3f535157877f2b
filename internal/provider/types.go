package provider

import "time"

// providerDateLayout is the calendar-date format the API uses.
const providerDateLayout = "2006-01-02"

// BankAccountRef is the account embedded on each transaction record. The id
// here is not guaranteed to match the id the fetch was filtered by, which is
// why matching happens client-side.
type BankAccountRef struct {
	ID   string `json:"accountId"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"lineAmount"`
}

// Transaction is one raw bank transaction record as returned by the provider.
type Transaction struct {
	ID             string         `json:"transactionId"`
	Type           string         `json:"type"`
	Status         string         `json:"status"`
	Date           string         `json:"date"`
	Reference      string         `json:"reference"`
	IsReconciled   bool           `json:"isReconciled"`
	Total          float64        `json:"total"`
	RunningBalance *float64       `json:"runningBalance,omitempty"`
	CurrencyCode   string         `json:"currencyCode"`
	BankAccount    BankAccountRef `json:"bankAccount"`
	LineItems      []LineItem     `json:"lineItems"`
}

// ParsedDate returns the statement date at calendar-day granularity.
func (t Transaction) ParsedDate() (time.Time, bool) {
	d, err := time.Parse(providerDateLayout, t.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// AccountRecord is a bank account as listed by the provider accounts endpoint.
type AccountRecord struct {
	ID           string `json:"accountId"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	CurrencyCode string `json:"currencyCode"`
}
