// Package syncer implements the paginated fetch-and-reconcile engine and the
// sync orchestration around it.
package syncer

import (
	"context"
	"sort"
	"strings"
	"time"

	"bank-sync-backend/internal/credentials"
	"bank-sync-backend/internal/models"
	"bank-sync-backend/internal/provider"
	"bank-sync-backend/internal/services/resolver"

	"go.uber.org/zap"
)

const (
	// maxPages caps a filtered walk. A page with zero records is the only
	// trusted terminator; short pages are not, the upstream returns short
	// pages that are not the last page.
	maxPages = 50
	// maxDiagnosticPages caps the unfiltered fallback fetch, which only
	// exists to explain an empty filtered result.
	maxDiagnosticPages = 10
)

// TransactionSource is the provider surface the engine needs.
type TransactionSource interface {
	ListTransactions(ctx context.Context, cred credentials.Credential, filter string, page int) ([]provider.Transaction, error)
	ListAccounts(ctx context.Context, cred credentials.Credential) ([]provider.AccountRecord, error)
}

// CredentialSource supplies a non-expired credential, refreshing as needed.
type CredentialSource interface {
	Valid(ctx context.Context) (credentials.Credential, error)
}

// FetchResult is the outcome of one account/range fetch. Raw keeps the records
// that survived account and date filtering (pre-dedup) for the period batch;
// Lines is the deduplicated, normalized set.
type FetchResult struct {
	Lines []models.StatementLine
	Raw   []provider.Transaction
}

type Engine struct {
	source TransactionSource
	creds  CredentialSource
	log    *zap.Logger
}

func NewEngine(source TransactionSource, creds CredentialSource, log *zap.Logger) *Engine {
	return &Engine{source: source, creds: creds, log: log}
}

// FetchTransactions produces the complete deduplicated line set for one account
// over one inclusive calendar-day range. It never writes the store; the caller
// decides what to persist. Server-side filtering is attempted but never
// trusted: every record is re-checked client-side.
func (e *Engine) FetchTransactions(ctx context.Context, account models.Account, from, to time.Time) (*FetchResult, error) {
	cred, err := e.creds.Valid(ctx)
	if err != nil {
		return nil, err
	}

	var fetched []provider.Transaction
	strategyUsed := ""
	for _, st := range filterStrategies {
		records, err := e.fetchAllPages(ctx, cred, st.Build(account.ID, from, to), maxPages)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			fetched = records
			strategyUsed = st.Name
			break
		}
	}

	if len(fetched) == 0 {
		// A quiet account and a broken filter look identical from here. Pull a
		// capped unfiltered window purely so an operator can tell them apart in
		// the logs; the diagnostic records never populate the response.
		e.logEmptyDiagnostics(ctx, cred, account)
	}

	target := resolver.Target{ID: account.ID, Name: account.Name, Code: account.Code}
	seen := make(map[string]struct{}, len(fetched))
	result := &FetchResult{}
	matched, inRange := 0, 0
	for _, rec := range fetched {
		embedded := resolver.Embedded{ID: rec.BankAccount.ID, Name: rec.BankAccount.Name, Code: rec.BankAccount.Code}
		if _, ok := resolver.Match(target, embedded); !ok {
			continue
		}
		matched++
		date, ok := rec.ParsedDate()
		if !ok || date.Before(from) || date.After(to) {
			continue
		}
		inRange++
		result.Raw = append(result.Raw, rec)
		line := normalizeLine(account.ID, rec, date)
		key := naturalKey(line)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result.Lines = append(result.Lines, line)
	}

	e.log.Info("account fetch complete",
		zap.String("account_id", account.ID),
		zap.String("strategy", strategyUsed),
		zap.Int("fetched", len(fetched)),
		zap.Int("matched", matched),
		zap.Int("in_range", inRange),
		zap.Int("deduped", len(result.Lines)))
	return result, nil
}

func (e *Engine) fetchAllPages(ctx context.Context, cred credentials.Credential, filter string, ceiling int) ([]provider.Transaction, error) {
	var all []provider.Transaction
	for page := 1; page <= ceiling; page++ {
		records, err := e.source.ListTransactions(ctx, cred, filter, page)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			break
		}
		all = append(all, records...)
	}
	return all, nil
}

func (e *Engine) logEmptyDiagnostics(ctx context.Context, cred credentials.Credential, account models.Account) {
	diag, err := e.fetchAllPages(ctx, cred, "", maxDiagnosticPages)
	if err != nil {
		e.log.Warn("diagnostic fetch failed",
			zap.String("account_id", account.ID),
			zap.Error(err))
		return
	}
	target := resolver.Target{ID: account.ID, Name: account.Name, Code: account.Code}
	matching := 0
	names := make(map[string]struct{})
	for _, rec := range diag {
		names[rec.BankAccount.Name] = struct{}{}
		embedded := resolver.Embedded{ID: rec.BankAccount.ID, Name: rec.BankAccount.Name, Code: rec.BankAccount.Code}
		if _, ok := resolver.Match(target, embedded); ok {
			matching++
		}
	}
	e.log.Info("filtered fetch returned no records",
		zap.String("account_id", account.ID),
		zap.String("account_name", account.Name),
		zap.Int("diagnostic_total", len(diag)),
		zap.Int("diagnostic_matching", matching),
		zap.Strings("diagnostic_account_names", sortedKeys(names)))
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// naturalKey joins the dedup tuple; identical tuples are the same underlying
// transaction no matter how many times pagination or retries surfaced them.
func naturalKey(line models.StatementLine) string {
	return strings.Join([]string{
		line.AccountID,
		line.StatementDate.Format("2006-01-02"),
		line.Description,
		line.Reference,
		line.Spent,
		line.Received,
		line.Balance,
	}, "|")
}
