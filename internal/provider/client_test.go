package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bank-sync-backend/internal/credentials"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCred() credentials.Credential {
	return credentials.Credential{AccessToken: "token-1", TenantID: "tenant-1", ExpiresAt: time.Now().Add(time.Hour)}
}

func TestListTransactionsRequestShape(t *testing.T) {
	var gotAuth, gotTenant, gotWhere, gotPage, gotOrder string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTenant = r.Header.Get("X-Tenant-Id")
		gotWhere = r.URL.Query().Get("where")
		gotPage = r.URL.Query().Get("page")
		gotOrder = r.URL.Query().Get("order")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bankTransactions":[{"transactionId":"t1","type":"SPEND","date":"2024-03-14","total":12.5,"bankAccount":{"accountId":"acc-1","name":"The Forest"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())
	records, err := client.ListTransactions(context.Background(), testCred(), `BankAccount.AccountID == Guid("acc-1")`, 3)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "t1", records[0].ID)
	assert.Equal(t, "acc-1", records[0].BankAccount.ID)
	assert.Equal(t, "Bearer token-1", gotAuth)
	assert.Equal(t, "tenant-1", gotTenant)
	assert.Equal(t, `BankAccount.AccountID == Guid("acc-1")`, gotWhere)
	assert.Equal(t, "3", gotPage)
	assert.Equal(t, "Date ASC", gotOrder)
}

func TestListTransactionsOmitsEmptyFilter(t *testing.T) {
	var hasWhere bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasWhere = r.URL.Query().Has("where")
		w.Write([]byte(`{"bankTransactions":[]}`))
	}))
	defer srv.Close()

	records, err := NewClient(srv.URL, zap.NewNop()).ListTransactions(context.Background(), testCred(), "", 1)

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.False(t, hasWhere)
}

func TestListTransactionsUpstreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, zap.NewNop()).ListTransactions(context.Background(), testCred(), "", 1)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "rate limited")
}

func TestListTransactionsMalformedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bankTransactions": [{`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, zap.NewNop()).ListTransactions(context.Background(), testCred(), "", 1)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, upstream.Body, "malformed response")
}

func TestListAccounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `Type=="BANK"`, r.URL.Query().Get("where"))
		w.Write([]byte(`{"accounts":[{"accountId":"acc-1","name":"The Forest","code":"090","type":"BANK","status":"ACTIVE","currencyCode":"GBP"}]}`))
	}))
	defer srv.Close()

	accounts, err := NewClient(srv.URL, zap.NewNop()).ListAccounts(context.Background(), testCred())

	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "acc-1", accounts[0].ID)
	assert.Equal(t, "GBP", accounts[0].CurrencyCode)
}

func TestParsedDate(t *testing.T) {
	d, ok := Transaction{Date: "2024-03-14"}.ParsedDate()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), d)

	_, ok = Transaction{Date: "14/03/2024"}.ParsedDate()
	assert.False(t, ok)
}
