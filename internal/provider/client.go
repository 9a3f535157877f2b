// Package provider is the REST client for the accounting provider's paginated
// transaction and account endpoints.
package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bank-sync-backend/internal/credentials"

	"go.uber.org/zap"
)

// maxBodyBytes caps how much of a response is read; provider pages are small.
const maxBodyBytes = 1 << 20

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// ListTransactions fetches one page of bank transactions, optionally narrowed
// by a filter expression. Sort order is fixed to date ascending so pagination
// is stable across pages.
func (c *Client) ListTransactions(ctx context.Context, cred credentials.Credential, filter string, page int) ([]Transaction, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("order", "Date ASC")
	if filter != "" {
		q.Set("where", filter)
	}
	var out struct {
		BankTransactions []Transaction `json:"bankTransactions"`
	}
	if err := c.get(ctx, cred, "/banktransactions", q, &out); err != nil {
		return nil, err
	}
	return out.BankTransactions, nil
}

// ListAccounts fetches all bank accounts visible to the connected tenant.
func (c *Client) ListAccounts(ctx context.Context, cred credentials.Credential) ([]AccountRecord, error) {
	q := url.Values{}
	q.Set("where", `Type=="BANK"`)
	var out struct {
		Accounts []AccountRecord `json:"accounts"`
	}
	if err := c.get(ctx, cred, "/accounts", q, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

func (c *Client) get(ctx context.Context, cred credentials.Credential, path string, q url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("X-Tenant-Id", cred.TenantID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{StatusCode: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &UpstreamError{StatusCode: resp.StatusCode, Body: "read body: " + err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("provider request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{StatusCode: resp.StatusCode, Body: "malformed response: " + err.Error()}
	}
	return nil
}
