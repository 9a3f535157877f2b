// Package credentials owns the stored provider token set and refreshes it when
// it nears expiry.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bank-sync-backend/internal/models"
	"bank-sync-backend/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ErrRefreshFailed is fatal to a sync run: without a valid token nothing can be
// fetched.
var ErrRefreshFailed = errors.New("credential refresh failed")

// expiryBuffer treats a token as expired slightly early, so a request started
// just before the real expiry does not get rejected mid-flight.
const expiryBuffer = 60 * time.Second

// Credential is the capability handed to the fetch engine: a non-expired access
// token plus the tenant the organisation is connected under.
type Credential struct {
	AccessToken string
	TenantID    string
	ExpiresAt   time.Time
}

type Provider struct {
	repo *repository.CredentialRepository
	conf *oauth2.Config
	log  *zap.Logger

	mu sync.Mutex
}

func NewProvider(repo *repository.CredentialRepository, conf *oauth2.Config, log *zap.Logger) *Provider {
	return &Provider{repo: repo, conf: conf, log: log}
}

// Valid returns a usable credential, refreshing through the token endpoint
// first when the stored one has passed the buffered expiry.
func (p *Provider) Valid(ctx context.Context) (Credential, error) {
	row, err := p.repo.Get()
	if err != nil {
		return Credential{}, fmt.Errorf("load stored credential: %w", err)
	}
	if row == nil {
		return Credential{}, fmt.Errorf("%w: no credential on file, connect the organisation first", ErrRefreshFailed)
	}
	if !IsExpired(row.ExpiresAt) {
		return toCredential(row), nil
	}
	return p.refresh(ctx, row)
}

func (p *Provider) refresh(ctx context.Context, row *models.ProviderCredential) (Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Another caller may have refreshed while we waited on the lock.
	if fresh, err := p.repo.Get(); err == nil && fresh != nil && !IsExpired(fresh.ExpiresAt) {
		return toCredential(fresh), nil
	}

	src := p.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: row.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	row.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		row.RefreshToken = tok.RefreshToken
	}
	row.ExpiresAt = tok.Expiry
	if err := p.repo.Save(row); err != nil {
		return Credential{}, fmt.Errorf("%w: persist refreshed token: %v", ErrRefreshFailed, err)
	}

	p.log.Info("provider credential refreshed", zap.Time("expires_at", tok.Expiry))
	return toCredential(row), nil
}

// IsExpired reports whether a token with the given expiry should be refreshed,
// applying the safety buffer.
func IsExpired(expiresAt time.Time) bool {
	return !time.Now().Before(expiresAt.Add(-expiryBuffer))
}

func toCredential(row *models.ProviderCredential) Credential {
	return Credential{
		AccessToken: row.AccessToken,
		TenantID:    row.TenantID,
		ExpiresAt:   row.ExpiresAt,
	}
}
