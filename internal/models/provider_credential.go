package models

import "time"

// ProviderCredential is the single stored token set for the connected
// organisation. Concurrent refreshes may race; the latest saved row wins and a
// stale token is simply rejected upstream, which triggers another refresh.
type ProviderCredential struct {
	ID           uint `gorm:"primaryKey"`
	AccessToken  string
	RefreshToken string
	TenantID     string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}
