package models

import (
	"database/sql"
	"time"
)

// ProviderCredential holds one team's access to one social network.
// Tokens are stored AES-GCM encrypted.
type ProviderCredential struct {
	ID             int64          `db:"id" json:"id"`
	TeamID         int64          `db:"team_id" json:"team_id"`
	Provider       string         `db:"provider" json:"provider"`
	AccessToken    string         `db:"access_token" json:"-"`
	RefreshToken   sql.NullString `db:"refresh_token" json:"-"`
	AccountID      sql.NullString `db:"account_id" json:"account_id"`
	ProviderUserID sql.NullString `db:"provider_user_id" json:"provider_user_id"`
	TokenExpiresAt sql.NullTime   `db:"token_expires_at" json:"token_expires_at"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

const (
	ProviderLinkedin  = "linkedin"
	ProviderFacebook  = "facebook"
	ProviderInstagram = "instagram"
)
