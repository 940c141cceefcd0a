package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/ribotflowdeveloper-hub/ribotflow-sub005/internal/models"
)

type CredentialRepository interface {
	GetByTeamAndProvider(ctx context.Context, teamID int64, provider string) (*models.ProviderCredential, error)
	ListByExpiryInterval(ctx context.Context, from, to time.Time) ([]*models.ProviderCredential, error)
	SetToken(ctx context.Context, id int64, cred *models.ProviderCredential) error
}

type credentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

const credentialColumns = `id, team_id, provider, access_token, refresh_token, account_id, provider_user_id, token_expires_at, created_at, updated_at`

func scanCredential(row interface{ Scan(...any) error }) (*models.ProviderCredential, error) {
	var cred models.ProviderCredential
	err := row.Scan(
		&cred.ID,
		&cred.TeamID,
		&cred.Provider,
		&cred.AccessToken,
		&cred.RefreshToken,
		&cred.AccountID,
		&cred.ProviderUserID,
		&cred.TokenExpiresAt,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) GetByTeamAndProvider(ctx context.Context, teamID int64, provider string) (*models.ProviderCredential, error) {
	query := `SELECT ` + credentialColumns + ` FROM provider_credentials WHERE team_id = $1 AND provider = $2`
	row := r.db.QueryRowContext(ctx, query, teamID, provider)

	cred, err := scanCredential(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return cred, nil
}

func (r *credentialRepository) ListByExpiryInterval(ctx context.Context, from, to time.Time) ([]*models.ProviderCredential, error) {
	query := `SELECT ` + credentialColumns + ` FROM provider_credentials WHERE token_expires_at BETWEEN $1 AND $2`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var creds []*models.ProviderCredential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		creds = append(creds, cred)
	}
	return creds, nil
}

func (r *credentialRepository) SetToken(ctx context.Context, id int64, cred *models.ProviderCredential) error {
	query := `
		UPDATE provider_credentials
		SET access_token = $1,
			refresh_token = $2,
			token_expires_at = $3,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, cred.AccessToken, cred.RefreshToken, cred.TokenExpiresAt, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
