package repository

import (
	"context"

	"forumtalks/internal/logger"
	"forumtalks/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	logger.Log.Info("Создание профиля (repo)", zap.Int64("credential_id", p.CredentialID))
	query := `
	INSERT INTO profiles (credential_id, email)
	VALUES ($1, $2)
	RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, p.CredentialID, p.Email).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		logger.Log.Error("Ошибка создания профиля (repo)", zap.Error(err), zap.Int64("credential_id", p.CredentialID))
	}
	return err
}

// GetByCredentialID отдаёт профиль вместе с привязанной учётной записью.
func (r *ProfileRepository) GetByCredentialID(ctx context.Context, credentialID int64) (*models.Profile, error) {
	query := `
	SELECT p.id, p.credential_id, p.email, p.created_at, p.updated_at,
	       ` + prefixedCredentialColumns("c") + `
	FROM profiles p
	JOIN credentials c ON c.id = p.credential_id
	WHERE p.credential_id = $1`

	var p models.Profile
	var c models.Credential
	err := r.db.QueryRow(ctx, query, credentialID).Scan(
		&p.ID,
		&p.CredentialID,
		&p.Email,
		&p.CreatedAt,
		&p.UpdatedAt,
		&c.ID,
		&c.FullName,
		&c.Email,
		&c.PasswordHash,
		&c.Photo,
		&c.Role,
		&c.EmailVerified,
		&c.VerificationTokenHash,
		&c.ResetTokenHash,
		&c.ResetExpiresAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		logger.Log.Error("Ошибка получения профиля (repo)", zap.Error(err), zap.Int64("credential_id", credentialID))
		return nil, err
	}
	p.Info = &c
	return &p, nil
}

func prefixedCredentialColumns(alias string) string {
	return alias + `.id, ` + alias + `.full_name, ` + alias + `.email, ` + alias + `.password_hash, ` +
		alias + `.photo, ` + alias + `.role, ` + alias + `.email_verified, ` +
		alias + `.verification_token_hash, ` + alias + `.reset_token_hash, ` + alias + `.reset_expires_at, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}
