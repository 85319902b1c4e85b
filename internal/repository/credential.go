package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forumtalks/internal/apperr"
	"forumtalks/internal/logger"
	"forumtalks/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CredentialRepository struct {
	db *pgxpool.Pool
}

func NewCredentialRepository(db *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{db: db}
}

const credentialColumns = `id, full_name, email, password_hash, photo, role, email_verified,
	verification_token_hash, reset_token_hash, reset_expires_at, created_at, updated_at`

func scanCredential(row pgx.Row) (*models.Credential, error) {
	var c models.Credential
	err := row.Scan(
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
		return nil, err
	}
	return &c, nil
}

// Create вставляет учётную запись. Гонка по email разрешается уникальным
// индексом в базе и всплывает как conflict.
func (r *CredentialRepository) Create(ctx context.Context, c *models.Credential) error {
	logger.Log.Info("Создание учётной записи (repo)", zap.String("email", c.Email))
	query := `
	INSERT INTO credentials (full_name, email, password_hash, photo, role, verification_token_hash)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		c.FullName,
		c.Email,
		c.PasswordHash,
		c.Photo,
		c.Role,
		c.VerificationTokenHash,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Wrap(apperr.Conflict, "такой email уже зарегистрирован", err)
		}
		logger.Log.Error("Ошибка создания учётной записи (repo)", zap.Error(err))
		return err
	}
	return nil
}

func (r *CredentialRepository) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	logger.Log.Debug("Проверка email на уникальность (repo)", zap.String("email", email))
	query := `SELECT EXISTS(SELECT 1 FROM credentials WHERE lower(email) = lower($1))`
	var exists bool
	err := r.db.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		logger.Log.Error("Ошибка проверки email (repo)", zap.Error(err))
	}
	return exists, err
}

func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*models.Credential, error) {
	logger.Log.Debug("Получение учётной записи по email (repo)", zap.String("email", email))
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE lower(email) = lower($1)`
	return scanCredential(r.db.QueryRow(ctx, query, email))
}

func (r *CredentialRepository) GetByID(ctx context.Context, id int64) (*models.Credential, error) {
	logger.Log.Debug("Получение учётной записи по id (repo)", zap.Int64("user_id", id))
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = $1`
	return scanCredential(r.db.QueryRow(ctx, query, id))
}

func (r *CredentialRepository) GetByVerificationHash(ctx context.Context, hash string) (*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE verification_token_hash = $1`
	return scanCredential(r.db.QueryRow(ctx, query, hash))
}

// ConfirmEmail снимает токен и ставит флаг одним запросом: после него
// повторное подтверждение той же ссылкой невозможно.
func (r *CredentialRepository) ConfirmEmail(ctx context.Context, id int64) error {
	query := `UPDATE credentials
	SET email_verified = true, verification_token_hash = NULL, updated_at = now()
	WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		logger.Log.Error("Ошибка подтверждения email (repo)", zap.Error(err), zap.Int64("user_id", id))
	}
	return err
}

func (r *CredentialRepository) SetResetToken(ctx context.Context, id int64, hash string, expiresAt time.Time) error {
	query := `UPDATE credentials
	SET reset_token_hash = $1, reset_expires_at = $2, updated_at = now()
	WHERE id = $3`
	_, err := r.db.Exec(ctx, query, hash, expiresAt, id)
	if err != nil {
		logger.Log.Error("Ошибка сохранения токена сброса (repo)", zap.Error(err), zap.Int64("user_id", id))
	}
	return err
}

func (r *CredentialRepository) ClearResetToken(ctx context.Context, id int64) error {
	query := `UPDATE credentials
	SET reset_token_hash = NULL, reset_expires_at = NULL, updated_at = now()
	WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		logger.Log.Error("Ошибка очистки токена сброса (repo)", zap.Error(err), zap.Int64("user_id", id))
	}
	return err
}

// GetByResetHash проверяет совпадение хеша и срок жизни одним предикатом:
// просроченный токен неотличим от несуществующего.
func (r *CredentialRepository) GetByResetHash(ctx context.Context, hash string, now time.Time) (*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials
	WHERE reset_token_hash = $1 AND reset_expires_at > $2`
	return scanCredential(r.db.QueryRow(ctx, query, hash, now))
}

func (r *CredentialRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE credentials SET password_hash = $1, updated_at = now() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, passwordHash, id)
	if err != nil {
		logger.Log.Error("Ошибка обновления пароля (repo)", zap.Error(err), zap.Int64("user_id", id))
	}
	return err
}

// UpdateFields — частичное обновление строго по списку изменяемых полей.
func (r *CredentialRepository) UpdateFields(ctx context.Context, id int64, input *models.UpdateCredentialRequest) error {
	logger.Log.Info("Обновление учётной записи (repo)", zap.Int64("user_id", id))
	query := `UPDATE credentials SET`
	var args []interface{}
	argNum := 1

	if input.FullName != nil {
		query += fmt.Sprintf(" full_name = $%d,", argNum)
		args = append(args, *input.FullName)
		argNum++
	}
	if input.Email != nil {
		query += fmt.Sprintf(" email = $%d,", argNum)
		args = append(args, *input.Email)
		argNum++
	}
	if input.Photo != nil {
		query += fmt.Sprintf(" photo = $%d,", argNum)
		args = append(args, *input.Photo)
		argNum++
	}

	if len(args) == 0 {
		logger.Log.Warn("Нет полей для обновления (repo)", zap.Int64("user_id", id))
		return nil // ничего не обновляем
	}

	query += " updated_at = now()"
	query += fmt.Sprintf(" WHERE id = $%d", argNum)
	args = append(args, id)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Wrap(apperr.Conflict, "такой email уже зарегистрирован", err)
		}
		logger.Log.Error("Ошибка обновления учётной записи (repo)", zap.Error(err), zap.Int64("user_id", id))
	}
	return err
}

// DeleteByID используется как компенсация, если запись профиля не создалась.
func (r *CredentialRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	if err != nil {
		logger.Log.Error("Ошибка удаления учётной записи (repo)", zap.Error(err), zap.Int64("user_id", id))
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
