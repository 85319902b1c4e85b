package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"forumtalks/internal/apperr"
	"forumtalks/internal/logger"
	"forumtalks/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// Единый текст для неверной почты и неверного пароля: по ответу нельзя
// понять, существует ли учётная запись.
var errInvalidCredentials = apperr.New(apperr.Unauthorized, "неверный email или пароль")

type CredentialRepo interface {
	Create(ctx context.Context, c *models.Credential) error
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*models.Credential, error)
	GetByID(ctx context.Context, id int64) (*models.Credential, error)
	GetByVerificationHash(ctx context.Context, hash string) (*models.Credential, error)
	ConfirmEmail(ctx context.Context, id int64) error
	SetResetToken(ctx context.Context, id int64, hash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id int64) error
	GetByResetHash(ctx context.Context, hash string, now time.Time) (*models.Credential, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateFields(ctx context.Context, id int64, input *models.UpdateCredentialRequest) error
	DeleteByID(ctx context.Context, id int64) error
}

type ProfileRepo interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByCredentialID(ctx context.Context, credentialID int64) (*models.Profile, error)
}

type MediaStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type MailSender interface {
	SendPasswordReset(ctx context.Context, to, resetLink string) error
	QueueVerification(to, name, verifyLink string)
}

type AuthService struct {
	creds    CredentialRepo
	profiles ProfileRepo
	tokens   *TokenService
	media    MediaStore
	mail     MailSender
}

func NewAuthService(creds CredentialRepo, profiles ProfileRepo, tokens *TokenService, media MediaStore, mail MailSender) *AuthService {
	return &AuthService{
		creds:    creds,
		profiles: profiles,
		tokens:   tokens,
		media:    media,
		mail:     mail,
	}
}

type RegisterInput struct {
	FullName  string
	Email     string
	Password  string
	Photo     []byte
	PhotoName string
}

// Register создаёт учётную запись и профиль, загружает фото во внешнее
// хранилище и ставит письмо подтверждения в очередь.
func (s *AuthService) Register(ctx context.Context, in *RegisterInput, baseURL string) (*models.Profile, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	logger.WithCtx(ctx).Info("Регистрация пользователя (service)", zap.String("email", email))

	if email == "" || in.Password == "" || strings.TrimSpace(in.FullName) == "" {
		return nil, apperr.New(apperr.Validation, "не заполнены обязательные поля")
	}
	if len(in.Photo) == 0 {
		return nil, apperr.New(apperr.Validation, "не передан файл фото")
	}

	if taken, err := s.creds.IsEmailTaken(ctx, email); err != nil {
		return nil, internalErr(err)
	} else if taken {
		return nil, apperr.New(apperr.Conflict, "такой email уже зарегистрирован")
	}

	key := "users/" + uuid.New().String() + strings.ToLower(filepath.Ext(in.PhotoName))
	photoURL, err := s.media.Upload(ctx, key, http.DetectContentType(in.Photo), in.Photo)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка загрузки фото (service)", zap.Error(err))
		return nil, internalErr(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, internalErr(err)
	}

	verifyPlain, verifyHash, err := s.tokens.IssueVerifySecret()
	if err != nil {
		return nil, internalErr(err)
	}

	cred := &models.Credential{
		FullName:              strings.TrimSpace(in.FullName),
		Email:                 email,
		PasswordHash:          string(hashed),
		Photo:                 photoURL,
		Role:                  "user",
		VerificationTokenHash: &verifyHash,
	}
	if err := s.creds.Create(ctx, cred); err != nil {
		return nil, internalErr(err)
	}

	profile := &models.Profile{CredentialID: cred.ID, Email: cred.Email}
	if err := s.profiles.Create(ctx, profile); err != nil {
		// Компенсация: не оставляем учётную запись без профиля
		if delErr := s.creds.DeleteByID(ctx, cred.ID); delErr != nil {
			logger.WithCtx(ctx).Error("Не удалось удалить учётную запись после сбоя профиля",
				zap.Error(delErr), zap.Int64("user_id", cred.ID))
		}
		return nil, internalErr(err)
	}
	profile.Info = cred

	verifyLink := fmt.Sprintf("%s/api/v1/verify-email/%s", baseURL, verifyPlain)
	s.mail.QueueVerification(cred.Email, cred.FullName, verifyLink)

	logger.WithCtx(ctx).Info("Пользователь зарегистрирован (service)", zap.Int64("user_id", cred.ID))
	return profile, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*SessionToken, *models.Profile, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	logger.WithCtx(ctx).Info("Попытка входа (service)", zap.String("email", email))

	if email == "" || password == "" {
		return nil, nil, apperr.New(apperr.Validation, "не заполнены обязательные поля")
	}

	cred, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		logger.WithCtx(ctx).Warn("Учётная запись не найдена (service)", zap.String("email", email))
		return nil, nil, errInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		logger.WithCtx(ctx).Warn("Неверный пароль (service)", zap.Int64("user_id", cred.ID))
		return nil, nil, errInvalidCredentials
	}

	token, err := s.tokens.IssueSessionToken(cred.ID, cred.Role)
	if err != nil {
		return nil, nil, internalErr(err)
	}

	profile, err := s.profiles.GetByCredentialID(ctx, cred.ID)
	if err != nil {
		return nil, nil, internalErr(err)
	}

	logger.WithCtx(ctx).Info("Вход выполнен (service)", zap.Int64("user_id", cred.ID))
	return token, profile, nil
}

// VerifyEmail подтверждает почту по токену из письма. Неверный и уже
// использованный токены неразличимы для клиента.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenPlain string) (*SessionToken, *models.Profile, error) {
	hash := s.tokens.HashForLookup(tokenPlain)

	cred, err := s.creds.GetByVerificationHash(ctx, hash)
	if err != nil {
		logger.WithCtx(ctx).Warn("Токен подтверждения не найден (service)")
		return nil, nil, apperr.New(apperr.Unauthorized, "неверный токен")
	}

	// Меняются только два поля, полная валидация записи не перегоняется
	if err := s.creds.ConfirmEmail(ctx, cred.ID); err != nil {
		return nil, nil, internalErr(err)
	}

	token, err := s.tokens.IssueSessionToken(cred.ID, cred.Role)
	if err != nil {
		return nil, nil, internalErr(err)
	}

	profile, err := s.profiles.GetByCredentialID(ctx, cred.ID)
	if err != nil {
		return nil, nil, internalErr(err)
	}

	logger.WithCtx(ctx).Info("Email подтверждён (service)", zap.Int64("user_id", cred.ID))
	return token, profile, nil
}

// ForgotPassword генерирует секрет сброса и шлёт письмо. Ссылка строится
// от хоста входящего запроса, а не из конфига — иначе ломаются стенды.
// Если письмо не ушло, токен сразу вычищается из базы.
func (s *AuthService) ForgotPassword(ctx context.Context, email, baseURL string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	logger.WithCtx(ctx).Info("Запрос на сброс пароля (service)", zap.String("email", email))

	if email == "" {
		return apperr.New(apperr.Validation, "не указан email")
	}

	cred, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		return apperr.New(apperr.NotFound, "пользователь с таким email не найден")
	}

	secret, err := s.tokens.IssueResetSecret()
	if err != nil {
		return internalErr(err)
	}

	if err := s.creds.SetResetToken(ctx, cred.ID, secret.Hash, secret.ExpiresAt); err != nil {
		return internalErr(err)
	}

	resetLink := fmt.Sprintf("%s/api/v1/password/reset/%s", baseURL, secret.Plaintext)
	if err := s.mail.SendPasswordReset(ctx, cred.Email, resetLink); err != nil {
		logger.WithCtx(ctx).Error("Ошибка отправки письма для сброса пароля",
			zap.Error(err), zap.Int64("user_id", cred.ID))
		// Письмо не ушло — токен в базе бесполезен и опасен
		if clearErr := s.creds.ClearResetToken(ctx, cred.ID); clearErr != nil {
			logger.WithCtx(ctx).Error("Не удалось очистить токен сброса после сбоя почты",
				zap.Error(clearErr), zap.Int64("user_id", cred.ID))
		}
		return internalErr(err)
	}

	logger.WithCtx(ctx).Info("Письмо со ссылкой на сброс пароля отправлено",
		zap.Int64("user_id", cred.ID), zap.Time("expires_at", secret.ExpiresAt))
	return nil
}

// ResetPassword устанавливает новый пароль по токену из письма.
// Просроченный токен отклоняется так же, как несуществующий.
func (s *AuthService) ResetPassword(ctx context.Context, tokenPlain, newPassword string) (*SessionToken, *models.Profile, error) {
	logger.WithCtx(ctx).Info("Попытка сброса пароля по токену (service)")

	if len(newPassword) < 8 {
		return nil, nil, apperr.New(apperr.Validation, "пароль слишком короткий")
	}

	hash := s.tokens.HashForLookup(tokenPlain)
	cred, err := s.creds.GetByResetHash(ctx, hash, time.Now())
	if err != nil {
		logger.WithCtx(ctx).Warn("Неверный или просроченный токен сброса (service)")
		return nil, nil, apperr.New(apperr.Unauthorized, "неверный или просроченный токен")
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return nil, nil, internalErr(err)
	}

	if err := s.creds.UpdatePassword(ctx, cred.ID, string(pwHash)); err != nil {
		return nil, nil, internalErr(err)
	}
	if err := s.creds.ClearResetToken(ctx, cred.ID); err != nil {
		logger.WithCtx(ctx).Warn("Не удалось очистить использованный токен сброса",
			zap.Error(err), zap.Int64("user_id", cred.ID))
	}

	token, err := s.tokens.IssueSessionToken(cred.ID, cred.Role)
	if err != nil {
		return nil, nil, internalErr(err)
	}

	profile, err := s.profiles.GetByCredentialID(ctx, cred.ID)
	if err != nil {
		return nil, nil, internalErr(err)
	}

	logger.WithCtx(ctx).Info("Пароль успешно сброшен (service)", zap.Int64("user_id", cred.ID))
	return token, profile, nil
}

// ChangePassword меняет пароль авторизованного пользователя по старому паролю.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	logger.WithCtx(ctx).Info("Смена пароля (service)", zap.Int64("user_id", userID))

	if oldPassword == "" {
		return apperr.New(apperr.Validation, "не указан старый пароль")
	}
	if len(newPassword) < 8 {
		return apperr.New(apperr.Validation, "пароль слишком короткий")
	}

	cred, err := s.creds.GetByID(ctx, userID)
	if err != nil {
		return apperr.Wrap(apperr.Unauthorized, "пользователь не найден", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(oldPassword)) != nil {
		logger.WithCtx(ctx).Warn("Старый пароль не совпадает (service)", zap.Int64("user_id", userID))
		return apperr.New(apperr.Unauthorized, "старый пароль неверен")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return internalErr(err)
	}

	if err := s.creds.UpdatePassword(ctx, userID, string(newHash)); err != nil {
		return internalErr(err)
	}

	logger.WithCtx(ctx).Info("Пароль изменён (service)", zap.Int64("user_id", userID))
	return nil
}

// UpdateCredential обновляет учётную запись строго по списку изменяемых
// полей и возвращает профиль вместе с обновлённой записью.
func (s *AuthService) UpdateCredential(ctx context.Context, id int64, input *models.UpdateCredentialRequest) (*models.Profile, error) {
	logger.WithCtx(ctx).Info("Обновление учётной записи (service)", zap.Int64("user_id", id))

	if input.Email != nil {
		trimmed := strings.TrimSpace(strings.ToLower(*input.Email))
		if trimmed == "" {
			return nil, apperr.New(apperr.Validation, "email не может быть пустым")
		}
		input.Email = &trimmed
	}

	if err := s.creds.UpdateFields(ctx, id, input); err != nil {
		return nil, internalErr(err)
	}

	profile, err := s.profiles.GetByCredentialID(ctx, id)
	if err != nil {
		return nil, internalErr(err)
	}
	return profile, nil
}

// internalErr пропускает уже размеченные ошибки и прячет остальные
// за generic internal.
func internalErr(err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	return apperr.Wrap(apperr.Internal, "внутренняя ошибка сервера", err)
}
