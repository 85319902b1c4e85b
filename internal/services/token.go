package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"forumtalks/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService выпускает и проверяет сессионные JWT и одноразовые
// секреты для подтверждения почты и сброса пароля.
type TokenService struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

func NewTokenService(secret string, sessionTTL, resetTTL time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("пустой секрет для подписи токенов")
	}
	return &TokenService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
	}, nil
}

// SessionToken — то, что уходит клиенту и в cookie.
type SessionToken struct {
	TokenType string    `json:"token_type"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *TokenService) IssueSessionToken(credentialID int64, role string) (*SessionToken, error) {
	now := time.Now()
	expires := now.Add(s.sessionTTL)

	claims := jwt.MapClaims{
		"user_id": credentialID,
		"role":    role,
		"iat":     now.Unix(),
		"exp":     expires.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &SessionToken{TokenType: "Bearer", Token: signed, ExpiresAt: expires}, nil
}

var errTokenInvalid = apperr.New(apperr.Unauthorized, "неверный или просроченный токен")

// VerifySessionToken — чистая проверка без побочных эффектов.
// Просроченный и битый токены неразличимы для вызывающего.
func (s *TokenService) VerifySessionToken(tokenString string) (int64, string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, "", errTokenInvalid
	}

	userID, ok1 := claims["user_id"].(float64)
	role, ok2 := claims["role"].(string)
	if !ok1 || !ok2 {
		return 0, "", errTokenInvalid
	}

	return int64(userID), role, nil
}

// ResetSecret: plaintext уходит только в письмо, в базе хранится Hash.
type ResetSecret struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

func (s *TokenService) IssueResetSecret() (*ResetSecret, error) {
	plaintext, hash, err := newSecret()
	if err != nil {
		return nil, err
	}
	return &ResetSecret{
		Plaintext: plaintext,
		Hash:      hash,
		ExpiresAt: time.Now().Add(s.resetTTL),
	}, nil
}

// IssueVerifySecret — секрет для подтверждения почты; срок жизни
// у него не хранится, токен живёт до подтверждения.
func (s *TokenService) IssueVerifySecret() (plaintext, hash string, err error) {
	return newSecret()
}

// HashForLookup превращает токен из URL обратно в ключ для поиска в базе.
func (s *TokenService) HashForLookup(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func newSecret() (plaintext, hash string, err error) {
	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return "", "", err
	}
	plaintext = base64.RawURLEncoding.EncodeToString(raw)
	sum := sha256.Sum256([]byte(plaintext))
	return plaintext, hex.EncodeToString(sum[:]), nil
}
