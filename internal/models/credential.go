package models

import "time"

// Credential — учётная запись: почта, хеш пароля и токены подтверждения/сброса.
// Хеш пароля и хеши токенов никогда не сериализуются в ответах.
type Credential struct {
	ID                    int64      `json:"id"`
	FullName              string     `json:"full_name"`
	Email                 string     `json:"email"`
	PasswordHash          string     `json:"-"`
	Photo                 string     `json:"photo"`
	Role                  string     `json:"role"`
	EmailVerified         bool       `json:"email_verified"`
	VerificationTokenHash *string    `json:"-"`
	ResetTokenHash        *string    `json:"-"`
	ResetExpiresAt        *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Profile — публичный профиль, один-к-одному с Credential.
type Profile struct {
	ID           int64       `json:"id"`
	CredentialID int64       `json:"-"`
	Email        string      `json:"email"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Info         *Credential `json:"user_info,omitempty"`
}

// UpdateCredentialRequest — явный список изменяемых полей.
// Токены, флаги и хеш пароля через этот запрос изменить нельзя.
type UpdateCredentialRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Photo    *string `json:"photo,omitempty"`
}
