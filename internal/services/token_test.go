package services

import (
	"testing"
	"time"

	"forumtalks/internal/apperr"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService("mysecret", 15*time.Minute, 30*time.Minute)
	if err != nil {
		t.Fatalf("ошибка создания сервиса: %v", err)
	}

	issued, err := svc.IssueSessionToken(42, "user")
	if err != nil {
		t.Fatalf("ошибка выпуска токена: %v", err)
	}
	if issued.Token == "" || issued.TokenType != "Bearer" {
		t.Fatal("токен не сгенерирован")
	}
	if !issued.ExpiresAt.After(time.Now()) {
		t.Fatal("срок жизни токена должен быть в будущем")
	}

	id, role, err := svc.VerifySessionToken(issued.Token)
	if err != nil {
		t.Fatalf("валидный токен не прошёл проверку: %v", err)
	}
	if id != 42 || role != "user" {
		t.Fatalf("неверный payload: id=%d role=%s", id, role)
	}
}

func TestSessionTokenEmptySecret(t *testing.T) {
	if _, err := NewTokenService("  ", time.Minute, time.Minute); err == nil {
		t.Fatal("пустой секрет должен быть фатальной ошибкой конфигурации")
	}
}

func TestSessionTokenExpired(t *testing.T) {
	svc, _ := NewTokenService("mysecret", -time.Minute, time.Minute)

	issued, err := svc.IssueSessionToken(1, "user")
	if err != nil {
		t.Fatalf("ошибка выпуска токена: %v", err)
	}

	_, _, err = svc.VerifySessionToken(issued.Token)
	if err == nil {
		t.Fatal("просроченный токен прошёл проверку")
	}
	if apperr.KindOf(err) != apperr.Unauthorized {
		t.Fatalf("ожидался kind=unauthorized, получен %s", apperr.KindOf(err))
	}
}

func TestSessionTokenMalformed(t *testing.T) {
	svc, _ := NewTokenService("mysecret", time.Minute, time.Minute)

	_, _, errGarbage := svc.VerifySessionToken("definitely-not-a-jwt")

	expired, _ := NewTokenService("mysecret", -time.Minute, time.Minute)
	issued, _ := expired.IssueSessionToken(1, "user")
	_, _, errExpired := svc.VerifySessionToken(issued.Token)

	if errGarbage == nil || errExpired == nil {
		t.Fatal("битый и просроченный токены должны отклоняться")
	}
	// Просроченный и битый токены не должны различаться для клиента
	if errGarbage.Error() != errExpired.Error() {
		t.Fatalf("ответы различаются: %q vs %q", errGarbage, errExpired)
	}
}

func TestSessionTokenWrongSecret(t *testing.T) {
	issuer, _ := NewTokenService("secret-a", time.Minute, time.Minute)
	verifier, _ := NewTokenService("secret-b", time.Minute, time.Minute)

	issued, _ := issuer.IssueSessionToken(7, "user")
	if _, _, err := verifier.VerifySessionToken(issued.Token); err == nil {
		t.Fatal("токен с чужой подписью прошёл проверку")
	}
}

func TestResetSecret(t *testing.T) {
	svc, _ := NewTokenService("mysecret", time.Minute, 30*time.Minute)

	secret, err := svc.IssueResetSecret()
	if err != nil {
		t.Fatalf("ошибка генерации секрета: %v", err)
	}
	if secret.Plaintext == "" || secret.Hash == "" {
		t.Fatal("секрет не сгенерирован")
	}
	if secret.Plaintext == secret.Hash {
		t.Fatal("в базу должен попадать только хеш, а не сам секрет")
	}
	if got := svc.HashForLookup(secret.Plaintext); got != secret.Hash {
		t.Fatalf("HashForLookup не совпадает с сохранённым хешем: %s != %s", got, secret.Hash)
	}
	if !secret.ExpiresAt.After(time.Now().Add(29 * time.Minute)) {
		t.Fatal("срок жизни секрета должен соответствовать настроенному TTL")
	}

	other, _ := svc.IssueResetSecret()
	if other.Plaintext == secret.Plaintext {
		t.Fatal("секреты должны быть случайными")
	}
}

func TestVerifySecret(t *testing.T) {
	svc, _ := NewTokenService("mysecret", time.Minute, time.Minute)

	plaintext, hash, err := svc.IssueVerifySecret()
	if err != nil {
		t.Fatalf("ошибка генерации секрета: %v", err)
	}
	if svc.HashForLookup(plaintext) != hash {
		t.Fatal("хеш подтверждения не совпадает с HashForLookup")
	}
}
