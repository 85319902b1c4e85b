package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"forumtalks/internal/services"
)

func newTestTokens(t *testing.T, ttl time.Duration) *services.TokenService {
	t.Helper()
	tokens, err := services.NewTokenService("mysecret", ttl, time.Minute)
	if err != nil {
		t.Fatalf("ошибка создания token service: %v", err)
	}
	return tokens
}

func protectedHandler(t *testing.T, gotUserID *int64) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Fatal("user_id не попал в контекст")
		}
		*gotUserID = id
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTAuthHeader(t *testing.T) {
	tokens := newTestTokens(t, 15*time.Minute)
	issued, _ := tokens.IssueSessionToken(42, "user")

	var gotUserID int64
	h := JWTAuth(tokens)(protectedHandler(t, &gotUserID))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/comments/1", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("валидный токен отклонён: статус %d", rec.Code)
	}
	if gotUserID != 42 {
		t.Fatalf("в контексте id=%d, ожидался 42", gotUserID)
	}
}

func TestJWTAuthCookie(t *testing.T) {
	tokens := newTestTokens(t, 15*time.Minute)
	issued, _ := tokens.IssueSessionToken(7, "user")

	var gotUserID int64
	h := JWTAuth(tokens)(protectedHandler(t, &gotUserID))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/comments/1", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: issued.Token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || gotUserID != 7 {
		t.Fatalf("токен из cookie не принят: статус %d, id %d", rec.Code, gotUserID)
	}
}

func TestJWTAuthRejects(t *testing.T) {
	tokens := newTestTokens(t, 15*time.Minute)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("запрос без валидного токена прошёл дальше")
	})
	h := JWTAuth(tokens)(next)

	// Без токена
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("без токена ожидался 401, получен %d", rec.Code)
	}

	// С просроченным токеном
	expired := newTestTokens(t, -time.Minute)
	issued, _ := expired.IssueSessionToken(1, "user")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("с просроченным токеном ожидался 401, получен %d", rec.Code)
	}
}
