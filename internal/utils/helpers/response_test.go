package helpers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"forumtalks/internal/apperr"
)

func TestJSONEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"token": "abc"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("ожидался статус 201, получен %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("невалидный JSON в ответе: %v", err)
	}
	if !resp.Status || resp.Message != "success" {
		t.Fatalf("неверный конверт: %+v", resp)
	}
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperr.New(apperr.Conflict, "email уже зарегистрирован"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("ожидался статус 409, получен %d", rec.Code)
	}

	var resp struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("невалидный JSON в ответе: %v", err)
	}
	if resp.Error.Kind != "conflict" || resp.Error.Message != "email уже зарегистрирован" {
		t.Fatalf("неверный конверт ошибки: %+v", resp)
	}
}

func TestErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("pgx: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("ожидался статус 500, получен %d", rec.Code)
	}
	if body := rec.Body.String(); body == "" || strings.Contains(body, "pgx") {
		t.Fatalf("детали хранилища утекли в ответ: %s", body)
	}
}
