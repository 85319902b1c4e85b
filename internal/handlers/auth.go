package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"forumtalks/internal/apperr"
	"forumtalks/internal/logger"
	"forumtalks/internal/middleware"
	"forumtalks/internal/models"
	"forumtalks/internal/services"
	helpers "forumtalks/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxPhotoSize = 10 << 20 // 10 МБ

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token *services.SessionToken `json:"token"`
	User  *models.Profile        `json:"user"`
}

// Register godoc
// @Summary Регистрация нового пользователя
// @Description Multipart-форма с полями full_name, email, password и файлом media (фото профиля).
// @Tags auth
// @Accept mpfd
// @Produce json
// @Param full_name formData string true "Имя"
// @Param email formData string true "Email"
// @Param password formData string true "Пароль"
// @Param media formData file true "Фото профиля"
// @Success 201 {object} helpers.Response
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		logger.WithCtx(r.Context()).Warn("Невалидная multipart-форма в Register", zap.Error(err))
		helpers.Error(w, apperr.New(apperr.Validation, "невалидная multipart-форма"))
		return
	}

	file, header, err := r.FormFile("media")
	if err != nil {
		helpers.Error(w, apperr.New(apperr.Validation, "не передан файл фото"))
		return
	}
	defer file.Close()

	photo, err := io.ReadAll(io.LimitReader(file, maxPhotoSize))
	if err != nil {
		helpers.Error(w, apperr.Wrap(apperr.Internal, "внутренняя ошибка сервера", err))
		return
	}

	profile, err := h.authService.Register(r.Context(), &services.RegisterInput{
		FullName:  r.FormValue("full_name"),
		Email:     r.FormValue("email"),
		Password:  r.FormValue("password"),
		Photo:     photo,
		PhotoName: header.Filename,
	}, requestBaseURL(r))
	if err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка регистрации", zap.Error(err))
		helpers.Error(w, err)
		return
	}

	helpers.JSON(w, http.StatusCreated, sessionResponse{User: profile})
}

// Login godoc
// @Summary Авторизация по email и паролю
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginRequest true "Данные для входа"
// @Success 200 {object} helpers.Response
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в Login", zap.Error(err))
		helpers.Error(w, apperr.New(apperr.Validation, "невалидный JSON"))
		return
	}

	token, profile, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка входа", zap.Error(err))
		helpers.Error(w, err)
		return
	}

	setAuthCookie(w, token)
	helpers.JSON(w, http.StatusOK, sessionResponse{Token: token, User: profile})
}

// VerifyEmail godoc
// @Summary Подтверждение email по токену из письма
// @Tags auth
// @Produce json
// @Param token path string true "Токен подтверждения"
// @Success 200 {object} helpers.Response
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/verify-email/{token} [get]
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	tokenPlain := mux.Vars(r)["token"]

	token, profile, err := h.authService.VerifyEmail(r.Context(), tokenPlain)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка подтверждения email", zap.Error(err))
		helpers.Error(w, err)
		return
	}

	setAuthCookie(w, token)
	helpers.JSON(w, http.StatusOK, sessionResponse{Token: token, User: profile})
}

// Logout godoc
// @Summary Выход: сервер просит клиента забыть токен
// @Tags auth
// @Produce json
// @Success 200 {object} helpers.Response
// @Router /api/v1/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Сессии на сервере нет — достаточно сбросить cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
	helpers.Message(w, http.StatusOK, "logout success")
}

// UpdateUser godoc
// @Summary Обновление учётной записи (сам пользователь или админ)
// @Tags auth
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param userId path int true "ID пользователя"
// @Param input body models.UpdateCredentialRequest true "Что обновить"
// @Success 200 {object} helpers.Response
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/users/{userId} [put]
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		helpers.Error(w, apperr.New(apperr.Validation, "невалидный ID"))
		return
	}

	callerID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())
	if callerID != targetID && role != "admin" {
		helpers.Error(w, apperr.New(apperr.Unauthorized, "нет доступа к чужой учётной записи"))
		return
	}

	var input models.UpdateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logger.WithCtx(r.Context()).Warn("Невалидный JSON при обновлении пользователя", zap.Error(err))
		helpers.Error(w, apperr.New(apperr.Validation, "невалидный JSON"))
		return
	}

	profile, err := h.authService.UpdateCredential(r.Context(), targetID, &input)
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка при обновлении пользователя", zap.Error(err), zap.Int64("user_id", targetID))
		helpers.Error(w, err)
		return
	}

	helpers.JSON(w, http.StatusOK, sessionResponse{User: profile})
}

// setAuthCookie кладёт bearer-токен в http-only cookie со сроком жизни токена.
func setAuthCookie(w http.ResponseWriter, token *services.SessionToken) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token.Token,
		Path:     "/",
		Expires:  token.ExpiresAt,
		HttpOnly: true,
	})
}

// requestBaseURL восстанавливает адрес деплоя из входящего запроса:
// ссылки в письмах должны вести на тот же стенд, что принял запрос.
func requestBaseURL(r *http.Request) string {
	proto := "http"
	if r.TLS != nil {
		proto = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		proto = fwd
	}
	return proto + "://" + r.Host
}
