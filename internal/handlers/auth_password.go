package handlers

import (
	"encoding/json"
	"net/http"

	"forumtalks/internal/apperr"
	"forumtalks/internal/logger"
	"forumtalks/internal/middleware"
	"forumtalks/internal/services"
	helpers "forumtalks/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type PasswordHandler struct {
	authService *services.AuthService
}

func NewPasswordHandler(authService *services.AuthService) *PasswordHandler {
	return &PasswordHandler{authService: authService}
}

type forgotReq struct {
	Email string `json:"email"`
}

// Forgot godoc
// @Summary Запрос восстановления пароля
// @Description Отправляет письмо со ссылкой для сброса пароля.
// @Tags password
// @Accept json
// @Produce json
// @Param input body forgotReq true "Email пользователя"
// @Success 200 {object} helpers.Response
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/password/forgot [post]
func (h *PasswordHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req forgotReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Невалидный payload в Forgot")
		helpers.Error(w, apperr.New(apperr.Validation, "невалидный JSON"))
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email, requestBaseURL(r)); err != nil {
		log.Warn("Сбой при запросе восстановления пароля", zap.Error(err))
		helpers.Error(w, err)
		return
	}

	helpers.Message(w, http.StatusOK, "Письмо отправлено, проверьте почту")
}

type resetReq struct {
	Password string `json:"password"`
}

// Reset godoc
// @Summary Сброс пароля по токену из письма
// @Tags password
// @Accept json
// @Produce json
// @Param token path string true "Токен сброса"
// @Param input body resetReq true "Новый пароль"
// @Success 200 {object} helpers.Response
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/password/reset/{token} [post]
func (h *PasswordHandler) Reset(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	tokenPlain := mux.Vars(r)["token"]

	var req resetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Невалидный payload в Reset")
		helpers.Error(w, apperr.New(apperr.Validation, "невалидный JSON"))
		return
	}

	token, profile, err := h.authService.ResetPassword(r.Context(), tokenPlain, req.Password)
	if err != nil {
		log.Warn("Не удалось сбросить пароль по токену", zap.Error(err))
		helpers.Error(w, err)
		return
	}

	setAuthCookie(w, token)
	helpers.JSON(w, http.StatusOK, sessionResponse{Token: token, User: profile})
}

type changeReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Change godoc
// @Summary Смена пароля авторизованного пользователя
// @Tags password
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body changeReq true "Старый и новый пароль"
// @Success 200 {object} helpers.Response
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/password/update [post]
func (h *PasswordHandler) Change(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok || userID == 0 {
		log.Warn("Нет доступа для Change: отсутствует user_id")
		helpers.Error(w, apperr.New(apperr.Unauthorized, "unauthorized"))
		return
	}

	var req changeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Невалидный payload в Change", zap.Int64("user_id", userID))
		helpers.Error(w, apperr.New(apperr.Validation, "невалидный JSON"))
		return
	}

	if err := h.authService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		log.Warn("Не удалось сменить пароль", zap.Int64("user_id", userID), zap.Error(err))
		helpers.Error(w, err)
		return
	}

	log.Info("Пароль изменён", zap.Int64("user_id", userID))
	helpers.Message(w, http.StatusOK, "Пароль изменён")
}
