package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"forumtalks/internal/apperr"
	"forumtalks/internal/logger"
	"forumtalks/internal/middleware"
	"forumtalks/internal/services"
	helpers "forumtalks/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

type commentRequest struct {
	Body string `json:"body"`
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

// ListByPost godoc
// @Summary Комментарии поста
// @Tags comments
// @Security ApiKeyAuth
// @Produce json
// @Param postId path int true "ID поста"
// @Success 200 {object} helpers.Response
// @Router /api/v1/comments/{postId} [get]
func (h *CommentHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		helpers.Error(w, apperr.New(apperr.Validation, "невалидный ID"))
		return
	}

	comments, err := h.commentService.ListByPost(r.Context(), postID)
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка получения комментариев", zap.Error(err))
		helpers.Error(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, comments)
}

// GetOne godoc
// @Summary Один комментарий по ID
// @Tags comments
// @Security ApiKeyAuth
// @Produce json
// @Param commentId path int true "ID комментария"
// @Success 200 {object} helpers.Response
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/comments/find/{commentId} [get]
func (h *CommentHandler) GetOne(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		helpers.Error(w, apperr.New(apperr.Validation, "невалидный ID"))
		return
	}

	comment, err := h.commentService.GetByID(r.Context(), commentID)
	if err != nil {
		helpers.Error(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, comment)
}

// Create godoc
// @Summary Новый комментарий к посту
// @Tags comments
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param postId path int true "ID поста"
// @Param input body commentRequest true "Текст комментария"
// @Success 201 {object} helpers.Response
// @Router /api/v1/comments/{postId} [post]
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		helpers.Error(w, apperr.New(apperr.Validation, "невалидный ID"))
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, apperr.New(apperr.Validation, "невалидный JSON"))
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	comment, err := h.commentService.Create(r.Context(), postID, userID, req.Body)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка создания комментария", zap.Error(err))
		helpers.Error(w, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, comment)
}

// Update godoc
// @Summary Правка своего комментария
// @Tags comments
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param commentId path int true "ID комментария"
// @Param input body commentRequest true "Новый текст"
// @Success 200 {object} helpers.Response
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/comments/{commentId} [put]
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		helpers.Error(w, apperr.New(apperr.Validation, "невалидный ID"))
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, apperr.New(apperr.Validation, "невалидный JSON"))
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())
	comment, err := h.commentService.Update(r.Context(), commentID, userID, role, req.Body)
	if err != nil {
		helpers.Error(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, comment)
}

// ToggleLike godoc
// @Summary Поставить или снять лайк
// @Tags comments
// @Security ApiKeyAuth
// @Produce json
// @Param commentId path int true "ID комментария"
// @Success 200 {object} helpers.Response
// @Router /api/v1/comments/toggle-like/{commentId} [put]
func (h *CommentHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		helpers.Error(w, apperr.New(apperr.Validation, "невалидный ID"))
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	liked, likes, err := h.commentService.ToggleLike(r.Context(), commentID, userID)
	if err != nil {
		helpers.Error(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"liked": liked, "likes": likes})
}

// Delete godoc
// @Summary Удаление своего комментария
// @Tags comments
// @Security ApiKeyAuth
// @Produce json
// @Param commentId path int true "ID комментария"
// @Success 200 {object} helpers.Response
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/comments/{commentId} [delete]
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		helpers.Error(w, apperr.New(apperr.Validation, "невалидный ID"))
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())
	if err := h.commentService.Delete(r.Context(), commentID, userID, role); err != nil {
		helpers.Error(w, err)
		return
	}
	helpers.Message(w, http.StatusOK, "Комментарий удалён")
}
