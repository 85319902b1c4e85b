package services

import (
	"context"
	"strings"

	"forumtalks/internal/apperr"
	"forumtalks/internal/logger"
	"forumtalks/internal/models"

	"go.uber.org/zap"
)

type CommentRepo interface {
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	Create(ctx context.Context, c *models.Comment) error
	Update(ctx context.Context, id int64, body string) error
	Delete(ctx context.Context, id int64) error
	ToggleLike(ctx context.Context, commentID, userID int64) (liked bool, likes int, err error)
}

type CommentService struct {
	repo CommentRepo
}

func NewCommentService(repo CommentRepo) *CommentService {
	return &CommentService{repo: repo}
}

func (s *CommentService) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	comments, err := s.repo.ListByPost(ctx, postID)
	if err != nil {
		return nil, internalErr(err)
	}
	return comments, nil
}

func (s *CommentService) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "комментарий не найден", err)
	}
	return c, nil
}

func (s *CommentService) Create(ctx context.Context, postID, authorID int64, body string) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperr.New(apperr.Validation, "пустой текст комментария")
	}

	c := &models.Comment{PostID: postID, AuthorID: authorID, Body: body}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, internalErr(err)
	}

	logger.WithCtx(ctx).Info("Комментарий создан (service)",
		zap.Int64("comment_id", c.ID), zap.Int64("post_id", postID))
	return c, nil
}

// Update разрешён автору комментария или администратору.
func (s *CommentService) Update(ctx context.Context, id, userID int64, role, body string) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperr.New(apperr.Validation, "пустой текст комментария")
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, "комментарий не найден", err)
	}
	if c.AuthorID != userID && role != "admin" {
		return nil, apperr.New(apperr.Unauthorized, "нет доступа к чужому комментарию")
	}

	if err := s.repo.Update(ctx, id, body); err != nil {
		return nil, internalErr(err)
	}
	c.Body = body
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, id, userID int64, role string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.NotFound, "комментарий не найден", err)
	}
	if c.AuthorID != userID && role != "admin" {
		return apperr.New(apperr.Unauthorized, "нет доступа к чужому комментарию")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return internalErr(err)
	}
	logger.WithCtx(ctx).Info("Комментарий удалён (service)", zap.Int64("comment_id", id))
	return nil
}

func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID int64) (liked bool, likes int, err error) {
	if _, err := s.repo.GetByID(ctx, commentID); err != nil {
		return false, 0, apperr.Wrap(apperr.NotFound, "комментарий не найден", err)
	}

	liked, likes, err = s.repo.ToggleLike(ctx, commentID, userID)
	if err != nil {
		return false, 0, internalErr(err)
	}
	return liked, likes, nil
}
