package repository

import (
	"context"

	"forumtalks/internal/logger"
	"forumtalks/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CommentRepository struct {
	db *pgxpool.Pool
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentSelect = `
	SELECT c.id, c.post_id, c.author_id, c.body,
	       (SELECT count(*) FROM comment_likes l WHERE l.comment_id = c.id) AS likes,
	       c.created_at, c.updated_at
	FROM comments c`

func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	rows, err := r.db.Query(ctx, commentSelect+` WHERE c.post_id = $1 ORDER BY c.created_at`, postID)
	if err != nil {
		logger.Log.Error("Ошибка получения комментариев (repo)", zap.Error(err), zap.Int64("post_id", postID))
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.Likes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var c models.Comment
	err := r.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id).
		Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.Likes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	logger.Log.Info("Создание комментария (repo)", zap.Int64("post_id", c.PostID), zap.Int64("author_id", c.AuthorID))
	query := `
	INSERT INTO comments (post_id, author_id, body)
	VALUES ($1, $2, $3)
	RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query, c.PostID, c.AuthorID, c.Body).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CommentRepository) Update(ctx context.Context, id int64, body string) error {
	_, err := r.db.Exec(ctx, `UPDATE comments SET body = $1, updated_at = now() WHERE id = $2`, body, id)
	if err != nil {
		logger.Log.Error("Ошибка обновления комментария (repo)", zap.Error(err), zap.Int64("comment_id", id))
	}
	return err
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		logger.Log.Error("Ошибка удаления комментария (repo)", zap.Error(err), zap.Int64("comment_id", id))
	}
	return err
}

// ToggleLike снимает лайк, если он был, иначе ставит. Возвращает новое
// состояние и актуальное число лайков.
func (r *CommentRepository) ToggleLike(ctx context.Context, commentID, userID int64) (liked bool, likes int, err error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`,
		commentID, userID,
	)
	if err != nil {
		return false, 0, err
	}

	if tag.RowsAffected() == 0 {
		_, err = r.db.Exec(ctx,
			`INSERT INTO comment_likes (comment_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			commentID, userID,
		)
		if err != nil {
			return false, 0, err
		}
		liked = true
	}

	err = r.db.QueryRow(ctx,
		`SELECT count(*) FROM comment_likes WHERE comment_id = $1`, commentID,
	).Scan(&likes)
	return liked, likes, err
}
