package services

import (
	"context"
	"errors"
	"testing"

	"forumtalks/internal/apperr"
	"forumtalks/internal/models"
)

type mockCommentRepo struct {
	seq   int64
	byID  map[int64]*models.Comment
	likes map[int64]map[int64]bool // comment_id -> user_id -> liked
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{
		byID:  make(map[int64]*models.Comment),
		likes: make(map[int64]map[int64]bool),
	}
}

func (m *mockCommentRepo) ListByPost(_ context.Context, postID int64) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range m.byID {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCommentRepo) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return c, nil
}

func (m *mockCommentRepo) Create(_ context.Context, c *models.Comment) error {
	m.seq++
	c.ID = m.seq
	m.byID[c.ID] = c
	return nil
}

func (m *mockCommentRepo) Update(_ context.Context, id int64, body string) error {
	c, ok := m.byID[id]
	if !ok {
		return errors.New("no rows")
	}
	c.Body = body
	return nil
}

func (m *mockCommentRepo) Delete(_ context.Context, id int64) error {
	delete(m.byID, id)
	return nil
}

func (m *mockCommentRepo) ToggleLike(_ context.Context, commentID, userID int64) (bool, int, error) {
	if m.likes[commentID] == nil {
		m.likes[commentID] = make(map[int64]bool)
	}
	liked := !m.likes[commentID][userID]
	if liked {
		m.likes[commentID][userID] = true
	} else {
		delete(m.likes[commentID], userID)
	}
	return liked, len(m.likes[commentID]), nil
}

func TestCommentCreateAndList(t *testing.T) {
	svc := NewCommentService(newMockCommentRepo())

	c, err := svc.Create(context.Background(), 10, 1, "первый!")
	if err != nil {
		t.Fatalf("ошибка создания комментария: %v", err)
	}
	if c.ID == 0 || c.PostID != 10 || c.AuthorID != 1 {
		t.Fatalf("комментарий сохранён неверно: %+v", c)
	}

	list, err := svc.ListByPost(context.Background(), 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("ожидался один комментарий, получено %d (err=%v)", len(list), err)
	}
}

func TestCommentCreateEmptyBody(t *testing.T) {
	svc := NewCommentService(newMockCommentRepo())

	_, err := svc.Create(context.Background(), 10, 1, "   ")
	if err == nil {
		t.Fatal("пустой комментарий должен отклоняться")
	}
	if apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("ожидался kind=validation, получен %s", apperr.KindOf(err))
	}
}

func TestCommentUpdateOwnership(t *testing.T) {
	repo := newMockCommentRepo()
	svc := NewCommentService(repo)

	c, _ := svc.Create(context.Background(), 10, 1, "текст")

	// Чужой пользователь без роли админа
	if _, err := svc.Update(context.Background(), c.ID, 2, "user", "правка"); err == nil {
		t.Fatal("чужой комментарий нельзя редактировать")
	}

	// Автор может
	updated, err := svc.Update(context.Background(), c.ID, 1, "user", "правка")
	if err != nil || updated.Body != "правка" {
		t.Fatalf("автор не смог отредактировать: %v", err)
	}

	// Админ тоже может
	if _, err := svc.Update(context.Background(), c.ID, 99, "admin", "модерация"); err != nil {
		t.Fatalf("админ не смог отредактировать: %v", err)
	}
}

func TestCommentDeleteOwnership(t *testing.T) {
	repo := newMockCommentRepo()
	svc := NewCommentService(repo)

	c, _ := svc.Create(context.Background(), 10, 1, "текст")

	if err := svc.Delete(context.Background(), c.ID, 2, "user"); err == nil {
		t.Fatal("чужой комментарий нельзя удалять")
	}
	if err := svc.Delete(context.Background(), c.ID, 1, "user"); err != nil {
		t.Fatalf("автор не смог удалить: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), c.ID); err == nil {
		t.Fatal("комментарий должен быть удалён")
	}
}

func TestCommentToggleLike(t *testing.T) {
	svc := NewCommentService(newMockCommentRepo())

	c, _ := svc.Create(context.Background(), 10, 1, "текст")

	liked, likes, err := svc.ToggleLike(context.Background(), c.ID, 2)
	if err != nil || !liked || likes != 1 {
		t.Fatalf("первый тумблер должен ставить лайк: liked=%v likes=%d err=%v", liked, likes, err)
	}

	liked, likes, err = svc.ToggleLike(context.Background(), c.ID, 2)
	if err != nil || liked || likes != 0 {
		t.Fatalf("второй тумблер должен снимать лайк: liked=%v likes=%d err=%v", liked, likes, err)
	}

	if _, _, err := svc.ToggleLike(context.Background(), 404, 2); apperr.KindOf(err) != apperr.NotFound {
		t.Fatal("лайк несуществующего комментария должен быть not_found")
	}
}
