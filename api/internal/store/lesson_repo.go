// Package store — репозитории чтения поверх database/sql.
// Работает и с Postgres (драйвер pgx), и с SQLite (modernc) для локальной
// разработки и тестов; запросы ограничены общим подмножеством SQL.
package store

import (
	"context"
	"database/sql"
	"errors"

	"til-bot/api/internal/assistant"
)

type LessonRepo struct{ DB *sql.DB }

func NewLessonRepo(db *sql.DB) *LessonRepo { return &LessonRepo{DB: db} }

// Get достаёт урок по id. Промах — (nil, nil), ошибки БД наверх.
func (r *LessonRepo) Get(ctx context.Context, id int64) (*assistant.Lesson, error) {
	const q = `
select id, title, coalesce(topic,'') as topic, coalesce(content,'') as content
from lessons
where id = $1`
	return r.scanLesson(r.DB.QueryRowContext(ctx, q, id))
}

// GetByPosition достаёт N-й урок (1-based) в стабильном порядке:
// сначала по order_index (NULL в конец), потом по id. Если по этому
// порядку строки нет, запасной порядок — просто по id (для баз, где
// order_index не проставлен).
func (r *LessonRepo) GetByPosition(ctx context.Context, pos int) (*assistant.Lesson, error) {
	if pos < 1 {
		return nil, nil
	}
	const primary = `
select id, title, coalesce(topic,'') as topic, coalesce(content,'') as content
from lessons
order by coalesce(order_index, 999999), id
limit 1 offset $1`
	lesson, err := r.scanLesson(r.DB.QueryRowContext(ctx, primary, pos-1))
	if err != nil || lesson != nil {
		return lesson, err
	}
	const fallback = `
select id, title, coalesce(topic,'') as topic, coalesce(content,'') as content
from lessons
order by id
limit 1 offset $1`
	return r.scanLesson(r.DB.QueryRowContext(ctx, fallback, pos-1))
}

func (r *LessonRepo) scanLesson(row *sql.Row) (*assistant.Lesson, error) {
	var l assistant.Lesson
	if err := row.Scan(&l.ID, &l.Title, &l.Topic, &l.Content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}
