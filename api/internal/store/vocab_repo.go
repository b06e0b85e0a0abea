package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"til-bot/api/internal/assistant"
)

type VocabRepo struct{ DB *sql.DB }

func NewVocabRepo(db *sql.DB) *VocabRepo { return &VocabRepo{DB: db} }

const wordColumns = `id, word_kz, translation_ru, coalesce(transcription,'') as transcription, coalesce(example_sentence,'') as example_sentence`

// Lookup ищет слово по казахской форме или русскому переводу.
// Сначала точное совпадение без учёта регистра, затем лучшее совпадение
// по подстроке: чем короче заголовочное слово, тем оно специфичнее
// ("сәлем" предпочтительнее "сәлемдесу").
func (r *VocabRepo) Lookup(ctx context.Context, query string) (*assistant.Word, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < 2 {
		return nil, nil
	}

	exact := `select ` + wordColumns + `
from vocabulary
where lower(word_kz) = $1 or lower(translation_ru) = $1
order by id
limit 1`
	w, err := r.scanWord(r.DB.QueryRowContext(ctx, exact, q))
	if err != nil || w != nil {
		return w, err
	}

	sub := `select ` + wordColumns + `
from vocabulary
where lower(word_kz) like '%' || $1 || '%' or lower(translation_ru) like '%' || $1 || '%'
order by length(word_kz), id
limit 50`
	rows, err := r.DB.QueryContext(ctx, sub, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var first *assistant.Word
	for rows.Next() {
		var cand assistant.Word
		if err := rows.Scan(&cand.ID, &cand.WordKZ, &cand.TranslationRU, &cand.Transcription, &cand.Example); err != nil {
			return nil, err
		}
		if first == nil {
			c := cand
			first = &c
		}
		// Предпочитаем совпадение по казахской форме.
		if strings.Contains(strings.ToLower(cand.WordKZ), q) {
			c := cand
			return &c, rows.Err()
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return first, nil
}

// UserWordStatus — статус слова в личном словаре пользователя.
func (r *VocabRepo) UserWordStatus(ctx context.Context, userID, vocabularyID int64) (*assistant.WordStatus, error) {
	const q = `
select status, coalesce(mastery,0) as mastery
from user_vocabulary
where user_id = $1 and vocabulary_id = $2`
	var st assistant.WordStatus
	if err := r.DB.QueryRowContext(ctx, q, userID, vocabularyID).Scan(&st.Status, &st.Mastery); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

var tokenRe = regexp.MustCompile(`(?i)[а-яёәғқңөұүһіa-z]+`)

// MentionedWords находит в тексте ответа слова, которые есть в словаре,
// для кнопок «Добавить в словарь». Не больше max штук.
func (r *VocabRepo) MentionedWords(ctx context.Context, text string, max int) ([]assistant.Mention, error) {
	out := []assistant.Mention{}
	if len(text) < 2 || max <= 0 {
		return out, nil
	}
	const q = `select id, word_kz from vocabulary where lower(word_kz) = $1 limit 1`

	seen := map[string]bool{}
	for _, tok := range tokenRe.FindAllString(text, -1) {
		w := strings.ToLower(tok)
		n := len([]rune(w))
		if n < 2 || n > 30 || seen[w] {
			continue
		}
		seen[w] = true

		var m assistant.Mention
		err := r.DB.QueryRowContext(ctx, q, w).Scan(&m.VocabularyID, &m.WordKZ)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, m)
		if len(out) >= max {
			break
		}
	}
	return out, nil
}

func (r *VocabRepo) scanWord(row *sql.Row) (*assistant.Word, error) {
	var w assistant.Word
	if err := row.Scan(&w.ID, &w.WordKZ, &w.TranslationRU, &w.Transcription, &w.Example); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}
