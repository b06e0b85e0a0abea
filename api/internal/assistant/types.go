// Package assistant — детерминированный движок учебного ассистента.
// Каждый ответ прослеживается ровно до одного источника: текста урока,
// таблицы грамматических правил или словаря платформы. Никакой генерации.
package assistant

import "context"

// Intent — классифицированная цель сообщения. Набор закрыт.
type Intent string

const (
	IntentLessonExplanation  Intent = "lesson_explanation"
	IntentLessonErrors       Intent = "lesson_errors"
	IntentSentenceCheck      Intent = "sentence_check"
	IntentErrorExplanation   Intent = "error_explanation"
	IntentVocabularyQuestion Intent = "vocabulary_question"
	IntentGrammarQuestion    Intent = "grammar_question"
	IntentGeneralHelp        Intent = "general_help"
	IntentUnknown            Intent = "unknown"
)

// Source — происхождение текста ответа.
type Source string

const (
	SourceDictionary  Source = "dictionary"
	SourceLesson      Source = "lesson"
	SourceGrammarRule Source = "grammar_rule"
)

// Режимы контекста.
const (
	ModeLesson     = "lesson"
	ModeTest       = "test"
	ModeVocabulary = "vocabulary"
	ModeFree       = "free"
)

// Режимы уточнения (refine): кнопки Проще / Подробнее / Примеры.
const (
	RefineSimple   = "simple"
	RefineDetailed = "detailed"
	RefineExamples = "examples"
)

// Context — контекст запроса, которым владеет вызывающая сторона.
// Движок его не меняет: новые last_topic/last_rule возвращаются в Response,
// и вызывающая сторона сама присылает их в следующем ходе.
type Context struct {
	Mode          string // lesson | test | vocabulary | free
	LessonID      int64  // внешний ключ урока, 0 если не задан
	UserLevel     string // A1 по умолчанию
	LastErrorType string // vocabulary | grammar | word_order | spelling
	RefineMode    string // simple | detailed | examples, пусто если нет
	LastTopic     string // непрозрачное значение из прошлого ответа
	LastRule      string // ключ правила из прошлого ответа
}

// Response — единственный результат ProcessMessage. Source называет
// источник, из которого собран Text; это контракт прослеживаемости.
type Response struct {
	Text        string
	Suggestions []string
	Source      Source
	LastTopic   string
	LastRule    string
}

// Lesson — read-only проекция урока из внешнего хранилища.
type Lesson struct {
	ID      int64
	Title   string
	Topic   string
	Content string
}

// Word — словарная статья.
type Word struct {
	ID            int64
	WordKZ        string
	TranslationRU string
	Transcription string
	Example       string
}

// WordStatus — статус слова в личном словаре пользователя.
type WordStatus struct {
	Status  string // in_progress | learned
	Mastery int    // 0..5
}

// Mention — словарное слово, встретившееся в тексте ответа.
type Mention struct {
	WordKZ       string `json:"word_kz"`
	VocabularyID int64  `json:"vocabulary_id"`
}

// LessonStore — операции чтения уроков. Промах = (nil, nil);
// ошибка инфраструктуры возвращается как error и не маскируется.
type LessonStore interface {
	Get(ctx context.Context, id int64) (*Lesson, error)
	GetByPosition(ctx context.Context, pos int) (*Lesson, error)
}

// VocabStore — операции чтения словаря.
type VocabStore interface {
	Lookup(ctx context.Context, query string) (*Word, error)
	UserWordStatus(ctx context.Context, userID, vocabularyID int64) (*WordStatus, error)
}

// MentionFinder — поиск словарных слов в готовом тексте ответа
// (кнопки «Добавить в словарь» на стороне UI).
type MentionFinder interface {
	MentionedWords(ctx context.Context, text string, max int) ([]Mention, error)
}
