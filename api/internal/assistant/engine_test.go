package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"til-bot/api/internal/assistant/kb"
)

type fakeLessons struct {
	byID  map[int64]*Lesson
	byPos map[int]*Lesson
	err   error
}

func (f *fakeLessons) Get(_ context.Context, id int64) (*Lesson, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func (f *fakeLessons) GetByPosition(_ context.Context, pos int) (*Lesson, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byPos[pos], nil
}

type fakeVocab struct {
	words  map[string]*Word
	status map[int64]*WordStatus
	err    error
}

func (f *fakeVocab) Lookup(_ context.Context, q string) (*Word, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.words[q], nil
}

func (f *fakeVocab) UserWordStatus(_ context.Context, _, vocabularyID int64) (*WordStatus, error) {
	return f.status[vocabularyID], nil
}

// testEngine собирает движок на встроенных правилах; nil-хранилища
// допустимы для тестов, которые до них не доходят.
func testEngine(lessons LessonStore, vocab VocabStore) *Engine {
	return New(lessons, vocab, kb.Default(), nil)
}

func greetingLesson() *Lesson {
	return &Lesson{ID: 12, Title: "Сәлемдесу", Topic: "Приветствие", Content: sampleLessonContent}
}

func TestProcessMessageEmptyInput(t *testing.T) {
	e := testEngine(nil, nil)
	out, err := e.ProcessMessage(context.Background(), 1, "   ", Context{})
	require.NoError(t, err)
	assert.Equal(t, e.rules.Responses.Fallback, out.Text)
	assert.Equal(t, SourceGrammarRule, out.Source)
	assert.Equal(t, e.rules.Responses.FallbackSuggestions, out.Suggestions)
}

func TestProcessMessageUnknown(t *testing.T) {
	e := testEngine(nil, nil)
	out, err := e.ProcessMessage(context.Background(), 1, "абракадабра", Context{})
	require.NoError(t, err)
	assert.Equal(t, e.rules.Responses.Fallback, out.Text)
	assert.Equal(t, SourceGrammarRule, out.Source)
}

func TestLessonExplanationByNumber(t *testing.T) {
	lessons := &fakeLessons{byPos: map[int]*Lesson{2: greetingLesson()}}
	e := testEngine(lessons, nil)

	out, err := e.ProcessMessage(context.Background(), 1, "Объясни 2 урок", Context{})
	require.NoError(t, err)
	assert.Equal(t, SourceLesson, out.Source)
	assert.Contains(t, out.Text, "**Тақырыбы / Тема:** Приветствие")
	assert.Contains(t, out.Text, "**Жиі қателер / Частые ошибки:**")
	assert.Equal(t, "Приветствие", out.LastTopic)
}

func TestLessonExplanationFromContext(t *testing.T) {
	lessons := &fakeLessons{byID: map[int64]*Lesson{12: greetingLesson()}}
	e := testEngine(lessons, nil)

	out, err := e.ProcessMessage(context.Background(), 1, "объясни этот урок", Context{LessonID: 12, Mode: ModeLesson})
	require.NoError(t, err)
	assert.Equal(t, SourceLesson, out.Source)
	assert.Contains(t, out.Text, "Приветствие")
}

func TestLessonExplanationMiss(t *testing.T) {
	lessons := &fakeLessons{}
	e := testEngine(lessons, nil)

	out, err := e.ProcessMessage(context.Background(), 1, "Объясни 42 урок", Context{})
	require.NoError(t, err)
	assert.Equal(t, SourceGrammarRule, out.Source)
	assert.Contains(t, out.Text, "Такого урока нет")
}

func TestLessonStoreErrorPropagates(t *testing.T) {
	lessons := &fakeLessons{err: errors.New("connection refused")}
	e := testEngine(lessons, nil)

	_, err := e.ProcessMessage(context.Background(), 1, "объясни этот урок", Context{LessonID: 12})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch lesson 12")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestLessonErrorsIntent(t *testing.T) {
	lessons := &fakeLessons{byID: map[int64]*Lesson{12: greetingLesson()}}
	e := testEngine(lessons, nil)

	out, err := e.ProcessMessage(context.Background(), 1, "Какие ошибки в этом уроке?", Context{LessonID: 12})
	require.NoError(t, err)
	assert.Equal(t, SourceLesson, out.Source)
	assert.Contains(t, out.Text, "Жиі қателер")
	assert.Contains(t, out.Text, "Смешение «сен»")

	// Без урока в контексте — приглашение открыть урок, не отказ.
	out, err = e.ProcessMessage(context.Background(), 1, "Какие ошибки в этом уроке?", Context{})
	require.NoError(t, err)
	assert.Equal(t, SourceGrammarRule, out.Source)
	assert.Contains(t, out.Text, "Откройте урок")
}

func TestSentenceCheckClean(t *testing.T) {
	e := testEngine(nil, nil)

	out, err := e.ProcessMessage(context.Background(), 1, "Проверь: Мен кітап оқыдым", Context{})
	require.NoError(t, err)
	assert.Equal(t, SourceGrammarRule, out.Source)
	assert.Contains(t, out.Text, "**Қате табылды:** жоқ")
	assert.Equal(t, "sentence_check", out.LastRule)
	assert.Equal(t, "Проверка предложения", out.LastTopic)
}

func TestSentenceCheckWithError(t *testing.T) {
	e := testEngine(nil, nil)

	out, err := e.ProcessMessage(context.Background(), 1, "Проверь: Мен кітап алу", Context{})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "SOV")
	assert.Contains(t, out.Text, "**Дұрыс нұсқа:**")
}

func TestSentenceCheckNoSentence(t *testing.T) {
	e := testEngine(nil, nil)
	out, err := e.ProcessMessage(context.Background(), 1, "проверь", Context{})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Напишите предложение")
}

func TestVocabularyFound(t *testing.T) {
	vocab := &fakeVocab{
		words: map[string]*Word{"сәлем": {ID: 7, WordKZ: "сәлем", TranslationRU: "привет", Example: "Сәлем, қалайсың?"}},
	}
	e := testEngine(&fakeLessons{}, vocab)

	out, err := e.ProcessMessage(context.Background(), 1, "Что значит сәлем?", Context{})
	require.NoError(t, err)
	assert.Equal(t, SourceDictionary, out.Source)
	assert.Contains(t, out.Text, "Из словаря платформы: «сәлем» — привет.")
	assert.Contains(t, out.Text, "Пример: Сәлем, қалайсың?.")
	assert.Contains(t, out.Text, "Можете добавить в личный словарь")
}

func TestVocabularySpellingFix(t *testing.T) {
	vocab := &fakeVocab{
		words: map[string]*Word{"сәлем": {ID: 7, WordKZ: "сәлем", TranslationRU: "привет"}},
	}
	e := testEngine(&fakeLessons{}, vocab)

	// "салем" исправляется до словарной формы перед поиском.
	out, err := e.ProcessMessage(context.Background(), 1, "Что значит салем?", Context{})
	require.NoError(t, err)
	assert.Equal(t, SourceDictionary, out.Source)
	assert.Contains(t, out.Text, "«сәлем»")
}

func TestVocabularyWithUserStatus(t *testing.T) {
	vocab := &fakeVocab{
		words:  map[string]*Word{"сәлем": {ID: 7, WordKZ: "сәлем", TranslationRU: "привет"}},
		status: map[int64]*WordStatus{7: {Status: "in_progress", Mastery: 2}},
	}
	e := testEngine(&fakeLessons{}, vocab)

	out, err := e.ProcessMessage(context.Background(), 1, "Что значит сәлем?", Context{})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "изучаете")
	assert.Contains(t, out.Text, "2/5")
}

func TestVocabularyMiss(t *testing.T) {
	e := testEngine(&fakeLessons{}, &fakeVocab{})

	out, err := e.ProcessMessage(context.Background(), 1, "Что значит блаблабла?", Context{})
	require.NoError(t, err)
	// Промах тоже словарный ответ: источник — словарь.
	assert.Equal(t, SourceDictionary, out.Source)
	assert.Contains(t, out.Text, "не найдено в словаре платформы")
}

func TestVocabularyTestMode(t *testing.T) {
	vocab := &fakeVocab{
		words: map[string]*Word{"сәлем": {ID: 7, WordKZ: "сәлем", TranslationRU: "привет"}},
	}
	e := testEngine(&fakeLessons{}, vocab)

	out, err := e.ProcessMessage(context.Background(), 1, "Что значит сәлем?", Context{Mode: ModeTest})
	require.NoError(t, err)
	assert.Equal(t, e.rules.Responses.TestMode, out.Text)
	assert.Equal(t, SourceGrammarRule, out.Source)
	assert.Empty(t, out.Suggestions)
}

func TestVocabularyStoreErrorPropagates(t *testing.T) {
	vocab := &fakeVocab{err: errors.New("timeout")}
	e := testEngine(&fakeLessons{}, vocab)

	_, err := e.ProcessMessage(context.Background(), 1, "Что значит сәлем?", Context{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookup word")
}

func TestVocabularyGrammarTermRedirect(t *testing.T) {
	e := testEngine(&fakeLessons{}, &fakeVocab{})

	// "падеж" — грамматический термин, не слово словаря.
	out, err := e.ProcessMessage(context.Background(), 1, "Что такое падеж?", Context{})
	require.NoError(t, err)
	assert.Equal(t, SourceGrammarRule, out.Source)
	assert.Equal(t, kb.RuleCasesIntro, out.LastRule)
	assert.Contains(t, out.Text, "Правило грамматики (A1):")
}

func TestGrammarQuestionRule(t *testing.T) {
	e := testEngine(&fakeLessons{}, nil)

	out, err := e.ProcessMessage(context.Background(), 1, "Какой порядок слов в казахском?", Context{})
	require.NoError(t, err)
	assert.Equal(t, SourceGrammarRule, out.Source)
	assert.Equal(t, kb.RuleWordOrder, out.LastRule)
	assert.Contains(t, out.Text, "SOV")
	assert.Contains(t, out.Text, "Примеры:")
}

func TestGrammarSummaryAnswer(t *testing.T) {
	e := testEngine(&fakeLessons{}, nil)

	out, err := e.ProcessMessage(context.Background(), 1, "Какие правила есть в казахском?", Context{})
	require.NoError(t, err)
	assert.Equal(t, SourceGrammarRule, out.Source)
	assert.Contains(t, out.Text, "Основные правила грамматики A1")
}

func TestGrammarQuestionWithLessonContext(t *testing.T) {
	lessons := &fakeLessons{byID: map[int64]*Lesson{12: greetingLesson()}}
	e := testEngine(lessons, nil)

	out, err := e.ProcessMessage(context.Background(), 1, "Какие окончания настоящего времени?", Context{LessonID: 12})
	require.NoError(t, err)
	// Сначала грамматика урока, затем общее правило.
	assert.Equal(t, SourceLesson, out.Source)
	assert.Contains(t, out.Text, "Из урока «Сәлемдесу»")
	assert.Contains(t, out.Text, "Дополнительно (A1):")
	assert.Equal(t, kb.RulePresentEndings, out.LastRule)
}

func TestErrorExplanationTestMode(t *testing.T) {
	e := testEngine(&fakeLessons{}, nil)

	out, err := e.ProcessMessage(context.Background(), 1, "Почему это неправильно?", Context{Mode: ModeTest})
	require.NoError(t, err)
	assert.Equal(t, e.rules.Responses.TestMode, out.Text)
	assert.Equal(t, SourceGrammarRule, out.Source)
	assert.Empty(t, out.Suggestions)
}

func TestErrorExplanationByErrorType(t *testing.T) {
	e := testEngine(&fakeLessons{}, nil)

	out, err := e.ProcessMessage(context.Background(), 1, "Почему это неправильно?", Context{LastErrorType: "word_order"})
	require.NoError(t, err)
	assert.Equal(t, SourceGrammarRule, out.Source)
	assert.Equal(t, kb.RuleWordOrder, out.LastRule)
	assert.Contains(t, out.Text, "Подсказка (правило):")
	// Правильный ответ никогда не раскрывается.
	assert.NotContains(t, out.Text, "Правильный ответ")
}

func TestErrorExplanationFromLessonMistakes(t *testing.T) {
	lessons := &fakeLessons{byID: map[int64]*Lesson{12: greetingLesson()}}
	e := testEngine(lessons, nil)

	out, err := e.ProcessMessage(context.Background(), 1, "не понимаю", Context{LessonID: 12})
	require.NoError(t, err)
	assert.Equal(t, SourceLesson, out.Source)
	assert.Contains(t, out.Text, "Частые ошибки")
}

func TestGeneralHelp(t *testing.T) {
	e := testEngine(&fakeLessons{}, nil)

	out, err := e.ProcessMessage(context.Background(), 1, "Привет", Context{})
	require.NoError(t, err)
	assert.Equal(t, SourceGrammarRule, out.Source)
	assert.NotEmpty(t, out.Suggestions)
}

func TestRefineShortCircuit(t *testing.T) {
	e := testEngine(nil, nil)
	rc := Context{RefineMode: RefineSimple, LastRule: kb.RuleWordOrder, LastTopic: "Порядок слов"}

	out, err := e.ProcessMessage(context.Background(), 1, "уточни", rc)
	require.NoError(t, err)
	assert.Equal(t, SourceGrammarRule, out.Source)
	// Состояние уточнения возвращается без изменений: уточнение повторяемо.
	assert.Equal(t, kb.RuleWordOrder, out.LastRule)
	assert.Equal(t, "Порядок слов", out.LastTopic)

	again, err := e.ProcessMessage(context.Background(), 1, "уточни", rc)
	require.NoError(t, err)
	assert.Equal(t, out.Text, again.Text)
}

func TestRefineModes(t *testing.T) {
	e := testEngine(nil, nil)
	base := Context{LastRule: kb.RuleWordOrder, LastTopic: "Порядок слов"}

	simple := base
	simple.RefineMode = RefineSimple
	out, err := e.ProcessMessage(context.Background(), 1, "x", simple)
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(out.Text)), 303) // 300 + многоточие

	detailed := base
	detailed.RefineMode = RefineDetailed
	out, err = e.ProcessMessage(context.Background(), 1, "x", detailed)
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Подробнее в уроке по грамматике")

	examples := base
	examples.RefineMode = RefineExamples
	out, err = e.ProcessMessage(context.Background(), 1, "x", examples)
	require.NoError(t, err)
	assert.Contains(t, out.Text, "**Примеры:**")
	assert.Contains(t, out.Text, "• ")
}

func TestRefineWithoutStateFallsThrough(t *testing.T) {
	e := testEngine(&fakeLessons{}, nil)

	// Нет перенесённого правила — обычная классификация.
	out, err := e.ProcessMessage(context.Background(), 1, "Привет", Context{RefineMode: RefineSimple})
	require.NoError(t, err)
	assert.NotEqual(t, "", out.Text)
	assert.Equal(t, SourceGrammarRule, out.Source)
}
