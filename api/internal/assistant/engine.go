package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"til-bot/api/internal/assistant/kb"
)

// Engine — конвейер обработки одного сообщения: нормализация,
// классификация интента, извлечение слотов, выбор источника знаний и
// сборка ответа. Движок не хранит состояния между запросами, поэтому
// любое число запросов можно обрабатывать параллельно.
type Engine struct {
	lessons LessonStore
	vocab   VocabStore
	rules   *kb.Ruleset
	log     *zap.Logger
}

// New собирает движок. nil-логгер заменяется на no-op.
func New(lessons LessonStore, vocab VocabStore, rules *kb.Ruleset, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{lessons: lessons, vocab: vocab, rules: rules, log: log}
}

// Закрытый набор грамматических терминов: такие "слова" уходят в
// грамматику, а не в словарь.
var grammarTerms = map[string]bool{
	"падеж": true, "окончание": true, "спряжение": true, "склонение": true,
	"аффикс": true, "суффикс": true, "формально": true, "формаль": true,
}

func resp(text string, suggestions []string, source Source, lastTopic, lastRule string) *Response {
	if suggestions == nil {
		suggestions = []string{}
	}
	return &Response{Text: text, Suggestions: suggestions, Source: source, LastTopic: lastTopic, LastRule: lastRule}
}

func normalizeMode(mode string) string {
	switch strings.ToLower(mode) {
	case ModeLesson, ModeTest, ModeVocabulary, ModeFree:
		return strings.ToLower(mode)
	default:
		return ModeFree
	}
}

// ProcessMessage — единственная точка входа. Никогда не возвращает
// ошибку из-за пустого или кривого ввода; ошибка означает отказ
// внешнего хранилища и не маскируется под контент.
func (e *Engine) ProcessMessage(ctx context.Context, userID int64, message string, rc Context) (*Response, error) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return resp(e.rules.Responses.Fallback, e.rules.Responses.FallbackSuggestions, SourceGrammarRule, "", ""), nil
	}

	// Режим уточнения: Проще / Подробнее / Примеры. Конвейер обходится,
	// используется только перенесённое правило.
	if rc.RefineMode != "" && (rc.LastTopic != "" || rc.LastRule != "") {
		return e.refine(rc), nil
	}

	intent := e.classify(msg)
	mode := normalizeMode(rc.Mode)
	level := rc.UserLevel
	if level == "" {
		level = "A1"
	}

	// Урок: всегда из контекста при наличии lesson_id, иначе по номеру
	// из сообщения для урочных и грамматических интентов.
	var lesson *Lesson
	var err error
	if rc.LessonID != 0 {
		lesson, err = e.lessons.Get(ctx, rc.LessonID)
		if err != nil {
			return nil, fmt.Errorf("fetch lesson %d: %w", rc.LessonID, err)
		}
	}
	if lesson == nil {
		switch intent {
		case IntentLessonExplanation, IntentGrammarQuestion, IntentLessonErrors:
			if n := ParseLessonNumber(msg); n > 0 {
				lesson, err = e.lessons.GetByPosition(ctx, n)
				if err != nil {
					return nil, fmt.Errorf("fetch lesson by position %d: %w", n, err)
				}
			}
		}
	}

	var out *Response
	switch intent {
	case IntentLessonExplanation:
		out = e.lessonExplanation(lesson)
	case IntentLessonErrors:
		out = e.lessonErrors(lesson)
	case IntentSentenceCheck:
		out = e.sentenceCheck(msg)
	case IntentErrorExplanation:
		out = e.errorExplanation(rc, mode, lesson)
	case IntentVocabularyQuestion:
		out, err = e.vocabularyQuestion(ctx, userID, msg, mode, lesson)
		if err != nil {
			return nil, err
		}
	case IntentGrammarQuestion:
		out = e.grammarQuestion(msg, lesson)
	case IntentGeneralHelp:
		out = e.generalHelp(lesson)
	default:
		out = resp(e.rules.Responses.Fallback, e.rules.Responses.FallbackSuggestions, SourceGrammarRule, "", "")
	}

	e.log.Info("assistant turn",
		zap.Int64("user_id", userID),
		zap.String("intent", string(intent)),
		zap.String("mode", mode),
		zap.String("level", level),
		zap.Int64("lesson_id", rc.LessonID),
		zap.String("source", string(out.Source)),
		zap.String("last_rule", out.LastRule),
	)
	return out, nil
}

// refine перерисовывает прошлое объяснение по перенесённому правилу.
// last_topic/last_rule возвращаются без изменений, поэтому уточнение
// идемпотентно и повторяемо.
func (e *Engine) refine(rc Context) *Response {
	rule := e.rules.Rule(rc.LastRule)
	var text string
	switch rc.RefineMode {
	case RefineSimple:
		if rule.Explanation == "" {
			text = "Кратко: см. правило выше."
		} else {
			text = truncate(rule.Explanation, 300)
		}
	case RefineDetailed:
		text = rule.Explanation + "\n\nПодробнее в уроке по грамматике."
		if len(rule.Examples) > 0 {
			text += "\n\nПримеры:\n" + bulletList(rule.Examples, 3)
		}
	default: // examples
		text = "**Примеры:**\n" + bulletList(rule.Examples, 5)
	}
	e.log.Info("assistant turn",
		zap.String("intent", "refine"),
		zap.String("refine_mode", rc.RefineMode),
		zap.String("source", string(SourceGrammarRule)),
		zap.String("last_rule", rc.LastRule),
	)
	return resp(text, []string{"Уроки", "Какой порядок слов в казахском?"}, SourceGrammarRule, rc.LastTopic, rc.LastRule)
}

func (e *Engine) lessonExplanation(lesson *Lesson) *Response {
	if lesson == nil {
		return resp(
			"Такого урока нет. Откройте раздел «Уроки» и выберите урок.",
			[]string{"Объясни 1 урок", "Объясни 2 урок", "Какие правила есть в казахском?"},
			SourceGrammarRule, "", "",
		)
	}
	text := e.buildLessonExplanation(lesson)
	suggestions := []string{"Объясни этот урок", "Какие ошибки в этом уроке?", "Объясни грамматику"}
	return resp(text, suggestions, SourceLesson, lesson.Topic, "")
}

func (e *Engine) lessonErrors(lesson *Lesson) *Response {
	if lesson == nil || lesson.Content == "" {
		return resp(
			"Откройте урок (страница урока или чат с выбранным уроком), чтобы увидеть частые ошибки этого урока.",
			[]string{"Объясни 1 урок", "Какие ошибки в этом уроке?"},
			SourceGrammarRule, "", "",
		)
	}
	sections := ParseSections(lesson.Content)
	if sections.Mistakes == "" {
		text := fmt.Sprintf("В уроке «%s» раздел «Частые ошибки» пока не заполнен.", lesson.Title)
		return resp(text, []string{"Объясни этот урок", "Объясни грамматику"}, SourceLesson, lesson.Topic, "")
	}
	text := fmt.Sprintf("**Жиі қателер / Частые ошибки** (урок «%s»):\n\n%s",
		lesson.Title, truncate(sections.Mistakes, mistakesAnswerMax))
	suggestions := []string{"Объясни этот урок", "Какие правила в этом уроке?", "Объясни грамматику"}
	return resp(text, suggestions, SourceLesson, lesson.Topic, "")
}

func (e *Engine) sentenceCheck(msg string) *Response {
	sentence := extractSentence(msg)
	if sentence == "" {
		return resp(
			"Напишите предложение для проверки (1–12 слов). Например: «Проверь: Мен кітап оқыдым» или «Исправь: Ол жазады».",
			[]string{"Проверь: Мен оқимын", "Какой порядок слов в казахском?"},
			SourceGrammarRule, "", "",
		)
	}
	text := e.buildCheckText(CheckSentence(sentence))
	suggestions := []string{"Проверь другое предложение", "Какой порядок слов в казахском?", "Объясни 2 урок"}
	return resp(text, suggestions, SourceGrammarRule, "Проверка предложения", "sentence_check")
}

// errorExplanation — подсказка после неверного ответа. Правильный ответ
// не раскрывается никогда; в режиме теста подсказок нет вовсе.
func (e *Engine) errorExplanation(rc Context, mode string, lesson *Lesson) *Response {
	if mode == ModeTest {
		return resp(e.rules.Responses.TestMode, []string{}, SourceGrammarRule, "", "")
	}

	if lesson != nil {
		if sections := ParseSections(lesson.Content); sections.Mistakes != "" {
			text := fmt.Sprintf("Из урока «%s» (раздел «Частые ошибки»):\n%s",
				lesson.Title, truncate(sections.Mistakes, mistakesBlockMax))
			return resp(text, []string{"Объясни этот урок", "Какие ошибки в этом уроке?"}, SourceLesson, lesson.Topic, "")
		}
	}

	errType := strings.ToLower(rc.LastErrorType)
	ruleKey := kb.RuleDefault
	switch {
	case strings.Contains(errType, "word_order"):
		ruleKey = kb.RuleWordOrder
	case strings.Contains(errType, "grammar"):
		ruleKey = kb.RuleAffixes
	}
	rule := e.rules.Rule(ruleKey)

	suggestions := []string{"Объясни 1 урок", "Объясни грамматику"}
	if lesson != nil {
		suggestions = []string{"Объясни этот урок", "Какие ошибки в этом уроке?"}
	}
	return resp("Подсказка (правило): "+rule.Explanation, suggestions, SourceGrammarRule, "", ruleKey)
}

func (e *Engine) vocabularyQuestion(ctx context.Context, userID int64, msg, mode string, lesson *Lesson) (*Response, error) {
	word := e.extractWord(msg)

	// Грамматический термин — не словарный запрос.
	if word != "" && grammarTerms[strings.ToLower(word)] {
		out := e.grammarQuestion(msg, lesson)
		return out, nil
	}

	if word == "" {
		return resp(
			"Укажите слово. Например: «Что значит сәлем?» или «Перевод слова рақмет».",
			[]string{"Что значит сәлем?", "Перевод слова жақсы"},
			SourceGrammarRule, "", "",
		), nil
	}

	if strings.Contains(word, " ") {
		return resp(
			"Я показываю перевод отдельных слов. Спросите о конкретном слове: «Что значит студент?»",
			[]string{}, SourceGrammarRule, "", "",
		), nil
	}

	// Инвариант теста: переводы и содержимое словаря недоступны.
	if mode == ModeTest {
		return resp(e.rules.Responses.TestMode, []string{}, SourceGrammarRule, "", ""), nil
	}

	entry, err := e.vocab.Lookup(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("lookup word %q: %w", word, err)
	}
	if entry == nil {
		text := fmt.Sprintf("Слово «%s» не найдено в словаре платформы. Проверьте написание или добавьте слово в разделе «Словарь».", word)
		return resp(text, []string{"Добавить слово в словарь"}, SourceDictionary, "", ""), nil
	}

	parts := []string{fmt.Sprintf("Из словаря платформы: «%s» — %s.", entry.WordKZ, entry.TranslationRU)}
	if lesson != nil {
		parts = append(parts, fmt.Sprintf("Урок «%s» также содержит это слово.", lesson.Title))
	}
	if entry.Example != "" {
		parts = append(parts, fmt.Sprintf("Пример: %s.", entry.Example))
	}

	// Статус пользователя читается строго после словарной статьи.
	status, err := e.vocab.UserWordStatus(ctx, userID, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("user word status %q: %w", word, err)
	}
	suggestions := []string{}
	if status != nil {
		label := "изучено"
		if status.Status == "in_progress" {
			label = "изучаете"
		}
		parts = append(parts, fmt.Sprintf("В вашем словаре: %s (мастерство %d/5).", label, status.Mastery))
	} else {
		parts = append(parts, "Можете добавить в личный словарь в разделе «Словарь».")
		suggestions = []string{"Добавить в словарь"}
	}

	return resp(strings.Join(parts, " "), suggestions, SourceDictionary, "", ""), nil
}

// Фразы, запрашивающие общий обзор грамматики.
var summaryPhrases = []string{
	"какие правила", "правила есть", "основные правила", "правила в казахском", "объясни грамматику",
}

var summaryQualifiers = []string{"какие", "основн", "что есть", "расскажи", "объясни"}

func (e *Engine) grammarQuestion(msg string, lesson *Lesson) *Response {
	lower := strings.ToLower(msg)

	// Блок из урока, когда урок есть в контексте: сначала грамматика
	// этого урока, затем общее правило.
	lessonBlock := ""
	if lesson != nil && lesson.Content != "" {
		if sections := ParseSections(lesson.Content); sections.Grammar != "" {
			lessonBlock = fmt.Sprintf("**Из урока «%s»:**\n%s", lesson.Title, truncate(sections.Grammar, grammarAnswerMax))
		}
	}

	// Обзор "какие правила": всегда структурированный ответ, без отказов.
	wantsSummary := containsAny(lower, summaryPhrases) ||
		(strings.Contains(lower, "грамматик") && containsAny(lower, summaryQualifiers))
	if wantsSummary {
		text := e.buildGrammarSummary()
		source := SourceGrammarRule
		suggestions := []string{"Объясни этот урок", "Какие ошибки в этом уроке?", "Какой порядок слов в казахском?", "В чем разница сен и сіз?"}
		if lessonBlock != "" {
			text = lessonBlock + "\n\n" + text
			source = SourceLesson
			suggestions = append(
				[]string{fmt.Sprintf("Объясни урок «%s»", lesson.Title), "Какие ошибки в этом уроке?"},
				suggestions[:2]...,
			)
		}
		return resp(text, suggestions, source, "", e.routeGrammarRule(msg))
	}

	ruleKey := e.routeGrammarRule(msg)
	rule := e.rules.Rule(ruleKey)

	if lessonBlock != "" {
		text := lessonBlock + "\n\n**Дополнительно (A1):** " + rule.Explanation
		if len(rule.Examples) > 0 {
			text += "\n\nПримеры:\n" + bulletList(rule.Examples, 3)
		}
		suggestions := []string{fmt.Sprintf("Объясни урок «%s»", lesson.Title), "Какие ошибки в этом уроке?"}
		return resp(text, suggestions, SourceLesson, lesson.Topic, ruleKey)
	}

	text := "Правило грамматики (A1): " + rule.Explanation
	if len(rule.Examples) > 0 {
		text += "\n\nПримеры:\n" + bulletList(rule.Examples, 3)
	}
	suggestions := []string{"Объясни 1 урок", "Объясни грамматику", "Какой порядок слов в казахском?"}
	if lesson != nil {
		suggestions = []string{"Объясни этот урок", "Какие ошибки в этом уроке?"}
	}
	return resp(text, suggestions, SourceGrammarRule, "", ruleKey)
}

func (e *Engine) generalHelp(lesson *Lesson) *Response {
	if lesson != nil {
		text := fmt.Sprintf(
			"Я помощник по казахскому языку. Сейчас вы в уроке «%s». Могу объяснить урок, грамматику или частые ошибки — нажмите кнопку ниже.",
			lesson.Title,
		)
		suggestions := []string{"Объясни этот урок", "Какие ошибки в этом уроке?", "Объясни грамматику", "Что значит сәлем?"}
		return resp(text, suggestions, SourceGrammarRule, "", "")
	}
	return resp(
		"Я помогаю с казахским языком. Могу объяснить урок, грамматику, частые ошибки или перевести слово. Выберите вопрос ниже.",
		[]string{"Объясни 1 урок", "Объясни грамматику", "Какие ошибки в этом уроке?", "Что значит сәлем?", "Какой порядок слов в казахском?"},
		SourceGrammarRule, "", "",
	)
}
