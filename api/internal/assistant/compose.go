package assistant

import (
	"fmt"
	"strings"

	"til-bot/api/internal/assistant/kb"
)

// Сборка итогового текста из подписанных блоков. Пустой блок заменяется
// фиксированной заглушкой, но никогда не выпадает молча: форма ответа
// для интента постоянна.

// Пределы блоков в объяснении урока (в рунах).
const (
	objectiveMax      = 500
	grammarBlockMax   = 350
	grammarAnswerMax  = 400
	examplesBlockMax  = 300
	mistakesBlockMax  = 400
	mistakesAnswerMax = 600
)

// buildLessonExplanation собирает структурное объяснение урока:
// тема, цель, основное правило, примеры, частые ошибки.
func (e *Engine) buildLessonExplanation(lesson *Lesson) string {
	sections := ParseSections(lesson.Content)
	empty := e.rules.Responses.EmptyBlock

	block := func(s string, max int) string {
		if s == "" {
			return empty
		}
		return truncate(s, max)
	}

	var b strings.Builder
	topic := lesson.Topic
	if topic == "" {
		topic = empty
	}
	b.WriteString("**Тақырыбы / Тема:** " + topic)
	b.WriteString("\n\n**Мақсаты / Цель:**\n" + block(sections.Objective, objectiveMax))
	b.WriteString("\n\n**Негізгі ереже / Основное правило:**\n" + block(sections.Grammar, grammarBlockMax))
	b.WriteString("\n\n**Мысалдар / Примеры:**\n" + block(sections.Examples, examplesBlockMax))
	b.WriteString("\n\n**Жиі қателер / Частые ошибки:**\n" + block(sections.Mistakes, mistakesBlockMax))
	return b.String()
}

// grammarSummaryOrder — шесть правил обзора A1 в порядке показа.
var grammarSummaryOrder = []struct {
	title string
	key   string
}{
	{"1. Порядок слов (SOV)", kb.RuleWordOrder},
	{"2. Сен/Сіз (формальность)", kb.RuleSenSiz},
	{"3. Окончания настоящего времени", kb.RulePresentEndings},
	{"4. Вопросы (ма/ме/ба/бе)", kb.RuleQuestionParticles},
	{"5. Множественное число (-лар/-лер)", kb.RulePlural},
	{"6. Падежи (септік)", kb.RuleCasesIntro},
}

// buildGrammarSummary — структурный обзор грамматики A1 для вопросов
// вида "какие правила" / "объясни грамматику".
func (e *Engine) buildGrammarSummary() string {
	var b strings.Builder
	b.WriteString("**Основные правила грамматики A1 (казахский язык):**\n")
	for _, it := range grammarSummaryOrder {
		rule := e.rules.Rule(it.key)
		example := ""
		if len(rule.Examples) > 0 {
			example = rule.Examples[0]
		}
		fmt.Fprintf(&b, "\n**%s**\n%s\nПример: %s\n", it.title, rule.Explanation, example)
	}
	return strings.TrimRight(b.String(), "\n")
}

// buildCheckText превращает результат проверки предложения в ответ
// фиксированной формы: Қате табылды / Неге? / Дұрыс нұсқа / Қосымша мысал.
func (e *Engine) buildCheckText(cr CheckResult) string {
	if cr.OK() {
		return "**Қате табылды:** жоқ.\n\n" +
			"**Неге?** Сөйлем грамматикалық түрде дұрыс болып көрінеді (SOV, жұрнақтар).\n\n" +
			"**Дұрыс нұсқа:** өзгерту қажет емес.\n\n" +
			"**Қосымша мысал:** Мен оқимын. (Я читаю.)"
	}
	bullet := func(items []string) string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, "• "+it)
		}
		return strings.Join(out, "\n")
	}
	example := "Мен кітап оқыдым."
	if exs := e.rules.Rule(kb.RuleWordOrder).Examples; len(exs) > 0 {
		example = exs[0]
	}
	return fmt.Sprintf(
		"**Қате табылды:**\n%s\n\n**Неге?**\n%s\n\n**Дұрыс нұсқа:**\n%s\n\n**Қосымша мысал:** %s",
		bullet(cr.Errors), bullet(cr.Reasons), bullet(cr.Corrections), example,
	)
}

// bulletList — маркированный список не более чем из max примеров.
func bulletList(items []string, max int) string {
	if len(items) > max {
		items = items[:max]
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, "• "+it)
	}
	return strings.Join(out, "\n")
}

// Навигационные подсказки: точные фразы и подстроки, всё остальное —
// быстрые ответы. Проверка регистронезависимая, порядок сохраняется.
var (
	navExact      = []string{"Уроки", "Словарь"}
	navSubstrings = []string{"добавить", "открыть урок", "перечитать", "подробнее"}
)

// SplitSuggestions раскладывает подсказки на кнопки навигации и быстрые
// ответы для слоя UI. Дедупликация не выполняется.
func SplitSuggestions(suggestions []string) (nav, quick []string) {
	nav = []string{}
	quick = []string{}
	for _, s := range suggestions {
		lower := strings.ToLower(s)
		isNav := false
		for _, x := range navExact {
			if s == x {
				isNav = true
				break
			}
		}
		if !isNav {
			for _, sub := range navSubstrings {
				if strings.Contains(lower, sub) {
					isNav = true
					break
				}
			}
		}
		if isNav {
			nav = append(nav, s)
		} else {
			quick = append(quick, s)
		}
	}
	return nav, quick
}
