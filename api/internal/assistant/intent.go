package assistant

import (
	"strings"

	"til-bot/api/internal/assistant/kb"
)

// Триггеры, которые вместе с номером урока дают lesson_explanation
// в обход таблицы ключевых слов: явная ссылка на урок — самый сильный
// и наименее двусмысленный сигнал.
var lessonTriggers = []string{"объясни", "урок", "разбор", "о чем", "что в уроке"}

// classify относит непустое сообщение ровно к одному интенту.
// Сначала спец-случай "номер урока + триггер", затем таблица ключевых
// слов в порядке приоритета; первое совпадение побеждает. Пересечения
// ключевых слов между интентами разрешаются только порядком списка.
func (e *Engine) classify(message string) Intent {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return IntentUnknown
	}

	if ParseLessonNumber(message) > 0 && containsAny(lower, lessonTriggers) {
		return IntentLessonExplanation
	}

	for _, ik := range e.rules.Intents {
		for _, kw := range ik.Keywords {
			if strings.Contains(lower, kw) {
				return Intent(ik.Intent)
			}
		}
	}
	return IntentUnknown
}

// routeGrammarRule выбирает ключ правила грамматики по тематическим
// группам ключевых слов. Группы проверяются в фиксированном порядке,
// иначе default.
func (e *Engine) routeGrammarRule(message string) string {
	lower := strings.ToLower(message)
	for _, rt := range e.rules.Routes {
		if containsAny(lower, rt.Keywords) {
			return rt.Rule
		}
	}
	return kb.RuleDefault
}
