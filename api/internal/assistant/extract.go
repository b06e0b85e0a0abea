package assistant

import (
	"regexp"
	"strings"
)

// Извлечение слотов из свободного текста: номер урока, искомое слово,
// предложение для проверки. Все списки шаблонов упорядочены, первое
// совпадение побеждает.

var lessonNumPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)объясни\s+(\d+)\s*(?:й|ый|ий)?\s*урок`),
	regexp.MustCompile(`(?i)объясни\s+урок\s+[№#]?\s*(\d+)`),
	regexp.MustCompile(`(?i)разбор\s+урока\s+(\d+)`),
	regexp.MustCompile(`(?i)урок\s+(\d+)`),
	regexp.MustCompile(`(?i)(\d+)\s*урок`),
	regexp.MustCompile(`(?i)[№#]\s*(\d+)\s*урок`),
}

// ParseLessonNumber извлекает 1-based номер урока из сообщения:
// "объясни 2 урок", "урок 5", "разбор урока 10", "№3 урок".
// Возвращает 0, если номера нет или он вне диапазона [1,100].
func ParseLessonNumber(message string) int {
	msg := strings.TrimSpace(message)
	for _, pat := range lessonNumPatterns {
		m := pat.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		n := 0
		for _, c := range m[1] {
			n = n*10 + int(c-'0')
		}
		if n >= 1 && n <= 100 {
			return n
		}
	}
	return 0
}

var (
	quotedWordRe = regexp.MustCompile(`[«"]([^»"]+)[»"]`)

	// Go-шный \w не знает кириллицу, поэтому класс буквы задан явно.
	wordTriggerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)слово\s+([а-яёa-zәғқңөұүһі\-]+)`),
		regexp.MustCompile(`(?i)(?:что значит|как переводится|значение слова|что такое)\s*[:"]?\s*([а-яёa-zәғқңөұүһі\-]+)`),
		regexp.MustCompile(`(?i)(?:как будет|как сказать)\s+на казахском\s+([а-яёa-zәғқңөұүһі\-]+)`),
		regexp.MustCompile(`(?i)(?:как будет|по-казахски)\s+([а-яёa-zәғқңөұүһі\-]+)`),
	}
)

var quotedStop = map[string]bool{"что": true, "как": true, "слово": true, "это": true}

var wordSkip = map[string]bool{
	"что": true, "как": true, "слово": true, "это": true, "этот": true,
	"на": true, "по": true, "в": true, "казахском": true, "казахски": true, "языке": true,
}

var tailSkip = map[string]bool{"что": true, "как": true, "слово": true, "это": true, "этот": true}

// extractWord извлекает искомое слово. Приоритет: кавычки, затем
// триггерные обороты ("что значит X"), затем последний токен короткого
// сообщения. Кандидат проходит нормализацию написания.
func (e *Engine) extractWord(message string) string {
	msg := strings.TrimSpace(message)

	for _, m := range quotedWordRe.FindAllStringSubmatch(msg, -1) {
		cleaned := cleanWord(m[1])
		if len([]rune(cleaned)) >= 2 && !quotedStop[strings.ToLower(cleaned)] {
			return e.normalizeWord(cleaned)
		}
	}

	for _, pat := range wordTriggerPatterns {
		m := pat.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		cleaned := cleanWord(m[1])
		if len([]rune(cleaned)) >= 2 && !wordSkip[strings.ToLower(cleaned)] {
			return e.normalizeWord(cleaned)
		}
	}

	// Короткое сообщение: берём последний подходящий токен.
	parts := strings.Fields(msg)
	if len(parts) <= 4 {
		for i := len(parts) - 1; i >= 0; i-- {
			cleaned := cleanWord(parts[i])
			if len([]rune(cleaned)) >= 2 && !tailSkip[strings.ToLower(cleaned)] {
				return e.normalizeWord(cleaned)
			}
		}
	}
	return ""
}

const kazakhLetters = "әғқңөұүһі"

// maxCheckWords — жёсткий предел размера входа грамматической проверки.
const maxCheckWords = 12

var quotedSentenceRe = regexp.MustCompile(`[«"']([^»"']{2,120})[»"']`)

var sentenceTriggers = []string{"проверь", "исправь", "правильно ли", "тексер", "дұрыс па"}

var leadingDashRe = regexp.MustCompile(`^[:—\-]+`)

// extractSentence извлекает предложение для проверки (1–12 слов).
// Приоритет: кавычки, затем хвост после триггера ("проверь: ..."),
// затем всё сообщение, если оно короткое и содержит казахские буквы.
func extractSentence(message string) string {
	msg := strings.TrimSpace(message)

	if m := quotedSentenceRe.FindStringSubmatch(msg); m != nil {
		s := strings.TrimSpace(m[1])
		if n := len(strings.Fields(s)); n >= 1 && n <= maxCheckWords {
			return s
		}
	}

	lower := strings.ToLower(msg)
	for _, trigger := range sentenceTriggers {
		idx := strings.Index(lower, trigger)
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(msg[idx+len(trigger):])
		rest = strings.TrimSpace(leadingDashRe.ReplaceAllString(rest, ""))
		if rest == "" {
			continue
		}
		words := strings.Fields(rest)
		if len(words) > maxCheckWords {
			words = words[:maxCheckWords]
		}
		return strings.Join(words, " ")
	}

	if n := len(strings.Fields(msg)); n >= 1 && n <= maxCheckWords &&
		strings.ContainsAny(strings.ToLower(msg), kazakhLetters) {
		return msg
	}
	return ""
}
