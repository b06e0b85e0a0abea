package assistant

import (
	"regexp"
	"strings"
)

// Разбор текста урока по маркерам-заголовкам. Контент урока — свободный
// текст с подписанными секциями; все варианты маркеров (двуязычные
// заголовки) перечислены здесь и только здесь. Усечение блоков делает
// композитор, не парсер.

// Sections — подписанные блоки, найденные в тексте урока.
// Пустая строка означает, что секции нет.
type Sections struct {
	Objective string // Оқу мақсаты / Цель урока
	Grammar   string // Грамматикалық нүкте
	Examples  string // Мысалдар / Примеры
	Mistakes  string // Жиі қателер / Частые ошибки
}

const sectionBreak = "\n## "

var parenRe = regexp.MustCompile(`\([^)]*\)`)

// sectionAfter возвращает блок от маркера до следующего заголовка "## ".
func sectionAfter(content, marker string, foldCase bool) (string, bool) {
	hay, needle := content, marker
	if foldCase {
		hay = strings.ToLower(content)
		needle = strings.ToLower(marker)
	}
	idx := strings.Index(hay, needle)
	if idx < 0 {
		return "", false
	}
	end := strings.Index(content[idx+1:], sectionBreak)
	if end < 0 {
		end = len(content)
	} else {
		end += idx + 1
	}
	return strings.TrimSpace(content[idx:end]), true
}

// ParseSections извлекает все известные секции из текста урока.
func ParseSections(content string) Sections {
	var s Sections
	if content == "" {
		return s
	}

	for _, marker := range []string{"Оқу мақсаты", "Цель урока"} {
		if block, ok := sectionAfter(content, marker, false); ok {
			block = strings.TrimSpace(strings.Replace(block, marker, "", 1))
			block = strings.TrimSpace(parenRe.ReplaceAllString(block, ""))
			if block != "" {
				s.Objective = block
				break
			}
		}
	}

	for _, marker := range []string{"Грамматикалық нүкте", "грамматик"} {
		if block, ok := sectionAfter(content, marker, true); ok {
			if len([]rune(block)) >= 20 {
				s.Grammar = block
				break
			}
		}
	}

	for _, marker := range []string{"Мысалдар", "Примеры", "section3_examples"} {
		if block, ok := sectionAfter(content, marker, false); ok {
			if len([]rune(block)) >= 20 {
				s.Examples = block
				break
			}
		}
	}

	if block, ok := sectionAfter(content, "Жиі қателер", false); ok {
		s.Mistakes = block
	}

	return s
}

// truncate обрезает строку до max рун с многоточием. Работает по рунам,
// чтобы не резать кириллицу посреди символа.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
