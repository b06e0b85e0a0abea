package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleLessonContent = `# Урок 2

## Оқу мақсаты (Цель урока)
Научиться здороваться и прощаться на казахском языке.

## Грамматикалық нүкте
Окончания настоящего времени: мен -мын/-мін, сен -сың/-сің, сіз -сыз/-сіз.

## Мысалдар
Сәлем! Қалайсың? — Привет! Как ты?
Сау болыңыз! — До свидания!

## Жиі қателер
Смешение «сен» с формальными окончаниями «-ңыз».
`

func TestParseSections(t *testing.T) {
	s := ParseSections(sampleLessonContent)

	assert.Equal(t, "Научиться здороваться и прощаться на казахском языке.", s.Objective)
	assert.Contains(t, s.Grammar, "Окончания настоящего времени")
	assert.Contains(t, s.Examples, "Сәлем! Қалайсың?")
	assert.Contains(t, s.Mistakes, "Смешение «сен»")

	// Блок заканчивается на следующем заголовке.
	assert.NotContains(t, s.Objective, "Грамматикалық")
	assert.NotContains(t, s.Grammar, "Мысалдар")
}

func TestParseSectionsRussianMarkers(t *testing.T) {
	content := "## Цель урока\nПознакомиться с падежами (септік).\n\n## Примеры\nүй — үйде (в доме), мектеп — мектепке (в школу)\n"
	s := ParseSections(content)
	// Скобки в цели вычищаются.
	assert.Equal(t, "Познакомиться с падежами .", s.Objective)
	assert.Contains(t, s.Examples, "үйде")
	assert.Empty(t, s.Mistakes)
}

func TestParseSectionsEmpty(t *testing.T) {
	s := ParseSections("")
	assert.Empty(t, s.Objective)
	assert.Empty(t, s.Grammar)
	assert.Empty(t, s.Examples)
	assert.Empty(t, s.Mistakes)

	// Текст без маркеров — все секции пустые.
	s = ParseSections("просто текст без заголовков")
	assert.Empty(t, s.Objective)
	assert.Empty(t, s.Mistakes)
}

func TestTruncateByRunes(t *testing.T) {
	s := strings.Repeat("ә", 10)
	assert.Equal(t, s, truncate(s, 10))
	got := truncate(s, 4)
	assert.Equal(t, "әәәә...", got)
	// Усечение не режет кириллицу посреди руны.
	assert.True(t, strings.HasPrefix(got, "әәәә"))
}
