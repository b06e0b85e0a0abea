package assistant

import "strings"

// Детерминированная проверка предложения (1–12 слов): порядок слов SOV
// и смешение формальности. Проверки независимы, ошибки накапливаются.

// Личные окончания настоящего времени и распространённые глагольные
// окончания прошедшего (оқыдым, отырмыз, жазады).
var presentEndings = []string{
	"мын", "мін", "сың", "сің", "сыз", "сіз",
	"ды", "ді", "ты", "ті",
	"дым", "дім", "тым", "тім", "мыз", "міз",
}

// Вопросительные частицы: предложение с такой частицей в конце не
// считается ошибочным независимо от пунктуации.
var questionParticles = []string{"ма", "ме", "ба", "бе", "па", "пе"}

// CheckResult — накопленные результаты проверки; индексы трёх списков
// согласованы.
type CheckResult struct {
	Errors      []string
	Reasons     []string
	Corrections []string
}

// OK сообщает, что ошибок не найдено.
func (cr CheckResult) OK() bool { return len(cr.Errors) == 0 }

func hasPresentEnding(word string) bool {
	if len([]rune(word)) <= 2 {
		return false
	}
	for _, e := range presentEndings {
		if strings.HasSuffix(word, e) {
			return true
		}
	}
	return false
}

// isParticleQuestion: последнее слово (без знаков препинания) — частица
// ма/ме/ба/бе/па/пе.
func isParticleQuestion(words []string) bool {
	if len(words) == 0 {
		return false
	}
	last := strings.ToLower(strings.TrimRight(words[len(words)-1], "?!."))
	for _, p := range questionParticles {
		if last == p {
			return true
		}
	}
	return false
}

// CheckSentence прогоняет предложение через правила. Текст ответа по
// результату собирает движок (см. buildCheckText).
func CheckSentence(sentence string) CheckResult {
	s := strings.TrimSpace(sentence)
	words := strings.Fields(s)
	var cr CheckResult
	if len(words) == 0 {
		return cr
	}

	// SOV: глагол обычно в конце. Флаг только когда ни одно слово не несёт
	// глагольного окончания и последнее тоже без него.
	anyEnding := false
	for _, w := range words {
		if hasPresentEnding(strings.ToLower(strings.TrimRight(w, "?!.,"))) {
			anyEnding = true
			break
		}
	}
	last := strings.ToLower(strings.TrimRight(words[len(words)-1], "?!.,"))
	verbAtEnd := hasPresentEnding(last)

	if len(words) >= 2 && !anyEnding && !verbAtEnd && !isParticleQuestion(words) {
		cr.Errors = append(cr.Errors, "Етістік сөйлем соңында болуы керек (SOV).")
		cr.Reasons = append(cr.Reasons, "Қазақ тілінде тәртіп: подлежащее + толықтауыш + етістік.")
		cr.Corrections = append(cr.Corrections, "Мысалы: Мен кітап оқыдым. (Подлежащее + дополнение + глагол.)")
	}

	// Смешение формальности: "сен" рядом с формальным жұрнақ -ңыз/-ыңыз.
	lower := strings.ToLower(s)
	if strings.Contains(lower, "сен") && (strings.Contains(lower, "ңыз") || strings.Contains(lower, "ыңыз")) {
		cr.Errors = append(cr.Errors, "«Сен» бейресми; «-ңыз» формальды жұрнақ, сәйкессіздік.")
		cr.Reasons = append(cr.Reasons, "Үлкендерге «сіз» және «-ңыз»/«-ыңыз» қолданыңыз.")
		cr.Corrections = append(cr.Corrections, "Сіз қалайсыз? (формальды)")
	}

	return cr
}
