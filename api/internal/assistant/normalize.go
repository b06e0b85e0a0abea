package assistant

import "strings"

// Символы, которые вычищаются из извлечённых токенов.
// Само сообщение не трогаем: нормализация применяется только к кандидатам.
const strippedPunct = "«»\"'?.,;:!"

// cleanWord убирает кавычки и пунктуацию внутри и по краям токена.
func cleanWord(w string) string {
	w = strings.Map(func(r rune) rune {
		if strings.ContainsRune(strippedPunct, r) {
			return -1
		}
		return r
	}, w)
	return strings.TrimSpace(w)
}

// normalizeWord приводит слово к нижнему регистру и исправляет известные
// варианты написания (рахмет -> рақмет). Идемпотентна.
func (e *Engine) normalizeWord(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	if fixed, ok := e.rules.Spelling[w]; ok {
		return fixed
	}
	return w
}

// containsAny ищет любую из подстрок в уже приведённой к нижнему
// регистру строке. Первое совпадение побеждает.
func containsAny(lower string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
