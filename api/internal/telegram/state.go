package telegram

import "sync"

// Контекст диалога на чат: режим, выбранный урок и перенесённое
// состояние уточнения. Движок состояния не хранит, поэтому бот сам
// носит last_topic/last_rule между ходами.
type chatSession struct {
	Mode     string // lesson | test | vocabulary | free
	LessonID int64

	LastTopic string
	LastRule  string

	// Подсказки последнего ответа: callback-данные Telegram ограничены
	// 64 байтами, поэтому кнопки ссылаются на индекс ("sugg:N").
	Suggestions []string
}

var sessions sync.Map // chatID -> *chatSession

func session(chatID int64) *chatSession {
	if v, ok := sessions.Load(chatID); ok {
		return v.(*chatSession)
	}
	s := &chatSession{Mode: "free"}
	sessions.Store(chatID, s)
	return s
}

func resetSession(chatID int64) {
	sessions.Store(chatID, &chatSession{Mode: "free"})
}
