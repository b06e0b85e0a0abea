package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleCallback разбирает нажатия inline-кнопок.
// Данные: "sugg:<индекс подсказки>" или "refine:simple|detailed|examples".
func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	// Телеграм ждёт подтверждение, иначе кнопка «крутится».
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, ""))

	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	var uid int64
	if cb.From != nil {
		uid = cb.From.ID
	}

	switch {
	case strings.HasPrefix(cb.Data, "refine:"):
		mode := strings.TrimPrefix(cb.Data, "refine:")
		s := session(chatID)
		if s.LastTopic == "" && s.LastRule == "" {
			r.send(chatID, "Сначала задайте вопрос, потом уточняйте.")
			return
		}
		// Текст хода не важен: движок по refine-режиму переизлагает
		// прошлую тему.
		r.respond(chatID, uid, "уточни", mode)

	case strings.HasPrefix(cb.Data, "sugg:"):
		idx, err := strconv.Atoi(strings.TrimPrefix(cb.Data, "sugg:"))
		if err != nil {
			return
		}
		s := session(chatID)
		if idx < 0 || idx >= len(s.Suggestions) {
			r.send(chatID, "Кнопка устарела, напишите вопрос текстом.")
			return
		}
		r.respond(chatID, uid, s.Suggestions[idx], "")

	default:
		r.log().Warn("unknown callback", zap.String("data", cb.Data))
	}
}
