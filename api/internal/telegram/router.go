// Package telegram — Telegram-интерфейс ассистента: свободный чат с
// движком, подсказки как inline-кнопки, уточнение Проще/Подробнее/Примеры
// через callback-кнопки.
package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"til-bot/api/internal/assistant"
)

type Router struct {
	Bot    *tgbotapi.BotAPI
	Engine *assistant.Engine
	Log    *zap.Logger
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	cid := upd.Message.Chat.ID

	if upd.Message.IsCommand() {
		r.HandleCommand(upd)
		return
	}
	if txt := strings.TrimSpace(upd.Message.Text); txt != "" {
		r.respond(cid, userID(upd), txt, "")
	}
}

func userID(upd tgbotapi.Update) int64 {
	if upd.Message != nil && upd.Message.From != nil {
		return upd.Message.From.ID
	}
	return 0
}

func (r *Router) HandleCommand(upd tgbotapi.Update) {
	cid := upd.Message.Chat.ID
	switch upd.Message.Command() {
	case "start":
		resetSession(cid)
		r.send(cid, "Сәлем! Я помощник по казахскому языку: объясняю уроки, грамматику и слова платформы.\n"+
			"Команды: /mode, /health. Просто напишите вопрос, например «Объясни 2 урок».")
	case "health":
		r.send(cid, "✅ OK")
	case "mode":
		r.handleModeCommand(cid, upd.Message.Text)
	default:
		r.send(cid, "Неизвестная команда")
	}
}

// handleModeCommand переключает режим чата.
// Форматы:
//
//	/mode lesson <id>
//	/mode test
//	/mode vocabulary
//	/mode free
func (r *Router) handleModeCommand(chatID int64, cmd string) {
	args := strings.Fields(strings.TrimSpace(strings.TrimPrefix(cmd, "/mode")))
	s := session(chatID)
	if len(args) == 0 {
		r.send(chatID, "Текущий режим: "+s.Mode+
			"\nИспользование:\n/mode lesson <id>\n/mode test\n/mode vocabulary\n/mode free")
		return
	}
	switch strings.ToLower(args[0]) {
	case "lesson":
		if len(args) < 2 {
			r.send(chatID, "Укажите id урока: /mode lesson 2")
			return
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || id <= 0 {
			r.send(chatID, "Неверный id урока.")
			return
		}
		s.Mode = "lesson"
		s.LessonID = id
		r.send(chatID, "✅ Режим: урок "+args[1])
	case "test":
		s.Mode = "test"
		s.LessonID = 0
		r.send(chatID, "✅ Режим: тест. Подсказки и переводы отключены.")
	case "vocabulary":
		s.Mode = "vocabulary"
		s.LessonID = 0
		r.send(chatID, "✅ Режим: словарь")
	case "free":
		s.Mode = "free"
		s.LessonID = 0
		r.send(chatID, "✅ Режим: свободный")
	default:
		r.send(chatID, "Неизвестный режим. Доступны: lesson | test | vocabulary | free")
	}
}

// respond прогоняет текст через движок и отправляет ответ с кнопками.
// refine непустой, когда ход пришёл с кнопки уточнения.
func (r *Router) respond(chatID, uid int64, text, refine string) {
	s := session(chatID)
	rc := assistant.Context{
		Mode:       s.Mode,
		LessonID:   s.LessonID,
		RefineMode: refine,
		LastTopic:  s.LastTopic,
		LastRule:   s.LastRule,
	}

	out, err := r.Engine.ProcessMessage(context.Background(), uid, text, rc)
	if err != nil {
		r.log().Error("engine failed", zap.Int64("chat_id", chatID), zap.Error(err))
		r.send(chatID, "База знаний временно недоступна. Попробуйте ещё раз чуть позже.")
		return
	}

	// Переносим состояние уточнения в следующий ход.
	s.LastTopic = out.LastTopic
	s.LastRule = out.LastRule
	s.Suggestions = out.Suggestions

	msg := tgbotapi.NewMessage(chatID, out.Text)
	msg.ParseMode = "Markdown"
	if len(out.Suggestions) > 0 || out.LastRule != "" {
		msg.ReplyMarkup = makeReplyKeyboard(out.Suggestions, out.LastRule != "")
	}
	if _, err := r.Bot.Send(msg); err != nil {
		// Markdown из текста урока может не распарситься; шлём как есть.
		plain := tgbotapi.NewMessage(chatID, out.Text)
		if len(out.Suggestions) > 0 || out.LastRule != "" {
			plain.ReplyMarkup = makeReplyKeyboard(out.Suggestions, out.LastRule != "")
		}
		_, _ = r.Bot.Send(plain)
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = r.Bot.Send(msg)
}

func (r *Router) log() *zap.Logger {
	if r.Log != nil {
		return r.Log
	}
	return zap.NewNop()
}
