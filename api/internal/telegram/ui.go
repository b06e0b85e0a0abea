package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Клавиатура ответа: подсказки по одной в ряд (русские фразы длинные),
// плюс ряд уточнения Проще/Подробнее/Примеры, когда есть что уточнять.
func makeReplyKeyboard(suggestions []string, withRefine bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(suggestions)+1)
	for i, s := range suggestions {
		btn := tgbotapi.NewInlineKeyboardButtonData(s, fmt.Sprintf("sugg:%d", i))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	if withRefine {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Проще", "refine:simple"),
			tgbotapi.NewInlineKeyboardButtonData("Подробнее", "refine:detailed"),
			tgbotapi.NewInlineKeyboardButtonData("Примеры", "refine:examples"),
		))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
