package telegram

import (
	"github.com/go-telegram/bot/models"

	"contribot/internal/conversation"
)

// inlineKeyboard lays the options out in rows of msg.Columns buttons.
func inlineKeyboard(msg conversation.Message) *models.InlineKeyboardMarkup {
	if len(msg.Options) == 0 {
		return nil
	}
	cols := msg.Columns
	if cols < 1 {
		cols = 1
	}

	rows := make([][]models.InlineKeyboardButton, 0, (len(msg.Options)+cols-1)/cols)
	var row []models.InlineKeyboardButton
	for _, opt := range msg.Options {
		row = append(row, models.InlineKeyboardButton{Text: opt.Label, CallbackData: opt.Token})
		if len(row) == cols {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
