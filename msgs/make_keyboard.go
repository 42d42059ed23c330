package msgs

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bots-empire/adnet-bot/assets"
)

/*
==================================================
		InlineMarkUp
==================================================
*/

type InlineMarkUp struct {
	Rows []InlineRow
}

func NewIlMarkUp(rows ...InlineRow) InlineMarkUp {
	return InlineMarkUp{
		Rows: rows,
	}
}

type InlineRow struct {
	Buttons []InlineButtons
}

type InlineButtons interface {
	build() tgbotapi.InlineKeyboardButton
}

func NewIlRow(buttons ...InlineButtons) InlineRow {
	return InlineRow{
		Buttons: buttons,
	}
}

func (m InlineMarkUp) Build() tgbotapi.InlineKeyboardMarkup {
	var replyMarkUp tgbotapi.InlineKeyboardMarkup

	for _, row := range m.Rows {
		replyMarkUp.InlineKeyboard = append(replyMarkUp.InlineKeyboard,
			row.buildInlineRow())
	}
	return replyMarkUp
}

func (r InlineRow) buildInlineRow() []tgbotapi.InlineKeyboardButton {
	var replyRow []tgbotapi.InlineKeyboardButton

	for _, butt := range r.Buttons {
		replyRow = append(replyRow, butt.build())
	}
	return replyRow
}

type InlineDataButton struct {
	textKey string
	data    string
}

func NewIlDataButton(key, data string) InlineDataButton {
	return InlineDataButton{
		textKey: key,
		data:    data,
	}
}

func (b InlineDataButton) build() tgbotapi.InlineKeyboardButton {
	text := assets.LangText(b.textKey)
	return tgbotapi.NewInlineKeyboardButtonData(text, b.data)
}

type InlineURLButton struct {
	textKey string
	url     string
}

func NewIlURLButton(key, url string) InlineURLButton {
	return InlineURLButton{
		textKey: key,
		url:     url,
	}
}

func (b InlineURLButton) build() tgbotapi.InlineKeyboardButton {
	text := assets.LangText(b.textKey)
	return tgbotapi.NewInlineKeyboardButtonURL(text, b.url)
}

type InlineAdminButton struct {
	textKey string
	data    string
}

func NewIlAdminButton(key, data string) InlineAdminButton {
	return InlineAdminButton{
		textKey: key,
		data:    data,
	}
}

func (b InlineAdminButton) build() tgbotapi.InlineKeyboardButton {
	text := assets.AdminText(b.textKey)
	return tgbotapi.NewInlineKeyboardButtonData(text, b.data)
}
