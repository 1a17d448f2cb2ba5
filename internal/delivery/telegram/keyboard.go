package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/leonaffi-byte/amazon-photo-bot/internal/domain"
	"github.com/leonaffi-byte/amazon-photo-bot/internal/usecase"
)

// Callback data sent back by inline keyboard buttons
const (
	cbFilterYes    = "filter:yes"
	cbFilterNo     = "filter:no"
	cbPrev         = "nav:prev"
	cbNext         = "nav:next"
	cbToggleFilter = "nav:change"
	cbNoop         = "nav:noop"
)

// filterKeyboard asks whether to limit results to free-delivery items
func filterKeyboard(threshold float64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✈️ Free delivery only (cart ≥ $%.0f)", threshold),
				cbFilterYes,
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌐 Show all items", cbFilterNo),
		),
	)
}

// resultsKeyboard builds the paginated results keyboard. Each visible
// listing gets a shortened affiliate link button, followed by a
// navigation row and a filter toggle.
func resultsKeyboard(sess usecase.Session, links domain.LinkShortener, marketplace, associateTag string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for i, item := range sess.PageItems() {
		url := links.Shorten(item.AffiliateURL(marketplace, associateTag))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(
				fmt.Sprintf("🛒 #%d  View on Amazon", sess.PageOffset()+i+1),
				url,
			),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if sess.Page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀", cbPrev))
	}
	nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(
		fmt.Sprintf("· %d / %d ·", sess.Page+1, sess.TotalPages()),
		cbNoop,
	))
	if sess.Page < sess.TotalPages()-1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("▶", cbNext))
	}
	rows = append(rows, nav)

	toggle := "✈️ Free delivery only"
	if sess.FilterEnabled {
		toggle = "🌐 Show all"
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(toggle, cbToggleFilter),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
