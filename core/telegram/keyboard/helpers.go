// Package keyboard builds inline reply markups.
package keyboard

import (
	"github.com/mattn/go-runewidth"

	tele "gopkg.in/telebot.v4"
)

// InlineBtn describes a convenience wrapper for inline button properties.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

const (
	defaultCancelButtonText = "❌ Cancel"

	// LabelWidth is the display width a button label is cut to.
	LabelWidth = 32
)

// Label truncates text to width display cells, ending with "..." when cut.
// Wide (CJK) runes count as two cells.
func Label(text string, width int) string {
	if width <= 0 {
		width = LabelWidth
	}
	return runewidth.Truncate(text, width, "...")
}

// InlineButtons builds an inline keyboard where each provided button is placed on its own row.
func InlineButtons(buttons []InlineBtn) *tele.ReplyMarkup {
	rows := make([][]InlineBtn, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []InlineBtn{b})
	}
	return InlineButtonsRows(rows...)
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		}
		inline[i] = r
	}
	markup.InlineKeyboard = inline
	return markup
}

// SingleCancelMarkup creates an inline keyboard with one cancel button bound to unique.
// An optional label replaces the default text.
func SingleCancelMarkup(unique string, label ...string) *tele.ReplyMarkup {
	text := defaultCancelButtonText
	if len(label) > 0 && label[0] != "" {
		text = label[0]
	}
	return InlineButtons([]InlineBtn{{Text: text, Unique: unique, Data: "cancel"}})
}
