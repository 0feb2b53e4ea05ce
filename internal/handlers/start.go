package handlers

import (
	"fmt"

	"github.com/m3rciful/filmbot/core/telegram/format"
	tghelpers "github.com/m3rciful/filmbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Start greets the user by full name.
func (h *Handlers) Start(c tele.Context) error {
	greeting := fmt.Sprintf("Hello, %s!", format.Bold(tghelpers.FullName(c.Sender())))
	return tghelpers.SendHTML(c, format.Lines(greeting, msgStartHint))
}
