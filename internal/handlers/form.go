package handlers

import (
	"errors"
	"fmt"

	tghelpers "github.com/m3rciful/filmbot/core/telegram/helpers"
	"github.com/m3rciful/filmbot/core/telegram/keyboard"
	"github.com/m3rciful/filmbot/core/telegram/state"
	"github.com/m3rciful/filmbot/internal/film"
	"github.com/m3rciful/filmbot/internal/form"

	tele "gopkg.in/telebot.v4"
)

func cancelMarkup() *tele.SendOptions {
	return &tele.SendOptions{ReplyMarkup: keyboard.SingleCancelMarkup(CallbackFormCancel)}
}

// AddFilm starts the creation dialogue and asks for the film name.
func (h *Handlers) AddFilm(c tele.Context) error {
	var userID int64
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	err := h.forms.Begin(tghelpers.BuildContext(c), state.ConversationID(c), userID)
	var authErr *form.AuthorizationError
	if errors.As(err, &authErr) {
		return tghelpers.SendText(c, msgAdminOnly)
	}
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, form.Prompt(form.StepName), cancelMarkup())
}

// RejectAdmin replies to users who are not allowed to run admin commands.
func RejectAdmin(c tele.Context) error {
	return tghelpers.SendText(c, msgAdminOnly)
}

// FormStep feeds a text message into the conversation's dialogue.
func (h *Handlers) FormStep(c tele.Context) error {
	out, err := h.forms.Accept(tghelpers.BuildContext(c), state.ConversationID(c), c.Text())
	var buildErr *film.ConstructionError
	switch {
	case errors.Is(err, form.ErrNoSession):
		return nil
	case errors.As(err, &buildErr):
		return tghelpers.SendText(c, msgFormIncomplete)
	case err != nil:
		if sendErr := tghelpers.SendText(c, msgSaveFailed); sendErr != nil {
			return errors.Join(err, sendErr)
		}
		return err
	case out.Done:
		return tghelpers.SendText(c, fmt.Sprintf(msgFilmAdded, out.Film.Name))
	}
	return tghelpers.SendText(c, form.Prompt(out.Step), cancelMarkup())
}

// CancelForm drops the conversation's dialogue.
func (h *Handlers) CancelForm(c tele.Context) error {
	if h.forms.Cancel(tghelpers.BuildContext(c), state.ConversationID(c)) {
		return tghelpers.SendText(c, msgFormCancelled)
	}
	return tghelpers.SendText(c, msgNothingToStop)
}
