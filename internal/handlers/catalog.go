package handlers

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/filmbot/core/logger"
	"github.com/m3rciful/filmbot/core/telegram/callbacks"
	"github.com/m3rciful/filmbot/core/telegram/format"
	tghelpers "github.com/m3rciful/filmbot/core/telegram/helpers"
	"github.com/m3rciful/filmbot/core/telegram/keyboard"
	"github.com/m3rciful/filmbot/internal/catalog"
	"github.com/m3rciful/filmbot/internal/film"

	tele "gopkg.in/telebot.v4"
)

// Films replies with one button per film; the button payload is the film's index.
func (h *Handlers) Films(c tele.Context) error {
	films, err := h.catalog.List(tghelpers.BuildContext(c))
	if err != nil {
		return err
	}
	if len(films) == 0 {
		return tghelpers.SendText(c, msgCatalogEmpty)
	}
	return tghelpers.SendText(c, msgFilmList, &tele.SendOptions{ReplyMarkup: FilmsKeyboard(films)})
}

// FilmsKeyboard renders the film list as inline buttons labelled with truncated names.
func FilmsKeyboard(films []film.Film) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, len(films))
	for i, f := range films {
		buttons[i] = keyboard.InlineBtn{
			Text:   keyboard.Label(f.Name, keyboard.LabelWidth),
			Unique: CallbackFilm,
			Data:   strconv.Itoa(i),
		}
	}
	return keyboard.InlineButtons(buttons)
}

// FilmDetails sends the poster of the selected film with its card as caption.
func (h *Handlers) FilmDetails(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	i, err := callbacks.PayloadInt(c)
	if err != nil {
		logger.Warn(ctx, "tg", "film.select",
			slog.String("status", "skip"),
			slog.String("reason", "bad_payload"),
		)
		return tghelpers.SendText(c, msgFilmNotFound)
	}

	f, err := h.catalog.Get(ctx, i)
	if errors.Is(err, catalog.ErrIndexOutOfRange) {
		logger.Warn(ctx, "tg", "film.select",
			slog.String("status", "skip"),
			slog.Int("film_index", i),
			slog.String("reason", "out_of_range"),
		)
		return tghelpers.SendText(c, msgFilmNotFound)
	}
	if err != nil {
		return err
	}

	logger.Debug(ctx, "tg", "film.select",
		slog.String("status", "ok"),
		slog.Int("film_index", i),
		slog.String("film", logger.SanitizeLimit(f.Name, 128)),
	)
	return tghelpers.SendPhoto(c, &tele.Photo{
		File:    tele.FromURL(f.Poster),
		Caption: Caption(f),
	})
}

// Caption renders a film card for HTML parse mode.
func Caption(f film.Film) string {
	return strings.Join([]string{
		format.Field("Film", f.Name),
		format.Field("Description", f.Description),
		format.Field("Rating", string(f.Rating)),
		format.Field("Genre", f.Genre),
		format.Field("Actors", strings.Join(f.Actors, film.ActorSeparator)),
	}, "\n")
}
