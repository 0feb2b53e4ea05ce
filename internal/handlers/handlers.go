// Package handlers implements the bot's chat surface: greeting, catalog browsing
// and the administrator's film creation dialogue.
package handlers

import (
	"context"
	"fmt"

	"github.com/m3rciful/filmbot/internal/film"
	"github.com/m3rciful/filmbot/internal/form"

	tg "github.com/m3rciful/filmbot/core/telegram"
	"github.com/m3rciful/filmbot/core/telegram/commands"
	"github.com/m3rciful/filmbot/core/telegram/state"
)

// Callback unique keys.
const (
	CallbackFilm       = "film"
	CallbackFormCancel = "form_cancel"
)

// Catalog is the read side of the film store.
type Catalog interface {
	List(ctx context.Context) ([]film.Film, error)
	Get(ctx context.Context, i int) (film.Film, error)
}

// Handlers holds the collaborators shared by every handler.
type Handlers struct {
	catalog Catalog
	forms   *form.Machine
}

// New returns handlers reading from catalog and running creation dialogues through forms.
func New(catalog Catalog, forms *form.Machine) *Handlers {
	return &Handlers{catalog: catalog, forms: forms}
}

// Register adds commands and callbacks to reg and binds every form step in sessions to FormStep.
func (h *Handlers) Register(reg *tg.Registry, sessions state.Manager) error {
	cmds := []struct {
		name string
		cmd  commands.Command
	}{
		{"/start", commands.Command{Handler: h.Start, Description: "Start the conversation"}},
		{"/films", commands.Command{Handler: h.Films, Description: "Browse the film list"}},
		{"/add_film", commands.Command{Handler: h.AddFilm, Description: "Add a film", AdminOnly: true}},
	}
	for _, c := range cmds {
		if err := reg.RegisterCommand(c.name, c.cmd); err != nil {
			return fmt.Errorf("handlers: %w", err)
		}
	}
	if err := reg.RegisterCallback(CallbackFilm, h.FilmDetails); err != nil {
		return fmt.Errorf("handlers: %w", err)
	}
	if err := reg.RegisterCallback(CallbackFormCancel, h.CancelForm); err != nil {
		return fmt.Errorf("handlers: %w", err)
	}
	for _, step := range form.Steps {
		sessions.Handle(step, h.FormStep)
	}
	return nil
}
