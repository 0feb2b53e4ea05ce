// Package form walks the administrator through creating a film record.
//
// The dialogue is a fixed linear sequence of steps, one per film field. Every
// message received in a step is accepted as that field's value, the session
// advances, and after the poster step the collected record is appended to the
// catalog and the session is cleared.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/m3rciful/filmbot/core/logger"
	"github.com/m3rciful/filmbot/core/metrics"
	"github.com/m3rciful/filmbot/core/telegram/state"
	"github.com/m3rciful/filmbot/internal/film"
)

const component = "form"

// Dialogue steps, in order.
const (
	StepName        state.State = "film.awaiting_name"
	StepDescription state.State = "film.awaiting_description"
	StepRating      state.State = "film.awaiting_rating"
	StepGenre       state.State = "film.awaiting_genre"
	StepActors      state.State = "film.awaiting_actors"
	StepPoster      state.State = "film.awaiting_poster"
	StepComplete    state.State = "film.complete"
)

// Steps lists the input steps in dialogue order.
var Steps = []state.State{
	StepName,
	StepDescription,
	StepRating,
	StepGenre,
	StepActors,
	StepPoster,
}

var stepField = map[state.State]string{
	StepName:        film.FieldName,
	StepDescription: film.FieldDescription,
	StepRating:      film.FieldRating,
	StepGenre:       film.FieldGenre,
	StepActors:      film.FieldActors,
	StepPoster:      film.FieldPoster,
}

var prompts = map[state.State]string{
	StepName:        "Enter the film name.",
	StepDescription: "Enter a short description.",
	StepRating:      "Enter the rating.",
	StepGenre:       "Enter the genre.",
	StepActors:      "Enter the actors, separated by \", \".",
	StepPoster:      "Send the poster image URL.",
}

// keyFormID holds the session correlation id; it is not a film field.
const keyFormID = "form_id"

// ErrNoSession is returned by Accept when the conversation has no dialogue in progress.
var ErrNoSession = errors.New("form: no dialogue in progress")

// AuthorizationError is returned when someone other than the administrator starts a dialogue.
type AuthorizationError struct {
	UserID int64
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("form: user %d is not the administrator", e.UserID)
}

// Code identifies the error kind in logs.
func (e *AuthorizationError) Code() string { return "unauthorized" }

// Appender persists a completed film.
type Appender interface {
	Append(ctx context.Context, f film.Film) error
}

// Outcome describes the session after an accepted message.
type Outcome struct {
	// Step is the step now awaiting input, or StepComplete.
	Step state.State
	// Film is set once the record has been appended.
	Film *film.Film
	Done bool
}

// Machine drives creation dialogues. Sessions are owned by the supplied manager.
type Machine struct {
	sessions state.Manager
	catalog  Appender
	adminID  int64
}

// NewMachine binds a machine to its session manager, catalog and administrator id.
func NewMachine(sessions state.Manager, catalog Appender, adminID int64) *Machine {
	return &Machine{sessions: sessions, catalog: catalog, adminID: adminID}
}

// Next returns the step that follows s. Unknown steps map to StateIdle.
func Next(s state.State) state.State {
	for i, st := range Steps {
		if st != s {
			continue
		}
		if i+1 < len(Steps) {
			return Steps[i+1]
		}
		return StepComplete
	}
	return state.StateIdle
}

// Prompt returns the fixed question shown for a step.
func Prompt(s state.State) string {
	return prompts[s]
}

// IsStep reports whether s is one of the input steps.
func IsStep(s state.State) bool {
	_, ok := stepField[s]
	return ok
}

// Begin starts a fresh dialogue in chatID for userID, replacing any earlier one.
// Only the administrator may begin; with no administrator configured nobody can.
func (m *Machine) Begin(ctx context.Context, chatID, userID int64) error {
	if m.adminID == 0 || userID != m.adminID {
		metrics.FormEvents.WithLabelValues("rejected").Inc()
		logger.Warn(ctx, component, "form.begin",
			slog.String("status", "skip"),
			slog.Int64("user_id", userID),
			slog.String("reason", "not_admin"),
		)
		return &AuthorizationError{UserID: userID}
	}

	formID := uuid.NewString()
	m.sessions.Clear(chatID)
	m.sessions.SetState(chatID, StepName)
	m.sessions.SetTemp(chatID, keyFormID, formID)

	metrics.FormEvents.WithLabelValues("started").Inc()
	logger.Info(ctx, component, "form.begin",
		slog.String("status", "ok"),
		slog.String("form_id", formID),
		slog.String("step", string(StepName)),
	)
	return nil
}

// Accept stores text as the value for the current step and advances the dialogue.
// Messages racing in one chat are applied one step each, in whatever order they
// win, and only one of them can finish the dialogue.
func (m *Machine) Accept(ctx context.Context, chatID int64, text string) (Outcome, error) {
	formID, _ := m.sessions.GetTempString(chatID, keyFormID)
	for {
		current := m.sessions.GetState(chatID)
		field, ok := stepField[current]
		if !ok {
			return Outcome{}, ErrNoSession
		}

		var value interface{} = text
		if current == StepActors {
			value = film.SplitActors(text)
		}
		next := Next(current)
		if !m.sessions.Advance(chatID, current, next, field, value) {
			continue
		}

		logger.Debug(ctx, component, "form.step",
			slog.String("status", "ok"),
			slog.String("form_id", formID),
			slog.String("step", string(current)),
			slog.String("next", string(next)),
		)
		if next != StepComplete {
			return Outcome{Step: next}, nil
		}
		return m.complete(ctx, chatID, formID)
	}
}

// complete runs once the session has been moved to StepComplete, which no other
// message or Cancel can act on.
func (m *Machine) complete(ctx context.Context, chatID int64, formID string) (Outcome, error) {
	session := m.sessions.Get(chatID)
	f, err := film.FromFields(session.TempData)
	if err != nil {
		m.sessions.Clear(chatID)
		metrics.FormEvents.WithLabelValues("failed").Inc()
		logger.Error(ctx, component, "form.complete",
			slog.String("status", "fail"),
			slog.String("form_id", formID),
			slog.String("err", err.Error()),
		)
		return Outcome{}, err
	}

	if err := m.catalog.Append(ctx, f); err != nil {
		// Back to the poster step so resending the URL retries the append.
		m.sessions.Advance(chatID, StepComplete, StepPoster, "", nil)
		metrics.FormEvents.WithLabelValues("failed").Inc()
		logger.Error(ctx, component, "form.complete",
			slog.String("status", "fail"),
			slog.String("form_id", formID),
			slog.String("err", err.Error()),
		)
		return Outcome{Step: StepPoster}, fmt.Errorf("form: save film: %w", err)
	}

	m.sessions.Clear(chatID)
	metrics.FormEvents.WithLabelValues("completed").Inc()
	logger.Info(ctx, component, "form.complete",
		slog.String("status", "ok"),
		slog.String("form_id", formID),
		slog.String("film", logger.SanitizeLimit(f.Name, 128)),
	)
	return Outcome{Step: StepComplete, Film: &f, Done: true}, nil
}

// Cancel drops the dialogue in chatID and reports whether one was in progress.
func (m *Machine) Cancel(ctx context.Context, chatID int64) bool {
	current := m.sessions.GetState(chatID)
	if !IsStep(current) {
		return false
	}
	formID, _ := m.sessions.GetTempString(chatID, keyFormID)
	m.sessions.Clear(chatID)
	metrics.FormEvents.WithLabelValues("cancelled").Inc()
	logger.Info(ctx, component, "form.cancel",
		slog.String("status", "cancelled"),
		slog.String("form_id", formID),
		slog.String("step", string(current)),
	)
	return true
}
