package form

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/filmbot/core/telegram/state"
	"github.com/m3rciful/filmbot/internal/catalog"
	"github.com/m3rciful/filmbot/internal/film"
)

const (
	adminID = 100
	chatID  = 555
)

type recordingCatalog struct {
	films []film.Film
	err   error
}

func (r *recordingCatalog) Append(_ context.Context, f film.Film) error {
	if r.err != nil {
		return r.err
	}
	r.films = append(r.films, f)
	return nil
}

// slowCatalog stands in for a file-backed store whose appends take a while.
type slowCatalog struct {
	mu    sync.Mutex
	films []film.Film
}

func (s *slowCatalog) Append(_ context.Context, f film.Film) error {
	time.Sleep(2 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.films = append(s.films, f)
	return nil
}

func (s *slowCatalog) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.films)
}

var inception = []string{
	"Inception",
	"A thief who steals secrets...",
	"9",
	"Sci-Fi",
	"Leonardo DiCaprio, Joseph Gordon-Levitt",
	"http://example.com/poster.jpg",
}

func TestNextFollowsFixedOrder(t *testing.T) {
	want := []state.State{StepDescription, StepRating, StepGenre, StepActors, StepPoster, StepComplete}
	for i, s := range Steps {
		if got := Next(s); got != want[i] {
			t.Fatalf("Next(%s) = %s, expected %s", s, got, want[i])
		}
		if Prompt(s) == "" {
			t.Fatalf("step %s has no prompt", s)
		}
	}
	if Next(StepComplete) != state.StateIdle || Next("unknown") != state.StateIdle {
		t.Fatal("terminal and unknown steps must map to idle")
	}
}

func TestBeginRejectsNonAdmin(t *testing.T) {
	ctx := context.Background()
	sessions := state.NewMemoryManager()
	cat := &recordingCatalog{}
	m := NewMachine(sessions, cat, adminID)

	err := m.Begin(ctx, chatID, 7)
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) || authErr.UserID != 7 {
		t.Fatalf("expected AuthorizationError for user 7, got %v", err)
	}
	if sessions.HasState(chatID) {
		t.Fatal("rejected begin created state")
	}
	if len(sessions.Get(chatID).TempData) != 0 {
		t.Fatal("rejected begin stored data")
	}
	if _, err := m.Accept(ctx, chatID, "Inception"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Accept after rejection = %v, expected ErrNoSession", err)
	}
	if len(cat.films) != 0 {
		t.Fatal("rejected dialogue wrote to the catalog")
	}
}

func TestFullDialogueAppendsFilmOnce(t *testing.T) {
	ctx := context.Background()
	sessions := state.NewMemoryManager()
	cat := &recordingCatalog{}
	m := NewMachine(sessions, cat, adminID)

	if err := m.Begin(ctx, chatID, adminID); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if got := sessions.GetState(chatID); got != StepName {
		t.Fatalf("state after Begin = %s", got)
	}

	completions := 0
	for i, text := range inception {
		out, err := m.Accept(ctx, chatID, text)
		if err != nil {
			t.Fatalf("Accept(%d): %v", i, err)
		}
		if out.Done {
			completions++
			continue
		}
		if want := Steps[i+1]; out.Step != want || sessions.GetState(chatID) != want {
			t.Fatalf("after message %d step = %s, expected %s", i, out.Step, want)
		}
	}
	if completions != 1 {
		t.Fatalf("completions = %d, expected 1", completions)
	}
	if sessions.HasState(chatID) || len(sessions.Get(chatID).TempData) != 0 {
		t.Fatal("session not cleared after completion")
	}

	want := film.Film{
		Name:        "Inception",
		Description: "A thief who steals secrets...",
		Rating:      "9",
		Genre:       "Sci-Fi",
		Actors:      []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt"},
		Poster:      "http://example.com/poster.jpg",
	}
	if len(cat.films) != 1 || !reflect.DeepEqual(cat.films[0], want) {
		t.Fatalf("catalog = %+v, expected [%+v]", cat.films, want)
	}

	if _, err := m.Accept(ctx, chatID, "one more"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Accept after completion = %v, expected ErrNoSession", err)
	}
	if len(cat.films) != 1 {
		t.Fatal("message after completion wrote to the catalog")
	}
}

func TestDialogueWritesCatalogDocument(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewStore(filepath.Join(t.TempDir(), "data.json"))
	if err := store.EnsureExists(ctx); err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}
	m := NewMachine(state.NewMemoryManager(), store, adminID)
	if err := m.Begin(ctx, chatID, adminID); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	var last Outcome
	for _, text := range inception {
		out, err := m.Accept(ctx, chatID, text)
		if err != nil {
			t.Fatalf("Accept: %v", err)
		}
		last = out
	}
	if !last.Done || last.Film == nil || last.Film.Name != "Inception" {
		t.Fatalf("unexpected final outcome: %+v", last)
	}
	films, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(films) != 1 || !reflect.DeepEqual(films[0], *last.Film) {
		t.Fatalf("stored films = %+v", films)
	}
}

func TestAppendFailureKeepsPosterStep(t *testing.T) {
	ctx := context.Background()
	sessions := state.NewMemoryManager()
	boom := errors.New("disk full")
	cat := &recordingCatalog{err: boom}
	m := NewMachine(sessions, cat, adminID)
	if err := m.Begin(ctx, chatID, adminID); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	for _, text := range inception[:5] {
		if _, err := m.Accept(ctx, chatID, text); err != nil {
			t.Fatalf("Accept: %v", err)
		}
	}
	out, err := m.Accept(ctx, chatID, inception[5])
	if !errors.Is(err, boom) {
		t.Fatalf("expected append error, got %v", err)
	}
	if out.Step != StepPoster || sessions.GetState(chatID) != StepPoster {
		t.Fatalf("state after failure = %s", sessions.GetState(chatID))
	}

	cat.err = nil
	out, err = m.Accept(ctx, chatID, inception[5])
	if err != nil || !out.Done {
		t.Fatalf("retry failed: %+v %v", out, err)
	}
	if len(cat.films) != 1 {
		t.Fatalf("films = %d, expected 1", len(cat.films))
	}
}

func TestBeginRestartsDialogue(t *testing.T) {
	ctx := context.Background()
	sessions := state.NewMemoryManager()
	m := NewMachine(sessions, &recordingCatalog{}, adminID)
	_ = m.Begin(ctx, chatID, adminID)
	_, _ = m.Accept(ctx, chatID, "Old name")
	if err := m.Begin(ctx, chatID, adminID); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if sessions.GetState(chatID) != StepName {
		t.Fatalf("state = %s", sessions.GetState(chatID))
	}
	if _, ok := sessions.GetTemp(chatID, film.FieldName); ok {
		t.Fatal("restart kept the old name")
	}
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	sessions := state.NewMemoryManager()
	m := NewMachine(sessions, &recordingCatalog{}, adminID)
	if m.Cancel(ctx, chatID) {
		t.Fatal("cancel without dialogue reported true")
	}
	_ = m.Begin(ctx, chatID, adminID)
	_, _ = m.Accept(ctx, chatID, "Inception")
	if !m.Cancel(ctx, chatID) {
		t.Fatal("cancel during dialogue reported false")
	}
	if sessions.HasState(chatID) {
		t.Fatal("cancel kept the session")
	}
}

func TestConcurrentPosterMessagesCompleteOnce(t *testing.T) {
	ctx := context.Background()
	for round := 0; round < 50; round++ {
		sessions := state.NewMemoryManager()
		cat := &slowCatalog{}
		m := NewMachine(sessions, cat, adminID)
		if err := m.Begin(ctx, chatID, adminID); err != nil {
			t.Fatalf("Begin: %v", err)
		}
		for _, text := range inception[:5] {
			if _, err := m.Accept(ctx, chatID, text); err != nil {
				t.Fatalf("Accept: %v", err)
			}
		}

		var wg sync.WaitGroup
		outcomes := make(chan Outcome, 2)
		errs := make(chan error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				out, err := m.Accept(ctx, chatID, inception[5])
				outcomes <- out
				errs <- err
			}()
		}
		wg.Wait()
		close(outcomes)
		close(errs)

		done := 0
		for out := range outcomes {
			if out.Done {
				done++
			}
		}
		noSession := 0
		for err := range errs {
			switch {
			case err == nil:
			case errors.Is(err, ErrNoSession):
				noSession++
			default:
				t.Fatalf("round %d: Accept: %v", round, err)
			}
		}
		if done != 1 || noSession != 1 || cat.count() != 1 {
			t.Fatalf("round %d: done = %d, no session = %d, appended = %d, expected 1/1/1", round, done, noSession, cat.count())
		}
		if sessions.HasState(chatID) {
			t.Fatalf("round %d: session left in %s", round, sessions.GetState(chatID))
		}
	}
}

func TestConcurrentMessagesFillSuccessiveSteps(t *testing.T) {
	ctx := context.Background()
	sessions := state.NewMemoryManager()
	m := NewMachine(sessions, &slowCatalog{}, adminID)
	if err := m.Begin(ctx, chatID, adminID); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	var wg sync.WaitGroup
	for _, text := range []string{"first", "second"} {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			if _, err := m.Accept(ctx, chatID, text); err != nil {
				t.Errorf("Accept(%q): %v", text, err)
			}
		}(text)
	}
	wg.Wait()

	if got := sessions.GetState(chatID); got != StepRating {
		t.Fatalf("state = %s, expected %s", got, StepRating)
	}
	name, _ := sessions.GetTempString(chatID, film.FieldName)
	desc, _ := sessions.GetTempString(chatID, film.FieldDescription)
	if name == desc || (name != "first" && name != "second") || (desc != "first" && desc != "second") {
		t.Fatalf("name = %q, description = %q; both messages must be kept", name, desc)
	}
}

func TestAcceptAfterCancelDoesNotRevive(t *testing.T) {
	ctx := context.Background()
	sessions := state.NewMemoryManager()
	m := NewMachine(sessions, &slowCatalog{}, adminID)
	if err := m.Begin(ctx, chatID, adminID); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if !m.Cancel(ctx, chatID) {
		t.Fatal("Cancel found no dialogue")
	}
	if _, err := m.Accept(ctx, chatID, "late"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Accept after cancel = %v, expected ErrNoSession", err)
	}
	if sessions.HasState(chatID) || len(sessions.Get(chatID).TempData) != 0 {
		t.Fatalf("session revived: %+v", sessions.Get(chatID))
	}
}
