package state

import (
	"sync"
	"testing"

	"github.com/m3rciful/filmbot/core/telegram/teletest"

	tele "gopkg.in/telebot.v4"
)

func TestGetReturnsIdleForUnknownConversation(t *testing.T) {
	m := NewMemoryManager()
	s := m.Get(10)
	if s.State != StateIdle || len(s.TempData) != 0 {
		t.Fatalf("unexpected session: %+v", s)
	}
	if m.HasState(10) {
		t.Fatal("unknown conversation must not have state")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	m := NewMemoryManager()
	m.SetState(1, "step")
	m.SetTemp(1, "k", "v")

	s := m.Get(1)
	s.TempData["k"] = "changed"
	s.State = "other"

	if got, _ := m.GetTempString(1, "k"); got != "v" {
		t.Fatalf("temp mutated through copy: %q", got)
	}
	if m.GetState(1) != "step" {
		t.Fatalf("state mutated through copy: %q", m.GetState(1))
	}
}

func TestConversationsAreIsolated(t *testing.T) {
	m := NewMemoryManager()
	m.SetState(1, "a")
	m.SetTemp(2, "k", 5)

	if m.GetState(2) != StateIdle {
		t.Fatalf("conversation 2 state = %q", m.GetState(2))
	}
	if _, ok := m.GetTemp(1, "k"); ok {
		t.Fatal("conversation 1 sees conversation 2 data")
	}
	if _, ok := m.GetTempString(2, "k"); ok {
		t.Fatal("int value reported as string")
	}
}

func TestClearRemovesSession(t *testing.T) {
	m := NewMemoryManager()
	m.SetState(1, "a")
	m.SetTemp(1, "k", "v")
	m.ClearTemp(1, "k")
	if _, ok := m.GetTemp(1, "k"); ok {
		t.Fatal("ClearTemp kept the key")
	}
	m.Clear(1)
	if m.HasState(1) {
		t.Fatal("Clear kept the state")
	}
}

func TestManagerHandlerRoutesByState(t *testing.T) {
	m := NewMemoryManager()
	var calls []string
	m.Handle("a", func(c tele.Context) error {
		calls = append(calls, "a:"+c.Text())
		return nil
	})
	m.Handle("b", nil)

	c := teletest.NewText(7, "hello")
	if m.InProgress(7) {
		t.Fatal("idle conversation reported in progress")
	}
	if err := m.ManagerHandler(c); err != nil || len(calls) != 0 {
		t.Fatalf("idle conversation dispatched: %v %v", err, calls)
	}

	m.SetState(7, "b")
	if m.InProgress(7) {
		t.Fatal("state without handler reported in progress")
	}

	m.SetState(7, "a")
	if !m.InProgress(7) {
		t.Fatal("expected conversation in progress")
	}
	if err := m.ManagerHandler(c); err != nil {
		t.Fatalf("ManagerHandler: %v", err)
	}
	if len(calls) != 1 || calls[0] != "a:hello" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestManagersDoNotShareHandlers(t *testing.T) {
	m1 := NewMemoryManager()
	m2 := NewMemoryManager()
	m1.Handle("a", func(tele.Context) error { return nil })
	m2.SetState(1, "a")
	if m2.InProgress(1) {
		t.Fatal("handler registered on one manager leaked into another")
	}
}

func TestAdvanceComparesState(t *testing.T) {
	m := NewMemoryManager()
	if m.Advance(7, StateIdle, "one", "k", "v") {
		t.Fatal("Advance created a missing session")
	}
	if m.HasState(7) {
		t.Fatal("failed Advance left a session behind")
	}

	m.SetState(7, "one")
	if m.Advance(7, "two", "three", "k", "v") {
		t.Fatal("Advance accepted a stale from state")
	}
	if !m.Advance(7, "one", "two", "k", "v") {
		t.Fatal("Advance rejected the current state")
	}
	if m.GetState(7) != "two" {
		t.Fatalf("state = %q, expected two", m.GetState(7))
	}
	if got, _ := m.GetTempString(7, "k"); got != "v" {
		t.Fatalf("temp = %q, expected v", got)
	}
	if !m.Advance(7, "two", "one", "", nil) {
		t.Fatal("Advance without a value failed")
	}
	if _, ok := m.GetTemp(7, ""); ok {
		t.Fatal("empty key must not be stored")
	}
}

func TestAdvanceLetsOneOfManyWin(t *testing.T) {
	m := NewMemoryManager()
	m.SetState(3, "start")
	var wg sync.WaitGroup
	wins := make(chan struct{}, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Advance(3, "start", "done", "", nil) {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)
	if n := len(wins); n != 1 {
		t.Fatalf("winners = %d, expected 1", n)
	}
}
