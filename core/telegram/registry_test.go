package telegram

import (
	"errors"
	"testing"

	"github.com/m3rciful/filmbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

type recordingSetter struct {
	got []interface{}
	err error
}

func (r *recordingSetter) SetCommands(opts ...interface{}) error {
	r.got = opts
	return r.err
}

func TestRegisterCommandValidation(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCommand("/films", commands.Command{Handler: noop, Description: "List films"}); err != nil {
		t.Fatalf("RegisterCommand: %v", err)
	}
	bad := map[string]commands.Command{
		"films":  {Handler: noop, Description: "no slash"},
		"/films": {Handler: noop, Description: "duplicate"},
		"/x":     {Handler: nil, Description: "nil handler"},
		"/y":     {Handler: noop},
	}
	for name, cmd := range bad {
		if err := reg.RegisterCommand(name, cmd); err == nil {
			t.Fatalf("RegisterCommand(%q) accepted invalid command", name)
		}
	}
	if len(reg.Commands()) != 1 {
		t.Fatalf("commands = %d, expected 1", len(reg.Commands()))
	}
}

func TestListCommandsKeepsAdminOnlyAndSkipsHidden(t *testing.T) {
	reg := NewRegistry()
	_ = reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Start"})
	_ = reg.RegisterCommand("/add_film", commands.Command{Handler: noop, Description: "Add", AdminOnly: true})
	_ = reg.RegisterCommand("/debug", commands.Command{Handler: noop, Description: "Debug", Hidden: true})

	got := reg.ListCommands(true)
	if len(got) != 2 || got[0].Text != "add_film" || got[1].Text != "start" {
		t.Fatalf("menu = %+v", got)
	}
	if all := reg.ListCommands(false); len(all) != 3 {
		t.Fatalf("all commands = %+v", all)
	}
}

func TestLookupCommandByAlias(t *testing.T) {
	reg := NewRegistry()
	_ = reg.RegisterCommand("/films", commands.Command{Handler: noop, Description: "List", Aliases: []string{"list"}})
	for _, name := range []string{"films", "/films", "list", "/list"} {
		key, _, ok := reg.LookupCommand(name)
		if !ok || key != "/films" {
			t.Fatalf("LookupCommand(%q) = %q %v", name, key, ok)
		}
	}
	if _, _, ok := reg.LookupCommand("/nope"); ok {
		t.Fatal("unknown command resolved")
	}
}

func TestRegisterCallbackRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("film", noop); err != nil {
		t.Fatalf("RegisterCallback: %v", err)
	}
	if err := reg.RegisterCallback("film", noop); err == nil {
		t.Fatal("duplicate callback accepted")
	}
	if err := reg.RegisterCallback("", noop); err == nil {
		t.Fatal("empty key accepted")
	}
	if _, ok := reg.GetCallback("film"); !ok {
		t.Fatal("callback not found")
	}
	if keys := reg.ListCallbacks(); len(keys) != 1 || keys[0] != "film" {
		t.Fatalf("callbacks = %v", keys)
	}
}

func TestSetupCommandsPublishesMenu(t *testing.T) {
	reg := NewRegistry()
	_ = reg.RegisterCommand("/films", commands.Command{Handler: noop, Description: "List films"})
	setter := &recordingSetter{}
	if err := SetupCommands(setter, reg); err != nil {
		t.Fatalf("SetupCommands: %v", err)
	}
	if len(setter.got) != 1 {
		t.Fatalf("SetCommands args = %v", setter.got)
	}
	menu, ok := setter.got[0].([]tele.Command)
	if !ok || len(menu) != 1 || menu[0].Text != "films" || menu[0].Description != "List films" {
		t.Fatalf("menu = %#v", setter.got[0])
	}

	setter.err = errors.New("boom")
	if err := SetupCommands(setter, reg); err == nil {
		t.Fatal("expected error from SetCommands")
	}
}
