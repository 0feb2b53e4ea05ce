package callbacks

import (
	"testing"

	"github.com/m3rciful/filmbot/core/telegram/teletest"

	tele "gopkg.in/telebot.v4"
)

func TestParse(t *testing.T) {
	cases := []struct {
		cb           *tele.Callback
		key, payload string
	}{
		{nil, "", ""},
		{&tele.Callback{Unique: "film", Data: "3"}, "film", "3"},
		{&tele.Callback{Data: "\ffilm|12"}, "film", "12"},
		{&tele.Callback{Data: "\fform_cancel"}, "form_cancel", ""},
		{&tele.Callback{Data: "\ffilm|a|b"}, "film", "a|b"},
	}
	for _, tc := range cases {
		key, payload := Parse(tc.cb)
		if key != tc.key || payload != tc.payload {
			t.Fatalf("Parse(%+v) = %q %q, expected %q %q", tc.cb, key, payload, tc.key, tc.payload)
		}
	}
}

func TestNormalize(t *testing.T) {
	cb := &tele.Callback{Data: "\ffilm|7"}
	Normalize(cb)
	if cb.Unique != "film" || cb.Data != "7" {
		t.Fatalf("Normalize = %q %q", cb.Unique, cb.Data)
	}
	Normalize(cb)
	if cb.Unique != "film" || cb.Data != "7" {
		t.Fatalf("second Normalize changed callback: %q %q", cb.Unique, cb.Data)
	}
}

func TestPayloadInt(t *testing.T) {
	n, err := PayloadInt(teletest.NewCallback(1, "film", "4"))
	if err != nil || n != 4 {
		t.Fatalf("PayloadInt = %d %v", n, err)
	}
	if _, err := PayloadInt(teletest.NewCallback(1, "film", "x")); err == nil {
		t.Fatal("expected error for non-numeric payload")
	}
	if key := Key(teletest.NewCallback(1, "film", "4")); key != "film" {
		t.Fatalf("Key = %q", key)
	}
}
