package state

import tele "gopkg.in/telebot.v4"

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation.
	StateIdle State = "idle"
)

// Session stores the dialogue state and collected values of one conversation.
type Session struct {
	State    State
	TempData map[string]interface{}
}

// Manager orchestrates sessions keyed by conversation (chat) id.
type Manager interface {
	// Get returns a copy of the session, or an idle one if none exists.
	Get(convID int64) Session
	SetTemp(convID int64, key string, value interface{})
	GetTemp(convID int64, key string) (interface{}, bool)
	GetTempString(convID int64, key string) (string, bool)
	ClearTemp(convID int64, key string)
	Clear(convID int64)

	SetState(convID int64, st State)
	GetState(convID int64) State
	HasState(convID int64) bool
	// Advance moves an existing session from one state to another and, when key is
	// not empty, stores value under key in the same step. It reports false without
	// changing anything if the session is missing or not in from.
	Advance(convID int64, from, to State, key string, value interface{}) bool

	// Handle binds h to st; updates arriving while a conversation is in st are routed to h.
	Handle(st State, h tele.HandlerFunc)
	InProgress(convID int64) bool
	ManagerHandler(c tele.Context) error
}

// ConversationID returns the key used for the update's conversation.
func ConversationID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	if user := c.Sender(); user != nil {
		return user.ID
	}
	return 0
}
