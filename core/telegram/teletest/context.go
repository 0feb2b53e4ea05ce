// Package teletest provides an in-memory tele.Context for handler tests.
package teletest

import (
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Sent records a single outbound call made through the context.
type Sent struct {
	What interface{}
	Opts []interface{}
}

// Context implements the parts of tele.Context used by handlers and routers.
// Calling any other method panics through the nil embedded interface.
type Context struct {
	tele.Context

	User     *tele.User
	ChatInfo *tele.Chat
	Input    string
	Cb       *tele.Callback
	Upd      tele.Update

	// SendErr, when set, is returned by Send and Reply.
	SendErr error

	mu        sync.Mutex
	store     map[string]interface{}
	sent      []Sent
	responses []*tele.CallbackResponse
}

// NewText builds a context for a private text message from userID.
func NewText(userID int64, text string) *Context {
	return &Context{
		User:     &tele.User{ID: userID, FirstName: "Test", LastName: "User"},
		ChatInfo: &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		Input:    text,
		Upd:      tele.Update{ID: 1},
	}
}

// NewCallback builds a context for an inline button press carrying unique and payload.
func NewCallback(userID int64, unique, payload string) *Context {
	c := NewText(userID, "")
	c.Cb = &tele.Callback{ID: "cb", Unique: unique, Data: payload, Sender: c.User}
	c.Upd.Callback = c.Cb
	return c
}

func (c *Context) Sender() *tele.User { return c.User }
func (c *Context) Chat() *tele.Chat { return c.ChatInfo }
func (c *Context) Text() string { return c.Input }
func (c *Context) Callback() *tele.Callback { return c.Cb }
func (c *Context) Update() tele.Update { return c.Upd }

// Send records the outbound message.
func (c *Context) Send(what interface{}, opts ...interface{}) error {
	if c.SendErr != nil {
		return c.SendErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, Sent{What: what, Opts: opts})
	return nil
}

// Reply behaves like Send.
func (c *Context) Reply(what interface{}, opts ...interface{}) error {
	return c.Send(what, opts...)
}

// Respond records callback answers.
func (c *Context) Respond(resp ...*tele.CallbackResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(resp) == 0 {
		c.responses = append(c.responses, nil)
		return nil
	}
	c.responses = append(c.responses, resp...)
	return nil
}

func (c *Context) Get(key string) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

func (c *Context) Set(key string, val interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = make(map[string]interface{})
	}
	c.store[key] = val
}

// Sent returns a copy of every recorded outbound call.
func (c *Context) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

// Texts returns the string payloads sent so far.
func (c *Context) Texts() []string {
	var out []string
	for _, s := range c.Sent() {
		if text, ok := s.What.(string); ok {
			out = append(out, text)
		}
	}
	return out
}

// LastText returns the most recent string payload, or "".
func (c *Context) LastText() string {
	texts := c.Texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// Responses returns recorded callback answers.
func (c *Context) Responses() []*tele.CallbackResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*tele.CallbackResponse(nil), c.responses...)
}
