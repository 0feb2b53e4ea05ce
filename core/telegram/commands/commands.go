// Package commands describes slash commands stored in the registry.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are rejected for everyone but the configured administrator.
	AdminOnly bool
	// Hidden commands are routed but left out of the published menu.
	Hidden  bool
	Aliases []string
}
