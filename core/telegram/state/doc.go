// Package state keeps per-conversation dialogue state for Telegram bots.
// A Manager instance owns both the sessions and the handlers bound to each state,
// so separate bots (or tests) never share a registry.
package state
