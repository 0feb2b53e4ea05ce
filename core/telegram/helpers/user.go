package helpers

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// FullName joins the user's first and last name, falling back to the username
// and finally the numeric id.
func FullName(u *tele.User) string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return strconv.FormatInt(u.ID, 10)
}
