// Package film defines the catalog record and its construction from form input.
package film

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Field names shared by the catalog document and the creation form.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldRating      = "rating"
	FieldGenre       = "genre"
	FieldActors      = "actors"
	FieldPoster      = "poster"
)

// ActorSeparator splits the raw actors input into names.
const ActorSeparator = ", "

// Fields lists every field a complete record needs, in form order.
var Fields = []string{
	FieldName,
	FieldDescription,
	FieldRating,
	FieldGenre,
	FieldActors,
	FieldPoster,
}

// Rating keeps the rating as typed by the administrator.
// Documents that store it as a JSON number are read back as the number's literal text.
type Rating string

// UnmarshalJSON accepts both JSON strings and numbers.
func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Rating(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("rating: %w", err)
	}
	*r = Rating(n.String())
	return nil
}

// Film is a single catalog record. Its identity is its position in the catalog.
type Film struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Rating      Rating   `json:"rating"`
	Genre       string   `json:"genre"`
	Actors      []string `json:"actors"`
	Poster      string   `json:"poster"`
}

// SplitActors splits raw input on ActorSeparator without trimming.
func SplitActors(raw string) []string {
	return strings.Split(raw, ActorSeparator)
}

// ConstructionError reports fields that are absent or of the wrong type.
type ConstructionError struct {
	Missing []string
	Invalid []string
}

func (e *ConstructionError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "film: incomplete record: " + strings.Join(parts, "; ")
}

// Code identifies the error kind in logs.
func (e *ConstructionError) Code() string { return "film_incomplete" }

// FromFields builds a Film from accumulated form values.
// Text fields must be strings; actors may be a []string or a raw string, which is split.
func FromFields(values map[string]any) (Film, error) {
	var (
		f       Film
		missing []string
		invalid []string
	)

	text := func(key string) string {
		v, ok := values[key]
		if !ok || v == nil {
			missing = append(missing, key)
			return ""
		}
		s, ok := v.(string)
		if !ok {
			invalid = append(invalid, key)
			return ""
		}
		return s
	}

	f.Name = text(FieldName)
	f.Description = text(FieldDescription)
	f.Rating = Rating(text(FieldRating))
	f.Genre = text(FieldGenre)
	f.Poster = text(FieldPoster)

	switch v := values[FieldActors].(type) {
	case nil:
		missing = append(missing, FieldActors)
	case []string:
		f.Actors = append([]string(nil), v...)
	case string:
		f.Actors = SplitActors(v)
	default:
		invalid = append(invalid, FieldActors)
	}

	if len(missing) > 0 || len(invalid) > 0 {
		sort.Strings(missing)
		sort.Strings(invalid)
		return Film{}, &ConstructionError{Missing: missing, Invalid: invalid}
	}
	return f, nil
}
