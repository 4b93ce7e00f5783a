package model

import (
	"strings"
	"time"
)

// NameException is an operator decision that overrides name validation.
type NameException struct {
	// Key is the merge key of the name (see NameKey).
	Key string `json:"key"`

	// Name is the name as the operator saw it.
	Name string `json:"name"`

	// Include forces the name valid; otherwise it is always rejected.
	Include bool `json:"include"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NameKeyFromFull builds the merge key for a full name written as one
// string. The first word is the first name and the rest the last name.
func NameKeyFromFull(full string) string {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return NameKey(fields[0], "")
	default:
		return NameKey(fields[0], strings.Join(fields[1:], " "))
	}
}
