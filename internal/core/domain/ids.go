package domain

import "strings"

// TemporaryIDPrefix marks identifiers assigned locally before the backend
// has confirmed the entity. Server ids never carry it.
const TemporaryIDPrefix = "temp-"

// IsTemporaryID reports whether id was assigned locally.
func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, TemporaryIDPrefix)
}
