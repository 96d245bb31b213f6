// server/filesystem/names.go
package filesystem

import (
	"strings"

	"github.com/ViniZap4/carnet-server/domain"
)

// ValidateName trims name and checks it can be used as a single path
// element.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || strings.ContainsAny(trimmed, `/\`) || trimmed == "." || trimmed == ".." {
		return "", domain.NewError(domain.KindInvalidName, "filesystem.ValidateName", nil, "")
	}
	return trimmed, nil
}

// IsNote reports whether name carries the note extension, ignoring case.
func IsNote(name string) bool {
	return strings.EqualFold(extension(name), domain.NoteExt)
}

// extension returns the extension of a base name including the dot. A
// leading dot alone (".profile") is not an extension.
func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}

// stripExt drops everything from the last dot of a user-typed name.
func stripExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}
