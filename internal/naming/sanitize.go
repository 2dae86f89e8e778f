package naming

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNaming marks an unsafe or duplicated name. It is fatal to the load of the
// data source that carries it.
var ErrNaming = errors.New("naming error")

// Error is a naming failure. Its message is reported verbatim and it matches
// ErrNaming under errors.Is.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is reports whether target is ErrNaming.
func (e *Error) Is(target error) bool { return target == ErrNaming }

func errorf(format string, args ...any) error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// SanitizeName maps raw onto the URL-safe alphabet [A-Za-z0-9_].
// Every run of illegal characters becomes a single underscore, and such an
// underscore never doubles up with a neighbouring one. Legal characters,
// including existing underscores, are kept as they are, so the function is
// idempotent.
func SanitizeName(raw string) string {
	var b strings.Builder

	b.Grow(len(raw))

	replaced := false   // last written rune is a replacement underscore
	underscore := false // last written rune is any underscore

	for _, r := range raw {
		if isURLSafe(r) {
			if r == '_' && replaced {
				continue
			}

			b.WriteRune(r)

			replaced = false
			underscore = r == '_'

			continue
		}

		replaced = true

		if underscore {
			continue
		}

		b.WriteByte('_')

		underscore = true
	}

	return b.String()
}

// IsURLSafe reports whether name is non-empty and already sanitized.
func IsURLSafe(name string) bool {
	return name != "" && SanitizeName(name) == name
}

// AssertURLSafe fails when name is not URL safe. context describes what the
// name belongs to and is only used to enrich empty-name failures.
func AssertURLSafe(name, context string) error {
	if name == "" {
		return errorf("%s must have a name", context)
	}

	if sanitized := SanitizeName(name); sanitized != name {
		return errorf("'%s' is not a URL safe name. Try '%s' instead?", name, sanitized)
	}

	return nil
}

// AssertNoDuplicates checks the shared dimension/measure namespace of the data
// source named dataSource. A name present in both lists is reported before any
// duplicate inside one list; within each check the first offending name in
// left-to-right order wins.
func AssertNoDuplicates(dataSource string, dimensions, measures []string) error {
	measureSet := make(map[string]struct{}, len(measures))
	for _, m := range measures {
		measureSet[m] = struct{}{}
	}

	for _, d := range dimensions {
		if _, ok := measureSet[d]; ok {
			return errorf("name '%s' found in both dimensions and measures in data source: '%s'", d, dataSource)
		}
	}

	if dup, ok := firstDuplicate(dimensions); ok {
		return errorf("duplicate dimension name '%s' found in data source: '%s'", dup, dataSource)
	}

	if dup, ok := firstDuplicate(measures); ok {
		return errorf("duplicate measure name '%s' found in data source: '%s'", dup, dataSource)
	}

	return nil
}

// Disambiguate finds a variant of name that taken rejects, trying name_2 up to
// name_<limit>. It returns false when every candidate is taken.
func Disambiguate(name string, taken func(string) bool, limit int) (string, bool) {
	if !taken(name) {
		return name, true
	}

	for i := 2; i <= limit; i++ {
		candidate := SanitizeName(name + "_" + strconv.Itoa(i))
		if !taken(candidate) {
			return candidate, true
		}
	}

	return "", false
}

func firstDuplicate(names []string) (string, bool) {
	seen := make(map[string]struct{}, len(names))

	for _, n := range names {
		if _, ok := seen[n]; ok {
			return n, true
		}

		seen[n] = struct{}{}
	}

	return "", false
}

func isURLSafe(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
