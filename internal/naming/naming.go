// Package naming derives generated prop names from store keys.
package naming

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SetterPrefix is prepended to the PascalCase form of a writable key.
const SetterPrefix = "set"

// PascalCase converts a key such as "user_name", "user-name" or "userName"
// into "UserName".
func PascalCase(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	// Casers are stateful; NoLower keeps inner capitals of camelCase keys.
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(title.String(w))
	}
	return b.String()
}

// SetterName returns the prop name of the setter generated for key:
// "count" becomes "setCount".
func SetterName(key string) string {
	return SetterPrefix + PascalCase(key)
}

// CollisionError reports writable keys that map to the same setter name.
type CollisionError struct {
	Setter string
	Keys   []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("naming: keys %q all produce setter %q", e.Keys, e.Setter)
}

// CheckCollisions returns a *CollisionError when two distinct keys produce
// the same setter name.
func CheckCollisions(keys []string) error {
	bySetter := make(map[string][]string, len(keys))
	for _, k := range keys {
		name := SetterName(k)
		if !contains(bySetter[name], k) {
			bySetter[name] = append(bySetter[name], k)
		}
	}

	setters := make([]string, 0, len(bySetter))
	for name := range bySetter {
		setters = append(setters, name)
	}
	sort.Strings(setters)
	for _, name := range setters {
		if ks := bySetter[name]; len(ks) > 1 {
			return &CollisionError{Setter: name, Keys: ks}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
