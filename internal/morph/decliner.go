// Package morph inflects Russian city names into the prepositional case for
// phrases like "В Москве". It is a small rule-based approximation of a full
// morphological analyzer, kept behind an interface so the orchestrator can be
// tested with a stub.
package morph

import (
	"strings"
	"unicode"
)

// Decliner turns a nominative-case city name into its prepositional-case,
// title-cased form.
type Decliner interface {
	Prepositional(city string) string
}

// RuleDecliner applies suffix rules to the last word of the name. Compound
// names ("Нижний Новгород") only get the last word inflected; indeclinable
// endings (Сочи, Баку) pass through unchanged.
type RuleDecliner struct{}

// NewRuleDecliner constructs a RuleDecliner.
func NewRuleDecliner() *RuleDecliner {
	return &RuleDecliner{}
}

// Prepositional returns the title-cased prepositional form of city.
func (d *RuleDecliner) Prepositional(city string) string {
	trimmed := strings.TrimSpace(city)
	if trimmed == "" {
		return ""
	}

	words := strings.Fields(trimmed)
	last := words[len(words)-1]
	words[len(words)-1] = declineWord(last)

	return TitleCase(strings.Join(words, " "))
}

// declineWord inflects a single lowercase-insensitive word into the
// prepositional case.
func declineWord(word string) string {
	runes := []rune(strings.ToLower(word))
	n := len(runes)
	if n < 2 {
		return word
	}

	switch {
	case hasSuffix(runes, "ия"):
		return string(runes[:n-1]) + "и"
	case hasSuffix(runes, "а"), hasSuffix(runes, "я"), hasSuffix(runes, "о"):
		return string(runes[:n-1]) + "е"
	case hasSuffix(runes, "й"):
		return string(runes[:n-1]) + "е"
	case hasSuffix(runes, "ль"):
		// Masculine soft-sign names (Ярославль, Ставрополь).
		return string(runes[:n-1]) + "е"
	case hasSuffix(runes, "ь"):
		// Feminine soft-sign names (Казань, Тверь, Пермь).
		return string(runes[:n-1]) + "и"
	case hasSuffix(runes, "е"), hasSuffix(runes, "и"), hasSuffix(runes, "у"),
		hasSuffix(runes, "ю"), hasSuffix(runes, "ы"):
		// Indeclinable or plural-only shapes are left as-is.
		return string(runes)
	case unicode.Is(unicode.Cyrillic, runes[n-1]):
		// Consonant ending: Новгород -> Новгороде.
		return string(runes) + "е"
	}

	return word
}

func hasSuffix(runes []rune, suffix string) bool {
	s := []rune(suffix)
	if len(runes) < len(s) {
		return false
	}
	return string(runes[len(runes)-len(s):]) == suffix
}

// TitleCase uppercases the first letter of every space- or hyphen-separated
// part and lowercases the rest.
func TitleCase(s string) string {
	var b strings.Builder
	startOfWord := true
	for _, r := range s {
		switch {
		case r == ' ' || r == '-':
			startOfWord = true
			b.WriteRune(r)
		case startOfWord:
			b.WriteRune(unicode.ToUpper(r))
			startOfWord = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
