package model

import (
	"regexp"
	"strings"
	"unicode"
)

var separatorPattern = regexp.MustCompile(`[_\-\s.]+`)

// DisplayLabel returns the explicit label or one derived from the name.
func (f Field) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return Humanize(f.Name)
}

// DisplayLabel returns the explicit label or one derived from the name.
func (d FormDefinition) DisplayLabel() string {
	if label := strings.TrimSpace(d.Label); label != "" {
		return label
	}
	return Humanize(d.Name)
}

// Humanize turns identifiers such as "billing_address" or "postCode2" into
// "Billing Address" and "Post Code 2".
func Humanize(name string) string {
	var words []string
	for _, chunk := range separatorPattern.Split(name, -1) {
		if chunk == "" {
			continue
		}
		for _, word := range splitCamel(chunk) {
			words = append(words, titleCase(word))
		}
	}
	return strings.Join(words, " ")
}

func splitCamel(input string) []string {
	runes := []rune(input)
	var (
		words []string
		start int
	)
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := (unicode.IsLower(prev) && unicode.IsUpper(cur)) ||
			(unicode.IsLetter(prev) && unicode.IsDigit(cur)) ||
			(unicode.IsDigit(prev) && unicode.IsLetter(cur))
		if boundary {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}

func titleCase(word string) string {
	if word == "" {
		return ""
	}
	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
