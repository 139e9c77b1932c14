package domain

import "strings"

// AlternativesSeparator splits the accepted forms of one cell.
const AlternativesSeparator = "|"

// Normalize trims, lowercases and collapses internal whitespace runs to one space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ValidateAnswer reports whether the answer matches one of the accepted alternatives.
// Only case and whitespace differences are tolerated.
func ValidateAnswer(answer, acceptedForms string) bool {
	normalized := Normalize(answer)
	for _, alt := range strings.Split(acceptedForms, AlternativesSeparator) {
		if Normalize(alt) == normalized {
			return true
		}
	}
	return false
}

// FirstAlternative returns the form shown when revealing a wrong answer,
// with whitespace collapsed but case kept.
func FirstAlternative(acceptedForms string) string {
	first, _, _ := strings.Cut(acceptedForms, AlternativesSeparator)
	return strings.Join(strings.Fields(first), " ")
}
