// Package password scores password strength for student signups.
package password

import "regexp"

var (
	lowerRe  = regexp.MustCompile(`[a-z]`)
	upperRe  = regexp.MustCompile(`[A-Z]`)
	digitRe  = regexp.MustCompile(`\d`)
	symbolRe = regexp.MustCompile(`[\W_]`)
)

// MinScore is the minimum strength score required at signup.
const MinScore = 3

// Score rates a password from 0 to 4: one point each for length of at least 8,
// mixed case, a digit, and a symbol.
func Score(pw string) int {
	s := 0
	if len(pw) >= 8 {
		s++
	}
	if lowerRe.MatchString(pw) && upperRe.MatchString(pw) {
		s++
	}
	if digitRe.MatchString(pw) {
		s++
	}
	if symbolRe.MatchString(pw) {
		s++
	}
	return s
}

// Requirements describes each scoring rule for display to the user.
func Requirements(pw string) map[string]bool {
	return map[string]bool{
		"At least 8 characters":       len(pw) >= 8,
		"Upper and lowercase letters": lowerRe.MatchString(pw) && upperRe.MatchString(pw),
		"At least one number":         digitRe.MatchString(pw),
		"At least one symbol":         symbolRe.MatchString(pw),
	}
}
