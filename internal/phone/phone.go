package phone

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// CleanDigits strips everything except decimal digits.
func CleanDigits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// Normalize joins an international dialing prefix (e.g. "+961") with the
// local digits (e.g. "70 123 456") into a full number ("96170123456").
// When the digits already start with the prefix the digits are returned
// unchanged, so a pasted full international number is not prefixed twice.
func Normalize(prefix, digits string) string {
	pre := strings.TrimPrefix(strings.TrimSpace(prefix), "+")
	num := CleanDigits(digits)
	if num != "" && pre != "" && strings.HasPrefix(num, pre) {
		return num
	}
	return pre + num
}
