package order

import (
	"crypto/subtle"
	"strings"
)

// codesMatch compares a submitted delivery code with the stored one. Only
// surrounding whitespace is ignored; the comparison is constant-time.
func codesMatch(stored, submitted string) bool {
	submitted = strings.TrimSpace(submitted)
	if stored == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
