package credential

import (
	"strings"

	"shareregistry/internal/auth/secrets"
)

const (
	maxUsernameBase = 12
	suffixLen       = 4
	wideSuffixLen   = 6
	fallbackBase    = "user"
)

// UsernameBase reduces a display name to at most 12 lowercase [a-z0-9] characters.
func UsernameBase(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == maxUsernameBase {
				break
			}
		}
	}
	if b.Len() == 0 {
		return fallbackBase
	}
	return b.String()
}

// GenerateUsername appends n random hex characters to the base of name.
func GenerateUsername(name string, n int) (string, error) {
	suffix, err := secrets.RandomHex(n)
	if err != nil {
		return "", err
	}
	return UsernameBase(name) + suffix, nil
}
