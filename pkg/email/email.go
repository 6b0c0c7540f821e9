// Package email renders and delivers account mails: provisioned credentials
// and temporary passwords.
package email

import (
	"strings"
	"unicode"
)

// fallbackName greets recipients whose address yields no usable name.
const fallbackName = "User"

// GreetingName turns the local part of an address into a salutation:
// "asha.rao@example.com" becomes "Asha Rao". Addresses with an empty local
// part get "User".
func GreetingName(address string) string {
	local := strings.TrimSpace(address)
	if at := strings.LastIndexByte(local, '@'); at >= 0 {
		local = local[:at]
	}

	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+' || unicode.IsSpace(r)
	})
	if len(words) == 0 {
		return fallbackName
	}
	for i, w := range words {
		words[i] = titleCase(w)
	}
	return strings.Join(words, " ")
}

func titleCase(s string) string {
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
