package utils

import (
	"net/mail"
	"strings"
)

// ExtractAddress reduces a recipient given as "Name <user@host>" to the
// bare address. Anything that does not parse as an RFC 5322 address is
// returned trimmed as-is rather than dropped; a capture tool should
// never lose mail over a sloppy envelope.
func ExtractAddress(s string) string {
	s = strings.TrimSpace(s)
	if addr, err := mail.ParseAddress(s); err == nil {
		return addr.Address
	}
	if start := strings.LastIndex(s, "<"); start != -1 {
		if end := strings.LastIndex(s, ">"); end > start {
			return strings.TrimSpace(s[start+1 : end])
		}
	}
	return s
}
