package model

import "strings"

// MaskToken hides the middle of a token, keeping the first and last two
// characters. Tokens too short to mask safely are fully redacted.
func MaskToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:2] + strings.Repeat("*", len(token)-4) + token[len(token)-2:]
}

// MaskEmail keeps the first character of the local part and the full domain.
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
