package domain

import "strings"

// DisplayName picks the name shown in greetings from what the auth provider
// knows about the user: the display name, else the local part of the email,
// else "User".
func DisplayName(displayName, email string) string {
	if n := strings.TrimSpace(displayName); n != "" {
		return n
	}
	if local, _, ok := strings.Cut(strings.TrimSpace(email), "@"); ok && local != "" {
		return local
	}
	return "User"
}
