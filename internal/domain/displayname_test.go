package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loopspot/loopspot/internal/domain"
)

func TestDisplayName(t *testing.T) {
	cases := []struct {
		name, displayName, email, want string
	}{
		{"display name wins", "Ada", "ada@example.com", "Ada"},
		{"email local part", "", "grace@example.com", "grace"},
		{"blank display name", "   ", "linus@example.com", "linus"},
		{"no at sign", "", "not-an-email", "User"},
		{"nothing known", "", "", "User"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.DisplayName(tc.displayName, tc.email))
		})
	}
}
