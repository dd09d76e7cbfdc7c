package library_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	library "github.com/AHApeN4264/Book-library-manager"
)

func TestIsAdminUsername(t *testing.T) {
	tests := []struct {
		username string
		expected bool
	}{
		{"admin", true},
		{"Admin", true},
		{"ADMIN", true},
		{"  admin  ", true},
		{"administrator", false},
		{"adm in", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(tc.username, func(t *testing.T) {
			assert.Equal(t, tc.expected, library.IsAdminUsername(tc.username))
		})
	}
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, (&library.User{Username: " Admin "}).IsAdmin())
	assert.False(t, (&library.User{Username: "alice"}).IsAdmin())
}
