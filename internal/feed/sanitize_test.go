package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Matrix", "The-Matrix"},
		{"Léon: The Professional", "Leon-The-Professional"},
		{"WALL·E", "WALLE"},
		{"8½", "8"},
		{"What's Up, Doc?", "Whats-Up-Doc"},
		{"2001: A Space Odyssey", "2001-A-Space-Odyssey"},
		{"Amélie", "Amelie"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTitle(tt.in))
		})
	}
}
