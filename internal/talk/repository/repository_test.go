package repository

import "testing"

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		want    string
	}{
		{"plain", "alice", "alice"},
		{"empty", "", ""},
		{"underscore", "a_c", `a\_c`},
		{"percent", "50%", `50\%`},
		{"backslash", `a\c`, `a\\c`},
		{"mixed", `_%\`, `\_\%\\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeLike(tt.keyword); got != tt.want {
				t.Errorf("escapeLike(%q) = %q, want %q", tt.keyword, got, tt.want)
			}
		})
	}
}
