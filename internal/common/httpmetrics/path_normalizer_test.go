package httpmetrics

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/health", "/health"},
		{"/api/friends", "/api/friends"},
		{"/api/talks/5f0e8d2a-1b3c-4d5e-8f9a-0b1c2d3e4f5a", "/api/talks/{param}"},
		{"/api/talks/12345", "/api/talks/{param}"},
		{"/api/profile/avatar", "/api/profile/avatar"},
	}

	for _, tc := range cases {
		if got := NormalizePath(tc.in); got != tc.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
