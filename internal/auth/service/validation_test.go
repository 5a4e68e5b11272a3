package service

import (
	"strings"
	"testing"

	"github.com/talkroom-app/backend/internal/common/constants"
)

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		name     string
		username string
		valid    bool
	}{
		{"simple", "alice", true},
		{"with digits", "alice99", true},
		{"with separators", "a_li-ce", true},
		{"minimum length", "abc", true},
		{"maximum length", strings.Repeat("a", constants.UsernameMaxLength), true},
		{"too short", "ab", false},
		{"too long", strings.Repeat("a", constants.UsernameMaxLength+1), false},
		{"space", "al ice", false},
		{"leading underscore", "_alice", false},
		{"trailing dash", "alice-", false},
		{"non latin", "алиса", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUsername(tc.username)
			if tc.valid && err != nil {
				t.Errorf("expected %q valid, got %v", tc.username, err)
			}
			if !tc.valid && err == nil {
				t.Errorf("expected %q invalid", tc.username)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"letters and digit", "password1", true},
		{"minimum length", "abcdefg1", true},
		{"too short", "abc1", false},
		{"too long", strings.Repeat("a", constants.PasswordMaxLength) + "1", false},
		{"no digit", "passwords", false},
		{"no letter", "12345678", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.valid && err != nil {
				t.Errorf("expected %q valid, got %v", tc.password, err)
			}
			if !tc.valid && err == nil {
				t.Errorf("expected %q invalid", tc.password)
			}
		})
	}
}
