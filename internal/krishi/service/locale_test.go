package service

import "testing"

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		accept string
		want   string
	}{
		{"hi", "hi"},
		{"hi-IN", "hi"},
		{"en", "en"},
		{"en-US,en;q=0.9", "en"},
		{"hi-IN,hi;q=0.9,en;q=0.8", "hi"},
		{"fr", "en"},
		{"", "en"},
		{"garbage;;;", "en"},
	}

	for _, tt := range tests {
		if got := MatchLanguage(tt.accept); got != tt.want {
			t.Errorf("MatchLanguage(%q) = %q, want %q", tt.accept, got, tt.want)
		}
	}
}
