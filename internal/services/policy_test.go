package services

import "testing"

func TestHasEventPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy []string
		slug   string
		want   bool
	}{
		{"exact match", []string{"hack-night", "robotics-cup"}, "hack-night", true},
		{"no match", []string{"hack-night"}, "robotics-cup", false},
		{"wildcard grants everything", []string{"*"}, "any-event-at-all", true},
		{"empty policy denies", nil, "hack-night", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasEventPolicy(tt.policy, tt.slug); got != tt.want {
				t.Errorf("HasEventPolicy(%v, %q) = %v, want %v", tt.policy, tt.slug, got, tt.want)
			}
		})
	}
}
