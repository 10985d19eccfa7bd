package store

import (
	"testing"

	"github.com/superchezzz/daa-ayospila/internal/models"
)

func TestValidTransition(t *testing.T) {
	cases := []struct {
		from  string
		to    string
		valid bool
	}{
		{models.StatusWaiting, models.StatusServing, true},
		{models.StatusServing, models.StatusServed, true},
		{models.StatusWaiting, models.StatusServed, false},
		{models.StatusServing, models.StatusWaiting, false},
		{models.StatusServed, models.StatusServing, false},
		{models.StatusServed, models.StatusWaiting, false},
		{"unknown", models.StatusServing, false},
	}

	for _, tt := range cases {
		if got := ValidTransition(tt.from, tt.to); got != tt.valid {
			t.Fatalf("ValidTransition(%q, %q)=%v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}
