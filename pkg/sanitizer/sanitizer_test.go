package sanitizer

import (
	"testing"

	"ticketing/pkg/model"
)

func TestSeatID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already clean", input: "A1", want: "A1"},
		{name: "surrounding whitespace", input: " A1\t", want: "A1"},
		{name: "case preserved", input: "a1", want: "a1"},
		{name: "inner whitespace preserved", input: " A  1 ", want: "A  1"},
		{name: "non-ascii preserved", input: " Balcón-12 ", want: "Balcón-12"},
		{name: "control characters", input: "A\x001\x7f", want: "A1"},
		{name: "blank", input: " \n ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SeatID(tt.input)
			if got != tt.want {
				t.Errorf("SeatID(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := SeatID(got); again != got {
				t.Errorf("SeatID is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestClaim(t *testing.T) {
	claim := &model.ClaimRequest{UserID: 7, EventID: 1, SeatID: "  B2 "}
	Claim(claim)
	if claim.SeatID != "B2" || claim.UserID != 7 || claim.EventID != 1 {
		t.Errorf("Claim() = %+v", claim)
	}

	Claim(nil)
}
