package sanitizer

import (
	"strings"
	"unicode"

	"ticketing/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func dropControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

var seatIDPipeline = Pipeline{
	dropControl,
	strings.TrimSpace,
}

// SeatID strips control characters and surrounding whitespace from a seat
// identifier. Everything else is kept as sent: "a1", "A1" and "A 1" are different seats.
func SeatID(seatID string) string {
	return seatIDPipeline.Apply(seatID)
}

// Claim normalizes the free-text fields of a claim in place.
func Claim(claim *model.ClaimRequest) {
	if claim == nil {
		return
	}
	claim.SeatID = SeatID(claim.SeatID)
}
