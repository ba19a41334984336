package validator

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"ticketing/pkg/model"
)

func TestValidate(t *testing.T) {
	v := NewClaimValidator()

	tests := []struct {
		name       string
		claim      *model.ClaimRequest
		wantFields []string
	}{
		{
			name:  "valid claim",
			claim: &model.ClaimRequest{UserID: 7, EventID: 1, SeatID: "A1"},
		},
		{
			name:       "missing user",
			claim:      &model.ClaimRequest{EventID: 1, SeatID: "A1"},
			wantFields: []string{"userId"},
		},
		{
			name:       "missing everything",
			claim:      &model.ClaimRequest{},
			wantFields: []string{"userId", "eventId", "seatId"},
		},
		{
			name:       "negative event",
			claim:      &model.ClaimRequest{UserID: 7, EventID: -1, SeatID: "A1"},
			wantFields: []string{"eventId"},
		},
		{
			name:       "seat too long",
			claim:      &model.ClaimRequest{UserID: 7, EventID: 1, SeatID: strings.Repeat("A", 51)},
			wantFields: []string{"seatId"},
		},
		{
			name:       "blank seat",
			claim:      &model.ClaimRequest{UserID: 7, EventID: 1, SeatID: "   "},
			wantFields: []string{"seatId"},
		},
		{
			name:       "nil claim",
			claim:      nil,
			wantFields: []string{"body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.claim)
			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
			}
			if got := verrs.Fields(); !reflect.DeepEqual(got, tt.wantFields) {
				t.Errorf("fields = %v, want %v", got, tt.wantFields)
			}
		})
	}
}

func TestValidate_Messages(t *testing.T) {
	err := NewClaimValidator().Validate(&model.ClaimRequest{EventID: 1, SeatID: "A1"})

	var verrs ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 1 {
		t.Fatalf("expected one validation error, got %v", err)
	}
	if verrs[0].Message != "is required" {
		t.Errorf("message = %q", verrs[0].Message)
	}
	if verrs[0].Error() != "userId: is required" {
		t.Errorf("Error() = %q", verrs[0].Error())
	}
}
