package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateColumnName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"bro id", "CPT000000018920", false},
		{"alias with space", "B 12", false},
		{"unicode", "Sondering-Ø", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"tab", "foo\tbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColumnName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColumnName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidColumn) {
				t.Errorf("ValidateColumnName(%q) code = %s, want %s", tt.input, GetCode(err), ErrCodeInvalidColumn)
			}
		})
	}
}

func TestValidateCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"rd x", 127667, false},
		{"negative", -12.5, false},
		{"nan", math.NaN(), true},
		{"+inf", math.Inf(1), true},
		{"-inf", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinate("x", tt.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinate(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "profiles/line-a.json", false},
		{"absolute", "/tmp/section.json", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"null byte", "a\x00b", true},
		{"control", "a\x01b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
