package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "3f0c7a9e-5d41-4f0b-9a65-7d1f3c2b8e10", false},
		{"valid component id", "timer-1a2b3c", false},
		{"valid underscore", "quiz_1", false},
		{"valid digits", "1", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"path traversal", "../etc", true},
		{"slash", "a/b", true},
		{"space", "a b", true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("ValidateID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidID)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "New Quiz", false},
		{"valid unicode", "Capitales d'Europe", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("x", MaxTitleLength+1), true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTitle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
