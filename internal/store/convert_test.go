package store

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ToPgText Tests
// ----------------------------------------------------------------------------

func TestToPgText(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue string
	}{
		{
			name:      "simple string",
			input:     "alex",
			wantValid: true,
			wantValue: "alex",
		},
		{
			name:      "trims whitespace",
			input:     "  Proposal Sent  ",
			wantValid: true,
			wantValue: "Proposal Sent",
		},
		{
			name:      "empty string",
			input:     "",
			wantValid: false,
		},
		{
			name:      "whitespace only",
			input:     "   ",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgText(tt.input)
			if got.Valid != tt.wantValid {
				t.Errorf("ToPgText(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if tt.wantValid && got.String != tt.wantValue {
				t.Errorf("ToPgText(%q).String = %q, want %q", tt.input, got.String, tt.wantValue)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Timestamptz Tests
// ----------------------------------------------------------------------------

func TestToPgTimestamptz(t *testing.T) {
	when := time.Date(2024, 4, 10, 9, 30, 0, 0, time.UTC)
	zero := time.Time{}

	tests := []struct {
		name      string
		input     *time.Time
		wantValid bool
	}{
		{
			name:      "non-zero time",
			input:     &when,
			wantValid: true,
		},
		{
			name:      "nil pointer",
			input:     nil,
			wantValid: false,
		},
		{
			name:      "zero time",
			input:     &zero,
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgTimestamptz(tt.input)
			if got.Valid != tt.wantValid {
				t.Errorf("ToPgTimestamptz(%v).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if tt.wantValid && !got.Time.Equal(*tt.input) {
				t.Errorf("ToPgTimestamptz(%v).Time = %v, want %v", tt.input, got.Time, *tt.input)
			}
		})
	}
}

func TestPgTimestamptzToPtr_RoundTrip(t *testing.T) {
	when := time.Date(2024, 4, 10, 9, 30, 0, 0, time.UTC)

	got := PgTimestamptzToPtr(ToPgTimestamptz(&when))
	if got == nil {
		t.Fatal("round trip of non-zero time returned nil")
	}
	if !got.Equal(when) {
		t.Errorf("round trip = %v, want %v", *got, when)
	}

	if got := PgTimestamptzToPtr(ToPgTimestamptz(nil)); got != nil {
		t.Errorf("round trip of nil = %v, want nil", *got)
	}
}

// ----------------------------------------------------------------------------
// Float8 Tests
// ----------------------------------------------------------------------------

func TestToPgFloat8(t *testing.T) {
	override := 0.9
	zeroOverride := 0.0

	tests := []struct {
		name      string
		input     *float64
		wantValid bool
		wantValue float64
	}{
		{
			name:      "override present",
			input:     &override,
			wantValid: true,
			wantValue: 0.9,
		},
		{
			// A zero override is a real override, not an absent one.
			name:      "explicit zero",
			input:     &zeroOverride,
			wantValid: true,
			wantValue: 0.0,
		},
		{
			name:      "nil pointer",
			input:     nil,
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgFloat8(tt.input)
			if got.Valid != tt.wantValid {
				t.Errorf("ToPgFloat8.Valid = %v, want %v", got.Valid, tt.wantValid)
			}
			if tt.wantValid && got.Float64 != tt.wantValue {
				t.Errorf("ToPgFloat8.Float64 = %v, want %v", got.Float64, tt.wantValue)
			}
		})
	}
}

func TestPgFloat8ToPtr_RoundTrip(t *testing.T) {
	override := 0.35

	got := PgFloat8ToPtr(ToPgFloat8(&override))
	if got == nil {
		t.Fatal("round trip of present override returned nil")
	}
	if *got != override {
		t.Errorf("round trip = %v, want %v", *got, override)
	}

	if got := PgFloat8ToPtr(ToPgFloat8(nil)); got != nil {
		t.Errorf("round trip of nil = %v, want nil", *got)
	}
}

// ----------------------------------------------------------------------------
// UUID Tests
// ----------------------------------------------------------------------------

func TestToPgUUID(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
	}{
		{
			name:      "valid UUID",
			input:     "550e8400-e29b-41d4-a716-446655440000",
			wantValid: true,
		},
		{
			name:      "empty string",
			input:     "",
			wantValid: false,
		},
		{
			name:      "not a UUID",
			input:     "batch-1",
			wantValid: false,
		},
		{
			name:      "truncated UUID",
			input:     "550e8400-e29b-41d4",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgUUID(tt.input)
			if got.Valid != tt.wantValid {
				t.Errorf("ToPgUUID(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
		})
	}
}

func TestPgUUIDToString_RoundTrip(t *testing.T) {
	id := "550e8400-e29b-41d4-a716-446655440000"
	if got := PgUUIDToString(ToPgUUID(id)); got != id {
		t.Errorf("PgUUIDToString(ToPgUUID(%q)) = %q, want %q", id, got, id)
	}
	if got := PgUUIDToString(ToPgUUID("")); got != "" {
		t.Errorf("PgUUIDToString of invalid UUID = %q, want empty", got)
	}
}
