package core

import (
	"errors"
	"testing"
	"time"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseRecordID tests record ID parsing
func TestParseRecordID(t *testing.T) {
	valid := NewRecordID().String()

	tests := []struct {
		input    string
		expected RecordID
		hasError bool
	}{
		{valid, RecordID(valid), false},
		{"", "", true},
		{"   ", "", true},
		{"not-a-uuid", "", true},
	}

	for _, test := range tests {
		result, err := ParseRecordID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestThresholdNotMetErrorMatchesSentinel(t *testing.T) {
	var err error = &ThresholdNotMetError{Measure: "m", F1: 0.5, Kappa: 0.2, MinF1: 0.7, MinKappa: 0.6}

	if !errors.Is(err, ErrThresholdNotMet) {
		t.Fatal("expected ThresholdNotMetError to match ErrThresholdNotMet")
	}
	if !IsRecoverableValidationError(err) {
		t.Error("expected threshold failure to be recoverable")
	}

	var tnm *ThresholdNotMetError
	if !errors.As(err, &tnm) || tnm.F1 != 0.5 {
		t.Errorf("expected errors.As to recover the computed F1, got %+v", tnm)
	}
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := FixedClock(at)
	if !clock().Equal(at) {
		t.Errorf("expected %v, got %v", at, clock())
	}
	if got := FormatTimestamp(at); got != "2024-03-01T12:00:00Z" {
		t.Errorf("unexpected timestamp format %q", got)
	}
}
