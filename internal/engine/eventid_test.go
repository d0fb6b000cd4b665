package engine

import (
	"testing"
	"time"
)

func TestEventIDKnownVectors(t *testing.T) {
	start := mustTime(t, "2021-06-01T10:00:00Z")
	if got := EventID("D1", "Vulpes vulpes", start, 8); got != "55c26c8f" {
		t.Fatalf("EventID = %q, want 55c26c8f", got)
	}
	if got := EventID("D1", "Vulpes vulpes", start, 16); got != "55c26c8f3b4c41c9" {
		t.Fatalf("EventID length 16 = %q", got)
	}
	blank := mustTime(t, "2024-03-05T22:14:09Z")
	if got := EventID("CAM-07", "blank", blank, 8); got != "4ffb6b67" {
		t.Fatalf("EventID = %q, want 4ffb6b67", got)
	}
}

func TestEventIDCanonicalizesOffsets(t *testing.T) {
	utc := mustTime(t, "2021-06-01T10:00:00Z")
	offset, err := time.Parse(time.RFC3339, "2021-06-01T12:00:00+02:00")
	if err != nil {
		t.Fatal(err)
	}
	if EventID("D1", "Vulpes vulpes", utc, 8) != EventID("D1", "Vulpes vulpes", offset, 8) {
		t.Fatalf("the same instant must hash identically regardless of offset")
	}
}

func TestEventIDIsPure(t *testing.T) {
	start := mustTime(t, "2021-06-01T10:00:00Z")
	a := EventID("D1", "Vulpes vulpes", start, 8)
	b := EventID("D1", "Vulpes vulpes", start, 8)
	if a != b {
		t.Fatalf("EventID must be deterministic: %q vs %q", a, b)
	}
}
