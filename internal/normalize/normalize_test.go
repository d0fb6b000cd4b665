package normalize

import (
	"testing"
	"time"

	"camtrap/internal/model"
)

func TestParseTimestampFormats(t *testing.T) {
	want := time.Date(2021, 6, 1, 10, 0, 0, 0, time.UTC)
	cases := []string{
		"2021-06-01T10:00:00Z",
		"2021-06-01T10:00:00",
		"2021-06-01 10:00:00",
		"2021-06-01T10:00:00+00:00",
		"1622541600",
	}
	for _, value := range cases {
		got, err := ParseTimestamp(value, time.UTC)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parse %q = %v, want %v", value, got, want)
		}
	}
}

func TestParseTimestampDateOnly(t *testing.T) {
	got, err := ParseTimestamp("2021-06-01", time.UTC)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if !got.Equal(time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date-only parse: %v", got)
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "   ", "not-a-date", "32/13/2021"} {
		if _, err := ParseTimestamp(value, time.UTC); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}

func TestParseCategory(t *testing.T) {
	cases := map[string]model.Category{
		"animal":  model.CategoryAnimal,
		"Animal":  model.CategoryAnimal,
		" HUMAN ": model.CategoryHuman,
		"blank":   model.CategoryBlank,
		"vehicle": model.CategoryVehicle,
		"bird":    model.CategoryUnknown,
		"":        model.CategoryUnknown,
	}
	for value, want := range cases {
		if got := ParseCategory(value); got != want {
			t.Fatalf("ParseCategory(%q) = %q, want %q", value, got, want)
		}
	}
}

func TestNormalizeRow(t *testing.T) {
	fields := RecordFields{
		ObservationID:   " obs-9 ",
		DeploymentID:    " D1 ",
		ObservationType: "Animal",
		ScientificName:  " Vulpes vulpes ",
		EventStart:      "2021-06-01T10:00:00Z",
		EventEnd:        "garbage",
	}
	got := Normalize(fields, 4, time.UTC)
	if got.Row != 4 || got.ObservationID != "obs-9" || got.DeploymentID != "D1" {
		t.Fatalf("identity fields: %+v", got)
	}
	if got.Category != model.CategoryAnimal || got.ScientificName != "Vulpes vulpes" {
		t.Fatalf("category fields: %+v", got)
	}
	if got.Start.IsZero() {
		t.Fatalf("start should parse")
	}
	if !got.End.IsZero() {
		t.Fatalf("unparseable end must stay absent, got %v", got.End)
	}
}
