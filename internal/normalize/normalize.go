package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"camtrap/internal/model"
)

// RecordFields carries the raw text of one observation row, keyed off the
// snapshot header. Missing columns arrive as empty strings.
type RecordFields struct {
	ObservationID   string
	DeploymentID    string
	ObservationType string
	ScientificName  string
	EventStart      string
	EventEnd        string
}

// Normalize coerces one raw row into an Observation. It never returns an
// error: unparseable timestamps become the zero time and unknown categories
// become CategoryUnknown, leaving the eligibility decision downstream.
func Normalize(fields RecordFields, row int, loc *time.Location) model.Observation {
	if loc == nil {
		loc = time.UTC
	}
	obs := model.Observation{
		Row:            row,
		ObservationID:  strings.TrimSpace(fields.ObservationID),
		DeploymentID:   strings.TrimSpace(fields.DeploymentID),
		Category:       ParseCategory(fields.ObservationType),
		ScientificName: strings.TrimSpace(fields.ScientificName),
	}
	if ts, err := ParseTimestamp(fields.EventStart, loc); err == nil {
		obs.Start = ts
	}
	if ts, err := ParseTimestamp(fields.EventEnd, loc); err == nil {
		obs.End = ts
	}
	return obs
}

// ParseCategory lowercases and trims an observationType value. Values
// outside the recognized set map to CategoryUnknown.
func ParseCategory(value string) model.Category {
	switch model.Category(strings.ToLower(strings.TrimSpace(value))) {
	case model.CategoryAnimal:
		return model.CategoryAnimal
	case model.CategoryHuman:
		return model.CategoryHuman
	case model.CategoryBlank:
		return model.CategoryBlank
	case model.CategoryVehicle:
		return model.CategoryVehicle
	}
	return model.CategoryUnknown
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp tries the layout table, preferring forms that carry their
// own offset; offset-free forms are interpreted in loc. Pure numeric values
// are treated as unix seconds or milliseconds.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if loc == nil {
		loc = time.UTC
	}
	if isNumeric(value) {
		if ts, err := parseUnix(value); err == nil {
			return ts, nil
		}
	}
	for _, layout := range timestampLayouts {
		// ParseInLocation ignores loc for layouts that carry their own offset.
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format: %q", value)
}

func isNumeric(value string) bool {
	for _, ch := range value {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return len(value) > 0
}

func parseUnix(value string) (time.Time, error) {
	if len(value) >= 13 {
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(0, ms*int64(time.Millisecond)).UTC(), nil
	}
	sec, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}
