package model

import "time"

// Category is the normalized observationType of a record. Only the listed
// values participate in event grouping; anything else is CategoryUnknown.
type Category string

const (
	CategoryAnimal  Category = "animal"
	CategoryHuman   Category = "human"
	CategoryBlank   Category = "blank"
	CategoryVehicle Category = "vehicle"
	CategoryUnknown Category = ""
)

// Recognized reports whether the category is one of the groupable kinds.
func (c Category) Recognized() bool {
	switch c {
	case CategoryAnimal, CategoryHuman, CategoryBlank, CategoryVehicle:
		return true
	}
	return false
}

// Observation is one input row after normalization. Row is the zero-based
// position in the source snapshot; Start and End hold the zero time when the
// source value was missing or unparseable.
type Observation struct {
	Row            int       `json:"row"`
	ObservationID  string    `json:"observation_id,omitempty"`
	DeploymentID   string    `json:"deployment_id"`
	Category       Category  `json:"category"`
	ScientificName string    `json:"scientific_name,omitempty"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
}

// Assignment links one observation record to its event, keyed the way the
// downstream persistence collaborator consumes results.
type Assignment struct {
	ObservationID string `json:"observation_id"`
	EventID       string `json:"event_id"`
}

// EventSummary aggregates one event after the clustering pass: the span it
// covers and how many observations it absorbed.
type EventSummary struct {
	EventID      string    `json:"event_id"`
	DeploymentID string    `json:"deployment_id"`
	GroupingKey  string    `json:"grouping_key"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end,omitempty"`
	Observations int       `json:"observations"`
}
