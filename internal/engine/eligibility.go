package engine

import (
	"strings"

	"camtrap/internal/model"
)

// Eligible reports whether an observation can participate in event grouping:
// a parseable start time, a non-empty deployment, and a resolvable grouping
// key. Unrecognized categories are never grouped.
func Eligible(obs model.Observation) bool {
	if obs.Start.IsZero() {
		return false
	}
	if strings.TrimSpace(obs.DeploymentID) == "" {
		return false
	}
	_, ok := GroupKey(obs)
	return ok
}
