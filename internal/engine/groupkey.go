package engine

import (
	"strings"

	"camtrap/internal/model"
)

// GroupKey derives the value that, together with the deployment, clusters
// observations. Animal rows group by scientific name and have no key
// without one. The other recognized categories also group by scientific
// name when present, falling back to the category label so that, say, blank
// frames at one deployment cluster together.
func GroupKey(obs model.Observation) (string, bool) {
	name := strings.TrimSpace(obs.ScientificName)
	switch obs.Category {
	case model.CategoryAnimal:
		if name == "" {
			return "", false
		}
		return name, true
	case model.CategoryHuman, model.CategoryBlank, model.CategoryVehicle:
		if name != "" {
			return name, true
		}
		return string(obs.Category), true
	}
	return "", false
}
