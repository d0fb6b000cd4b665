package engine

import (
	"sort"

	"camtrap/internal/model"
)

// Summarize folds assigned observations into one row per event: the covered
// span and the member count. Output order is deterministic.
func Summarize(observations []model.Observation, assignments map[int]string) []model.EventSummary {
	byID := make(map[string]*model.EventSummary)
	for _, obs := range observations {
		id, ok := assignments[obs.Row]
		if !ok || id == "" {
			continue
		}
		s, seen := byID[id]
		if !seen {
			key, _ := GroupKey(obs)
			s = &model.EventSummary{
				EventID:      id,
				DeploymentID: obs.DeploymentID,
				GroupingKey:  key,
				Start:        obs.Start,
				End:          obs.End,
			}
			byID[id] = s
		} else {
			if obs.Start.Before(s.Start) {
				s.Start = obs.Start
			}
			if !obs.End.IsZero() && (s.End.IsZero() || obs.End.After(s.End)) {
				s.End = obs.End
			}
		}
		s.Observations++
	}

	out := make([]model.EventSummary, 0, len(byID))
	for _, s := range byID {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DeploymentID != b.DeploymentID {
			return a.DeploymentID < b.DeploymentID
		}
		if a.GroupingKey != b.GroupingKey {
			return a.GroupingKey < b.GroupingKey
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.EventID < b.EventID
	})
	return out
}
