package engine

import (
	"sort"
	"time"

	"camtrap/internal/model"
)

type member struct {
	row        int
	deployment string
	key        string
	start      time.Time
	end        time.Time
}

// clusterState is the rolling accumulator for the single forward pass. It is
// a plain value scoped to one Cluster call; nothing leaks across runs.
type clusterState struct {
	eventID    string
	deployment string
	key        string
	maxEnd     time.Time
	active     bool
}

// assign decides whether m opens a new event or joins the current one and
// returns the event ID stamped on it. A new event starts on a deployment or
// key change, when the running end is undefined, or when the gap strictly
// exceeds threshold; a gap exactly equal to threshold stays in the event.
func (st *clusterState) assign(m member, threshold time.Duration, idLength int) string {
	fresh := !st.active ||
		m.deployment != st.deployment ||
		m.key != st.key ||
		st.maxEnd.IsZero() ||
		m.start.Sub(st.maxEnd) > threshold
	if fresh {
		st.eventID = EventID(m.deployment, m.key, m.start, idLength)
		st.maxEnd = m.end
	} else if !m.end.IsZero() && m.end.After(st.maxEnd) {
		// A row with no usable end never regresses the running end.
		st.maxEnd = m.end
	}
	st.deployment = m.deployment
	st.key = m.key
	st.active = true
	return st.eventID
}

// Cluster runs the ordered pass over eligible observations and maps each
// original row index to its event ID. Sorting is by deployment, grouping
// key, start time, with original row order breaking exact timestamp ties,
// so the assignment is deterministic under input reordering.
func Cluster(eligible []model.Observation, threshold time.Duration, idLength int) map[int]string {
	members := make([]member, 0, len(eligible))
	for _, obs := range eligible {
		key, ok := GroupKey(obs)
		if !ok {
			continue
		}
		members = append(members, member{
			row:        obs.Row,
			deployment: obs.DeploymentID,
			key:        key,
			start:      obs.Start,
			end:        obs.End,
		})
	}
	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.deployment != b.deployment {
			return a.deployment < b.deployment
		}
		if a.key != b.key {
			return a.key < b.key
		}
		if !a.start.Equal(b.start) {
			return a.start.Before(b.start)
		}
		return a.row < b.row
	})

	assignments := make(map[int]string, len(members))
	var st clusterState
	for _, m := range members {
		assignments[m.row] = st.assign(m, threshold, idLength)
	}
	return assignments
}
