package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// startLayout renders the opening eventStart at seconds precision in UTC so
// the same instant always serializes identically regardless of how the
// source wrote it.
const startLayout = "2006-01-02T15:04:05Z07:00"

// EventID derives the identifier for an event opened by the given row. It
// is a pure function of its inputs; re-running on identical data reproduces
// identical IDs. Truncation keeps IDs short at the cost of collision risk
// (birthday bound is ~50% around 77k events at the default length of 8).
func EventID(deploymentID, groupingKey string, start time.Time, length int) string {
	sum := sha256.Sum256([]byte(deploymentID + "_" + groupingKey + "_" + start.UTC().Format(startLayout)))
	id := hex.EncodeToString(sum[:])
	if length <= 0 || length >= len(id) {
		return id
	}
	return id[:length]
}
