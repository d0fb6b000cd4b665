package engine

import (
	"testing"
	"time"

	"camtrap/internal/model"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func obs(t *testing.T, row int, dep string, cat model.Category, sci, start, end string) model.Observation {
	t.Helper()
	o := model.Observation{Row: row, DeploymentID: dep, Category: cat, ScientificName: sci}
	if start != "" {
		o.Start = mustTime(t, start)
	}
	if end != "" {
		o.End = mustTime(t, end)
	}
	return o
}

func TestClusterFoxScenario(t *testing.T) {
	rows := []model.Observation{
		obs(t, 0, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:00:00Z", "2021-06-01T10:00:05Z"),
		obs(t, 1, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:02:00Z", "2021-06-01T10:02:10Z"),
		obs(t, 2, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:10:00Z", "2021-06-01T10:10:00Z"),
	}
	ids := Cluster(rows, 180*time.Second, 8)
	if ids[0] == "" || ids[0] != ids[1] {
		t.Fatalf("rows 0 and 1 should share an event, got %q and %q", ids[0], ids[1])
	}
	if ids[2] == ids[0] {
		t.Fatalf("row 2 should open a new event")
	}
}

func TestClusterThresholdBoundary(t *testing.T) {
	exact := []model.Observation{
		obs(t, 0, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:00:00Z", "2021-06-01T10:00:00Z"),
		obs(t, 1, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:03:00Z", "2021-06-01T10:03:00Z"),
	}
	ids := Cluster(exact, 180*time.Second, 8)
	if ids[0] != ids[1] {
		t.Fatalf("gap equal to threshold must stay in one event")
	}

	over := []model.Observation{
		obs(t, 0, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:00:00Z", "2021-06-01T10:00:00Z"),
		obs(t, 1, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:03:01Z", "2021-06-01T10:03:01Z"),
	}
	ids = Cluster(over, 180*time.Second, 8)
	if ids[0] == ids[1] {
		t.Fatalf("gap one second over threshold must open a new event")
	}
}

func TestClusterPartitionIsolation(t *testing.T) {
	rows := []model.Observation{
		obs(t, 0, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:00:00Z", "2021-06-01T10:00:05Z"),
		obs(t, 1, "D2", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:00:01Z", "2021-06-01T10:00:06Z"),
		obs(t, 2, "D1", model.CategoryAnimal, "Meles meles", "2021-06-01T10:00:02Z", "2021-06-01T10:00:07Z"),
	}
	ids := Cluster(rows, 180*time.Second, 8)
	if ids[0] == ids[1] || ids[0] == ids[2] || ids[1] == ids[2] {
		t.Fatalf("observations differing in deployment or key must never share an event: %v", ids)
	}
}

func TestClusterDeterministicUnderReordering(t *testing.T) {
	rows := []model.Observation{
		obs(t, 0, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:00:00Z", "2021-06-01T10:00:05Z"),
		obs(t, 1, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:02:00Z", "2021-06-01T10:02:10Z"),
		obs(t, 2, "D2", model.CategoryBlank, "", "2021-06-01T09:00:00Z", "2021-06-01T09:00:01Z"),
		obs(t, 3, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:10:00Z", "2021-06-01T10:10:00Z"),
		obs(t, 4, "D2", model.CategoryBlank, "", "2021-06-01T09:01:00Z", "2021-06-01T09:01:30Z"),
	}
	want := Cluster(rows, 180*time.Second, 8)

	shuffled := []model.Observation{rows[4], rows[2], rows[3], rows[0], rows[1]}
	got := Cluster(shuffled, 180*time.Second, 8)

	if len(got) != len(want) {
		t.Fatalf("assignment count changed: got %d want %d", len(got), len(want))
	}
	for row, id := range want {
		if got[row] != id {
			t.Fatalf("row %d: got %q want %q after reordering", row, got[row], id)
		}
	}
}

func TestClusterInvalidEndKeepsRunningEnd(t *testing.T) {
	rows := []model.Observation{
		obs(t, 0, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:00:00Z", "2021-06-01T10:05:00Z"),
		obs(t, 1, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:01:00Z", ""),
		obs(t, 2, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:07:00Z", "2021-06-01T10:07:30Z"),
	}
	ids := Cluster(rows, 180*time.Second, 8)
	if ids[0] != ids[1] || ids[1] != ids[2] {
		t.Fatalf("missing end must not invalidate the running end: %v", ids)
	}
}

func TestClusterUndefinedRunningEndOpensNewEvent(t *testing.T) {
	rows := []model.Observation{
		obs(t, 0, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:00:00Z", ""),
		obs(t, 1, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:00:30Z", "2021-06-01T10:00:35Z"),
	}
	ids := Cluster(rows, 180*time.Second, 8)
	if ids[0] == ids[1] {
		t.Fatalf("a group whose running end is undefined must open a new event")
	}
}

func TestClusterDuplicateTimestamps(t *testing.T) {
	rows := []model.Observation{
		obs(t, 0, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:00:00Z", "2021-06-01T10:00:05Z"),
		obs(t, 1, "D1", model.CategoryAnimal, "Vulpes vulpes", "2021-06-01T10:00:00Z", "2021-06-01T10:00:03Z"),
	}
	ids := Cluster(rows, 180*time.Second, 8)
	if ids[0] != ids[1] {
		t.Fatalf("co-timestamped co-keyed rows belong to one event")
	}

	reversed := []model.Observation{rows[1], rows[0]}
	other := Cluster(reversed, 180*time.Second, 8)
	if other[0] != ids[0] || other[1] != ids[1] {
		t.Fatalf("duplicate-timestamp assignment must be reproducible")
	}
}
