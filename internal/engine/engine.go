package engine

import (
	"context"
	"log/slog"
	"time"

	"camtrap/internal/config"
	"camtrap/internal/model"
	"camtrap/internal/storage"
)

// Publisher emits event summaries to an external sink after a run.
type Publisher interface {
	PublishSummaries(ctx context.Context, summaries []model.EventSummary) error
}

type Engine struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     storage.Store
	publisher Publisher
}

// Result is the outcome of one clustering run.
type Result struct {
	Rows        int
	Eligible    int
	Events      int
	Assignments map[int]string
	Assigned    []model.Assignment
	Summaries   []model.EventSummary
}

func New(cfg *config.Config, logger *slog.Logger, store storage.Store, publisher Publisher) *Engine {
	return &Engine{cfg: cfg, logger: logger, store: store, publisher: publisher}
}

// Run executes the eligibility filter and the clustering pass over the
// normalized observations. It is a pure computation: persistence and
// publication happen in Persist, after the caller has safely replaced the
// file output.
func (e *Engine) Run(ctx context.Context, observations []model.Observation) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	threshold := time.Duration(e.cfg.Clustering.ThresholdSeconds) * time.Second

	eligible := make([]model.Observation, 0, len(observations))
	for _, obs := range observations {
		if Eligible(obs) {
			eligible = append(eligible, obs)
		}
	}

	assignments := Cluster(eligible, threshold, e.cfg.Clustering.IDLength)
	summaries := Summarize(eligible, assignments)

	assigned := make([]model.Assignment, 0, len(eligible))
	for _, obs := range eligible {
		if obs.ObservationID == "" {
			continue
		}
		if id := assignments[obs.Row]; id != "" {
			assigned = append(assigned, model.Assignment{ObservationID: obs.ObservationID, EventID: id})
		}
	}

	res := &Result{
		Rows:        len(observations),
		Eligible:    len(eligible),
		Events:      len(summaries),
		Assignments: assignments,
		Assigned:    assigned,
		Summaries:   summaries,
	}
	if e.logger != nil {
		e.logger.Info("clustering pass complete",
			"rows", res.Rows,
			"eligible", res.Eligible,
			"events", res.Events,
			"threshold_seconds", e.cfg.Clustering.ThresholdSeconds,
		)
	}
	return res, nil
}

// Persist upserts the run result into the configured store and publishes
// summaries. Both collaborators are optional.
func (e *Engine) Persist(ctx context.Context, res *Result) error {
	if res == nil {
		return nil
	}
	if e.store != nil {
		if err := e.store.UpsertEvents(ctx, res.Summaries); err != nil {
			return err
		}
		if err := e.store.UpsertAssignments(ctx, res.Assigned); err != nil {
			return err
		}
		if e.logger != nil {
			e.logger.Info("run persisted", "events", len(res.Summaries), "assignments", len(res.Assigned))
		}
	}
	if e.publisher != nil {
		if err := e.publisher.PublishSummaries(ctx, res.Summaries); err != nil {
			return err
		}
		if e.logger != nil {
			e.logger.Info("summaries published", "events", len(res.Summaries))
		}
	}
	return nil
}
