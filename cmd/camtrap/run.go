package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"camtrap/internal/config"
	"camtrap/internal/engine"
	"camtrap/internal/ingest"
	"camtrap/internal/logging"
	"camtrap/internal/materialize"
	"camtrap/internal/publish"
	"camtrap/internal/storage"
)

func newRunCommand(configFlag *string) *cobra.Command {
	var inputFlag string
	var thresholdFlag int
	var summaryFlag string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Assign event IDs to an observations file, replacing it atomically",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFlag)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("input") {
				cfg.Input.Path = inputFlag
			}
			if cmd.Flags().Changed("threshold") {
				cfg.Clustering.ThresholdSeconds = thresholdFlag
			}
			if cmd.Flags().Changed("summary") {
				cfg.Summary.Enabled = true
				cfg.Summary.Path = summaryFlag
			}
			if cfg.Input.Path == "" {
				return errors.New("input path required (--input or input.path in config)")
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return runEvents(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Observations CSV file; overwritten with the eventID column")
	cmd.Flags().IntVarP(&thresholdFlag, "threshold", "t", 180, "Maximum gap in seconds between observations of one event")
	cmd.Flags().StringVar(&summaryFlag, "summary", "", "Optional path for a per-event summary CSV")

	return cmd
}

func runEvents(cmd *cobra.Command, cfg *config.Config) error {
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	if store != nil {
		if err := store.Init(ctx); err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		defer store.Close()
	}

	var publisher engine.Publisher
	if cfg.Publish.Enabled {
		kp := publish.NewKafka(cfg.Publish, logger)
		defer kp.Close()
		publisher = kp
	}

	inputPath := config.ResolvePath(cfg.Input.Path)
	lock := flock.New(inputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another run is already processing %s", inputPath)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	snap, err := ingest.ReadSnapshot(inputPath)
	if err != nil {
		return err
	}
	logger.Info("snapshot loaded", "path", inputPath, "rows", len(snap.Rows))

	loc := time.UTC
	if cfg.Input.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Input.Timezone); err == nil {
			loc = l
		} else {
			logger.Warn("unknown timezone, using UTC", "timezone", cfg.Input.Timezone)
		}
	}

	eng := engine.New(cfg, logger, store, publisher)
	res, err := eng.Run(ctx, snap.Observations(loc))
	if err != nil {
		return err
	}

	materialize.Apply(snap, res.Assignments)
	if err := materialize.Write(snap); err != nil {
		return err
	}
	logger.Info("observations replaced", "path", inputPath, "events", res.Events)

	if cfg.Summary.Enabled {
		summaryPath := config.ResolvePath(cfg.Summary.Path)
		if err := materialize.WriteSummaries(summaryPath, res.Summaries); err != nil {
			return err
		}
		logger.Info("summary written", "path", summaryPath, "events", len(res.Summaries))
	}

	return eng.Persist(ctx, res)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(config.ResolvePath(path))
}
