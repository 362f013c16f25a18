package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sowferyowman/BiomechFit-app/internal/config"
	"github.com/sowferyowman/BiomechFit-app/internal/logging"
	"github.com/sowferyowman/BiomechFit-app/internal/replay"
	"github.com/sowferyowman/BiomechFit-app/internal/session"
)

type replayFlags struct {
	path       string
	server     string
	apiKey     string
	targetReps int
	dryRun     bool
	force      bool
	stateDir   string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	var flags replayFlags

	rootCmd := &cobra.Command{
		Use:   "biomechfit-replay",
		Short: "Score recorded sets from disk",
		Long: `Walks a recordings directory laid out as <path>/<exercise>/<name>.jsonl,
one pose landmark set per line, and scores every recording not replayed
before. Recordings are analyzed in process unless --server is given.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, flags)
		},
	}

	fs := rootCmd.Flags()
	fs.StringVar(&flags.path, "path", "", "recordings directory")
	fs.StringVar(&flags.server, "server", "", "BiomechFit server URL; analyze locally when empty")
	fs.StringVar(&flags.apiKey, "api-key", os.Getenv("BIOMECHFIT_API_KEY"), "server API key (default $BIOMECHFIT_API_KEY)")
	fs.IntVar(&flags.targetReps, "target-reps", 0, "stop each recording after this many reps (default 8)")
	fs.BoolVar(&flags.dryRun, "dry-run", false, "read recordings but don't analyze them")
	fs.BoolVar(&flags.force, "force", false, "replay recordings even if already replayed")
	fs.StringVar(&flags.stateDir, "state-dir", "", "state database directory (default ~/.biomechfit-replay)")
	fs.StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	_ = rootCmd.MarkFlagRequired("path")

	return rootCmd
}

func runReplay(cmd *cobra.Command, flags replayFlags) error {
	log := logging.NewWithWriter(cmd.ErrOrStderr(), config.LogConfig{Level: flags.logLevel, Format: "text"})

	info, err := os.Stat(flags.path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("recordings directory not found: %s", flags.path)
	}

	stateDir := flags.stateDir
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".biomechfit-replay")
	}
	state, err := replay.OpenStateDB(stateDir)
	if err != nil {
		return err
	}
	defer state.Close()

	var analyzer replay.Analyzer
	switch {
	case flags.dryRun:
		log.Info("DRY RUN mode, recordings will be read but not analyzed")
	case flags.server != "":
		if flags.apiKey == "" {
			return errors.New("--api-key is required with --server")
		}
		client := replay.NewClient(flags.server, flags.apiKey)
		catalog, err := client.FetchExercises(cmd.Context())
		if err != nil {
			return err
		}
		log.Info("connected to server", "server", flags.server, "exercises", len(catalog))
		analyzer = client
	default:
		analyzer = replay.Local{Sessions: session.NewRegistry(session.RegistryConfig{}, log)}
	}

	r := replay.New(analyzer, state, flags.path, replay.Options{
		TargetReps: flags.targetReps,
		DryRun:     flags.dryRun,
		Force:      flags.force,
	}, log)
	stats, results, err := r.Run(cmd.Context())
	printResults(cmd.OutOrStdout(), stats, results)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}
	if stats.FilesErrored > 0 {
		return fmt.Errorf("%d recording(s) failed", stats.FilesErrored)
	}
	return nil
}

func printResults(w io.Writer, stats *replay.Stats, results []replay.Result) {
	if len(results) > 0 {
		rows := make([][]string, 0, len(results))
		for _, res := range results {
			rows = append(rows, resultRow(res))
		}
		fmt.Fprintln(w, renderTable(
			[]string{"Recording", "Exercise", "Frames", "Reps", "Avg", "Grade", "Status"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
			shouldColorize(w),
		))
	}

	fmt.Fprintf(w, "%d recording(s): %d replayed, %d skipped (already replayed), %d failed, %d reps\n",
		stats.FilesTotal, stats.FilesReplayed, stats.FilesSkipped, stats.FilesErrored, stats.RepsCounted)
}

func resultRow(res replay.Result) []string {
	row := []string{res.Path, res.Exercise.DisplayName(), fmt.Sprint(res.Frames), "", "", "", ""}
	switch {
	case res.Err != nil:
		row[6] = "error: " + firstLine(res.Err.Error())
	case res.DryRun:
		row[6] = "dry-run"
	default:
		row[3] = fmt.Sprint(res.Summary.Reps)
		row[4] = fmt.Sprintf("%.2f", res.Summary.AvgScore)
		row[5] = fmt.Sprintf("%d/5", res.Summary.Grade)
		row[6] = res.Summary.Feedback
		if res.Cached {
			row[2] = ""
			row[6] = "already replayed"
		}
	}
	return row
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
