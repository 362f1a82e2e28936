package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"matchcopy/internal/config"
	"matchcopy/internal/orchestrator"
	"matchcopy/internal/watcher"
)

const watchLongDescription = `Run once, then keep watching the input and reference folders and re-run
whenever a file ending in the extension is created, written or renamed.

Bursts of changes are coalesced: a re-run starts once the folders have been
quiet for the debounce period. A failed re-run is reported and watching
continues. Stop with Ctrl-C.`

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <input_folder> <reference_folder> <output_folder>",
		Short: "Keep the output folder aligned as files arrive",
		Long:  watchLongDescription,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runWatch(ctx, cmd, args[0], args[1], args[2])
		},
	}

	cmd.Flags().Duration(debounceFlagName, config.DefaultWatchDebounce, "quiet period before a re-run")
	a.bindFlagToConfig(cmd.Flags().Lookup(debounceFlagName), config.KeyWatchDebounce)

	return cmd
}

func (a *app) runWatch(ctx context.Context, cmd *cobra.Command, inputDir, referenceDir, outputDir string) error {
	settings, out, cleanup, err := a.session(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if issues := config.ValidateWatchPaths(inputDir, referenceDir, outputDir); len(issues) > 0 {
		return &config.ConfigError{Type: config.ValidationError, Message: issues[0].Field + ": " + issues[0].Message}
	}

	opts := orchestrator.OptionsFromSettings(settings, inputDir, referenceDir, outputDir)
	opts.Output = out
	opts.AppVersion = appVersion()

	if !settings.DryRun {
		journal, err := openJournal(settings)
		if err != nil {
			return err
		}
		if journal != nil {
			defer journal.Close()
			opts.Recorder = journal
		}
	}

	run := func(changed []string) (int, error) {
		if len(changed) > 0 {
			out.Verbose("Change detected in %d file(s), re-running", len(changed))
		}
		summary, err := orchestrator.Run(opts)
		if err != nil {
			// The initial run's error ends the command and is printed by Run
			if len(changed) > 0 {
				out.Error("%v", err)
			}
			return summary.CopiedCount(), err
		}
		out.Summary(summary.CopiedCount(), summary.InputFiles, summary.ReferenceNames, summary.DryRun, summary.Duration)
		return summary.CopiedCount(), nil
	}

	w := watcher.New(watcher.Config{
		Debounce:       settings.Watch.Debounce,
		Extension:      settings.Extension,
		IgnorePatterns: settings.Watch.Ignore,
	}, run, slog.Default())

	out.Info("Watching %s and %s (Ctrl-C to stop)", inputDir, referenceDir)

	summary, err := w.Run(ctx, []string{inputDir, referenceDir})
	if err != nil {
		return err
	}

	out.Info("Watch stopped after %s: %d run(s), %d failed, %d file(s) copied",
		summary.Duration.Round(time.Second), summary.Runs, summary.FailedRuns, summary.FilesCopied)
	return nil
}
