// Package cli provides the command tree for matchcopy.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"matchcopy/internal/audit"
	"matchcopy/internal/config"
	"matchcopy/internal/logging"
	"matchcopy/internal/orchestrator"
	"matchcopy/internal/output"
)

const (
	suffixFlagName    = "suffix"
	extensionFlagName = "extension"
	dryRunFlagName    = "dry-run"
	verboseFlagName   = "verbose"
	quietFlagName     = "quiet"
	symlinksFlagName  = "symlinks"
	auditDirFlagName  = "audit-dir"
	logFileFlagName   = "log-file"
	configFlagName    = "config"
	debounceFlagName  = "debounce"
	runFlagName       = "run"
)

const rootLongDescription = `matchcopy copies the files of an input folder whose base name matches a
file in a reference folder.

Reference names are normalized by removing every occurrence of the suffix
(default "_pred") and then the extension. An input file is copied when its
name, without the extension, equals one of those normalized names. Only
files ending in the extension (default ".png", case-sensitive) take part.

Example:
  matchcopy images/ predictions/ aligned/
  matchcopy images/ masks/ aligned/ --suffix _mask --extension .jpg`

// app holds the state shared by one command tree.
type app struct {
	store      *viper.Viper
	configPath string
}

// NewRootCmd builds the matchcopy command tree with a fresh settings store.
func NewRootCmd() *cobra.Command {
	a := &app{store: config.NewStore()}

	cmd := &cobra.Command{
		Use:           "matchcopy <input_folder> <reference_folder> <output_folder>",
		Short:         "Copy input files that have a matching reference file",
		Long:          rootLongDescription,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAlign(cmd, args[0], args[1], args[2])
		},
	}

	a.configureRootFlags(cmd)

	cmd.AddCommand(
		newWatchCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)

	return cmd
}

func (a *app) configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVar(&a.configPath, configFlagName, "", "read settings from this YAML file")

	flags.String(suffixFlagName, config.DefaultSuffix, "suffix removed from reference names before comparison")
	a.bindFlagToConfig(flags.Lookup(suffixFlagName), config.KeySuffix)

	flags.String(extensionFlagName, config.DefaultExtension, "only files ending in this string take part (case-sensitive)")
	a.bindFlagToConfig(flags.Lookup(extensionFlagName), config.KeyExtension)

	flags.Bool(dryRunFlagName, false, "report what would be copied without writing anything")
	a.bindFlagToConfig(flags.Lookup(dryRunFlagName), config.KeyDryRun)

	flags.BoolP(verboseFlagName, "v", false, "report skipped files and write debug diagnostics")
	a.bindFlagToConfig(flags.Lookup(verboseFlagName), config.KeyVerbose)

	flags.BoolP(quietFlagName, "q", false, "suppress per-file lines and the summary")
	a.bindFlagToConfig(flags.Lookup(quietFlagName), config.KeyQuiet)

	flags.String(symlinksFlagName, "follow", `symlinked files: "follow", "skip" or "error"`)
	a.bindFlagToConfig(flags.Lookup(symlinksFlagName), config.KeySymlinkPolicy)

	flags.String(auditDirFlagName, "", "append an audit journal of each run to this folder")
	a.bindFlagToConfig(flags.Lookup(auditDirFlagName), config.KeyAuditDirectory)

	flags.String(logFileFlagName, "", "write diagnostics to this rotating file instead of stderr")
	a.bindFlagToConfig(flags.Lookup(logFileFlagName), config.KeyLogFilename)
}

// bindFlagToConfig wires a Cobra flag to a settings key so the flag wins over the config file.
func (a *app) bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(a.store.BindPFlag(key, flag))
}

// load reads the optional config file and returns validated settings.
func (a *app) load() (*config.Settings, error) {
	if a.configPath != "" {
		if err := config.ReadFile(a.store, a.configPath); err != nil {
			return nil, err
		}
	}
	return config.FromStore(a.store)
}

// session prepares settings, diagnostics and console output for a command.
// The returned cleanup closes the log file sink.
func (a *app) session(cmd *cobra.Command) (*config.Settings, *output.Output, func(), error) {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	settings, err := a.load()
	if err != nil {
		return nil, nil, func() {}, err
	}

	closer := logging.Configure(settings.Log, settings.Verbose, stderr)
	cleanup := func() { closer.Close() }

	outCfg := output.DefaultConfig()
	outCfg.Writer = stdout
	outCfg.ErrWriter = stderr
	if stdout != os.Stdout {
		outCfg.IsTTY = false
		outCfg.Color = false
	}
	outCfg.Verbose = settings.Verbose
	outCfg.Quiet = settings.Quiet

	return settings, output.New(outCfg), cleanup, nil
}

// openJournal returns the audit writer for settings, or nil when auditing is off.
func openJournal(settings *config.Settings) (*audit.AuditWriter, error) {
	if !settings.Audit.Enabled() {
		return nil, nil
	}
	writer, err := audit.NewAuditWriter(settings.Audit)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit journal: %w", err)
	}
	return writer, nil
}

func (a *app) runAlign(cmd *cobra.Command, inputDir, referenceDir, outputDir string) error {
	settings, out, cleanup, err := a.session(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

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

	summary, err := orchestrator.Run(opts)
	if err != nil {
		return err
	}

	out.Summary(summary.CopiedCount(), summary.InputFiles, summary.ReferenceNames, summary.DryRun, summary.Duration)
	if summary.RunID != "" {
		out.Verbose("Audit run: %s", summary.RunID)
	}
	return nil
}

// appVersion returns the module version recorded at build time.
func appVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "unknown"
	}
	return info.Main.Version
}

// Run executes the command tree with args and returns the process exit code.
// Errors are printed to stderr as "Error: <description>".
func Run(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		errCfg := output.Config{Writer: stdout, ErrWriter: stderr}
		if stderr == os.Stderr {
			errCfg.Color = output.DefaultConfig().Color
		}
		output.New(errCfg).Error("%v", err)
		return 1
	}
	return 0
}

// Execute runs matchcopy with the process arguments and exits.
// This is called by main.main().
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
