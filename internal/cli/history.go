package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"matchcopy/internal/audit"
)

const historyLongDescription = `List the runs recorded in the audit journal.

With --run, print the events of one run. Each copied file is checked against
the hash recorded when it was copied and reported as ok, modified, resized or
missing.`

// errNoAuditDir is returned when history is requested without a journal.
var errNoAuditDir = errors.New("no audit folder configured; pass --audit-dir or set audit.directory in the config file")

func newHistoryCmd(a *app) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show runs recorded in the audit journal",
		Long:  historyLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := a.load()
			if err != nil {
				return err
			}
			if !settings.Audit.Enabled() {
				return errNoAuditDir
			}

			reader := audit.NewAuditReader(settings.Audit.LogDirectory)
			if runID != "" {
				return showRun(cmd.OutOrStdout(), reader, audit.RunID(runID))
			}
			return listRuns(cmd.OutOrStdout(), reader)
		},
	}

	cmd.Flags().StringVar(&runID, runFlagName, "", "print the events of this run ID")

	return cmd
}

func listRuns(w io.Writer, reader *audit.AuditReader) error {
	runs, err := reader.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to read audit journal: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintf(w, "No runs recorded in %s\n", reader.LogPath())
		return nil
	}

	fmt.Fprint(w, renderRunTable(runs))
	return nil
}

func renderRunTable(runs []audit.RunInfo) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Run ID", "Started", "Status", "Input", "Reference", "Copied", "Skipped", "Errors"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	copied := 0
	for _, run := range runs {
		table.Append([]string{
			string(run.RunID),
			run.StartTime.Local().Format(time.DateTime),
			string(run.Status),
			filepath.Base(run.InputDir),
			filepath.Base(run.ReferenceDir),
			strconv.Itoa(run.Summary.Copied),
			strconv.Itoa(run.Summary.Skipped),
			strconv.Itoa(run.Summary.Errors),
		})
		copied += run.Summary.Copied
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Runs %d", len(runs)), "", "", "", "",
		strconv.Itoa(copied), "", "",
	})

	table.Render()

	return tableBuffer.String()
}

func showRun(w io.Writer, reader *audit.AuditReader, runID audit.RunID) error {
	events, err := reader.GetRun(runID)
	if err != nil {
		return err
	}

	for _, event := range events {
		stamp := event.Timestamp.Local().Format(time.DateTime)

		switch event.EventType {
		case audit.EventRunStart:
			fmt.Fprintf(w, "%s  RUN_START  %s -> %s (reference %s, suffix %q, extension %q)\n",
				stamp, event.Metadata["inputDir"], event.Metadata["outputDir"],
				event.Metadata["referenceDir"], event.Metadata["suffix"], event.Metadata["extension"])

		case audit.EventCopy:
			state := "unverified"
			if event.FileIdentity != nil {
				match, err := audit.VerifyIdentity(event.DestinationPath, *event.FileIdentity)
				if err != nil {
					state = "error: " + err.Error()
				} else {
					state = match.String()
				}
			}
			fmt.Fprintf(w, "%s  COPY       %s [%s]\n", stamp, event.DestinationPath, state)

		case audit.EventSkip:
			fmt.Fprintf(w, "%s  SKIP       %s (%s)\n", stamp, event.SourcePath, event.ReasonCode)

		case audit.EventError:
			message := ""
			if event.ErrorDetails != nil {
				message = event.ErrorDetails.ErrorMessage
			}
			fmt.Fprintf(w, "%s  ERROR      %s: %s\n", stamp, event.SourcePath, message)

		case audit.EventRunEnd:
			fmt.Fprintf(w, "%s  RUN_END    %s (copied %s, skipped %s)\n",
				stamp, event.Metadata["status"], event.Metadata["copied"], event.Metadata["skipped"])
		}
	}

	return nil
}
