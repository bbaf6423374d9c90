package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crossbridge-edu/advisory-cli/internal/report"
	"github.com/crossbridge-edu/advisory-cli/internal/stage"
)

var reportDetail string

var reportCmd = &cobra.Command{
	Use:   "report <student-id>",
	Short: "Print a student's progress snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportDetail != "" {
			cfg.Report.Detail = reportDetail
		}
		if err := cfg.Validate("report"); err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		detail := stage.DetailDetailed
		if cfg.Report.Detail == "summary" {
			detail = stage.DetailSummary
		}

		snap, err := report.NewBuilder(st).Build(ctx, args[0], detail)
		if err != nil {
			return err
		}

		printSnapshot(snap)
		return nil
	},
}

func printSnapshot(snap *report.Snapshot) {
	if snap.Profile != nil {
		fmt.Printf("Student: %s", snap.Profile.Name)
		if snap.Profile.TargetCountry != "" {
			fmt.Printf("  (target: %s %s)", snap.Profile.TargetCountry, snap.Profile.TargetDegree)
		}
		fmt.Println()
	}
	fmt.Printf("Current stage: %s\n\n", snap.Inference.CurrentStage.Label())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tSTATUS\tPROGRESS\tOWNER\tBLOCKED BY")
	for _, s := range snap.Inference.Stages {
		fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%s\t%s\n",
			s.Label, s.Status, s.Progress, s.Owner, strings.Join(s.BlockingReasons, "; "))
	}
	w.Flush() //nolint:errcheck

	fmt.Printf("\nChoices: %d total, %d submitted, %d accepted", snap.Stats.Total,
		snap.Stats.ByStatus.Submitted, snap.Stats.ByStatus.Accepted)
	decided := snap.Stats.ByStatus.Accepted + snap.Stats.ByStatus.Rejected + snap.Stats.ByStatus.Waitlisted
	if decided > 0 {
		fmt.Printf(" (acceptance rate %d%%)", snap.Stats.AcceptanceRate)
	}
	fmt.Println()

	for _, ind := range snap.Indicators {
		fmt.Printf("  [%s] %s: %s\n", ind.Tone, ind.Label, ind.Value)
	}
}

func init() {
	reportCmd.Flags().StringVar(&reportDetail, "detail", "", "detail level: summary or detailed (default from config)")
	rootCmd.AddCommand(reportCmd)
}
