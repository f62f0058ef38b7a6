package main

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnwards/hubsync/internal/report"
)

var reportsSince string

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List stored run reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := buildEnv()
		if err != nil {
			return err
		}

		since := time.Time{}
		if reportsSince != "" {
			since, err = time.Parse("2006-01-02", reportsSince)
			if err != nil {
				return fmt.Errorf("parse --since: %w", err)
			}
		}

		reports, err := e.store.List(since)
		if errors.Is(err, report.ErrNoReports) || (err == nil && len(reports) == 0) {
			fmt.Println("no reports found")
			return nil
		}
		if err != nil {
			return err
		}

		for _, r := range reports {
			fmt.Printf("%s  %-15s  %s  %.1f%%\n",
				r.GeneratedAt.Format("2006-01-02 15:04:05"), r.Kind, r.RunID, r.SuccessRate())
		}
		return nil
	},
}

func init() {
	reportsCmd.Flags().StringVar(&reportsSince, "since", "", "only reports generated on or after this date (YYYY-MM-DD)")
	rootCmd.AddCommand(reportsCmd)
}

// printSummary prints the report's summary counters and errors in a stable
// order.
func printSummary(rep *report.Report) {
	fmt.Printf("\nrun %s (%s)\n", rep.RunID, rep.Kind)

	keys := make([]string, 0, len(rep.Summary))
	for k := range rep.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-40s %d\n", k, rep.Summary[k])
	}
	if len(rep.Errors) > 0 {
		fmt.Printf("errors (%d):\n", len(rep.Errors))
		for _, msg := range rep.Errors {
			fmt.Printf("  - %s\n", msg)
		}
	}
	fmt.Printf("success rate: %.1f%%\n", rep.SuccessRate())
}
