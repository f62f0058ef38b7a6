package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnwards/hubsync/internal/rollback"
)

var rollbackFlags struct {
	last           int
	full           bool
	recordsOnly    bool
	propertiesOnly bool
	dryRun         bool
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Delete migrated data from the sandbox portal",
	Long: `Reads prior run reports and deletes everything they record as created
at the destination: records, then pipelines and property definitions.
Associations cannot be rolled back via the API and are left in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rollbackFlags.recordsOnly && rollbackFlags.propertiesOnly {
			return fmt.Errorf("--records-only and --properties-only are mutually exclusive")
		}

		e, err := buildEnv()
		if err != nil {
			return err
		}

		mgr := rollback.New(e.dest, e.store)
		rep, err := mgr.Rollback(cmd.Context(), rollback.Scope{
			LastN:          rollbackFlags.last,
			Full:           rollbackFlags.full,
			RecordsOnly:    rollbackFlags.recordsOnly,
			PropertiesOnly: rollbackFlags.propertiesOnly,
			DryRun:         rollbackFlags.dryRun,
		})
		if err != nil {
			return err
		}

		printSummary(rep)
		return nil
	},
}

func init() {
	rollbackCmd.Flags().IntVar(&rollbackFlags.last, "last", 1, "roll back the N most recent migration reports")
	rollbackCmd.Flags().BoolVar(&rollbackFlags.full, "full", false, "roll back every stored migration and sync report")
	rollbackCmd.Flags().BoolVar(&rollbackFlags.recordsOnly, "records-only", false, "delete records only")
	rollbackCmd.Flags().BoolVar(&rollbackFlags.propertiesOnly, "properties-only", false, "delete property definitions and pipelines only")
	rollbackCmd.Flags().BoolVar(&rollbackFlags.dryRun, "dry-run", false, "report what would be deleted without deleting")
	rootCmd.AddCommand(rollbackCmd)
}
