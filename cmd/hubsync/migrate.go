package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnwards/hubsync/internal/migrate"
)

var migrateFlags struct {
	limit          int
	dryRun         bool
	skipProperties bool
	skipPipelines  bool
	skipSchemas    bool
	contactsOnly   bool
	dealsOnly      bool
	skipDeals      bool
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run a full production-to-sandbox migration",
	Long: `Runs the full migration sequence: property definitions, pipelines,
custom object schemas, records (contacts, companies, deals, tickets, custom
objects), then associations. The run report with all id mappings is written
to the reports directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFlags.contactsOnly && migrateFlags.dealsOnly {
			return fmt.Errorf("--contacts-only and --deals-only are mutually exclusive")
		}
		if migrateFlags.skipDeals && migrateFlags.dealsOnly {
			return fmt.Errorf("--skip-deals and --deals-only are mutually exclusive")
		}

		e, err := buildEnv()
		if err != nil {
			return err
		}
		if migrateFlags.limit > 0 {
			e.opts.Limit = migrateFlags.limit
		}

		runner := migrate.NewRunner(e.source, e.dest, e.store, e.opts)
		rep, err := runner.Run(cmd.Context(), migrate.RunConfig{
			DryRun:         migrateFlags.dryRun,
			SkipProperties: migrateFlags.skipProperties,
			SkipPipelines:  migrateFlags.skipPipelines,
			SkipSchemas:    migrateFlags.skipSchemas,
			ContactsOnly:   migrateFlags.contactsOnly,
			DealsOnly:      migrateFlags.dealsOnly,
			SkipDeals:      migrateFlags.skipDeals,
		})
		if err != nil {
			return err
		}

		printSummary(rep)
		return nil
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateFlags.limit, "limit", 0, "max records per object type (default from config)")
	migrateCmd.Flags().BoolVar(&migrateFlags.dryRun, "dry-run", false, "list what would be migrated without writing")
	migrateCmd.Flags().BoolVar(&migrateFlags.skipProperties, "skip-properties", false, "skip property definition sync")
	migrateCmd.Flags().BoolVar(&migrateFlags.skipPipelines, "skip-pipelines", false, "skip pipeline sync")
	migrateCmd.Flags().BoolVar(&migrateFlags.skipSchemas, "skip-schemas", false, "skip custom object schema sync")
	migrateCmd.Flags().BoolVar(&migrateFlags.contactsOnly, "contacts-only", false, "migrate contacts only")
	migrateCmd.Flags().BoolVar(&migrateFlags.dealsOnly, "deals-only", false, "migrate deals only")
	migrateCmd.Flags().BoolVar(&migrateFlags.skipDeals, "skip-deals", false, "migrate everything except deals")
	rootCmd.AddCommand(migrateCmd)
}
