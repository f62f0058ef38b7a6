// hubsync migrates CRM data from a production HubSpot portal to a sandbox
// portal and can roll a migration back from its run report.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
