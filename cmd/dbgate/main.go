// Command dbgate runs the admission-controlled database façade as a
// diagnostics service or as a load probe.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "dbgate",
	Short:         "dbgate - bounded-concurrency, retrying access to Postgres",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dbgate",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dbgate version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, probeCmd, tokenCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dbgate:", err)
		os.Exit(1)
	}
}
