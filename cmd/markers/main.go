// cmd/markers/main.go
//
// markers is the offline companion of the server: it rebuilds markers from
// a diagnostics file, runs one generation from a request file and renders
// assessment instruments.
package main

import (
	"fmt"
	"os"

	"github.com/Corphon/LessonPlanner/internal/utils"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "markers",
		Short:         "Offline tooling for lesson plan markers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				return nil
			}
			return utils.InitLogger("development")
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")

	root.AddCommand(newBuildCmd(), newGenerateCmd(), newInstrumentCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
