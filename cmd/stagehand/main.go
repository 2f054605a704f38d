package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stagehand-cli/stagehand/internal/publish"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		var stepErr *publish.StepError
		if errors.As(err, &stepErr) {
			fmt.Fprintf(os.Stderr, "publish failed at step %s: %v\n", stepErr.Step, stepErr.Err)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stagehand",
		Short: "Publish app releases to the edit store",
		Long: "stagehand opens an edit transaction against an app-store backend,\n" +
			"uploads artifacts, updates a release track and synchronizes store-listing\n" +
			"metadata from a conventional directory tree, then commits the transaction.",
		Version:       fmt.Sprintf("%s (%s)", publish.Version, publish.GitSHA),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newPublishCmd())
	return root
}
