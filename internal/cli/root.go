// Package cli wires gitapply's cobra command tree to the batch
// orchestrator, following the single command-tree-per-binary shape common
// across the pack's cobra-based tools.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the gitapply command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "gitapply",
		Short:         "Apply a structured patch set to a working directory or index",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newApplyCommand())
	return root
}

func newLogger(levelName string) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
