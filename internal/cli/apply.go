package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelpatch/gitapply/batch"
	"github.com/kestrelpatch/gitapply/config"
	"github.com/kestrelpatch/gitapply/patchsource"
	"github.com/kestrelpatch/gitapply/storage"
)

type applyFlags struct {
	configPath string
	location   string
	dir        string
}

// newApplyCommand builds the "apply" subcommand, the CLI surface over
// batch.Repo.Apply (spec.md §6 entry point 3): it reads a JSON patch set,
// decodes it with package patchsource, and applies it per the resolved
// location.
func newApplyCommand() *cobra.Command {
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply <patchset.json>",
		Short: "Apply a JSON patch set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "gitapply.toml", "path to gitapply.toml")
	cmd.Flags().StringVar(&flags.location, "location", "", "override the configured location (workdir, index, both)")
	cmd.Flags().StringVar(&flags.dir, "dir", ".", "working directory root")

	return cmd
}

func runApply(flags *applyFlags, patchsetPath string) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.location != "" {
		cfg.Location = flags.location
	}
	location, err := cfg.LocationValue()
	if err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)

	data, err := os.ReadFile(patchsetPath)
	if err != nil {
		return fmt.Errorf("gitapply: read patch set: %w", err)
	}
	set, err := patchsource.Decode(data)
	if err != nil {
		return fmt.Errorf("gitapply: decode patch set: %w", err)
	}

	blobs, err := storage.NewBlobs(cfg.BlobRoot)
	if err != nil {
		return err
	}
	index, err := storage.LoadIndex(cfg.IndexPath)
	if err != nil {
		return err
	}

	var reader batch.ContentReader
	if location == batch.LocationIndex {
		reader = storage.NewIndexReader(index, blobs)
	} else {
		reader = storage.NewWorkdirReader(flags.dir)
	}

	repo := batch.NewRepo(log)
	opts := batch.Options{
		Location: location,
		Reader:   reader,
		Blobs:    blobs,
		Out:      index,
		Checkout: storage.NewFilesystemCheckout(flags.dir, blobs),
	}

	if err := repo.Apply(opts, set); err != nil {
		return err
	}

	if location == batch.LocationIndex || location == batch.LocationBoth {
		if err := index.Write(); err != nil {
			return fmt.Errorf("gitapply: persist index: %w", err)
		}
	}

	log.WithFields(map[string]interface{}{
		"deltas":   set.NumDeltas(),
		"location": cfg.Location,
	}).Info("applied patch set")
	return nil
}
