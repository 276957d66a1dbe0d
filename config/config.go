// Package config loads gitapply's TOML configuration file. It recognizes
// the location key from spec.md §6 plus the blob-store root and logging
// level the CLI needs to wire up a batch.Repo, following the decode-into-
// struct-with-defaults pattern antgroup-hugescm's ServerConfig uses for its
// own TOML config.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/kestrelpatch/gitapply/batch"
)

// Config is the decoded shape of a gitapply.toml file.
type Config struct {
	// Location selects where a batch apply commits its results:
	// "workdir" (default), "index", or "both".
	Location string `toml:"location"`

	// BlobRoot is the directory the content-addressed blob store writes
	// compressed objects under.
	BlobRoot string `toml:"blob_root"`

	// IndexPath is the TOML file the repository index persists to.
	IndexPath string `toml:"index_path"`

	// LogLevel is a logrus level name ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Location:  "workdir",
		BlobRoot:  ".gitapply/objects",
		IndexPath: ".gitapply/index.toml",
		LogLevel:  "info",
	}
}

// Load reads and decodes path into a Config seeded with Default's values.
// A missing file is not an error; Load returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// LocationValue parses the Location field into a batch.Location, the
// option recognized by spec.md §6.
func (c *Config) LocationValue() (batch.Location, error) {
	switch c.Location {
	case "", "workdir":
		return batch.LocationWorkdir, nil
	case "index":
		return batch.LocationIndex, nil
	case "both":
		return batch.LocationBoth, nil
	default:
		return 0, fmt.Errorf("config: unrecognized location %q (want workdir, index, or both)", c.Location)
	}
}
