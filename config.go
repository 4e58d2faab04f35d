package progressive

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"

	"github.com/testinfra/progressive/flags"
)

// Config holds the application configuration
type Config struct {
	ManifestFile   string
	RunInterval    time.Duration // Interval between test runs
	RunOnce        bool          // Indicates if the service should exit after one test run
	ShowAdvisories bool          // Show skips and deprecation notices in the summary
	ForceProgress  bool          // Paint the progress bar even when output is not a terminal
	ListOnly       bool          // Print the fixture-ordered tree and exit without running
	Log            log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger, manifestFile string) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}
	if manifestFile == "" {
		return nil, errors.New("suite manifest file is required")
	}

	absManifest, err := filepath.Abs(manifestFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for manifest '%s': %w", manifestFile, err)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	return &Config{
		ManifestFile:   absManifest,
		RunInterval:    runInterval,
		RunOnce:        runOnce,
		ShowAdvisories: ctx.Bool(flags.ShowAdvisories.Name),
		ForceProgress:  ctx.Bool(flags.ForceProgress.Name),
		ListOnly:       ctx.Bool(flags.ListOnly.Name),
		Log:            log,
	}, nil
}
