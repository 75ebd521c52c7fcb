// Package cli implements the lair command-line interface.
//
// This package provides commands for building an Idris2 package together
// with its git and path dependencies, inspecting the resolved build plan,
// rendering the dependency graph, and managing the revision cache. The CLI
// is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - build: Resolve dependencies and compile the package
//   - plan: Print the ordered build plan without compiling
//   - graph: Render the dependency graph as DOT, SVG, or PNG
//   - clean: Remove the build directory
//   - cache: Manage the resolved-revision cache
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Kiiyya/lair/pkg/buildinfo"
	"github.com/Kiiyya/lair/pkg/cache"
	"github.com/Kiiyya/lair/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "lair"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	cfg    Config
}

// New creates a new CLI instance with a default logger. Malformed
// environment configuration is reported and replaced with defaults rather
// than aborting startup.
func New(w io.Writer, level log.Level) *CLI {
	logger := newLogger(w, level)
	cfg, err := LoadConfig()
	if err != nil {
		logger.Warn("ignoring invalid environment configuration", "err", err)
	}
	return &CLI{Logger: logger, cfg: cfg}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Lair builds Idris2 packages and their dependencies",
		Long:         `Lair is a source-dependency package manager for Idris2. It reads Egg.toml manifests, fetches git and path dependencies, and compiles everything in dependency order.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cleanCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use. With noCache the
// revision cache is disabled and every git source is re-resolved.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(c.newCache(noCache), c.Logger)
}

func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(c.cacheDir())
	if err != nil {
		c.Logger.Warn("revision cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// cacheDir returns the cache directory, honoring LAIR_CACHE_DIR and the
// XDG standard (~/.cache/lair/).
func (c *CLI) cacheDir() string {
	if c.cfg.CacheDir != "" {
		return c.cfg.CacheDir
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+appName+"-cache")
	}
	return filepath.Join(home, ".cache", appName)
}

// pipelineOptions builds pipeline options from config and common flags.
func (c *CLI) pipelineOptions(dir string) pipeline.Options {
	return pipeline.Options{
		Dir:      dir,
		DepsDir:  c.cfg.DepsDir,
		Jobs:     c.cfg.Jobs,
		FailFast: c.cfg.FailFast,
	}
}
