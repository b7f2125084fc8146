package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/projctl/internal/config"
	"github.com/steveyegge/projctl/internal/logging"
	"github.com/steveyegge/projctl/internal/session"
	"github.com/steveyegge/projctl/internal/storage"
)

var version = "0.1.0"

var (
	configPath   string
	storeBackend string
	workspaceArg string
	logLevel     string
	noColor      bool
)

// Resolved by the root command's PersistentPreRunE
var (
	workspaceDir string
	cfg          config.Config
	logger       *logging.Logger
)

// standalone commands run without a workspace
var standalone = map[string]bool{
	"init":       true,
	"validate":   true,
	"help":       true,
	"completion": true,
	"__complete": true,
}

var rootCmd = &cobra.Command{
	Use:   "projctl",
	Short: "Hierarchical project and task tracker",
	Long: `projctl tracks users, projects, tasks and epics with subtasks.

State lives in a workspace directory (.projctl/) and is saved as whole
snapshots to a JSON file, SQLite or MongoDB. Work with it interactively
(repl, tui), over HTTP (serve) or one command at a time (exec).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			color.NoColor = true
		}
		for c := cmd; c != nil; c = c.Parent() {
			if standalone[c.Name()] {
				return nil
			}
		}
		return loadSettings()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: config.yaml or config.toml in the workspace)")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Store backend: file, sqlite or mongo")
	rootCmd.PersistentFlags().StringVar(&workspaceArg, "path", "", "Workspace directory (default: ./.projctl or $PROJCTL_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings finds the workspace, then builds the config and logger
func loadSettings() error {
	dir, err := resolveWorkspace()
	if err != nil {
		return err
	}
	workspaceDir = dir

	path := configPath
	if path == "" {
		path = config.FindFile(workspaceDir)
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if storeBackend != "" {
		c.Store.Backend = storeBackend
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = c

	if cfg.REPL.NoColor {
		color.NoColor = true
	}

	l, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	logger = l
	logger.Debug("settings loaded", "workspace", workspaceDir, "config", cfg.String())
	return nil
}

func resolveWorkspace() (string, error) {
	if workspaceArg != "" {
		info, err := os.Stat(workspaceArg)
		if err != nil || !info.IsDir() {
			return "", fmt.Errorf("workspace directory does not exist: %s", workspaceArg)
		}
		return workspaceArg, nil
	}
	return storage.DiscoverWorkspace()
}

// openSession opens the configured store and loads the latest snapshot.
// With exclusive set, local backends also take the workspace lock.
func openSession(ctx context.Context, exclusive bool) (*session.Session, error) {
	st, err := storage.NewStore(ctx, cfg.Storage(), workspaceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	sess, err := session.Open(ctx, session.Options{
		Store:        st,
		WorkspaceDir: workspaceDir,
		Lock:         exclusive && cfg.Storage().UsesLocalFile(),
		Autosave:     cfg.Autosave,
		Logger:       logger,
		Version:      version,
	})
	if err != nil {
		_ = st.Close()
		if errors.Is(err, storage.ErrLocked) {
			return nil, fmt.Errorf("%w\n  Close the other projctl session, or remove %s if it is gone",
				err, filepath.Join(workspaceDir, storage.LockFileName))
		}
		return nil, err
	}
	return sess, nil
}

// closeSession saves pending changes and releases the lock, reporting any
// failure on stderr
func closeSession(ctx context.Context, sess *session.Session) {
	if err := sess.Close(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}
