package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/projctl/internal/config"
	"github.com/steveyegge/projctl/internal/storage"
)

var initBackend string

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create a projctl workspace",
	Long: `Create a .projctl/ workspace with a default config.yaml.

If no directory is given, the current directory is used. The workspace
starts empty; the first save writes the snapshot.

Example:
  cd ~/myproject
  projctl init                  # Creates .projctl/ with the file backend
  projctl init --backend sqlite # Keeps snapshots in .projctl/projctl.db`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", dir, err)
		}

		c := config.Default()
		if initBackend != "" {
			c.Store.Backend = initBackend
		}
		if err := c.Validate(); err != nil {
			return err
		}
		data, err := config.MarshalYAML(c)
		if err != nil {
			return err
		}

		ws, err := storage.InitWorkspace(abs, data)
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s Initialized projctl workspace\n\n", green("✓"))
		fmt.Printf("  Workspace: %s\n", cyan(ws))
		fmt.Printf("  Store:     %s\n", cyan(c.Storage().Backend))
		if c.Storage().UsesLocalFile() {
			fmt.Printf("  Snapshot:  %s\n", cyan(c.Storage().ResolvePath(ws)))
		}
		fmt.Println()

		fmt.Printf("%s Next steps:\n", gray("→"))
		fmt.Printf("  %s\n", gray("projctl repl                  # Interactive console"))
		fmt.Printf("  %s\n", gray("projctl exec createuser alice # Run a single command"))
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initBackend, "backend", "", "Store backend to configure: file, sqlite or mongo")
}
