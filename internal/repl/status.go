package repl

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/steveyegge/projctl/internal/tracker"
	"github.com/steveyegge/projctl/internal/types"
)

// cmdStatus shows an overview of the manager
func (r *REPL) cmdStatus(args []string) error {
	var stats tracker.Stats
	_ = r.sess.View(func(m *tracker.Manager) error {
		stats = m.Stats()
		return nil
	})

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(r.out, "\n%s\n", cyan("Status"))
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "  Users     %d\n", stats.Users)
	fmt.Fprintf(r.out, "  Projects  %d\n", stats.Projects)
	fmt.Fprintf(r.out, "  Tasks     %d (+%d subtasks)\n", stats.Tasks, stats.Subtasks)
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "  %s  %d\n", gray("○ Opened"), stats.ByStatus[types.StatusOpened])
	fmt.Fprintf(r.out, "  %s  %d\n", yellow("⚡ Work in progress"), stats.ByStatus[types.StatusWorkInProgress])
	fmt.Fprintf(r.out, "  %s  %d\n", green("✓ Completed"), stats.ByStatus[types.StatusCompleted])
	fmt.Fprintln(r.out)

	if r.sess.Dirty() {
		fmt.Fprintf(r.out, "%s\n\n", yellow("Unsaved changes. Use 'save' or 'safexit'."))
	}
	return nil
}
