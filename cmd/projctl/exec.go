package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/projctl/internal/session"
)

var execCmd = &cobra.Command{
	Use:   "exec <command> [args...]",
	Short: "Run one tracker command and save",
	Long: `Run a single tracker command against the workspace, print its output
and save the snapshot if it changed anything.

Example:
  projctl exec createuser alice
  projctl exec createproject Web 10
  projctl exec addtasktoproject Web Login task
  projctl exec changetaskstatus Web Login workinprogress
  projctl exec tasklist Web`,
	Args:               cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		sess, err := openSession(ctx, true)
		if err != nil {
			return err
		}
		err = runExec(ctx, sess, args, os.Stdout)
		if cerr := sess.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
		return err
	},
}

// runExec runs the command spelled by words and prints its lines to out
func runExec(ctx context.Context, sess *session.Session, words []string, out io.Writer) error {
	res, err := sess.Exec(ctx, strings.Join(words, " "))
	if err != nil {
		return err
	}
	for _, line := range res.Lines {
		fmt.Fprintln(out, line)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(execCmd)
}
