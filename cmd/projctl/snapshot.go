package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/projctl/internal/session"
	"github.com/steveyegge/projctl/internal/snapshot"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the current state as a snapshot document",
	Long: `Write the current state as a JSON snapshot document, to stdout or to file.
The document can be checked with 'projctl validate' and loaded with
'projctl import', including into a workspace that uses another backend.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		sess, err := openSession(ctx, false)
		if err != nil {
			return err
		}
		defer closeSession(ctx, sess)

		if len(args) == 0 {
			return exportSnapshot(sess, os.Stdout)
		}
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", args[0], err)
		}
		if err := exportSnapshot(sess, f); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the current state with a snapshot document",
	Long: `Validate a snapshot document, rebuild the tracker from it and save it as
the workspace's latest snapshot. The current state is replaced entirely;
backends with history keep the previous snapshots.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		ctx := context.Background()
		sess, err := openSession(ctx, true)
		if err != nil {
			return err
		}
		defer closeSession(ctx, sess)

		doc, err := importSnapshot(ctx, sess, data)
		if err != nil {
			return err
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Imported snapshot %s (%d users, %d projects)\n",
			green("✓"), doc.ID, len(doc.State.Users), len(doc.State.Projects))
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a snapshot document",
	Long: `Check a snapshot document against the snapshot schema and rebuild the
tracker from it, reporting the first problem found. Needs no workspace.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return validateSnapshot(data, os.Stdout)
	},
}

func exportSnapshot(sess *session.Session, out io.Writer) error {
	data, err := sess.Snapshot().Encode()
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// importSnapshot replaces the session state with data and saves it
func importSnapshot(ctx context.Context, sess *session.Session, data []byte) (*snapshot.Document, error) {
	m, doc, err := snapshot.Load(data)
	if err != nil {
		return nil, err
	}
	sess.Replace(ctx, m)
	// Autosave may already have written it
	if sess.Dirty() {
		if err := sess.Save(ctx); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func validateSnapshot(data []byte, out io.Writer) error {
	m, doc, err := snapshot.Load(data)
	if err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s Snapshot %s is valid\n", green("✓"), doc.ID)
	fmt.Fprintf(out, "  Saved:    %s\n", doc.SavedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  Users:    %d\n", m.UserCount())
	fmt.Fprintf(out, "  Projects: %d\n", m.ProjectCount())
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(validateCmd)
}
