package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/steveyegge/projctl/internal/command"
	"github.com/steveyegge/projctl/internal/session"
)

// REPL represents the interactive shell
type REPL struct {
	sess        *session.Session
	rl          *readline.Instance
	ctx         context.Context
	out         io.Writer
	historyFile string
	builtins    map[string]CommandHandler
}

// CommandHandler handles a built-in command
type CommandHandler func(args []string) error

// errExit is returned by built-ins that end the loop
var errExit = errors.New("exit")

// Config holds REPL configuration
type Config struct {
	Session *session.Session

	// HistoryFile persists line history; empty keeps it in memory
	HistoryFile string

	// Out receives command output. Default: os.Stdout
	Out io.Writer
}

// New creates a new REPL instance
func New(cfg *Config) (*REPL, error) {
	if cfg.Session == nil {
		return nil, fmt.Errorf("session is required")
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	r := &REPL{
		sess:        cfg.Session,
		out:         out,
		historyFile: cfg.HistoryFile,
		builtins:    make(map[string]CommandHandler),
		ctx:         context.Background(),
	}

	r.registerBuiltins()

	return r, nil
}

// Run starts the REPL loop. It returns when the user exits with safexit,
// exit, quit or Ctrl-D; saving is left to the session's Close.
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	cyan := color.New(color.FgCyan).SprintFunc()
	prompt := cyan("> ")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       r.historyFile,
		AutoComplete:      &completer{sess: r.sess, builtins: r.builtinNames()},
		InterruptPrompt:   "^C",
		EOFPrompt:         "safexit",
		HistorySearchFold: true,
		Stdout:            r.out,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	r.rl = rl

	r.printWelcome()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				// Ctrl+C - just show prompt again
				continue
			} else if err == io.EOF {
				// Ctrl+D - save and exit
				r.goodbye()
				return nil
			}
			return err
		}

		if err := r.processInput(line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			r.printError(err)
		}
	}
}

// processInput processes a single line of input
func (r *REPL) processInput(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	if handler, ok := r.builtins[parts[0]]; ok {
		return handler(parts[1:])
	}

	res, err := r.sess.Exec(r.ctx, line)
	if err != nil {
		return err
	}
	for _, l := range res.Lines {
		fmt.Fprintln(r.out, l)
	}
	return nil
}

// registerBuiltins registers the shell commands that are not part of the
// tracker vocabulary
func (r *REPL) registerBuiltins() {
	r.builtins["help"] = r.cmdHelp
	r.builtins["?"] = r.cmdHelp
	r.builtins["status"] = r.cmdStatus
	r.builtins["save"] = r.cmdSave
	r.builtins["safexit"] = r.cmdExit
	r.builtins["exit"] = r.cmdExit
	r.builtins["quit"] = r.cmdExit
}

func (r *REPL) builtinNames() []string {
	return []string{"help", "status", "save", "safexit", "exit", "quit"}
}

func (r *REPL) printError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(r.out, "%s %v\n", red("Error."), err)
}

// printWelcome prints the welcome message
func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(r.out, "\n%s\n", cyan("projctl - project control console"))
	fmt.Fprintf(r.out, "Data: %s\n", r.sess.Describe())
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'safexit' to save and quit")
	fmt.Fprintln(r.out)
}

// cmdHelp shows help information
func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	fmt.Fprintf(r.out, "\n%s\n", cyan("Shell commands:"))
	shell := []struct {
		name string
		desc string
	}{
		{"help, ?", "Show this help message"},
		{"status", "Show counts of users, projects and tasks"},
		{"save", "Save a snapshot now"},
		{"safexit, exit, quit", "Save and exit (Ctrl-D does the same)"},
	}
	for _, c := range shell {
		fmt.Fprintf(r.out, "  %s  %s\n", green(c.name), c.desc)
	}

	fmt.Fprintf(r.out, "\n%s\n", cyan("Tracker commands:"))
	for _, l := range command.Help() {
		fmt.Fprintln(r.out, l)
	}
	fmt.Fprintln(r.out)
	return nil
}

// cmdSave writes a snapshot immediately
func (r *REPL) cmdSave(args []string) error {
	if err := r.sess.Save(r.ctx); err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s Saved to %s\n", green("✓"), r.sess.Describe())
	return nil
}

// cmdExit exits the REPL
func (r *REPL) cmdExit(args []string) error {
	r.goodbye()
	return errExit
}

func (r *REPL) goodbye() {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s Goodbye!\n", green("✓"))
}
