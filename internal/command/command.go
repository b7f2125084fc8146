// Package command implements the console command vocabulary shared by the
// REPL, the terminal board, one-shot exec and the HTTP API. A command line
// is split on whitespace, its shape is checked, and exactly one tracker
// operation runs.
package command

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/steveyegge/projctl/internal/tracker"
	"github.com/steveyegge/projctl/internal/types"
)

// Naming rule for users, projects, tasks and subtasks
var namePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Project capacity bounds accepted by createproject
const (
	MinTasks = tracker.MinProjectTasks
	MaxTasks = tracker.MaxProjectTasks
)

// ArgKind selects how an argument is checked and completed
type ArgKind int

const (
	ArgName ArgKind = iota
	ArgCapacity
	ArgLevel
	ArgStatus
)

// Arg describes one positional argument
type Arg struct {
	Name string
	Kind ArgKind
}

// Handler runs a command whose arguments have already been checked
type Handler func(m *tracker.Manager, args []string) ([]string, error)

// Command is one entry of the vocabulary
type Command struct {
	Name    string
	Args    []Arg
	Mutates bool
	run     Handler
}

// Usage renders the command with its argument names
func (c *Command) Usage() string {
	parts := []string{c.Name}
	for _, a := range c.Args {
		parts = append(parts, a.Name)
	}
	return strings.Join(parts, " ")
}

// Result is the outcome of a successful command
type Result struct {
	Lines   []string `json:"lines"`
	Mutated bool     `json:"mutated"`
}

// UsageError reports a malformed command line: unknown command, wrong
// argument count, bad name, keyword or capacity.
type UsageError struct {
	Command string
	Msg     string
}

func (e *UsageError) Error() string {
	return e.Msg
}

func usagef(cmd, format string, args ...interface{}) error {
	return &UsageError{Command: cmd, Msg: fmt.Sprintf(format, args...)}
}

var registry = map[string]*Command{}

func register(c *Command) {
	if _, dup := registry[c.Name]; dup {
		panic("command: duplicate registration of " + c.Name)
	}
	registry[c.Name] = c
}

// Lookup returns the named command
func Lookup(name string) (*Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// Names returns all command names in help order
func Names() []string {
	names := make([]string, 0, len(order))
	names = append(names, order...)
	return names
}

// Commands returns the vocabulary in help order
func Commands() []*Command {
	cmds := make([]*Command, 0, len(order))
	for _, name := range order {
		cmds = append(cmds, registry[name])
	}
	return cmds
}

// Run splits line on whitespace and executes it
func Run(m *tracker.Manager, line string) (Result, error) {
	return Execute(m, strings.Fields(line))
}

// Execute checks words against the vocabulary and runs the command. On
// failure the manager is unchanged.
func Execute(m *tracker.Manager, words []string) (Result, error) {
	if len(words) == 0 {
		return Result{}, usagef("", "Empty command.")
	}
	c, ok := registry[words[0]]
	if !ok {
		return Result{}, usagef(words[0], "Invalid command %q. Type help for the list of commands.", words[0])
	}
	args := words[1:]
	if err := c.check(args); err != nil {
		return Result{}, err
	}
	lines, err := c.run(m, args)
	if err != nil {
		return Result{}, err
	}
	return Result{Lines: lines, Mutated: c.Mutates}, nil
}

func (c *Command) check(args []string) error {
	if len(args) != len(c.Args) {
		return usagef(c.Name, "%s should contain %s. Usage: %s", c.Name, describeArity(c.Args), c.Usage())
	}
	for i, a := range c.Args {
		v := args[i]
		switch a.Kind {
		case ArgName:
			if !ValidName(v) {
				return usagef(c.Name, "%s does not match naming rules.", a.Name)
			}
		case ArgCapacity:
			n, err := strconv.Atoi(v)
			if err != nil || n < MinTasks || n > MaxTasks {
				return usagef(c.Name, "maximum number of tasks must belong to [%d,%d].", MinTasks, MaxTasks)
			}
		case ArgLevel:
			if _, err := types.ParseLevel(v); err != nil {
				return usagef(c.Name, "%s is invalid. Keywords: %s.", a.Name, strings.Join(LevelKeywords(), ", "))
			}
		case ArgStatus:
			if _, err := types.ParseStatus(v); err != nil {
				return usagef(c.Name, "%s is invalid. Keywords: %s.", a.Name, strings.Join(StatusKeywords(), ", "))
			}
		}
	}
	return nil
}

func describeArity(args []Arg) string {
	switch len(args) {
	case 0:
		return "no arguments"
	case 1:
		return "1 argument - " + args[0].Name
	}
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name
	}
	return fmt.Sprintf("%d arguments - %s", len(args), strings.Join(names, ", "))
}

// ValidName reports whether s is a non-empty run of latin letters and digits
func ValidName(s string) bool {
	return namePattern.MatchString(s)
}

// LevelKeywords returns the task level keywords
func LevelKeywords() []string {
	kw := make([]string, 0, len(types.Levels))
	for _, l := range types.Levels {
		kw = append(kw, l.String())
	}
	return kw
}

// StatusKeywords returns the task status keywords
func StatusKeywords() []string {
	return []string{
		types.StatusOpened.Keyword(),
		types.StatusWorkInProgress.Keyword(),
		types.StatusCompleted.Keyword(),
	}
}

// Help returns the rules and the command list, one line each
func Help() []string {
	lines := []string{
		"Only latin characters and digits are available for naming users, projects, tasks.",
		"Keywords for level of task: " + strings.Join(LevelKeywords(), ", ") + ".",
		"Keywords for status of task: " + strings.Join(StatusKeywords(), ", ") + ".",
		"List of commands:",
	}
	for _, c := range Commands() {
		lines = append(lines, "    "+c.Usage())
	}
	return append(lines, "Separate all arguments with spaces. Names cannot contain spaces.")
}

// Complete returns the candidates for the word at position pos (0 is the
// command name) given the words typed so far. Name arguments complete to
// known user and project names when m is non-nil.
func Complete(m *tracker.Manager, words []string, pos int) []string {
	if pos == 0 {
		return Names()
	}
	if len(words) == 0 {
		return nil
	}
	c, ok := registry[words[0]]
	if !ok || pos > len(c.Args) {
		return nil
	}
	a := c.Args[pos-1]
	switch a.Kind {
	case ArgLevel:
		return LevelKeywords()
	case ArgStatus:
		return StatusKeywords()
	case ArgName:
		if m == nil {
			return nil
		}
		switch a.Name {
		case "username":
			return userNames(m)
		case "projectname", "oldname":
			return projectNames(m)
		}
	}
	return nil
}

func userNames(m *tracker.Manager) []string {
	var names []string
	for _, u := range m.Users() {
		names = append(names, u.Name)
	}
	return names
}

func projectNames(m *tracker.Manager) []string {
	seen := map[string]bool{}
	var names []string
	for _, p := range m.Projects() {
		if !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}
