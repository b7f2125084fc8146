package repl

import (
	"sort"
	"strings"

	"github.com/steveyegge/projctl/internal/command"
	"github.com/steveyegge/projctl/internal/session"
	"github.com/steveyegge/projctl/internal/tracker"
)

// completer implements readline.AutoCompleter. It completes command names,
// level and status keywords, and user and project names from the live
// manager.
type completer struct {
	sess     *session.Session
	builtins []string
}

// Do returns the suffixes that complete the word under the cursor and the
// length of the part already typed
func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	prefix, candidates := c.getCompletions(string(line[:pos]))
	var out [][]rune
	for _, cand := range candidates {
		out = append(out, []rune(strings.TrimPrefix(cand, prefix)+" "))
	}
	return out, len([]rune(prefix))
}

// getCompletions returns the word being completed and the matching
// candidates, sorted
func (c *completer) getCompletions(text string) (string, []string) {
	words := strings.Fields(text)
	pos := len(words)
	prefix := ""
	if pos > 0 && !strings.HasSuffix(text, " ") {
		pos--
		prefix = words[pos]
	}

	var all []string
	_ = c.sess.View(func(m *tracker.Manager) error {
		all = command.Complete(m, words, pos)
		return nil
	})
	if pos == 0 {
		all = append(all, c.builtins...)
	}

	var matches []string
	for _, cand := range all {
		if strings.HasPrefix(cand, prefix) {
			matches = append(matches, cand)
		}
	}
	sort.Strings(matches)
	return prefix, matches
}
