package repl

import (
	"sort"
	"strings"
)

// Completer suggests command paths for a typed prefix.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over full command paths such as
// "media upload". Shell built-ins are always included.
func NewCompleter(commands ...string) *Completer {
	c := &Completer{}
	c.Add(builtins...)
	c.Add(commands...)
	return c
}

// Add registers more command paths.
func (c *Completer) Add(commands ...string) {
	seen := make(map[string]bool, len(c.commands))
	for _, cmd := range c.commands {
		seen[cmd] = true
	}
	for _, cmd := range commands {
		cmd = strings.Join(strings.Fields(cmd), " ")
		if cmd != "" && !seen[cmd] {
			seen[cmd] = true
			c.commands = append(c.commands, cmd)
		}
	}
	sort.Strings(c.commands)
}

// Complete returns completion suggestions for the given prefix. Runs of
// spaces in the prefix are collapsed; a trailing space only matches deeper
// paths.
func (c *Completer) Complete(prefix string) []string {
	trailing := strings.HasSuffix(prefix, " ")
	prefix = strings.Join(strings.Fields(prefix), " ")
	if trailing && prefix != "" {
		prefix += " "
	}

	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Commands returns every registered path.
func (c *Completer) Commands() []string {
	return append([]string(nil), c.commands...)
}
