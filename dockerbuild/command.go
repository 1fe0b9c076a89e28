package dockerbuild

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Command is a single invocation of the container tool.
type Command struct {
	Bin  string
	Args []string
}

func newCommand(bin string, args ...string) *Command {
	return &Command{Bin: bin, Args: args}
}

// String renders the command as a line that can be pasted into a shell.
func (c *Command) String() string {
	words := make([]string, 0, len(c.Args)+1)
	for _, w := range append([]string{c.Bin}, c.Args...) {
		q, err := syntax.Quote(w, syntax.LangBash)
		if err != nil {
			q = strconv.Quote(w)
		}
		words = append(words, q)
	}
	return strings.Join(words, " ")
}
