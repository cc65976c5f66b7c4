package clishell

import (
	"strings"

	"github.com/routerd/routerd/internal/cliparse"
	"github.com/routerd/routerd/internal/clitree"
)

// completer adapts cliparse.Parse's candidates to chzyer/readline's
// AutoCompleter interface. Only Keyword-typed candidates produce insertable
// text; typed parameter nodes (WORD, RANGE, IPV*, LINE) are hint-only and
// surface through "?" help instead.
type completer struct {
	shell *Shell
}

// Do implements readline.AutoCompleter.
func (c *completer) Do(line []rune, pos int) (newLine [][]rune, length int) {
	head := string(line[:pos])
	partial, partialLen := lastToken(head)

	// Parse only up to the token being completed: passing the partial
	// itself through would let a unique prefix match auto-descend past it
	// (Parse commits a token the moment exactly one candidate matches it),
	// leaving Candidates one trie level too deep.
	result := cliparse.Parse(c.shell.currentTree().Root, head[:len(head)-partialLen], c.shell.privilege)

	var out [][]rune
	for _, n := range result.Candidates {
		if n.Type != clitree.Keyword {
			continue
		}
		if !strings.HasPrefix(n.Display, partial) {
			continue
		}
		suffix := n.Display[len(partial):] + " "
		out = append(out, []rune(suffix))
	}
	return out, partialLen
}

// lastToken splits s at its final space, returning the trailing
// whitespace-delimited fragment and its length.
func lastToken(s string) (string, int) {
	idx := strings.LastIndexByte(s, ' ')
	if idx == -1 {
		return s, len(s)
	}
	return s[idx+1:], len(s) - idx - 1
}
