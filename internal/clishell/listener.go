package clishell

import (
	"fmt"

	"github.com/routerd/routerd/internal/cliparse"
)

// helpListener implements readline.Listener: it intercepts the literal "?"
// rune before it reaches the line buffer, printing the help table for the
// line typed so far instead of inserting the character.
type helpListener struct {
	shell *Shell
}

// OnChange implements readline.Listener. It only acts on '?'; every other
// key change is left to readline's default handling by returning ok=false.
func (h *helpListener) OnChange(line []rune, pos int, key rune) ([]rune, int, bool) {
	if key != '?' || pos == 0 || line[pos-1] != '?' {
		return nil, 0, false
	}

	stripped := make([]rune, 0, len(line)-1)
	stripped = append(stripped, line[:pos-1]...)
	stripped = append(stripped, line[pos:]...)

	head := string(stripped[:pos-1])
	result := cliparse.Parse(h.shell.currentTree().Root, head, h.shell.privilege)

	fmt.Print("\r\n")
	printHelpTable(result)

	return stripped, pos - 1, true
}
