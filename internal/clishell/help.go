package clishell

import (
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/routerd/routerd/internal/cliparse"
	"github.com/routerd/routerd/internal/clitree"
)

// printModeHelp renders the full candidate list at the shell's current
// position, used by the "help" built-in.
func printModeHelp(tree *clitree.Tree, privilege int) {
	result := cliparse.Parse(tree.Root, "", privilege)
	printHelpTable(result)
}

// printHelpTable renders a "?" help listing: one row per candidate with its
// display text and help text, plus a trailing "<cr>" row when the current
// parse state is already Complete.
func printHelpTable(result *cliparse.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, n := range result.Candidates {
		table.Append([]string{n.Display, n.Help})
	}
	if result.Status == cliparse.Complete {
		table.Append([]string{"<cr>", ""})
	}

	table.Render()
}
