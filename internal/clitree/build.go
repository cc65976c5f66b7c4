package clitree

import (
	"fmt"
	"sort"
	"strings"
)

const maxPrivilege = 15

// BuildForest constructs the tree skeleton (modes, prompts, parent links)
// from a parsed reze.cli_mode.json document. Every top-level entry becomes a
// root tree; the first (in lexicographic order, for determinism over Go's
// unordered map) is recorded as the forest's Initial mode.
func BuildForest(doc ModeDoc) (*Forest, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("clitree: empty mode document")
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	forest := NewForest()
	forest.Initial = names[0]

	var build func(name string, def ModeDef, parent *Tree)
	build = func(name string, def ModeDef, parent *Tree) {
		t := NewTree(name, def.Prompt, parent)
		forest.Modes[name] = t

		childNames := make([]string, 0, len(def.Children))
		for cn := range def.Children {
			childNames = append(childNames, cn)
		}
		sort.Strings(childNames)
		for _, cn := range childNames {
			build(cn, def.Children[cn], t)
		}
	}

	for _, name := range names {
		build(name, doc[name], nil)
	}
	return forest, nil
}

// LoadCliDoc inserts every command in doc into the forest's trees, one DEFUN
// per (command, mode) pair named in the command's "mode" list.
func LoadCliDoc(forest *Forest, doc CliDoc) error {
	for _, group := range doc {
		for _, cmd := range group.Command {
			for _, modeName := range cmd.Mode {
				tree := forest.Get(modeName)
				if tree == nil {
					return fmt.Errorf("clitree: command %q references undeclared mode %q", cmd.Defun, modeName)
				}
				if err := insertDefun(tree, group.Token, cmd); err != nil {
					return fmt.Errorf("clitree: %q in mode %q: %w", cmd.Defun, modeName, err)
				}
			}
		}
	}
	return nil
}

func insertDefun(tree *Tree, tokens map[string]TokenDef, cmd CommandDef) error {
	seq, err := ParseDefun(cmd.Defun)
	if err != nil {
		return err
	}

	privilege := cmd.Privilege
	if privilege < 0 {
		privilege = 0
	}
	if privilege > maxPrivilege {
		privilege = maxPrivilege
	}

	frontier := []*Node{tree.Root}
	for _, el := range seq {
		frontier = attachElement(frontier, el, tokens, privilege)
		if len(frontier) == 0 {
			return fmt.Errorf("empty frontier while attaching %v", el)
		}
	}

	actions := resolveActions(cmd.Actions)
	for _, n := range frontier {
		n.Executable = true
		n.Actions = append(n.Actions, actions...)
	}
	return nil
}

func attachElement(frontier []*Node, el Element, tokens map[string]TokenDef, privilege int) []*Node {
	if el.Group == nil {
		return attachAtom(frontier, el.Atom, tokens, privilege)
	}

	switch el.Group.Kind {
	case GroupMandatory:
		return attachChoiceGroup(frontier, el.Group.Branches, tokens, privilege, false)
	case GroupOptional:
		return attachChoiceGroup(frontier, el.Group.Branches, tokens, privilege, true)
	case GroupRepeat:
		return attachRepeatGroup(frontier, el.Group.Branches, tokens, privilege)
	default:
		return frontier
	}
}

func attachAtom(frontier []*Node, atomName string, tokens map[string]TokenDef, privilege int) []*Node {
	next := make([]*Node, 0, len(frontier))
	seen := make(map[*Node]bool, len(frontier))
	for _, f := range frontier {
		child := resolveOrCreateChild(f, atomName, tokens, privilege)
		if !seen[child] {
			next = append(next, child)
			seen[child] = true
		}
	}
	return next
}

// attachChoiceGroup handles both "( | )" (skip=false) and "[ | ]"
// (skip=true) groups: every branch is attached under every frontier node,
// and the branches' resulting tails are unioned to form the new frontier.
// When skip is true, the pre-group frontier itself is also added to the new
// frontier, implementing the optional group's skip edge.
func attachChoiceGroup(frontier []*Node, branches []Element, tokens map[string]TokenDef, privilege int, skip bool) []*Node {
	var tails []*Node
	seen := make(map[*Node]bool)

	add := func(n *Node) {
		if !seen[n] {
			tails = append(tails, n)
			seen[n] = true
		}
	}

	if skip {
		for _, f := range frontier {
			add(f)
		}
	}

	for _, branch := range branches {
		branchTails := attachElement(frontier, branch, tokens, privilege)
		for _, n := range branchTails {
			add(n)
		}
	}
	return tails
}

// attachRepeatGroup handles "{ a | b | c }": each branch is attached once
// under every frontier node and marked only-once; branch nodes are then
// cross-linked as children of one another so any traversal order is
// accepted. Only bare-atom branches are supported, matching every observed
// use in the CLI definitions this builds from.
func attachRepeatGroup(frontier []*Node, branches []Element, tokens map[string]TokenDef, privilege int) []*Node {
	var allBranchNodes []*Node
	seenAll := make(map[*Node]bool)

	for _, f := range frontier {
		var nodesHere []*Node
		for _, b := range branches {
			if b.Atom == "" {
				continue
			}
			child := resolveOrCreateChild(f, b.Atom, tokens, privilege)
			child.OnlyOnce = true
			nodesHere = append(nodesHere, child)
			if !seenAll[child] {
				allBranchNodes = append(allBranchNodes, child)
				seenAll[child] = true
			}
		}

		for _, a := range nodesHere {
			for _, b := range nodesHere {
				if a == b {
					continue
				}
				if a.findChild(b.Display) == nil {
					a.Next = append(a.Next, b)
				}
			}
		}
	}
	return allBranchNodes
}

func resolveOrCreateChild(parent *Node, atomName string, tokens map[string]TokenDef, privilege int) *Node {
	typ := resolveType(atomName)
	td, hasTD := tokens[atomName]

	var display string
	if typ == Keyword {
		display = atomName
	} else {
		idName := atomName
		if hasTD && td.ID != "" {
			idName = td.ID
		}
		display = "<" + idName + ">"
	}

	if existing := parent.findChild(display); existing != nil {
		if privilege < existing.Privilege {
			existing.Privilege = privilege
		}
		return existing
	}

	n := &Node{
		ID:        atomName,
		Type:      typ,
		Display:   display,
		Privilege: privilege,
		parent:    parent,
	}

	if hasTD {
		n.Help = td.Help
		switch {
		case td.Enum != "":
			n.CaptureKey = td.Enum
		case td.ID != "":
			n.CaptureKey = td.ID
		}
		if td.Range != nil {
			n.Range = *td.Range
		}
	} else if typ != Keyword {
		n.CaptureKey = atomName
	}

	parent.Next = append(parent.Next, n)
	return n
}

func resolveType(atomName string) TokenType {
	switch {
	case strings.HasPrefix(atomName, "IPV4-PREFIX"):
		return IPv4Prefix
	case strings.HasPrefix(atomName, "IPV4-ADDRESS"):
		return IPv4Addr
	case strings.HasPrefix(atomName, "IPV6-PREFIX"):
		return IPv6Prefix
	case strings.HasPrefix(atomName, "IPV6-ADDRESS"):
		return IPv6Addr
	case strings.HasPrefix(atomName, "RANGE"):
		return IntRange
	case strings.HasPrefix(atomName, "WORD"):
		return Word
	case strings.HasPrefix(atomName, "LINE"):
		return Line
	case strings.HasPrefix(atomName, "COMMUNITY"):
		return Community
	case strings.HasPrefix(atomName, "ARRAY"):
		return Array
	default:
		return Keyword
	}
}

func resolveActions(defs []ActionDef) []Action {
	actions := make([]Action, 0, len(defs))
	for _, d := range defs {
		switch {
		case d.Mode != nil:
			actions = append(actions, Action{Kind: "mode", ModeName: d.Mode.Name})
		case d.Remote != nil:
			actions = append(actions, Action{Kind: "remote", Remote: &RemoteAction{
				Name:   d.Remote.Name,
				Method: d.Remote.Method,
				Path:   d.Remote.Path,
				Body:   d.Remote.Body,
			}})
		case d.BuiltIn != nil:
			actions = append(actions, Action{Kind: "built-in", BuiltIn: *d.BuiltIn})
		case d.Shell != nil:
			actions = append(actions, Action{Kind: "shell", Shell: *d.Shell})
		}
	}
	return actions
}
