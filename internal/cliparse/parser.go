package cliparse

import (
	"strconv"
	"strings"

	"github.com/routerd/routerd/internal/clitree"
	"github.com/routerd/routerd/internal/collate"
	"github.com/routerd/routerd/internal/value"
)

// Parse walks root for completion/help purposes: it does not capture
// parameters or record the chosen executable node, but otherwise runs the
// identical collation/ambiguity-resolution algorithm as ParseExecute.
func Parse(root *clitree.Node, line string, privilege int) *Result {
	p := newParser(line, privilege, false)
	return p.run(root)
}

// ParseExecute walks root for execution: same algorithm as Parse, plus
// parameter capture and the chosen executable node.
func ParseExecute(root *clitree.Node, line string, privilege int) *Result {
	p := newParser(line, privilege, true)
	return p.run(root)
}

type parser struct {
	line      string
	pos       int
	prevPos   int
	tokEnd    int
	privilege int
	capture   bool

	onlyOnceSeen map[string]bool
	params       map[string]value.Value
}

func newParser(line string, privilege int, capture bool) *parser {
	return &parser{
		line:         line,
		privilege:    privilege,
		capture:      capture,
		onlyOnceSeen: make(map[string]bool),
		params:       make(map[string]value.Value),
	}
}

type scoredCandidate struct {
	node *clitree.Node
	flag collate.Flag
}

func (p *parser) run(root *clitree.Node) *Result {
	current := root

	for {
		p.skipSpaces()
		candidates := p.filteredChildren(current)

		tokStart := p.pos
		token, ok := p.peekToken()
		if !ok {
			status := Incomplete
			if current.Executable {
				status = Complete
			}
			return p.finish(status, current, candidates, 0)
		}

		var raw []scoredCandidate
		for _, c := range candidates {
			r := collateNode(c, token)
			if r.OK() {
				raw = append(raw, scoredCandidate{c, r.Flag()})
			}
		}

		if len(raw) == 0 {
			pos := p.anchorUnrecognized(candidates, token, tokStart)
			return p.finish(Unrecognized, current, candidates, pos)
		}

		best := bestFlag(raw)
		filtered := filterByFlag(raw, best)

		if len(filtered) == 1 {
			p.consumeToken()
			chosen := filtered[0].node
			if chosen.OnlyOnce {
				p.onlyOnceSeen[chosen.ID] = true
			}

			if chosen.Type.IsLine() {
				remainder := strings.TrimSpace(p.line[tokStart:])
				p.captureValue(chosen, remainder)
				p.pos = len(p.line)
				status := Incomplete
				if chosen.Executable {
					status = Complete
				}
				return p.finish(status, chosen, []*clitree.Node{chosen}, 0)
			}

			p.captureValue(chosen, token)
			current = chosen
			continue
		}

		fullOnly := filterByFlag(raw, collate.Full)
		if len(fullOnly) == 1 {
			p.consumeToken()
			chosen := fullOnly[0].node
			if chosen.OnlyOnce {
				p.onlyOnceSeen[chosen.ID] = true
			}
			p.captureValue(chosen, token)
			current = chosen
			continue
		}

		return p.finish(Ambiguous, current, filtered2Nodes(filtered), 0)
	}
}

func (p *parser) finish(status Status, node *clitree.Node, candidates []*clitree.Node, pos int) *Result {
	r := &Result{Status: status, Candidates: candidates, Pos: pos}
	if status == Unrecognized {
		r.Pos = pos
	}
	if p.capture {
		r.Params = p.params
		if status == Complete {
			r.Executable = node
		}
	}
	return r
}

func (p *parser) captureValue(n *clitree.Node, text string) {
	if !p.capture || n.CaptureKey == "" {
		return
	}
	switch n.Type {
	case clitree.IntRange:
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			p.params[n.CaptureKey] = value.Int64(i)
		}
	default:
		p.params[n.CaptureKey] = value.String(text)
	}
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.line) && p.line[p.pos] == ' ' {
		p.pos++
	}
}

// peekToken returns the next whitespace-delimited token without advancing
// the cursor permanently; consumeToken must be called to commit the advance.
func (p *parser) peekToken() (string, bool) {
	if p.pos >= len(p.line) {
		return "", false
	}
	end := p.pos
	for end < len(p.line) && p.line[end] != ' ' {
		end++
	}
	if end == p.pos {
		return "", false
	}
	p.tokEnd = end
	return p.line[p.pos:end], true
}

func (p *parser) consumeToken() {
	p.prevPos = p.pos
	p.pos = p.tokEnd
}

func (p *parser) filteredChildren(n *clitree.Node) []*clitree.Node {
	out := make([]*clitree.Node, 0, len(n.Next))
	for _, c := range n.Next {
		if c.Hidden {
			continue
		}
		if c.OnlyOnce && p.onlyOnceSeen[c.ID] {
			continue
		}
		if c.Privilege > p.privilege {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (p *parser) anchorUnrecognized(candidates []*clitree.Node, token string, tokStart int) int {
	for l := len(token); l >= 0; l-- {
		prefix := token[:l]
		for _, c := range candidates {
			if collateNode(c, prefix).OK() {
				return tokStart + l
			}
		}
	}
	return tokStart
}

func collateNode(n *clitree.Node, token string) collate.Result {
	switch n.Type {
	case clitree.Keyword:
		return collate.Keyword(n.Display, token)
	case clitree.IntRange:
		return collate.IntRange(n.Range[0], n.Range[1], token)
	case clitree.IPv4Addr:
		return collate.IPv4Addr(token)
	case clitree.IPv4Prefix:
		return collate.IPv4Prefix(token)
	case clitree.IPv6Addr:
		return collate.IPv6Addr(token)
	case clitree.IPv6Prefix:
		return collate.IPv6Prefix(token)
	case clitree.Line:
		return collate.Line(token)
	case clitree.Word, clitree.Community, clitree.Array:
		return collate.Word(token)
	default:
		return collate.Failure(0)
	}
}

func bestFlag(raw []scoredCandidate) collate.Flag {
	best := collate.Incomplete
	for i, r := range raw {
		if i == 0 || r.flag < best {
			best = r.flag
		}
	}
	return best
}

func filterByFlag(raw []scoredCandidate, f collate.Flag) []scoredCandidate {
	var out []scoredCandidate
	for _, r := range raw {
		if r.flag == f {
			out = append(out, r)
		}
	}
	return out
}

func filtered2Nodes(raw []scoredCandidate) []*clitree.Node {
	out := make([]*clitree.Node, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.node)
	}
	return out
}
