package mds

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLookupHandlerEarlyStop ports test_mds_node: registering three handlers
// at overlapping paths and checking that lookup stops at the first childless
// node, letting a shallower handler answer a deeper, unregistered path.
func TestLookupHandlerEarlyStop(t *testing.T) {
	tree := New()
	h := &Handler{Generic: func(req Request) Response { return Response{ID: req.ID} }}

	tree.Register("/show/ip/route", h)
	tree.Register("/show/ip/route/summary", h)
	tree.Register("/show/ipv6/route", h)

	cases := []struct {
		name  string
		path  string
		found bool
	}{
		{"trailing slash", "/show/ip/route/", true},
		{"exact leaf", "/show/ip/route", true},
		{"no leading slash", "show/ip/route", true},
		{"unregistered sibling segment", "show/ip/rout", false},
		{"deeper registered leaf", "/show/ip/route/summary", true},
		{"falls back to shallower handler", "/show/ipv6/route/summary", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := tree.Lookup(c.path)
			if c.found {
				require.NotNil(t, got)
			} else {
				require.Nil(t, got)
			}
		})
	}
}

func TestRegisterHandlerCreatesIntermediateNodes(t *testing.T) {
	tree := New()
	h := &Handler{Generic: func(req Request) Response { return Response{} }}
	tree.Register("/config/route_ipv4", h)

	require.Nil(t, tree.Lookup("/config"))
	require.NotNil(t, tree.Lookup("/config/route_ipv4"))
}

func TestWalkVisitsEveryRegisteredPath(t *testing.T) {
	tree := New()
	h := &Handler{Generic: func(req Request) Response { return Response{} }}
	tree.Register("/show/ip/route", h)
	tree.Register("/show/ipv6/route", h)

	seen := map[string]bool{}
	tree.Walk(func(path string, handler *Handler) { seen[path] = true })

	require.True(t, seen["/show/ip/route"])
	require.True(t, seen["/show/ipv6/route"])
	require.Len(t, seen, 2)
}
