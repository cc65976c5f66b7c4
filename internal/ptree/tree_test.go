package ptree

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func v4(s string) []byte {
	ip := net.ParseIP(s).To4()
	return []byte(ip)
}

func TestInsertLookupExact(t *testing.T) {
	tree := New()

	_, had := tree.Insert(v4("10.0.0.0"), 8, "ten")
	require.False(t, had)

	val, ok := tree.LookupExact(v4("10.0.0.0"), 8)
	require.True(t, ok)
	require.Equal(t, "ten", val)

	_, ok = tree.LookupExact(v4("10.0.0.0"), 16)
	require.False(t, ok)
}

func TestInsertOverwritesExactPrefix(t *testing.T) {
	tree := New()
	tree.Insert(v4("192.168.1.0"), 24, "first")
	old, had := tree.Insert(v4("192.168.1.0"), 24, "second")
	require.True(t, had)
	require.Equal(t, "first", old)

	val, ok := tree.LookupExact(v4("192.168.1.0"), 24)
	require.True(t, ok)
	require.Equal(t, "second", val)
}

func TestInsertSplitsAtFirstDifferingBit(t *testing.T) {
	tree := New()
	tree.Insert(v4("10.0.0.0"), 8, "ten")
	tree.Insert(v4("11.0.0.0"), 8, "eleven")

	valA, okA := tree.LookupExact(v4("10.0.0.0"), 8)
	require.True(t, okA)
	require.Equal(t, "ten", valA)

	valB, okB := tree.LookupExact(v4("11.0.0.0"), 8)
	require.True(t, okB)
	require.Equal(t, "eleven", valB)
}

func TestLookupLPMPicksLongestMatchingPrefix(t *testing.T) {
	tree := New()
	tree.Insert(v4("10.0.0.0"), 8, "ten-slash-8")
	tree.Insert(v4("10.1.0.0"), 16, "ten-one-slash-16")
	tree.Insert(v4("10.1.2.0"), 24, "ten-one-two-slash-24")

	val, ok := tree.LookupLPM(v4("10.1.2.5"))
	require.True(t, ok)
	require.Equal(t, "ten-one-two-slash-24", val)

	val, ok = tree.LookupLPM(v4("10.1.3.5"))
	require.True(t, ok)
	require.Equal(t, "ten-one-slash-16", val)

	val, ok = tree.LookupLPM(v4("10.2.0.1"))
	require.True(t, ok)
	require.Equal(t, "ten-slash-8", val)
}

func TestLookupLPMNoMatch(t *testing.T) {
	tree := New()
	tree.Insert(v4("10.0.0.0"), 8, "ten")

	_, ok := tree.LookupLPM(v4("192.168.0.1"))
	require.False(t, ok)
}

func TestEraseRemovesExactEntryAndCollapses(t *testing.T) {
	tree := New()
	tree.Insert(v4("10.0.0.0"), 8, "ten")
	tree.Insert(v4("11.0.0.0"), 8, "eleven")

	val, ok := tree.Erase(v4("10.0.0.0"), 8)
	require.True(t, ok)
	require.Equal(t, "ten", val)

	_, ok = tree.LookupExact(v4("10.0.0.0"), 8)
	require.False(t, ok)

	val, ok = tree.LookupExact(v4("11.0.0.0"), 8)
	require.True(t, ok)
	require.Equal(t, "eleven", val)
}

func TestEraseLeavesGlueNodeWithTwoChildrenAlone(t *testing.T) {
	tree := New()
	tree.Insert(v4("10.0.0.0"), 8, "ten")
	tree.Insert(v4("11.0.0.0"), 8, "eleven")
	tree.Insert(v4("10.0.0.0"), 7, "ten-slash-7")

	_, ok := tree.Erase(v4("10.0.0.0"), 7)
	require.True(t, ok)

	valA, okA := tree.LookupExact(v4("10.0.0.0"), 8)
	require.True(t, okA)
	require.Equal(t, "ten", valA)

	valB, okB := tree.LookupExact(v4("11.0.0.0"), 8)
	require.True(t, okB)
	require.Equal(t, "eleven", valB)
}

func TestEraseUnknownPrefixIsNoop(t *testing.T) {
	tree := New()
	tree.Insert(v4("10.0.0.0"), 8, "ten")

	_, ok := tree.Erase(v4("192.168.0.0"), 16)
	require.False(t, ok)

	val, ok := tree.LookupExact(v4("10.0.0.0"), 8)
	require.True(t, ok)
	require.Equal(t, "ten", val)
}
