package rib

import (
	"sync"

	"github.com/routerd/routerd/internal/ptree"
)

// Driver is the kernel-sync side of FIB installation, implemented by a
// netlink-backed driver in production and a recording fake in tests.
type Driver interface {
	Install(prefix Prefix, entry *Entry) error
	Uninstall(prefix Prefix, entry *Entry) error
}

// nullDriver drops every sync call; used when a table is built without a
// live kernel driver (tests, or a worker that only tracks RIBs locally).
type nullDriver struct{}

func (nullDriver) Install(Prefix, *Entry) error   { return nil }
func (nullDriver) Uninstall(Prefix, *Entry) error { return nil }

// leaf is the value stored at each occupied prefix-tree node: every
// candidate RIB for that prefix plus the entry currently installed in the
// FIB (the "FIB shadow"), so sync only acts when selection actually
// changes the winner.
type leaf struct {
	entries   []*Entry
	installed *Entry
}

// Table is one address family's RIB: a prefix tree of leaves, synced to a
// kernel driver on every selection change.
type Table struct {
	mu     sync.Mutex
	tree   *ptree.Tree
	driver Driver
	seq    uint64
}

// New returns an empty table. A nil driver is replaced with one that
// performs no kernel sync.
func New(driver Driver) *Table {
	if driver == nil {
		driver = nullDriver{}
	}
	return &Table{tree: ptree.New(), driver: driver}
}

// Add appends a candidate route for prefix and re-runs selection and FIB
// sync for that prefix.
func (t *Table) Add(prefix Prefix, entryType RibType, distance uint8, tag uint32, nexthops []Nexthop) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.leafFor(prefix)
	t.seq++
	l.entries = append(l.entries, &Entry{
		Type:     entryType,
		Distance: distance,
		Tag:      tag,
		Nexthops: nexthops,
		seq:      t.seq,
	})

	return t.resync(prefix, l)
}

// Delete removes every entry of entryType/distance for prefix and
// re-runs selection and FIB sync.
func (t *Table) Delete(prefix Prefix, entryType RibType, distance uint8) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	val, ok := t.tree.LookupExact(prefix.Addr, prefix.Len)
	if !ok {
		return nil
	}
	l := val.(*leaf)

	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.Type == entryType && e.Distance == distance {
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept

	if err := t.resync(prefix, l); err != nil {
		return err
	}

	if len(l.entries) == 0 && l.installed == nil {
		t.tree.Erase(prefix.Addr, prefix.Len)
	}
	return nil
}

// Route pairs a prefix with its currently installed entry, returned by All
// for a full table dump.
type Route struct {
	Prefix Prefix
	Entry  *Entry
}

// All returns every prefix in the table with a currently installed entry,
// in no particular order. Used to answer "show ip route".
func (t *Table) All() []Route {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Route
	t.tree.Walk(func(key []byte, prefixLen int, value any) {
		l := value.(*leaf)
		if l.installed == nil {
			return
		}
		out = append(out, Route{Prefix: Prefix{Addr: key, Len: prefixLen}, Entry: l.installed})
	})
	return out
}

// Selected returns the currently installed entry for prefix, if any.
func (t *Table) Selected(prefix Prefix) (*Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	val, ok := t.tree.LookupExact(prefix.Addr, prefix.Len)
	if !ok {
		return nil, false
	}
	l := val.(*leaf)
	if l.installed == nil {
		return nil, false
	}
	return l.installed, true
}

func (t *Table) leafFor(prefix Prefix) *leaf {
	if val, ok := t.tree.LookupExact(prefix.Addr, prefix.Len); ok {
		return val.(*leaf)
	}
	l := &leaf{}
	t.tree.Insert(prefix.Addr, prefix.Len, l)
	return l
}

// selectBest picks the winning entry: smallest distance, ties broken by
// RibType declaration order, then by insertion order.
func selectBest(entries []*Entry) *Entry {
	var best *Entry
	for _, e := range entries {
		if best == nil {
			best = e
			continue
		}
		if e.Distance != best.Distance {
			if e.Distance < best.Distance {
				best = e
			}
			continue
		}
		if e.Type != best.Type {
			if e.Type < best.Type {
				best = e
			}
			continue
		}
		if e.seq < best.seq {
			best = e
		}
	}
	return best
}

func (t *Table) resync(prefix Prefix, l *leaf) error {
	winner := selectBest(l.entries)

	if winner == l.installed {
		return nil
	}

	if l.installed != nil {
		if err := t.driver.Uninstall(prefix, l.installed); err != nil {
			return err
		}
	}
	if winner != nil {
		if err := t.driver.Install(prefix, winner); err != nil {
			return err
		}
	}
	l.installed = winner
	return nil
}
