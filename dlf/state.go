package dlf

import (
	"github.com/ava12/dpeg/util/intset"
)

// State is the resolution state of a restriction set.
type State int

const (
	// Unknown means some restrictions are still pending.
	Unknown State = iota
	// Allowed means no restriction can ever be enforced.
	Allowed
	// Forbidden means at least one restriction is enforced.
	Forbidden
)

func (s State) String() string {
	switch s {
	case Allowed:
		return "allowed"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// Mgr manages the restriction state of one parse: which cuts have fired
// (enforced), which can never fire (unenforceable), and which fired
// conditionally and await the fate of their blockers (pending).
type Mgr struct {
	enforced      *intset.Set
	unenforceable *intset.Set
	pending       map[int]*intset.Set
	update        uint64
	next          int
	dirty         map[string]bool

	// MatchReachable is maintained by the driver's reachability sweep;
	// once false the parse cannot succeed any more.
	MatchReachable bool
}

// NewMgr creates an empty state manager.
func NewMgr() *Mgr {
	return &Mgr{
		enforced:      intset.New(),
		unenforceable: intset.New(),
		pending:       make(map[int]*intset.Set),
		dirty:         make(map[string]bool),
	}
}

// Reserve allocates n consecutive restriction indices and returns the
// first one.
func (m *Mgr) Reserve(n int) int {
	base := m.next
	m.next += n
	return base
}

// Enforced returns the set of enforced restrictions. Read-only.
func (m *Mgr) Enforced() *intset.Set { return m.enforced }

// Unenforceable returns the set of unenforceable restrictions. Read-only.
func (m *Mgr) Unenforceable() *intset.Set { return m.unenforceable }

// Update returns the manager's change counter, used by Restrict caches.
func (m *Mgr) Update() uint64 { return m.update }

// EnforceUnless fires restriction i: it becomes enforced once every
// blocker is unenforceable, or unenforceable if any blocker is enforced.
// Repeated fires of the same index are ignored.
func (m *Mgr) EnforceUnless(i int, blocking *intset.Set) {
	if m.resolved(i) {
		return
	}
	b := intset.Diff(blocking, m.unenforceable)
	switch {
	case b.Intersects(m.enforced):
		m.unenforceable.Add(i)
		m.changed()
	case b.Empty():
		m.enforced.Add(i)
		m.changed()
	default:
		m.pending[i] = b
	}
}

// Release marks a restriction that can never fire as unenforceable.
// Enforced and conditionally fired restrictions are unaffected.
func (m *Mgr) Release(i int) {
	if m.resolved(i) {
		return
	}
	m.unenforceable.Add(i)
	m.changed()
}

// ReleaseUnreachable releases every allocated restriction that is neither
// resolved, nor conditionally fired, nor present in the live set.
func (m *Mgr) ReleaseUnreachable(live *intset.Set) {
	released := false
	for i := 0; i < m.next; i++ {
		if live.Contains(i) || m.resolved(i) {
			continue
		}
		m.unenforceable.Add(i)
		released = true
	}
	if released {
		m.changed()
	}
}

func (m *Mgr) resolved(i int) bool {
	if m.enforced.Contains(i) || m.unenforceable.Contains(i) {
		return true
	}
	_, fired := m.pending[i]
	return fired
}

// changed bumps the update counter and converges pending restrictions to
// a fixed point.
func (m *Mgr) changed() {
	m.update++
	for m.checkUnenforceable() || m.checkEnforced() {
	}
}

// checkEnforced promotes pending restrictions whose blockers have all
// become unenforceable.
func (m *Mgr) checkEnforced() bool {
	found := false
	for i, blocking := range m.pending {
		if blocking.SubsetOf(m.unenforceable) {
			delete(m.pending, i)
			m.enforced.Add(i)
			m.update++
			found = true
		}
	}
	return found
}

// checkUnenforceable drops pending restrictions one of whose blockers has
// become enforced.
func (m *Mgr) checkUnenforceable() bool {
	found := false
	for i, blocking := range m.pending {
		if blocking.Intersects(m.enforced) {
			delete(m.pending, i)
			m.unenforceable.Add(i)
			m.update++
			found = true
		}
	}
	return found
}

// IsDirty reports whether the named rule is being derived right now.
func (m *Mgr) IsDirty(name string) bool { return m.dirty[name] }

// SetDirty raises the dirty flag for the named rule.
func (m *Mgr) SetDirty(name string) { m.dirty[name] = true }

// UnsetDirty lowers the dirty flag for the named rule.
func (m *Mgr) UnsetDirty(name string) { delete(m.dirty, name) }

// Restrict decides whether a node is prevented from matching. The verdict
// is cached against the manager's update counter; restrictions that became
// unenforceable are dropped from the set as they resolve.
type Restrict struct {
	mgr    *Mgr
	set    *intset.Set
	update uint64
	state  State
}

func newRestrict(mgr *Mgr, set *intset.Set) *Restrict {
	// the counter never returns to a value it has passed, so the first
	// Check always resolves against the manager
	return &Restrict{mgr: mgr, set: set, update: mgr.update - 1}
}

// Set returns the unresolved restrictions. Read-only.
func (r *Restrict) Set() *intset.Set { return r.set }

// Check resolves the current restriction state.
func (r *Restrict) Check() State {
	if r.state == Forbidden || r.state == Allowed {
		return r.state
	}
	if r.update == r.mgr.update {
		return r.state
	}
	r.update = r.mgr.update
	if r.set.Intersects(r.mgr.enforced) {
		r.state = Forbidden
	} else {
		r.set = intset.Diff(r.set, r.mgr.unenforceable)
		if r.set.Empty() {
			r.state = Allowed
		}
	}
	return r.state
}

// Join adds the restrictions of o.
func (r *Restrict) Join(o *Restrict) {
	r.set = intset.Union(r.set, o.set)
	if r.state != Forbidden {
		r.state = Unknown
		r.update = r.mgr.update + 1
		r.Check()
	}
}

// Refine intersects the restrictions with those of o.
func (r *Restrict) Refine(o *Restrict) {
	r.set = intset.Intersect(r.set, o.set)
	if r.state != Forbidden {
		r.state = Unknown
		r.update = r.mgr.update + 1
		r.Check()
	}
}

func (r *Restrict) clone() *Restrict {
	return &Restrict{mgr: r.mgr, set: r.set.Copy(), update: r.update, state: r.state}
}
