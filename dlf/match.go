package dlf

import (
	"bufio"
	"io"

	"github.com/rs/zerolog"

	"github.com/ava12/dpeg/grammar"
	"github.com/ava12/dpeg/util/intset"
)

// Options configures a match run.
type Options struct {
	// Trace receives one event per derivative step. Disabled by default.
	Trace zerolog.Logger
}

func defaultOptions() Options {
	return Options{Trace: zerolog.Nop()}
}

// Match recognizes the input against the start rule of the grammar.
// Returns false for unknown start rules. Read failures are the only
// errors, surfaced as dpeg.Error with a match error code.
func Match(g *grammar.Grammar, start string, input io.Reader) (bool, error) {
	return New(g).MatchWith(start, input, defaultOptions())
}

// Match recognizes the input against a start rule of the loaded grammar.
func (r *Recognizer) Match(start string, input io.Reader) (bool, error) {
	return r.MatchWith(start, input, defaultOptions())
}

// MatchWith recognizes the input against a start rule of the loaded
// grammar.
func (r *Recognizer) MatchWith(start string, input io.Reader, opts Options) (bool, error) {
	nt := r.nts[start]
	if nt == nil {
		opts.Trace.Debug().Str("rule", start).Msg("unknown start rule")
		return false, nil
	}
	if nt.Nullable() {
		opts.Trace.Debug().Str("rule", start).Msg("start rule is nullable")
		return true, nil
	}

	mgr := NewMgr()
	head := Matchable(nt, mgr)
	in := bufio.NewReader(input)
	pos := 0
	for {
		x, err := in.ReadByte()
		if err == io.EOF {
			x = 0 // end-of-input sentinel
		} else if err != nil {
			return false, readError(err)
		}

		ok := head.d(x)
		sweep(head, mgr)
		opts.Trace.Debug().
			Int("pos", pos).
			Str("byte", byteName(x)).
			Stringer("head", head.Succ.Kind()).
			Stringer("enforced", mgr.Enforced()).
			Msg("derivative")

		if x == 0 {
			// the sweep released every unreachable cut, so pending
			// restrictions on surviving match paths are now resolved
			return ok || matched(head), nil
		}
		if dead(head.Succ) || !mgr.MatchReachable {
			return false, nil
		}
		pos++
	}
}

// matched reports whether the head arc reaches a match node with no
// unresolved restrictions.
func matched(a *Arc) bool {
	if a.Blocking.Check() != Allowed {
		return false
	}
	switch n := a.Succ.(type) {
	case *matchNode:
		return true
	case *altNode:
		for _, sub := range n.out {
			s := sub.clone()
			s.Blocking.Join(a.Blocking)
			if matched(s) {
				return true
			}
		}
	}
	return false
}

// sweep releases cuts that can no longer fire and recomputes match
// reachability. Releasing may enforce pending cuts and kill further arcs,
// so the walk repeats until the restriction state settles; the state is
// monotone, bounding the repetition by the count of reserved indices.
func sweep(head *Arc, mgr *Mgr) {
	for sweepOnce(head, mgr) {
	}
}

// sweepOnce walks the graph reachable from the head arc once; reports
// whether any restriction state changed.
func sweepOnce(head *Arc, mgr *Mgr) bool {
	live := intset.New()
	visited := make(map[Node]bool)
	matchSeen := false

	var walkNode func(n Node)
	walkArc := func(a *Arc) {
		if a.Blocking.Check() == Forbidden {
			return
		}
		live.AddSet(a.Cuts)
		walkNode(a.Succ)
	}
	walkNode = func(n Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		switch nn := n.(type) {
		case *matchNode:
			matchSeen = true
		case *altNode:
			for _, a := range nn.out {
				walkArc(a)
			}
		default:
			if out, single := outArc(n); single {
				walkArc(out)
			}
		}
	}

	walkArc(head)
	before := mgr.Update()
	mgr.ReleaseUnreachable(live)
	mgr.MatchReachable = matchSeen
	return mgr.Update() != before
}

func byteName(x byte) string {
	if x == 0 {
		return "EOF"
	}
	if x < 32 || x > 126 {
		const digits = "0123456789abcdef"
		return "\\x" + string([]byte{digits[x>>4], digits[x&15]})
	}
	return string(x)
}
