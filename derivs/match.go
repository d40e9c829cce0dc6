package derivs

import (
	"bufio"
	"io"

	"github.com/rs/zerolog"

	"github.com/ava12/dpeg/grammar"
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
	rule := r.g.Rule(start)
	if rule == nil {
		opts.Trace.Debug().Str("rule", start).Msg("unknown start rule")
		return false, nil
	}
	if rule.Nullable() {
		opts.Trace.Debug().Str("rule", start).Msg("start rule is nullable")
		return true, nil
	}

	var head Expr = r.rules[start]
	in := bufio.NewReader(input)
	pos := 0
	for {
		x, err := in.ReadByte()
		if err == io.EOF {
			x = 0 // end-of-input sentinel
		} else if err != nil {
			return false, readError(err)
		}

		r.tbl.nextByte()
		head = head.Deriv(x)
		opts.Trace.Debug().
			Int("pos", pos).
			Str("byte", byteName(x)).
			Stringer("head", head.Kind()).
			Msg("derivative")

		if x == 0 {
			// at end of input every pending lookahead is resolved, any
			// surviving match generation is a real match
			return !head.Match().Empty(), nil
		}
		switch head.Kind() {
		case FailKind, InfKind:
			return false, nil
		case LookKind:
			// a bare lookahead success matches only the empty suffix;
			// the byte just read was consumed by nothing
			return false, nil
		}
		pos++
	}
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
