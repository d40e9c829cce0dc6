package dpeg_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava12/dpeg/ast"
	"github.com/ava12/dpeg/derivs"
	"github.com/ava12/dpeg/dlf"
	"github.com/ava12/dpeg/grammar"
	"github.com/ava12/dpeg/langdef"
)

// refMatch is a reference recursive PEG interpreter with committed-choice
// semantics, used as an oracle for both derivative engines. It runs on the
// same grammar the engines load (after the left recursion rewrite), so
// recursion is bounded for the test corpus.
func refMatch(g *grammar.Grammar, start, input string) bool {
	rule := g.Rule(start)
	if rule == nil {
		return false
	}
	if rule.Nullable() {
		// same fast path the drivers take
		return true
	}
	n, ok := refEval(g, rule.Body, input, 0)
	return ok && n == len(input)
}

// refEval returns the consumed byte count of the single committed parse of
// m at pos, or false if m fails there.
func refEval(g *grammar.Grammar, m ast.Matcher, input string, pos int) (int, bool) {
	switch mm := m.(type) {
	case *ast.CharMatcher:
		if pos < len(input) && input[pos] == mm.C {
			return 1, true
		}
	case *ast.StrMatcher:
		if strings.HasPrefix(input[pos:], mm.S) {
			return len(mm.S), true
		}
	case *ast.RangeMatcher:
		if pos < len(input) {
			for _, r := range mm.Rs {
				if input[pos] >= r.Lo && input[pos] <= r.Hi {
					return 1, true
				}
			}
		}
	case *ast.RefMatcher:
		return refEval(g, g.Rule(mm.Name).Body, input, pos)
	case *ast.AnyMatcher:
		if pos < len(input) {
			return 1, true
		}
	case *ast.EmptyMatcher, *ast.ActionMatcher:
		return 0, true
	case *ast.OptMatcher:
		if n, ok := refEval(g, mm.M, input, pos); ok {
			return n, true
		}
		return 0, true
	case *ast.ManyMatcher:
		total := 0
		for {
			n, ok := refEval(g, mm.M, input, pos+total)
			if !ok || n == 0 {
				return total, true
			}
			total += n
		}
	case *ast.SomeMatcher:
		n, ok := refEval(g, mm.M, input, pos)
		if !ok {
			return 0, false
		}
		rest, _ := refEval(g, ast.Many(mm.M), input, pos+n)
		return n + rest, true
	case *ast.SeqMatcher:
		total := 0
		for _, sub := range mm.Ms {
			n, ok := refEval(g, sub, input, pos+total)
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true
	case *ast.AltMatcher:
		for _, sub := range mm.Ms {
			if n, ok := refEval(g, sub, input, pos); ok {
				return n, true
			}
		}
	case *ast.LookMatcher:
		if _, ok := refEval(g, mm.M, input, pos); ok {
			return 0, true
		}
	case *ast.NotMatcher:
		if _, ok := refEval(g, mm.M, input, pos); !ok {
			return 0, true
		}
	case *ast.CaptMatcher:
		return refEval(g, mm.M, input, pos)
	case *ast.NamedMatcher:
		return refEval(g, mm.M, input, pos)
	case *ast.FailMatcher:
	}
	return 0, false
}

// enumerate produces all strings over the alphabet up to the given length.
func enumerate(alphabet string, maxLen int) []string {
	result := []string{""}
	level := []string{""}
	for i := 0; i < maxLen; i++ {
		next := make([]string, 0, len(level)*len(alphabet))
		for _, s := range level {
			for j := 0; j < len(alphabet); j++ {
				next = append(next, s+string(alphabet[j]))
			}
		}
		result = append(result, next...)
		level = next
	}
	return result
}

var soundnessCorpus = []struct {
	name     string
	grammar  string
	alphabet string
	maxLen   int
}{
	{"literal", `
rules:
  S: { str: ab }
`, "ab", 4},
	{"repetition", `
rules:
  S: { seq: [ { some: { range: az } }, { char: "!" } ] }
`, "ab!", 4},
	{"shared prefix", `
rules:
  S: { alt: [ { seq: [ { char: a }, { char: b } ] }, { seq: [ { char: a }, { char: c } ] } ] }
`, "abc", 4},
	{"negative lookahead", `
rules:
  S: { seq: [ { not: { char: a } }, { any: true } ] }
`, "ab", 3},
	{"left recursion", `
rules:
  S: { ref: R }
  R: { alt: [ { seq: [ { ref: R }, { char: a } ] }, { char: a } ] }
`, "ab", 5},
	{"positive lookahead", `
rules:
  S: { seq: [ { look: { str: ab } }, { some: { range: az } } ] }
`, "ab", 4},
	{"greedy optional", `
rules:
  S: { seq: [ { opt: { char: a } }, { str: ab } ] }
`, "ab", 4},
	{"optional fallback", `
rules:
  S: { seq: [ { opt: { str: ax } }, { str: ab } ] }
`, "abx", 5},
	{"lookahead over repetition", `
rules:
  S: { seq: [ { not: { str: ab } }, { many: { range: ab } } ] }
`, "ab", 4},
	{"choice in repetition", `
rules:
  S: { some: { alt: [ { str: ab }, { char: a } ] } }
`, "ab", 4},
	{"nested recursion", `
rules:
  S: { alt: [ { seq: [ { char: a }, { ref: S }, { char: b } ] }, { str: ab } ] }
`, "ab", 6},
	{"trailing lookahead", `
rules:
  S: { seq: [ { char: x }, { not: { char: y } } ] }
`, "xyz", 3},
}

func TestEnginesAgreeWithReference(t *testing.T) {
	for _, c := range soundnessCorpus {
		c := c
		t.Run(c.name, func(t *testing.T) {
			r, e := langdef.ParseString("start: S\n" + c.grammar)
			require.NoError(t, e)
			g := r.Grammar

			ra := derivs.New(g)
			rb := dlf.New(g)

			for _, input := range enumerate(c.alphabet, c.maxLen) {
				expected := refMatch(g, "S", input)

				gotA, e := ra.Match("S", strings.NewReader(input))
				require.NoError(t, e)
				if gotA != expected {
					t.Errorf("derivs: input %q: expecting %v, got %v", input, expected, gotA)
				}

				gotB, e := rb.Match("S", strings.NewReader(input))
				require.NoError(t, e)
				if gotB != expected {
					t.Errorf("dlf: input %q: expecting %v, got %v", input, expected, gotB)
				}
			}
		})
	}
}
