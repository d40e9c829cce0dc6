package derivs

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava12/dpeg"
	"github.com/ava12/dpeg/grammar"
	"github.com/ava12/dpeg/langdef"
)

func testGrammar(t *testing.T, content string) *grammar.Grammar {
	t.Helper()
	r, e := langdef.ParseString(content)
	require.NoError(t, e, "grammar description:\n%s", content)
	return r.Grammar
}

func indent(rules string) string {
	lines := strings.Split(rules, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}

type matchSample struct {
	input    string
	expected bool
}

func checkMatches(t *testing.T, name, description string, samples []matchSample) {
	t.Helper()
	g := testGrammar(t, description)
	r := New(g)
	for _, s := range samples {
		got, e := r.Match("S", strings.NewReader(s.input))
		require.NoError(t, e)
		if got != s.expected {
			t.Errorf("%s: input %q: expecting %v, got %v", name, s.input, s.expected, got)
		}
	}
}

func TestLiteral(t *testing.T) {
	checkMatches(t, "literal", `
start: S
rules:
  S: { str: ab }
`, []matchSample{
		{"ab", true},
		{"a", false},
		{"abc", false},
		{"", false},
		{"ba", false},
	})
}

func TestRepetitionWithTerminator(t *testing.T) {
	checkMatches(t, "some", `
start: S
rules:
  S: { seq: [ { some: { range: az } }, { char: "!" } ] }
`, []matchSample{
		{"hi!", true},
		{"a!", true},
		{"!", false},
		{"hi", false},
		{"hi!!", false},
	})
}

func TestOrderedChoiceSharedPrefix(t *testing.T) {
	checkMatches(t, "shared prefix", `
start: S
rules:
  S: { alt: [ { seq: [ { char: a }, { char: b } ] }, { seq: [ { char: a }, { char: c } ] } ] }
`, []matchSample{
		{"ab", true},
		{"ac", true},
		{"ad", false},
		{"a", false},
		{"abc", false},
	})
}

func TestNegativeLookahead(t *testing.T) {
	checkMatches(t, "not", `
start: S
rules:
  S: { seq: [ { not: { char: a } }, { any: true } ] }
`, []matchSample{
		{"b", true},
		{"z", true},
		{"a", false},
		{"", false},
		{"bb", false},
	})
}

func TestLeftRecursion(t *testing.T) {
	checkMatches(t, "left recursion", `
start: S
rules:
  S: { ref: R }
  R: { alt: [ { seq: [ { ref: R }, { char: a } ] }, { char: a } ] }
`, []matchSample{
		{"a", true},
		{"aa", true},
		{"aaa", true},
		{"", false},
		{"b", false},
		{"ab", false},
	})
}

func TestPositiveLookahead(t *testing.T) {
	checkMatches(t, "look", `
start: S
rules:
  S: { seq: [ { look: { str: ab } }, { some: { range: az } } ] }
`, []matchSample{
		{"abc", true},
		{"ab", true},
		{"bc", false},
		{"a", false},
		{"", false},
	})
}

func TestOrderedChoiceCommits(t *testing.T) {
	// the optional consumes "a" greedily; no backtracking into it
	checkMatches(t, "greedy opt", `
start: S
rules:
  S: { seq: [ { opt: { char: a } }, { str: ab } ] }
`, []matchSample{
		{"aab", true},
		{"ab", false},
		{"b", false},
	})
}

func TestNegativeLookaheadMultiByte(t *testing.T) {
	checkMatches(t, "not str", `
start: S
rules:
  S: { seq: [ { not: { str: ab } }, { many: { range: ab } } ] }
`, []matchSample{
		{"", true},
		{"a", true},
		{"b", true},
		{"ba", true},
		{"aa", true},
		{"ab", false},
		{"aba", false},
	})
}

func TestNestedRecursion(t *testing.T) {
	checkMatches(t, "nesting", `
start: S
rules:
  S: { ref: A }
  A: { alt: [ { seq: [ { char: a }, { ref: A }, { char: b } ] }, { str: ab } ] }
`, []matchSample{
		{"ab", true},
		{"aabb", true},
		{"aaabbb", true},
		{"aab", false},
		{"abb", false},
		{"", false},
	})
}

func TestIndirectLeftRecursionIsBounded(t *testing.T) {
	checkMatches(t, "indirect", `
start: S
rules:
  S: { ref: A }
  A: { ref: B }
  B: { seq: [ { ref: A }, { char: x } ] }
`, []matchSample{
		{"", false},
		{"x", false},
		{"xx", false},
	})
}

func TestUnknownStartRule(t *testing.T) {
	g := testGrammar(t, "start: S\nrules:\n  S: { char: a }")
	got, e := New(g).Match("T", strings.NewReader("a"))
	require.NoError(t, e)
	require.False(t, got)
}

func TestNullableStartMatchesImmediately(t *testing.T) {
	checkMatches(t, "nullable", `
start: S
rules:
  S: { many: { char: a } }
`, []matchSample{
		{"", true},
		{"aaa", true},
	})
}

func TestEndOfInputOnly(t *testing.T) {
	checkMatches(t, "lookahead at EOF", `
start: S
rules:
  S: { seq: [ { char: x }, { not: { char: y } } ] }
`, []matchSample{
		{"x", true},
		{"xy", false},
		{"xz", false},
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestReadErrorCode(t *testing.T) {
	g := testGrammar(t, "start: S\nrules:\n  S: { char: a }")
	_, e := New(g).Match("S", failingReader{})
	require.Error(t, e)
	de, valid := e.(*dpeg.Error)
	require.True(t, valid, "expecting dpeg.Error, got %v", e)
	require.Equal(t, ReadError, de.Code)
}
