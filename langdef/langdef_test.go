package langdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava12/dpeg"
	"github.com/ava12/dpeg/grammar"
)

func parse(t *testing.T, content string) *Result {
	t.Helper()
	r, e := ParseString(content)
	require.NoError(t, e)
	return r
}

func errCode(t *testing.T, expected int, content string) {
	t.Helper()
	_, e := ParseString(content)
	require.Error(t, e, "description:\n%s", content)
	de, valid := e.(*dpeg.Error)
	require.True(t, valid, "expecting dpeg.Error, got %v", e)
	assert.Equal(t, expected, de.Code, "got: %s", de.Message)
}

func TestBasic(t *testing.T) {
	r := parse(t, `
start: S
rules:
  S: { seq: [ { str: ab }, { ref: T } ] }
  T: { alt: [ { char: x }, { empty: true } ] }
`)
	assert.Equal(t, "S", r.Start)
	require.NotNil(t, r.Grammar.Rule("S"))
	assert.Equal(t, `"ab" T`, r.Grammar.Rule("S").Body.String())
	assert.Equal(t, `'x' / ""`, r.Grammar.Rule("T").Body.String())
}

func TestDefaultStart(t *testing.T) {
	r := parse(t, `
rules:
  S: { char: a }
`)
	assert.Equal(t, "S", r.Start)
}

func TestShorthands(t *testing.T) {
	r := parse(t, `
rules:
  S: [ ab, { ref: T } ]
  T: { many: { range: az } }
`)
	assert.Equal(t, `"ab" T`, r.Grammar.Rule("S").Body.String())
	assert.Equal(t, "[a-z]*", r.Grammar.Rule("T").Body.String())
}

func TestAllMatchers(t *testing.T) {
	r := parse(t, `
rules:
  S:
    seq:
      - { char: a }
      - { str: abc }
      - { range: [ az, "09" ] }
      - { any: true }
      - { empty: true }
      - { opt: { char: b } }
      - { many: { char: c } }
      - { some: { char: d } }
      - { alt: [ { char: e }, { char: f } ] }
      - { look: { char: g } }
      - { not: { char: h } }
      - { capt: { char: i } }
      - { named: { msg: oops, of: { char: j } } }
      - { fail: nope }
      - { action: nothing }
`)
	expected := `'a' "abc" [a-z0-9] . "" 'b'? 'c'* 'd'+ ('e' / 'f') &'g' !'h' <'i'> 'j' @ oops ` + "`fail` {}"
	assert.Equal(t, expected, r.Grammar.Rule("S").Body.String())
}

func TestRuleOrderPreserved(t *testing.T) {
	r := parse(t, `
start: A
rules:
  A: { ref: C }
  C: { ref: B }
  B: { char: x }
`)
	assert.Equal(t, []string{"A", "C", "B"}, r.Grammar.Names())
}

func TestErrors(t *testing.T) {
	errCode(t, YamlError, "start: [")
	errCode(t, EmptyError, "")
	errCode(t, StructError, "- a\n- b")
	errCode(t, StructError, "start: S")
	errCode(t, StructError, "rules: {}")
	errCode(t, StructError, "rules:\n  S: { bogus: x }")
	errCode(t, StructError, "rules:\n  S: { char: ab }")
	errCode(t, StructError, "rules:\n  S: { char: a, str: b }")
	errCode(t, StructError, "rules:\n  S: { range: abc }")
	errCode(t, StructError, "rules:\n  S: { range: ba }")
	errCode(t, StructError, "rules:\n  S: { ref: \"\" }")
	errCode(t, StructError, "rules:\n  S: { named: { msg: x } }")
	errCode(t, NulByteError, "rules:\n  S: { str: \"a\\0b\" }")
	errCode(t, UnknownStartError, "start: T\nrules:\n  S: { char: a }")
	errCode(t, UnusedRuleError, "start: S\nrules:\n  S: { char: a }\n  T: { char: b }")
	errCode(t, grammar.UndefinedRuleError, "rules:\n  S: { ref: T }")
}

func TestSyntheticRulesNotUnused(t *testing.T) {
	// the left recursion rewrite adds a tail rule; it must not trip the
	// unused-rule check
	r := parse(t, `
rules:
  S: { alt: [ { seq: [ { ref: S }, { char: a } ] }, { char: a } ] }
`)
	require.NotNil(t, r.Grammar.Rule("S#tail"))
}
