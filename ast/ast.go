// Package ast defines the matcher tree describing PEG rule bodies.
// Both recognition engines consume this tree; neither captures, named error
// messages, nor semantic actions are realized, the corresponding matchers
// are lowered to plain matching by the engine loaders.
package ast

import (
	"fmt"
	"strings"
)

// Matcher is a node of a rule body.
type Matcher interface {
	// String returns a PEG-like rendition of the matcher.
	String() string
}

// CharRange is an inclusive byte range.
type CharRange struct {
	Lo, Hi byte
}

// CharMatcher matches one specific byte.
type CharMatcher struct {
	C byte
}

// StrMatcher matches a literal string.
type StrMatcher struct {
	S string
}

// RangeMatcher matches one byte belonging to any of the ranges.
type RangeMatcher struct {
	Rs []CharRange
}

// RefMatcher matches a named rule.
type RefMatcher struct {
	Name string
}

// AnyMatcher matches any single byte.
type AnyMatcher struct{}

// EmptyMatcher matches the empty string.
type EmptyMatcher struct{}

// OptMatcher matches its subexpression or the empty string, greedily.
type OptMatcher struct {
	M Matcher
}

// ManyMatcher matches zero or more repetitions, greedily.
type ManyMatcher struct {
	M Matcher
}

// SomeMatcher matches one or more repetitions, greedily.
type SomeMatcher struct {
	M Matcher
}

// SeqMatcher matches its subexpressions one after another.
type SeqMatcher struct {
	Ms []Matcher
}

// AltMatcher matches the first of its subexpressions that succeeds.
type AltMatcher struct {
	Ms []Matcher
}

// LookMatcher is a positive lookahead: succeeds without consuming input
// when its subexpression matches.
type LookMatcher struct {
	M Matcher
}

// NotMatcher is a negative lookahead: succeeds without consuming input
// when its subexpression does not match.
type NotMatcher struct {
	M Matcher
}

// CaptMatcher marks a capture. Captures are not realized; engines lower
// this to the inner matcher.
type CaptMatcher struct {
	M Matcher
}

// NamedMatcher attaches an error message to a matcher. Messages are not
// realized; engines lower this to the inner matcher.
type NamedMatcher struct {
	M   Matcher
	Msg string
}

// FailMatcher always fails. The message is not realized.
type FailMatcher struct {
	Msg string
}

// ActionMatcher marks a semantic action. Actions are not realized; engines
// lower this to an empty match.
type ActionMatcher struct {
	Code string
}

// Ch creates a single-byte matcher.
func Ch(c byte) *CharMatcher { return &CharMatcher{c} }

// Str creates a literal string matcher.
func Str(s string) *StrMatcher { return &StrMatcher{s} }

// Rng creates a single-range matcher.
func Rng(lo, hi byte) *RangeMatcher {
	return &RangeMatcher{[]CharRange{{lo, hi}}}
}

// Ranges creates a multi-range matcher.
func Ranges(rs ...CharRange) *RangeMatcher { return &RangeMatcher{rs} }

// Ref creates a rule reference.
func Ref(name string) *RefMatcher { return &RefMatcher{name} }

// Any creates an any-byte matcher.
func Any() *AnyMatcher { return &AnyMatcher{} }

// Empty creates an empty-string matcher.
func Empty() *EmptyMatcher { return &EmptyMatcher{} }

// Opt creates an optional matcher.
func Opt(m Matcher) *OptMatcher { return &OptMatcher{m} }

// Many creates a zero-or-more repetition.
func Many(m Matcher) *ManyMatcher { return &ManyMatcher{m} }

// Some creates a one-or-more repetition.
func Some(m Matcher) *SomeMatcher { return &SomeMatcher{m} }

// Seq creates a sequence.
func Seq(ms ...Matcher) *SeqMatcher { return &SeqMatcher{ms} }

// Alt creates an ordered choice.
func Alt(ms ...Matcher) *AltMatcher { return &AltMatcher{ms} }

// Look creates a positive lookahead.
func Look(m Matcher) *LookMatcher { return &LookMatcher{m} }

// Not creates a negative lookahead.
func Not(m Matcher) *NotMatcher { return &NotMatcher{m} }

// Capt creates a capture marker.
func Capt(m Matcher) *CaptMatcher { return &CaptMatcher{m} }

// Named attaches an error message to a matcher.
func Named(m Matcher, msg string) *NamedMatcher { return &NamedMatcher{m, msg} }

// Fail creates an always-failing matcher.
func Fail(msg string) *FailMatcher { return &FailMatcher{msg} }

// Action creates a semantic action marker.
func Action(code string) *ActionMatcher { return &ActionMatcher{code} }

func escape(c byte) string {
	switch c {
	case '\n':
		return "\\n"
	case '\r':
		return "\\r"
	case '\t':
		return "\\t"
	case '\\':
		return "\\\\"
	}
	if c < 32 || c > 126 {
		return fmt.Sprintf("\\x%02x", c)
	}
	return string(c)
}

func group(m Matcher) string {
	switch m.(type) {
	case *SeqMatcher, *AltMatcher:
		return "(" + m.String() + ")"
	}
	return m.String()
}

func (m *CharMatcher) String() string { return "'" + escape(m.C) + "'" }

func (m *StrMatcher) String() string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(m.S); i++ {
		b.WriteString(escape(m.S[i]))
	}
	b.WriteByte('"')
	return b.String()
}

func (m *RangeMatcher) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for _, r := range m.Rs {
		b.WriteString(escape(r.Lo))
		if r.Hi != r.Lo {
			b.WriteByte('-')
			b.WriteString(escape(r.Hi))
		}
	}
	b.WriteByte(']')
	return b.String()
}

func (m *RefMatcher) String() string { return m.Name }

func (m *AnyMatcher) String() string { return "." }

func (m *EmptyMatcher) String() string { return "\"\"" }

func (m *OptMatcher) String() string { return group(m.M) + "?" }

func (m *ManyMatcher) String() string { return group(m.M) + "*" }

func (m *SomeMatcher) String() string { return group(m.M) + "+" }

func (m *SeqMatcher) String() string {
	parts := make([]string, len(m.Ms))
	for i, sub := range m.Ms {
		parts[i] = group(sub)
	}
	return strings.Join(parts, " ")
}

func (m *AltMatcher) String() string {
	parts := make([]string, len(m.Ms))
	for i, sub := range m.Ms {
		parts[i] = group(sub)
	}
	return strings.Join(parts, " / ")
}

func (m *LookMatcher) String() string { return "&" + group(m.M) }

func (m *NotMatcher) String() string { return "!" + group(m.M) }

func (m *CaptMatcher) String() string { return "<" + m.M.String() + ">" }

func (m *NamedMatcher) String() string { return m.M.String() + " @ " + strings.TrimSpace(m.Msg) }

func (m *FailMatcher) String() string { return "`fail`" }

func (m *ActionMatcher) String() string { return "{}" }
