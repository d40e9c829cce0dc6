// Package langdef loads grammar descriptions from YAML documents.
//
// A description names a start rule and maps rule names to matchers:
//
//	start: S
//	rules:
//	  S: { seq: [ { str: ab }, { ref: T } ] }
//	  T: { alt: [ { char: x }, { empty: true } ] }
//
// A matcher is a single-key mapping (char, str, range, ref, any, empty,
// opt, many, some, seq, alt, look, not, capt, named, fail, action), a
// plain scalar as shorthand for str, or a sequence as shorthand for seq.
// Rule order is preserved. NUL bytes are rejected: byte 0 is the engines'
// end-of-input sentinel.
package langdef

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ava12/dpeg/ast"
	"github.com/ava12/dpeg/grammar"
)

// Result is a loaded grammar description.
type Result struct {
	Grammar *grammar.Grammar
	// Start is the start rule name; the first rule if the description
	// names none.
	Start string
}

// ParseString parses a grammar description and returns the grammar and
// start rule on success. Returns nil and dpeg.Error on error.
func ParseString(content string) (*Result, error) {
	return ParseBytes([]byte(content))
}

// ParseFile reads and parses a grammar description file.
func ParseFile(name string) (*Result, error) {
	content, e := os.ReadFile(name)
	if e != nil {
		return nil, e
	}
	return ParseBytes(content)
}

// ParseBytes parses a grammar description and returns the grammar and
// start rule on success. Returns nil and dpeg.Error on error.
func ParseBytes(content []byte) (*Result, error) {
	var doc yaml.Node
	if e := yaml.Unmarshal(content, &doc); e != nil {
		return nil, yamlError(e)
	}
	if len(doc.Content) == 0 {
		return nil, emptyError()
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, structError(root, "mapping expected at top level")
	}

	start := ""
	var rulesNode *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "start":
			start = value.Value
		case "rules":
			rulesNode = value
		default:
			return nil, structError(key, "unknown section %q", key.Value)
		}
	}
	if rulesNode == nil {
		return nil, structError(root, "missing rules section")
	}
	if rulesNode.Kind != yaml.MappingNode {
		return nil, structError(rulesNode, "rules must be a mapping")
	}

	rules := make([]*grammar.Rule, 0, len(rulesNode.Content)/2)
	for i := 0; i+1 < len(rulesNode.Content); i += 2 {
		name := rulesNode.Content[i].Value
		body, e := parseMatcher(rulesNode.Content[i+1])
		if e != nil {
			return nil, e
		}
		rules = append(rules, &grammar.Rule{Name: name, Body: body})
	}
	if len(rules) == 0 {
		return nil, structError(rulesNode, "rules section is empty")
	}
	if start == "" {
		start = rules[0].Name
	}

	g, e := grammar.New(rules)
	if e != nil {
		return nil, e
	}
	if g.Rule(start) == nil {
		return nil, unknownStartError(start)
	}
	for _, name := range g.Unused(start) {
		return nil, unusedRuleError(name)
	}
	return &Result{g, start}, nil
}

func parseMatcher(n *yaml.Node) (ast.Matcher, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		// scalar shorthand for a literal string
		return strMatcher(n, n.Value)
	case yaml.SequenceNode:
		// sequence shorthand for seq
		return parseList(n, func(ms []ast.Matcher) ast.Matcher { return ast.Seq(ms...) })
	case yaml.MappingNode:
		// handled below
	default:
		return nil, structError(n, "matcher expected")
	}

	if len(n.Content) != 2 {
		return nil, structError(n, "matcher must have exactly one key")
	}
	key, value := n.Content[0], n.Content[1]

	switch key.Value {
	case "char":
		if len(value.Value) != 1 {
			return nil, structError(value, "char needs exactly one byte")
		}
		c := value.Value[0]
		if c == 0 {
			return nil, nulError(value)
		}
		return ast.Ch(c), nil
	case "str":
		return strMatcher(value, value.Value)
	case "range":
		return parseRange(value)
	case "ref":
		if value.Value == "" {
			return nil, structError(value, "ref needs a rule name")
		}
		return ast.Ref(value.Value), nil
	case "any":
		return ast.Any(), nil
	case "empty":
		return ast.Empty(), nil
	case "opt":
		return parseInner(value, func(m ast.Matcher) ast.Matcher { return ast.Opt(m) })
	case "many":
		return parseInner(value, func(m ast.Matcher) ast.Matcher { return ast.Many(m) })
	case "some":
		return parseInner(value, func(m ast.Matcher) ast.Matcher { return ast.Some(m) })
	case "look":
		return parseInner(value, func(m ast.Matcher) ast.Matcher { return ast.Look(m) })
	case "not":
		return parseInner(value, func(m ast.Matcher) ast.Matcher { return ast.Not(m) })
	case "capt":
		return parseInner(value, func(m ast.Matcher) ast.Matcher { return ast.Capt(m) })
	case "seq":
		return parseList(value, func(ms []ast.Matcher) ast.Matcher { return ast.Seq(ms...) })
	case "alt":
		return parseList(value, func(ms []ast.Matcher) ast.Matcher { return ast.Alt(ms...) })
	case "named":
		return parseNamed(value)
	case "fail":
		return ast.Fail(value.Value), nil
	case "action":
		return ast.Action(value.Value), nil
	}
	return nil, structError(key, "unknown matcher %q", key.Value)
}

func strMatcher(n *yaml.Node, s string) (ast.Matcher, error) {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return nil, nulError(n)
		}
	}
	if s == "" {
		return ast.Empty(), nil
	}
	return ast.Str(s), nil
}

// parseRange accepts a two-byte scalar ("az") or a sequence of them.
func parseRange(n *yaml.Node) (ast.Matcher, error) {
	pair := func(p *yaml.Node) (ast.CharRange, error) {
		if p.Kind != yaml.ScalarNode || len(p.Value) != 2 {
			return ast.CharRange{}, structError(p, "range bound needs two bytes")
		}
		lo, hi := p.Value[0], p.Value[1]
		if lo == 0 || hi == 0 {
			return ast.CharRange{}, nulError(p)
		}
		if lo > hi {
			return ast.CharRange{}, structError(p, "empty range %q", p.Value)
		}
		return ast.CharRange{Lo: lo, Hi: hi}, nil
	}

	if n.Kind == yaml.ScalarNode {
		r, e := pair(n)
		if e != nil {
			return nil, e
		}
		return ast.Ranges(r), nil
	}
	if n.Kind != yaml.SequenceNode || len(n.Content) == 0 {
		return nil, structError(n, "range needs at least one bound pair")
	}
	rs := make([]ast.CharRange, len(n.Content))
	for i, p := range n.Content {
		r, e := pair(p)
		if e != nil {
			return nil, e
		}
		rs[i] = r
	}
	return ast.Ranges(rs...), nil
}

func parseInner(n *yaml.Node, wrap func(ast.Matcher) ast.Matcher) (ast.Matcher, error) {
	m, e := parseMatcher(n)
	if e != nil {
		return nil, e
	}
	return wrap(m), nil
}

func parseList(n *yaml.Node, wrap func([]ast.Matcher) ast.Matcher) (ast.Matcher, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, structError(n, "matcher list expected")
	}
	ms := make([]ast.Matcher, len(n.Content))
	for i, item := range n.Content {
		m, e := parseMatcher(item)
		if e != nil {
			return nil, e
		}
		ms[i] = m
	}
	return wrap(ms), nil
}

// parseNamed accepts { named: { msg: ..., of: matcher } }.
func parseNamed(n *yaml.Node) (ast.Matcher, error) {
	if n.Kind != yaml.MappingNode {
		return nil, structError(n, "named needs a mapping with msg and of")
	}
	msg := ""
	var inner ast.Matcher
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "msg":
			msg = value.Value
		case "of":
			m, e := parseMatcher(value)
			if e != nil {
				return nil, e
			}
			inner = m
		default:
			return nil, structError(key, "unknown named field %q", key.Value)
		}
	}
	if inner == nil {
		return nil, structError(n, "named needs an of matcher")
	}
	return ast.Named(inner, msg), nil
}
