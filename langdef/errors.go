package langdef

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ava12/dpeg"
)

const (
	YamlError = dpeg.LangDefErrors + iota
	EmptyError
	StructError
	NulByteError
	UnknownStartError
	UnusedRuleError
)

func yamlError(e error) *dpeg.Error {
	return dpeg.FormatError(YamlError, "bad YAML: %s", e.Error())
}

func emptyError() *dpeg.Error {
	return dpeg.FormatError(EmptyError, "empty grammar description")
}

func structError(n *yaml.Node, msg string, params ...any) *dpeg.Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	if n != nil && n.Line != 0 {
		msg = fmt.Sprintf("%s at line %d col %d", msg, n.Line, n.Column)
	}
	return dpeg.NewError(StructError, msg)
}

func nulError(n *yaml.Node) *dpeg.Error {
	e := structError(n, "NUL bytes cannot be matched")
	e.Code = NulByteError
	return e
}

func unknownStartError(name string) *dpeg.Error {
	return dpeg.FormatError(UnknownStartError, "unknown start rule %q", name)
}

func unusedRuleError(name string) *dpeg.Error {
	return dpeg.FormatError(UnusedRuleError, "unused rule %q", name)
}
