package grammar

import (
	"github.com/ava12/dpeg"
)

const (
	NoRulesError = dpeg.GrammarErrors + iota
	IncompleteRuleError
	DuplicateRuleError
	UndefinedRuleError
)

func noRulesError() *dpeg.Error {
	return dpeg.FormatError(NoRulesError, "grammar has no rules")
}

func incompleteRuleError(name string) *dpeg.Error {
	if name == "" {
		return dpeg.FormatError(IncompleteRuleError, "rule with empty name")
	}
	return dpeg.FormatError(IncompleteRuleError, "rule %q has no body", name)
}

func duplicateRuleError(name string) *dpeg.Error {
	return dpeg.FormatError(DuplicateRuleError, "rule %q already defined", name)
}

func undefinedRuleError(name string) *dpeg.Error {
	return dpeg.FormatError(UndefinedRuleError, "undefined rule %q", name)
}
