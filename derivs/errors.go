package derivs

import (
	"github.com/ava12/dpeg"
)

const (
	ReadError = dpeg.MatchErrors + iota
)

func readError(e error) *dpeg.Error {
	return dpeg.FormatError(ReadError, "cannot read input: %s", e.Error())
}
