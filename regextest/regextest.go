// Package regextest implements the regex-based compatibility tests used
// throughout the grammar to decide whether an inflexion may attach to a
// given stem or to a preceding inflexion, and whether a lexeme or wordform
// matches a given field value.
package regextest

import (
	"regexp"

	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
)

// Test is a compiled regex bound to one named field of an item (stem, wf,
// lemma, gramm, gloss, or a next-*/prev-* variant). The paradigm field is
// never a legal target: regex tests against paradigm names are rejected by
// the caller (see morph.Paradigm.buildRegexTests).
type Test struct {
	Field string
	Src   string
	re    *regexp.Regexp
}

// New compiles a test for field against the regex source sTest. A bad
// regex is reported through sink and degrades to a regex that matches
// nothing, mirroring the Python fallback of an empty pattern (which in Go
// would match everything, so the fallback here is intentionally stricter).
func New(field, sTest string, sink errs.Sink) *Test {
	re, err := regexp.Compile(sTest)
	if err != nil {
		errs.Raise(sink, "wrong regex in the test for field "+field+": "+sTest, nil)
		re = regexp.MustCompile(`$.^`) // matches nothing
	}
	return &Test{Field: field, Src: sTest, re: re}
}

// FromNode builds a Test from a descriptor node whose Name is "regex-<field>".
func FromNode(n *descr.Node, sink errs.Sink) *Test {
	field := n.Name
	if len(field) > 6 && field[:6] == "regex-" {
		field = field[6:]
	}
	return New(field, n.Value, sink)
}

// Recompile rebuilds the unexported compiled regex from Src, needed after
// a gob round-trip (see internal/snapshot), which never touches unexported
// fields.
func (t *Test) Recompile(sink errs.Sink) {
	*t = *New(t.Field, t.Src, sink)
}

// Perform reports whether s matches the compiled regex.
func (t *Test) Perform(s string) bool {
	return t.re.MatchString(s)
}

// Clone returns an independent copy; Test is otherwise safe to share since
// *regexp.Regexp is safe for concurrent use, but a caller that mutates Field
// needs its own copy.
func (t *Test) Clone() *Test {
	clone := *t
	return &clone
}
