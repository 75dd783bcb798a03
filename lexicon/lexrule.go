package lexicon

import (
	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
	"github.com/timarkh/uniparser-grammar-udm/regextest"
)

// LexRule enriches an already-assembled analysis with extra (field,
// value) data whenever the analysis's stem or lemma matches and every one
// of its search tests passes; it never changes wf/gramm/gloss, only
// appends to the analysis's other-data.
type LexRule struct {
	Stem         string
	Lemma        string
	SearchFields []*regextest.Test
	AddFields    [][2]string
}

// NewLexRule builds a LexRule from its descriptor node.
func NewLexRule(n *descr.Node, sink errs.Sink) *LexRule {
	r := &LexRule{}
	for _, c := range n.Children {
		switch c.Name {
		case "stem":
			r.Stem = c.Value
		case "lemma":
			r.Lemma = c.Value
		case "search":
			for _, s := range c.Children {
				r.SearchFields = append(r.SearchFields, regextest.FromNode(s, sink))
			}
		case "add":
			for _, a := range c.Children {
				r.AddFields = append(r.AddFields, [2]string{a.Name, a.Value})
			}
		default:
			errs.Raise(sink, "unrecognized field in a lexical rule", c)
		}
	}
	return r
}

// Recompile rebuilds every search field's unexported compiled regex,
// needed after a gob round-trip (see internal/snapshot).
func (r *LexRule) Recompile(sink errs.Sink) {
	for _, t := range r.SearchFields {
		t.Recompile(sink)
	}
}

// Apply checks whether the rule's gate (stem/lemma equality, then every
// search test) is satisfied by fields, and if so returns the extra
// (field, value) pairs to append to the analysis's other-data.
func (r *LexRule) Apply(fields map[string]string) ([][2]string, bool) {
	if r.Stem != "" && fields["stem"] != r.Stem {
		return nil, false
	}
	if r.Lemma != "" && fields["lemma"] != r.Lemma {
		return nil, false
	}
	for _, t := range r.SearchFields {
		val, ok := fields[t.Field]
		if !ok || !t.Perform(val) {
			return nil, false
		}
	}
	return r.AddFields, true
}
