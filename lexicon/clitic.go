package lexicon

import (
	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
	"github.com/timarkh/uniparser-grammar-udm/regextest"
)

// Side is which end of a host wordform a clitic attaches to.
type Side int

const (
	SideOther Side = iota - 1
	SideProclitic
	SideEnclitic
)

// Clitic is a minimal lexeme-like entry that is peeled off a token before
// its host is parsed: a literal or paradigm-governed stem, a side, and
// regex tests gating which hosts it may combine with.
type Clitic struct {
	Lex        string
	LexRef     string
	Stem       []string
	Paradigm   string
	Gramm      string
	Gloss      string
	Side       Side
	RegexTests []*regextest.Test

	sink errs.Sink
}

// NewClitic builds a Clitic from its descriptor node.
func NewClitic(n *descr.Node, sink errs.Sink) *Clitic {
	c := &Clitic{Side: SideOther, sink: sink}
	for _, ch := range n.Children {
		switch ch.Name {
		case "lex":
			c.Lex = ch.Value
		case "lex-ref":
			c.LexRef = ch.Value
		case "stem":
			c.Stem = append(c.Stem, ch.Value)
		case "paradigm":
			c.Paradigm = ch.Value
		case "gramm":
			c.Gramm = ch.Value
		case "gloss":
			c.Gloss = ch.Value
		case "side":
			switch ch.Value {
			case "proclitic":
				c.Side = SideProclitic
			case "enclitic":
				c.Side = SideEnclitic
			default:
				errs.Raise(sink, "unrecognized clitic side: "+ch.Value, ch)
			}
		default:
			if len(ch.Name) > 6 && ch.Name[:6] == "regex-" {
				c.RegexTests = append(c.RegexTests, regextest.FromNode(ch, sink))
			}
		}
	}
	if c.Lex == "" {
		errs.Raise(sink, "a clitic without a lex field", n)
	}
	return c
}

// Recompile rebuilds every regex test's unexported compiled regex, needed
// after a gob round-trip (see internal/snapshot).
func (c *Clitic) Recompile(sink errs.Sink) {
	for _, t := range c.RegexTests {
		t.Recompile(sink)
	}
}

// IsCompatibleStr runs only the cheap "wf"-field tests against a literal
// candidate clitic string, used as a pre-filter before the more expensive
// full compatibility check is attempted against a real parse.
func (c *Clitic) IsCompatibleStr(wf string) bool {
	for _, t := range c.RegexTests {
		if t.Field == "wf" && !t.Perform(wf) {
			return false
		}
	}
	return true
}

// IsCompatible runs every regex test against the resolved fields of a
// candidate analysis.
func (c *Clitic) IsCompatible(fields map[string]string) bool {
	for _, t := range c.RegexTests {
		val, ok := fields[t.Field]
		if !ok {
			continue
		}
		if !t.Perform(val) {
			return false
		}
	}
	return true
}
