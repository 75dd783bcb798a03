// Package reduplication implements ordered regex-replacement pipelines used
// both to materialize a reduplication part from a stem and to convert one stem
// variant into another (see the stemconv package, which reuses Replacement).
package reduplication

import (
	"regexp"
	"strings"

	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
)

// Side records whether a reduplication is a right or a left one.
type Side bool

const (
	SideRight Side = true
	SideLeft  Side = false
)

// Replacement is a single "what -> with" regex substitution, either written
// as a short "what -> with" string or as a structured what/with pair.
type Replacement struct {
	What string
	With string
	re   *regexp.Regexp
}

// NewReplacement builds a Replacement from its descriptor node: either the
// node's Value holds the short "what -> with" form, or its Children hold
// separate "what"/"with" entries.
func NewReplacement(n *descr.Node, sink errs.Sink) *Replacement {
	r := &Replacement{}
	if len(n.Value) > 0 {
		r.What, r.With = shortRepl(n.Value, sink)
	} else {
		for _, c := range n.Children {
			switch c.Name {
			case "what":
				r.What = c.Value
			case "with":
				r.With = c.Value
			default:
				errs.Raise(sink, "unrecognized field in a replacement description", c)
			}
		}
	}
	r.compile(sink)
	return r
}

func shortRepl(s string, sink errs.Sink) (string, string) {
	re := regexp.MustCompile(`^(.*?) *-> *(.*)$`)
	m := re.FindStringSubmatch(s)
	if m == nil {
		errs.Raise(sink, "wrong replacement description: "+s, nil)
		return "^$", ""
	}
	return m[1], m[2]
}

func (r *Replacement) compile(sink errs.Sink) {
	re, err := regexp.Compile(r.What)
	if err != nil {
		errs.Raise(sink, "wrong regex in a replacement description: "+r.What, nil)
		return
	}
	r.re = re
}

// Convert applies the replacement to s, mirroring Python's
// re.sub(rxWhat, sWith, s). Go regexp uses $1-style group references where
// Python uses \1, so Src authors targeting this engine must use $-syntax.
func (r *Replacement) Convert(s string) string {
	if r.re == nil {
		return s
	}
	return r.re.ReplaceAllString(s, r.With)
}

// Recompile rebuilds the unexported compiled regex from What, needed
// after a gob round-trip (see internal/snapshot).
func (r *Replacement) Recompile(sink errs.Sink) {
	r.compile(sink)
}

// Clone returns an independent copy.
func (r *Replacement) Clone() *Replacement {
	clone := *r
	return &clone
}

// Reduplication is an ordered list of Replacements used to materialize a
// [~n] flex part. Perform runs the pipeline over the whole string it is
// given (morph.ForkRedupl passes the whole stem); Side does not select a
// segment of the stem, it only decides whether the part is typed as a
// right or a left reduplication (morph.GlossReduplR / GlossReduplL).
type Reduplication struct {
	Side         Side
	Replacements []*Replacement
}

// New builds a Reduplication from its descriptor node's children.
func New(children []*descr.Node, sink errs.Sink) *Reduplication {
	r := &Reduplication{Side: SideRight}
	for _, c := range children {
		switch c.Name {
		case "side":
			switch c.Value {
			case "right":
				r.Side = SideRight
			case "left":
				r.Side = SideLeft
			default:
				errs.Raise(sink, "unrecognized value in a reduplication description", c)
			}
		case "replace":
			r.Replacements = append(r.Replacements, NewReplacement(c, sink))
		default:
			errs.Raise(sink, "unrecognized field in a reduplication description", c)
		}
	}
	return r
}

// Perform runs every replacement of the pipeline over s in order.
func (r *Reduplication) Perform(s string) string {
	for _, repl := range r.Replacements {
		s = repl.Convert(s)
	}
	return s
}

// Recompile rebuilds every replacement's unexported compiled regex after
// a gob round-trip (see internal/snapshot).
func (r *Reduplication) Recompile(sink errs.Sink) {
	for _, repl := range r.Replacements {
		repl.Recompile(sink)
	}
}

// Clone returns an independent deep copy.
func (r *Reduplication) Clone() *Reduplication {
	clone := &Reduplication{Side: r.Side}
	clone.Replacements = make([]*Replacement, len(r.Replacements))
	for i, repl := range r.Replacements {
		clone.Replacements[i] = repl.Clone()
	}
	return clone
}

// StripReduplMarkers removes every [~n] marker from s, used when extracting
// the segment of a stem that is about to be reduplicated.
func StripReduplMarkers(s string) string {
	re := regexp.MustCompile(`\[~[^\[\]]*\]`)
	return re.ReplaceAllString(s, "")
}

// HasReduplMarker reports whether s is a [~...] placeholder.
func HasReduplMarker(s string) bool {
	return strings.HasPrefix(s, "[~") && strings.HasSuffix(s, "]")
}
