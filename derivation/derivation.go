// Package derivation expands inter-paradigm derivational links into the
// leaf paradigms they produce, guarding against runaway recursion through
// recurs classes and a hard link-count limit.
package derivation

import (
	"github.com/timarkh/uniparser-grammar-udm/internal/config"
	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
	"github.com/timarkh/uniparser-grammar-udm/morph"
)

// Link is one step of a derivation: attach fromParadigm's own derivational
// inflexions (the actual affix the derivation contributes, e.g. a
// causative suffix) on top of fromParadigm, optionally continuing on to
// toParadigm's regular inflexions, and optionally restricted to a named
// recurs class so that e.g. a causative-of-causative chain can be capped
// independently of an unrelated passive-of-causative chain.
type Link struct {
	FromParadigm string
	ToParadigm   string
	RecursClass  string
	RestrictedTo map[string]bool // if non-nil, only these recurs classes may follow this link

	// Inflexions holds this link's own derivational affix(es), parsed
	// from the link descriptor's "inflexion" children the same way a
	// paradigm's own inflexions are parsed: a Derivation is a paradigm-
	// shaped object whose inflexions behave as derivational suffixes.
	// Every one is forced to StartWithSelf, since a derivational affix
	// is always a fresh entry point: joining it onto an already-
	// inflected form must discard that form's own suffix rather than
	// stack after it (see morph.joinInflexionParts).
	Inflexions []*morph.Inflexion
}

// Derivation is one named derivational model: an ordered list of links
// plus, per originating paradigm, the leaf paradigm names its chain of
// links ultimately produces once fully expanded.
type Derivation struct {
	Name  string
	Links []*Link
	// Leaves maps an originating paradigm name (a FromParadigm among
	// Links) to every paradigm name reachable from it, as computed by
	// the most recent BuildLinks(that name, ...) call.
	Leaves map[string][]string
}

// New builds a Derivation from its descriptor node.
func New(n *descr.Node, sink errs.Sink) *Derivation {
	d := &Derivation{Name: n.Value}
	for _, c := range n.Children {
		if c.Name != "link" {
			errs.Raise(sink, "unrecognized field in a derivation description", c)
			continue
		}
		d.Links = append(d.Links, newLink(c, sink))
	}
	return d
}

func newLink(n *descr.Node, sink errs.Sink) *Link {
	l := &Link{}
	for _, c := range n.Children {
		switch c.Name {
		case "from":
			l.FromParadigm = c.Value
		case "to":
			l.ToParadigm = c.Value
		case "recurs-class":
			l.RecursClass = c.Value
		case "restrict-to":
			l.RestrictedTo = make(map[string]bool)
			for _, r := range c.Children {
				l.RestrictedTo[r.Value] = true
			}
		case "inflexion":
			infl := morph.NewInflexion(c, sink)
			infl.StartWithSelf = true
			l.Inflexions = append(l.Inflexions, infl)
		default:
			errs.Raise(sink, "unrecognized field in a derivation link", c)
		}
	}
	return l
}

// recursState tracks, along one chain of derivational links, how many
// times each recurs class has been used, so recurs-class-bounded chains
// (e.g. causative -> causative -> causative) stop at knobs.RecursLimit
// regardless of how many distinct link names realize that class.
type recursState map[string]int

func (s recursState) allows(class string, limit int) bool {
	if class == "" {
		return true
	}
	return s[class] < limit
}

func (s recursState) use(class string) recursState {
	out := make(recursState, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	if class != "" {
		out[class]++
	}
	return out
}

// DerivForParadigm lists every derivation whose chain of links starting
// paradigm may enter, i.e. every derivation with a link whose FromParadigm
// equals paradigm.
func DerivForParadigm(derivs []*Derivation, paradigm string) []*Derivation {
	var out []*Derivation
	for _, d := range derivs {
		for _, l := range d.Links {
			if l.FromParadigm == paradigm {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// BuildLinks walks d's links starting from startParadigm, expanding every
// admissible chain breadth-first and recording the paradigm name reached
// at the end of each chain as a leaf of that origin, subject to
// knobs.RecursLimit per recurs class, knobs.DerivLimit on total chain
// length, and knobs.TotalDerivLimit on the number of chains explored.
func (d *Derivation) BuildLinks(startParadigm string, knobs config.Knobs) {
	if d.Leaves == nil {
		d.Leaves = make(map[string][]string)
	}
	d.Leaves[startParadigm] = nil
	type frontier struct {
		paradigm string
		depth    int
		recurs   recursState
		restrict map[string]bool
	}
	queue := []frontier{{paradigm: startParadigm, depth: 0, recurs: recursState{}}}
	totalExplored := 0
	seen := map[string]bool{}
	for len(queue) > 0 && totalExplored < knobs.TotalDerivLimit {
		cur := queue[0]
		queue = queue[1:]
		totalExplored++

		extended := false
		for _, l := range d.Links {
			if l.FromParadigm != cur.paradigm {
				continue
			}
			if cur.depth >= knobs.DerivLimit {
				continue
			}
			if !cur.recurs.allows(l.RecursClass, knobs.RecursLimit) {
				continue
			}
			if cur.restrict != nil && !cur.restrict[l.RecursClass] {
				continue
			}
			extended = true
			queue = append(queue, frontier{
				paradigm: l.ToParadigm,
				depth:    cur.depth + 1,
				recurs:   cur.recurs.use(l.RecursClass),
				restrict: l.RestrictedTo,
			})
		}
		if !extended && !seen[cur.paradigm] {
			seen[cur.paradigm] = true
			d.Leaves[startParadigm] = append(d.Leaves[startParadigm], cur.paradigm)
		}
	}
}

// ExtendLeaves appends paradigm to origin's leaf list if it is not already
// present, used when a derivation's chain is resumed from a point already
// reached by another chain (e.g. two link paths converging on the same
// paradigm).
func (d *Derivation) ExtendLeaves(origin, paradigm string) {
	for _, l := range d.Leaves[origin] {
		if l == paradigm {
			return
		}
	}
	if d.Leaves == nil {
		d.Leaves = make(map[string][]string)
	}
	d.Leaves[origin] = append(d.Leaves[origin], paradigm)
}
