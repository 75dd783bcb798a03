// Package stemconv implements stem-variant conversion: deriving stem
// variant k from an already-known variant j through an ordered regex
// replacement pipeline, without ever overwriting an explicitly provided
// variant.
package stemconv

import (
	"sort"
	"strconv"

	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
	"github.com/timarkh/uniparser-grammar-udm/reduplication"
)

// StemConversion fills in gaps in a stem-variant list: stemConversions maps
// a base stem number to a destination stem number to the ordered
// replacement pipeline that derives it.
type StemConversion struct {
	Name            string
	stemConversions map[int]map[int][]*reduplication.Replacement
}

// New builds a StemConversion from its descriptor node.
func New(n *descr.Node, sink errs.Sink) *StemConversion {
	sc := &StemConversion{
		Name:            n.Value,
		stemConversions: make(map[int]map[int][]*reduplication.Replacement),
	}
	stemBase := -1
	type newStemGroup struct {
		children []*descr.Node
		newStem  int
	}
	var groups []newStemGroup
	for _, c := range n.Children {
		switch c.Name {
		case "stem-base":
			v, err := strconv.Atoi(c.Value)
			if err != nil {
				errs.Raise(sink, "wrong base stem number", n)
				return sc
			}
			stemBase = v
		case "new-stem":
			if c.Children == nil {
				continue
			}
			v, err := strconv.Atoi(c.Value)
			if err != nil {
				errs.Raise(sink, "wrong new stem number", n)
				return sc
			}
			groups = append(groups, newStemGroup{children: c.Children, newStem: v})
		}
	}
	for _, g := range groups {
		sc.addConversion(g.children, stemBase, g.newStem, sink)
	}
	return sc
}

func (sc *StemConversion) addConversion(children []*descr.Node, stemBase, newStem int, sink errs.Sink) {
	for _, c := range children {
		if c.Name != "replace" {
			errs.Raise(sink, "incorrect field in a stem conversion description", c)
			continue
		}
		sc.addOperation(stemBase, newStem, reduplication.NewReplacement(c, sink))
	}
}

func (sc *StemConversion) addOperation(stemBase, newStem int, repl *reduplication.Replacement) {
	dictBase, ok := sc.stemConversions[stemBase]
	if !ok {
		dictBase = make(map[int][]*reduplication.Replacement)
		sc.stemConversions[stemBase] = dictBase
	}
	dictBase[newStem] = append(dictBase[newStem], repl)
}

// Convert fills in the gaps in stems (indexed by stem number, each entry a
// list of stem variants) in place. Explicitly provided variants are never
// overwritten.
func (sc *StemConversion) Convert(stems *[][]string) {
	bases := make([]int, 0, len(sc.stemConversions))
	for b := range sc.stemConversions {
		bases = append(bases, b)
	}
	sort.Ints(bases)
	for _, stemBase := range bases {
		if stemBase < 0 || stemBase >= len(*stems) {
			break
		}
		dests := make([]int, 0, len(sc.stemConversions[stemBase]))
		for d := range sc.stemConversions[stemBase] {
			dests = append(dests, d)
		}
		sort.Ints(dests)
		for _, newStem := range dests {
			for len(*stems) <= newStem {
				*stems = append(*stems, nil)
			}
			if len((*stems)[newStem]) == 0 {
				(*stems)[newStem] = sc.convertOne((*stems)[stemBase], sc.stemConversions[stemBase][newStem])
			}
		}
	}
}

func (sc *StemConversion) convertOne(baseVars []string, rules []*reduplication.Replacement) []string {
	out := make([]string, len(baseVars))
	for i, stem := range baseVars {
		for _, rule := range rules {
			stem = rule.Convert(stem)
		}
		out[i] = stem
	}
	return out
}
