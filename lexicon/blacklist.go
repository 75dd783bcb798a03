package lexicon

import (
	"regexp"

	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
)

// BadAnalyses is a blacklist of field -> anchored regex: an analysis is
// suppressed when every one of its entries matches the corresponding
// field (a partial match against only some fields never suppresses
// anything; it takes a full blacklist entry, all-matching, to reject).
//
// Sources is kept alongside the compiled rules (rather than discarded
// after compilation) so a gob round-trip through internal/snapshot, which
// never touches unexported fields, can recompile Rules from Sources
// instead of silently losing the blacklist; see Recompile.
type BadAnalyses struct {
	Sources []map[string]string
	rules   []map[string]*regexp.Regexp
}

// LoadBadAnalyses builds a BadAnalyses blacklist from a descriptor tree
// of "bad-analysis" nodes, each holding one or more field regexes that
// must all match for that entry to suppress an analysis. Every pattern is
// anchored at both ends: the loader wraps each value in "^...$".
func LoadBadAnalyses(n *descr.Node, sink errs.Sink) *BadAnalyses {
	bl := &BadAnalyses{}
	for _, entry := range n.Children {
		if entry.Name != "bad-analysis" {
			errs.Raise(sink, "unrecognized field in the bad analyses list", entry)
			continue
		}
		rule := make(map[string]*regexp.Regexp)
		src := make(map[string]string)
		for _, f := range entry.Children {
			re, err := regexp.Compile("^" + f.Value + "$")
			if err != nil {
				errs.Raise(sink, "wrong regex in a bad analysis entry: "+f.Value, f)
				continue
			}
			rule[f.Name] = re
			src[f.Name] = f.Value
		}
		if len(rule) > 0 {
			bl.rules = append(bl.rules, rule)
			bl.Sources = append(bl.Sources, src)
		}
	}
	return bl
}

// Recompile rebuilds every rule's compiled regexes from Sources, needed
// after a gob round-trip (see internal/snapshot).
func (bl *BadAnalyses) Recompile(sink errs.Sink) {
	bl.rules = make([]map[string]*regexp.Regexp, len(bl.Sources))
	for i, src := range bl.Sources {
		rule := make(map[string]*regexp.Regexp, len(src))
		for field, pattern := range src {
			re, err := regexp.Compile("^" + pattern + "$")
			if err != nil {
				errs.Raise(sink, "wrong regex in a bad analysis entry: "+pattern, nil)
				continue
			}
			rule[field] = re
		}
		bl.rules[i] = rule
	}
}

// IsBad reports whether fields matches any blacklist entry in full.
func (bl *BadAnalyses) IsBad(fields map[string]string) bool {
	for _, rule := range bl.rules {
		allMatch := true
		for field, re := range rule {
			val, ok := fields[field]
			if !ok || !re.MatchString(val) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return true
		}
	}
	return false
}
