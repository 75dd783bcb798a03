package morph

import (
	"strconv"
	"strings"

	"github.com/timarkh/uniparser-grammar-udm/regextest"
)

// RegexContext carries the field values available when deciding whether a
// sublexeme-specific regex test (stem/lemma/gramm/gloss) is satisfied.
type RegexContext struct {
	Stem  string
	Lemma string
	Gramm string
	Gloss string
}

func (c RegexContext) field(name string) (string, bool) {
	switch name {
	case "stem":
		return c.Stem, true
	case "lemma":
		return c.Lemma, true
	case "gramm":
		return c.Gramm, true
	case "gloss":
		return c.Gloss, true
	default:
		return "", false
	}
}

// PerformRegexTests evaluates every test whose field is resolvable from
// ctx, returning false as soon as one fails; tests whose field cannot yet
// be resolved (e.g. depend on a neighboring inflexion not joined yet) are
// returned unevaluated so the caller can carry them forward.
func PerformRegexTests(tests []*regextest.Test, ctx RegexContext) (ok bool, remaining []*regextest.Test) {
	for _, t := range tests {
		val, known := ctx.field(t.Field)
		if !known {
			remaining = append(remaining, t)
			continue
		}
		if !t.Perform(val) {
			return false, nil
		}
	}
	return true, remaining
}

// HasReduplications reports whether any inflexion of p still carries
// unresolved reduplication placeholders.
func (p *Paradigm) HasReduplications() bool {
	for _, infl := range p.Inflexions {
		if len(infl.Reduplications) > 0 {
			return true
		}
	}
	return false
}

// ForkRedupl materializes every "[~n]" reduplication placeholder against a
// concrete stem, since the reduplicated segment depends on the actual
// stem text and so cannot be baked into the shared paradigm. It returns p
// unchanged if the paradigm has no reduplications to resolve, or a clone
// named "<paradigm>~seg1~seg2..." (one segment per distinct reduplication
// encountered, in ascending index order) otherwise — the same sublexeme
// stem always forks to the same paradigm name, so sublexemes that happen
// to share a stem also share the forked paradigm.
func ForkRedupl(p *Paradigm, stem string) *Paradigm {
	if !p.HasReduplications() {
		return p
	}
	forked := p.Clone()
	var segs []string
	for _, infl := range forked.Inflexions {
		if len(infl.Reduplications) == 0 {
			continue
		}
		keys := make(map[int]bool, len(infl.Reduplications))
		for k := range infl.Reduplications {
			keys[k] = true
		}
		nums := sortedInts(keys)
		for _, num := range nums {
			seg := infl.Reduplications[num].Perform(stem)
			segs = append(segs, seg)
			materializeReduplPart(infl, num, seg)
		}
		infl.Reduplications = nil
	}
	forked.Name = p.Name + "~" + strings.Join(segs, "~")
	return forked
}

func materializeReduplPart(infl *Inflexion, num int, seg string) {
	for _, stage := range infl.FlexParts {
		for _, p := range stage {
			if n, ok := reduplNum(p.Flex); ok && n == num {
				p.Flex = seg
			}
		}
	}
}

// ForkRegex resolves every regex test still attached to p's inflexions
// against ctx, dropping inflexions whose tests fail outright and carrying
// forward only the tests that still depend on an unresolved neighbor. Like
// ForkRedupl, a paradigm with nothing left to resolve is returned as-is;
// otherwise the fork is named "<paradigm>=N" where N is a bitmask of
// which original inflexion indices survived, so two sublexemes that
// resolve to the same surviving subset share the same forked paradigm.
func ForkRegex(p *Paradigm, ctx RegexContext) (*Paradigm, bool) {
	needsFork := false
	for _, infl := range p.Inflexions {
		if len(infl.RegexTests) > 0 {
			needsFork = true
			break
		}
	}
	if !needsFork {
		return p, true
	}

	forked := p.Clone()
	var mask uint64
	kept := forked.Inflexions[:0:0]
	for i, infl := range forked.Inflexions {
		ok, remaining := PerformRegexTests(infl.RegexTests, ctx)
		if !ok {
			continue
		}
		infl.RegexTests = remaining
		kept = append(kept, infl)
		if i < 64 {
			mask |= 1 << uint(i)
		}
	}
	if len(kept) == 0 {
		return nil, false
	}
	forked.Inflexions = kept
	forked.Name = p.Name + "=" + strconv.FormatUint(mask, 10)
	return forked, true
}
