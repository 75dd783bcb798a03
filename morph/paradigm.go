package morph

import (
	"strconv"
	"strings"
	"time"

	"github.com/timarkh/uniparser-grammar-udm/internal/config"
	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
	"github.com/timarkh/uniparser-grammar-udm/reduplication"
	"github.com/timarkh/uniparser-grammar-udm/regextest"
)

// regexKey identifies one (field, source) regex test for the purposes of
// Paradigm.regexTests, which groups the indices of every inflexion a test
// applies to so join_regexes does not have to re-scan the whole list.
type regexKey struct {
	Field string
	Src   string
}

// Paradigm is a named set of inflexions, together with paradigm-wide links
// to subsequent paradigms (redistributed onto every inflexion at
// construction time, then discarded) and a lazily built regex-test index.
type Paradigm struct {
	Name       string
	Inflexions []*Inflexion

	regexTests map[regexKey][]int

	knobs config.Knobs
	sink  errs.Sink
}

// NewParadigm builds a Paradigm from its descriptor node. Paradigm-level
// "paradigm" links apply to every inflexion in the paradigm and are pushed
// down immediately (see redistributeParadigms); they do not survive as a
// paradigm-level concept past construction.
func NewParadigm(n *descr.Node, knobs config.Knobs, sink errs.Sink) *Paradigm {
	p := &Paradigm{Name: n.Value, knobs: knobs, sink: sink}
	var paradigmLevelLinks []*descr.Node
	for _, c := range n.Children {
		switch c.Name {
		case "inflexion":
			p.Inflexions = append(p.Inflexions, NewInflexion(c, sink))
		case "paradigm":
			paradigmLevelLinks = append(paradigmLevelLinks, c)
		default:
			errs.Raise(sink, "unrecognized field in a paradigm description", c)
		}
	}
	p.redistributeParadigms(paradigmLevelLinks)
	return p
}

// redistributeParadigms pushes every paradigm-level link onto each
// inflexion that does not already carry a link of the same name.
func (p *Paradigm) redistributeParadigms(links []*descr.Node) {
	for _, link := range links {
		for _, infl := range p.Inflexions {
			infl.AddParadigmLink(link, true)
		}
	}
}

// Recompile rebuilds every inflexion's unexported compiled regexes,
// needed after a gob round-trip (see internal/snapshot).
func (p *Paradigm) Recompile(sink errs.Sink) {
	for _, infl := range p.Inflexions {
		infl.Recompile(sink)
	}
}

// Clone returns a deep copy safe to compile independently.
func (p *Paradigm) Clone() *Paradigm {
	clone := &Paradigm{Name: p.Name, knobs: p.knobs, sink: p.sink}
	clone.Inflexions = make([]*Inflexion, len(p.Inflexions))
	for i, infl := range p.Inflexions {
		clone.Inflexions[i] = infl.Clone()
	}
	return clone
}

// buildRegexTests (re)indexes every inflexion's regex tests by (field, src),
// remapping "prev"-prefixed fields to "stem" the way join_regexes expects
// once an inflexion has actually been joined to a preceding one. Results
// are cached until the next call, since extend_one calls this once before
// the whole extension pass rather than per join.
func (p *Paradigm) buildRegexTests() {
	p.regexTests = make(map[regexKey][]int)
	for i, infl := range p.Inflexions {
		for _, t := range infl.RegexTests {
			if t.Field == "paradigm" {
				errs.Raise(p.sink, "regex tests on the paradigm field are not allowed", nil)
				continue
			}
			field := t.Field
			if strings.HasPrefix(field, "prev") {
				field = "stem" + strings.TrimPrefix(field, "prev")
			}
			key := regexKey{Field: field, Src: t.Src}
			p.regexTests[key] = append(p.regexTests[key], i)
		}
	}
}

// continueCompilation decides whether join chains through infl should keep
// being extended, under the partial-compilation budget.
func continueCompilation(infl *Inflexion, knobs config.Knobs, start time.Time, totalJoins int) bool {
	if totalJoins >= knobs.TotalDerivLimit {
		return false
	}
	if infl.JoinDepth >= knobs.DerivLimit {
		return false
	}
	if infl.GetLength() >= knobs.FlexLengthLimit {
		return false
	}
	if knobs.PartialCompile {
		if infl.GetLength() >= knobs.MinFlexLength && infl.Position != PosNonFinal {
			return false
		}
		if time.Since(start) >= knobs.MaxCompileTime {
			return false
		}
	}
	return true
}

// byName looks a paradigm up from the grammar-wide set used while
// compiling; compile_paradigm needs to reach every other paradigm its
// links mention.
type byName interface {
	Paradigm(name string) (*Paradigm, bool)
}

// CompileParadigm fully (or, under partial compilation, sufficiently)
// expands every inflexion of p by following its paradigm links, returning
// a new Paradigm whose inflexions are fully joined (FlexParts has exactly
// one element each, Subsequent is empty). lookup resolves a link's target
// paradigm by name; leaf and position-final inflexions are made final in
// the result without further extension.
func CompileParadigm(p *Paradigm, lookup byName, knobs config.Knobs) *Paradigm {
	start := time.Now()
	out := &Paradigm{Name: p.Name, knobs: knobs, sink: p.sink}
	totalJoins := 0
	for _, infl := range p.Inflexions {
		infl = infl.Clone()
		infl.dictRecurs = make(map[string]int)
		out.Inflexions = append(out.Inflexions, compileInflexion(infl, lookup, knobs, start, &totalJoins)...)
	}
	if !knobs.PartialCompile {
		out.removeRedundant()
	}
	return out
}

// compileInflexion recursively extends one inflexion along its paradigm
// links until it has no more subsequent links, a recursion limit stops it,
// or the compilation budget runs out; it returns every terminal inflexion
// reached (a single inflexion may fork into many through paradigm forks
// or multiple subsequent links).
func compileInflexion(infl *Inflexion, lookup byName, knobs config.Knobs, start time.Time, totalJoins *int) []*Inflexion {
	if len(infl.Subsequent) == 0 || infl.Position == PosFinal {
		infl.MakeFinal()
		return []*Inflexion{infl}
	}
	if !continueCompilation(infl, knobs, start, *totalJoins) {
		if knobs.PartialCompile {
			leaf := infl.Clone()
			leaf.MakeFinal()
			return []*Inflexion{leaf}
		}
		return nil
	}
	var results []*Inflexion
	for _, link := range infl.Subsequent {
		results = append(results, extendOne(infl, link, lookup, knobs, start, totalJoins)...)
	}
	if len(results) == 0 && knobs.PartialCompile {
		leaf := infl.Clone()
		leaf.MakeFinal()
		return []*Inflexion{leaf}
	}
	return results
}

// extendOne follows a single paradigm link from infl, joining infl with
// every inflexion of the linked paradigm (and recursively with its own
// nested links) and recursing into the join results. dictRecurs bounds how
// many times the same paradigm name may be revisited along one chain.
func extendOne(infl *Inflexion, link *ParadigmLink, lookup byName, knobs config.Knobs, start time.Time, totalJoins *int) []*Inflexion {
	if infl.dictRecurs[link.Name] >= knobs.RecursLimit {
		return nil
	}
	target, ok := lookup.Paradigm(link.Name)
	if !ok {
		errs.Raise(infl.sink, "unknown paradigm: "+link.Name, nil)
		return nil
	}
	target.buildRegexTests()

	var out []*Inflexion
	for _, nextInfl := range target.Inflexions {
		joined := JoinInflexions(infl, nextInfl, link, knobs)
		if joined == nil {
			continue
		}
		*totalJoins++
		joined.dictRecurs = cloneCounts(infl.dictRecurs)
		joined.dictRecurs[link.Name]++
		for _, nested := range nextInfl.Subsequent {
			joined.Subsequent = append(joined.Subsequent, nested)
		}
		out = append(out, compileInflexion(joined, lookup, knobs, start, totalJoins)...)
	}
	return out
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// removeRedundant drops hanging non-final inflexions once compilation is
// complete under non-partial compilation: a wordform that never reached a
// final inflexion is not a real wordform.
func (p *Paradigm) removeRedundant() {
	kept := p.Inflexions[:0:0]
	for _, infl := range p.Inflexions {
		if infl.Position != PosNonFinal {
			kept = append(kept, infl)
		}
	}
	p.Inflexions = kept
}

// flexIsEmpty reports whether infl contributes nothing visible (every
// flex part is empty or a pure stem/next-flex marker), used by
// join_regexes to decide whether a "prev"/"next" test should instead look
// further back/forward along the chain.
func flexIsEmpty(infl *Inflexion) bool {
	if len(infl.FlexParts) == 0 {
		return true
	}
	for _, p := range infl.FlexParts[len(infl.FlexParts)-1] {
		if p.GlossType != GlossEmpty && p.GlossType != GlossNextFlex && p.Flex != "" {
			return false
		}
	}
	return true
}

// StemNumbersAgree checks and narrows the stem-number compatibility
// between two inflexions about to be joined: if the first carries
// PassStemNum, its outgoing stem numbers must intersect the second's
// incoming ones, and the intersection becomes the joined inflexion's
// outgoing set. Returns the agreed-upon StemNumOut (nil meaning "any")
// and whether the join is admissible at all.
func StemNumbersAgree(left, right *Inflexion) (map[int]bool, bool) {
	if !left.PassStemNum || left.StemNumOut == nil {
		return cloneIntSet(right.StemNumOut), true
	}
	if right.StemNum == nil {
		return cloneIntSet(left.StemNumOut), true
	}
	agreed := make(map[int]bool)
	for n := range left.StemNumOut {
		if right.StemNum[n] {
			agreed[n] = true
		}
	}
	if len(agreed) == 0 {
		return nil, false
	}
	if right.StemNumOut != nil {
		out := make(map[int]bool)
		for n := range agreed {
			if right.StemNumOut[n] {
				out[n] = true
			}
		}
		return out, true
	}
	return agreed, true
}

// JoinRegexes checks the compatibility of two inflexions about to be
// joined against every "next"/"next-gramm"/"next-gloss" test carried by
// left and every "prev"/"prev-gramm"/"prev-gloss" test carried by right,
// skipping over empty inflexions on either side the way the original
// walks back/forward through a chain of empty joins. It returns the
// combined regex-test list to carry forward on the joined inflexion (only
// the tests that still need a later inflexion to resolve), or ok=false if
// any test already fails.
func JoinRegexes(left, right *Inflexion) (tests []*regextest.Test, ok bool) {
	bEmptyLeft := flexIsEmpty(left)
	bEmptyRight := flexIsEmpty(right)

	for _, t := range left.RegexTests {
		switch t.Field {
		case "next":
			if bEmptyRight {
				tests = append(tests, t)
				continue
			}
			if !t.Perform(flexValue(right)) {
				return nil, false
			}
		case "next-gramm":
			if bEmptyRight {
				tests = append(tests, t)
				continue
			}
			if !t.Perform(right.Gramm) {
				return nil, false
			}
		case "next-gloss":
			if bEmptyRight {
				tests = append(tests, t)
				continue
			}
			if !t.Perform(right.Gloss) {
				return nil, false
			}
		default:
			tests = append(tests, t)
		}
	}
	for _, t := range right.RegexTests {
		switch t.Field {
		case "prev":
			if bEmptyLeft {
				tests = append(tests, t)
				continue
			}
			if !t.Perform(flexValue(left)) {
				return nil, false
			}
		case "prev-gramm":
			if bEmptyLeft {
				tests = append(tests, t)
				continue
			}
			if !t.Perform(left.Gramm) {
				return nil, false
			}
		case "prev-gloss":
			if bEmptyLeft {
				tests = append(tests, t)
				continue
			}
			if !t.Perform(left.Gloss) {
				return nil, false
			}
		default:
			tests = append(tests, t)
		}
	}
	return tests, true
}

func flexValue(infl *Inflexion) string {
	infl.RebuildValue()
	return infl.Flex
}

// JoinInflexions joins left (already under compilation) with right (an
// inflexion of the paradigm named by link), honoring link's position
// constraint, stem-number agreement and regex compatibility. It returns
// nil if the join is inadmissible.
func JoinInflexions(left, right *Inflexion, link *ParadigmLink, knobs config.Knobs) *Inflexion {
	if link.Position != PosUnspecified && right.Position != PosUnspecified && link.Position != right.Position {
		return nil
	}
	stemNumOut, ok := StemNumbersAgree(left, right)
	if !ok {
		return nil
	}
	tests, ok := JoinRegexes(left, right)
	if !ok {
		return nil
	}

	joined := left.Clone()
	joined.StemNumOut = stemNumOut
	joined.RegexTests = tests
	joined.Subsequent = nil
	joined.Position = right.Position
	if link.Position != PosUnspecified {
		joined.Position = link.Position
	}

	if right.ReplaceGrammar || joined.Gramm == "" {
		joined.Gramm = right.Gramm
	} else if right.Gramm != "" {
		joined.Gramm = joined.Gramm + "," + right.Gramm
	}
	if right.Gloss != "" {
		if joined.Gloss == "" {
			joined.Gloss = right.Gloss
		} else {
			joined.Gloss = joined.Gloss + "¦" + right.Gloss
		}
	}
	if right.KeepOtherData {
		joined.OtherData = append(joined.OtherData, right.OtherData...)
	} else {
		joined.OtherData = append([][2]string(nil), right.OtherData...)
	}
	if right.LemmaChanger != nil {
		joined.LemmaChanger = right.LemmaChanger
	}

	joined.Reduplications = joinReduplications(left, right)
	joined.FlexParts = joinInflexionParts(left, right)
	joined.EnsureInfixes()
	joined.RebuildValue()
	joined.JoinDepth = left.JoinDepth
	if !flexIsEmpty(right) {
		joined.JoinDepth++
	}
	return joined
}

// joinReduplications merges two reduplication maps, renumbering right's
// keys past left's highest key to avoid collisions, and returns the
// combined map (nil if both are empty).
func joinReduplications(left, right *Inflexion) map[int]*reduplication.Reduplication {
	if len(left.Reduplications) == 0 && len(right.Reduplications) == 0 {
		return nil
	}
	out := make(map[int]*reduplication.Reduplication, len(left.Reduplications)+len(right.Reduplications))
	maxKey := -1
	for k, v := range left.Reduplications {
		out[k] = v
		if k > maxKey {
			maxKey = k
		}
	}
	renumber := make(map[int]int)
	for k := range right.Reduplications {
		renumber[k] = maxKey + 1 + len(renumber)
	}
	for k, v := range right.Reduplications {
		out[renumber[k]] = v
	}
	if len(renumber) > 0 {
		renumberReduplMarkers(right.FlexParts, renumber)
	}
	return out
}

// renumberReduplMarkers rewrites every "[~k]" marker in right's flex parts
// to use its renumbered key, so joinInflexionParts and later
// simplification still find the right Reduplication entry.
func renumberReduplMarkers(flexParts [][]*InflexionPart, renumber map[int]int) {
	for _, parts := range flexParts {
		for _, p := range parts {
			m := rxReduplMarker.FindStringSubmatch(p.Flex)
			if m == nil {
				continue
			}
			oldNum := 0
			if n, err := strconv.Atoi(m[1]); err == nil {
				oldNum = n
			}
			if newNum, ok := renumber[oldNum]; ok {
				p.Flex = "[~" + strconv.Itoa(newNum) + "]"
			}
		}
	}
}
