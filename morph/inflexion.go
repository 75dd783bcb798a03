// Package morph implements the inflexion model and the paradigm compiler:
// joining inflexion templates along paradigm links into fully-specified
// wordform recipes, honoring stem-number, regex and reduplication
// constraints (see CompileParadigm).
package morph

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
	"github.com/timarkh/uniparser-grammar-udm/reduplication"
	"github.com/timarkh/uniparser-grammar-udm/regextest"
)

// Position constrains where in a wordform an inflexion (or a link to a
// subsequent paradigm) may occur.
type Position int

const (
	PosUnspecified Position = iota - 1
	PosNonFinal
	PosFinal
)

// PosBoth is an alias of PosFinal: in the original grammar "both" and
// "final" share the same integer value, since both stop the compilation
// loop from trying to extend the inflexion further while still allowing it
// to terminate the word immediately.
const PosBoth = PosFinal

// GlossType classifies one InflexionPart for the purposes of wordform
// assembly and paradigm joining.
type GlossType int

const (
	GlossEmpty GlossType = iota
	GlossAfx
	GlossIfx
	GlossReduplR
	GlossReduplL
	GlossStem
	GlossStemForced
	GlossStemSpec
	GlossNextFlex
	GlossStartWithSelf GlossType = 100
)

// InflexionPart is one token of a split flex string: either a literal
// segment, a stem placeholder ("." or "[.]"), a link placeholder ("<.>")
// or a reduplication placeholder ("[~n]" before it is resolved).
type InflexionPart struct {
	Flex      string
	Gloss     string
	GlossType GlossType
}

var (
	rxFlexSplitter = regexp.MustCompile(`(<\.>|\.|\[[^\[\]]*\]|[^.<>|\[\]]+)`)
	rxStemNumber   = regexp.MustCompile(`^<([0-9,]+)>(.*)`)
	rxCleanGloss   = regexp.MustCompile(`[\[\]!~]+`)
	rxMeta         = regexp.MustCompile(`[<>\[\]().0-9~!|,]`)
	rxReduplMarker = regexp.MustCompile(`^\[~([^\[\]]*)\]$`)
)

// ParadigmLink describes one link from an inflexion (or a whole paradigm,
// before redistribution) to a subsequent paradigm, with its own nested
// links and an optional position constraint.
type ParadigmLink struct {
	Name       string
	Subsequent []*ParadigmLink
	Position   Position
}

// NewParadigmLink builds a ParadigmLink from its descriptor node.
func NewParadigmLink(n *descr.Node, sink errs.Sink) *ParadigmLink {
	pl := &ParadigmLink{Name: n.Value, Position: PosUnspecified}
	for _, c := range n.Children {
		switch c.Name {
		case "paradigm":
			pl.Subsequent = append(pl.Subsequent, NewParadigmLink(c, sink))
		case "position":
			pl.Position = parsePosition(c.Value, sink)
		default:
			errs.Raise(sink, "unrecognized field in a link to a paradigm", c)
		}
	}
	return pl
}

func parsePosition(v string, sink errs.Sink) Position {
	switch v {
	case "final":
		return PosFinal
	case "both":
		return PosBoth
	case "non-final":
		return PosNonFinal
	default:
		errs.Raise(sink, "wrong position value: "+v, nil)
		return PosUnspecified
	}
}

// Inflexion describes one inflexion: a flex string split into ordered
// parts, grammatical tags, a gloss, regex compatibility tests, links to
// subsequent paradigms, and (once compiled) the fully joined flexParts.
type Inflexion struct {
	Flex  string
	Gramm string
	Gloss string

	StemNum    map[int]bool // nil means "any"
	StemNumOut map[int]bool
	// PassStemNum is true iff StemNum must coincide with StemNumOut at any
	// given point in the join chain.
	PassStemNum bool

	Position       Position
	Reduplications map[int]*reduplication.Reduplication
	RegexTests     []*regextest.Test
	Subsequent     []*ParadigmLink

	// FlexParts holds the list of consecutively applied inflexion-part
	// lists; once fully compiled it has exactly one element.
	FlexParts [][]*InflexionPart

	ReplaceGrammar bool
	KeepOtherData  bool
	OtherData      [][2]string
	LemmaChanger   *Inflexion
	StartWithSelf  bool

	// JoinDepth counts how many times this inflexion has joined a
	// non-empty subsequent inflexion; used by the compiler to bound
	// recursion. Present only on in-progress (uncompiled) inflexions.
	JoinDepth int
	// dictRecurs maps a short paradigm name to how many times it has
	// been used while generating this inflexion, reset at the start of
	// every compile_paradigm depth-0 pass.
	dictRecurs map[string]int

	sink errs.Sink
}

// NewInflexion builds an Inflexion from its descriptor node.
func NewInflexion(n *descr.Node, sink errs.Sink) *Inflexion {
	infl := &Inflexion{
		Flex:          n.Value,
		PassStemNum:   true,
		KeepOtherData: true,
		sink:          sink,
	}
	for _, c := range n.Children {
		switch c.Name {
		case "gramm":
			infl.addGramm(c)
		case "gloss":
			infl.addGloss(c)
		case "paradigm":
			infl.AddParadigmLink(c, false)
		case "redupl":
			infl.addReduplication(c, sink)
		case "lex":
			infl.addLemmaChanger(c)
		default:
			if strings.HasPrefix(c.Name, "regex-") {
				infl.RegexTests = append(infl.RegexTests, regextest.FromNode(c, sink))
			} else {
				infl.OtherData = append(infl.OtherData, [2]string{c.Name, c.Value})
			}
		}
	}
	infl.GenerateParts()
	return infl
}

func (infl *Inflexion) addGramm(n *descr.Node) {
	if infl.Gramm != "" {
		errs.Raise(infl.sink, "duplicate gramtags: "+n.Value+" in "+infl.Flex, nil)
	}
	infl.Gramm = n.Value
}

func (infl *Inflexion) addGloss(n *descr.Node) {
	if infl.Gloss != "" {
		errs.Raise(infl.sink, "duplicate gloss: "+n.Value+" in "+infl.Flex, nil)
	}
	infl.Gloss = strings.ReplaceAll(n.Value, "|", "¦")
}

// AddParadigmLink appends a subsequent-paradigm link, optionally skipping
// the append if a link with the same name already exists (used when
// paradigm-level links are redistributed onto every inflexion).
func (infl *Inflexion) AddParadigmLink(n *descr.Node, checkIfExists bool) {
	if checkIfExists {
		for _, p := range infl.Subsequent {
			if p.Name == n.Value {
				return
			}
		}
	}
	infl.Subsequent = append(infl.Subsequent, NewParadigmLink(n, infl.sink))
}

func (infl *Inflexion) addReduplication(n *descr.Node, sink errs.Sink) {
	num, err := strconv.Atoi(n.Value)
	if err != nil {
		errs.Raise(sink, "wrong reduplication", n)
		return
	}
	if infl.Reduplications == nil {
		infl.Reduplications = make(map[int]*reduplication.Reduplication)
	}
	if _, exists := infl.Reduplications[num]; exists {
		errs.Raise(sink, "duplicate reduplication", n)
	}
	infl.Reduplications[num] = reduplication.New(n.Children, sink)
}

func (infl *Inflexion) addLemmaChanger(n *descr.Node) {
	lc := &Inflexion{Flex: n.Value, PassStemNum: true, KeepOtherData: true, sink: infl.sink}
	lc.GenerateParts()
	lc.StartWithSelf = true
	infl.LemmaChanger = lc
}

// removeStemNumber strips a leading "<n,m,...>" stem-number prefix from
// Flex, populating StemNum (and StemNumOut, if unset) from it.
func (infl *Inflexion) removeStemNumber() string {
	flex := infl.Flex
	m := rxStemNumber.FindStringSubmatch(flex)
	if m == nil {
		return flex
	}
	nums := make(map[int]bool)
	for _, part := range strings.Split(m[1], ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			errs.Raise(infl.sink, "wrong stem number: "+flex, nil)
			return regexp.MustCompile(`^<[0-9,]*>`).ReplaceAllString(flex, "")
		}
		nums[v] = true
	}
	infl.StemNum = nums
	if infl.StemNumOut == nil {
		infl.StemNumOut = cloneIntSet(nums)
	}
	return m[2]
}

func cloneIntSet(s map[int]bool) map[int]bool {
	if s == nil {
		return nil
	}
	out := make(map[int]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func sortedInts(s map[int]bool) []int {
	out := make([]int, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// GenerateParts splits Flex into InflexionPart tokens and stores them as
// FlexParts[0]. Only the first pass is done here; further elements of
// FlexParts are produced by paradigm compilation joins.
func (infl *Inflexion) GenerateParts() {
	infl.FlexParts = [][]*InflexionPart{{}}
	flex := infl.removeStemNumber()
	// " + " (the group separator RebuildValue prints) only joins segments.
	flex = strings.ReplaceAll(flex, " + ", "")
	flexParts := rxFlexSplitter.FindAllString(flex, -1)

	var glossParts []string
	if infl.Gloss == "" {
		glossParts = make([]string, len(flexParts))
	} else {
		glossParts = strings.Split(infl.Gloss, "¦")
	}

	iGlossPart := 0
	iRedupl := 0
	bStemStarted := false
	bStemForcedRepeat := false

	for _, flexPart := range flexParts {
		glossType := GlossAfx
		if !strings.Contains(flexPart, ".") && !(strings.HasPrefix(flexPart, "[") && strings.HasSuffix(flexPart, "]")) {
			if iGlossPart >= len(glossParts) {
				errs.Raise(infl.sink, "no correspondence between the inflexion ("+infl.Flex+") and the glosses ("+infl.Gloss+")", nil)
				return
			}
			if strings.HasPrefix(glossParts[iGlossPart], "!") {
				bStemForcedRepeat = true
			}
			if bStemStarted && !bStemForcedRepeat {
				glossType = GlossIfx
			} else {
				glossType = GlossAfx
			}
			gp := glossParts[iGlossPart]
			switch {
			case len(gp) >= 2 && gp[0] == '[' && gp[len(gp)-1] == ']':
				glossType = GlossStemSpec
			case strings.HasPrefix(gp, "~"):
				glossType = GlossReduplL
			case strings.HasSuffix(gp, "~"):
				glossType = GlossReduplR
			}
		}

		switch {
		case len(flexPart) == 0:
			infl.FlexParts[0] = append(infl.FlexParts[0], &InflexionPart{GlossType: GlossEmpty})
		case flexPart == "0":
			infl.FlexParts[0] = append(infl.FlexParts[0], &InflexionPart{Flex: "", Gloss: glossParts[iGlossPart], GlossType: glossType})
			iGlossPart++
		case strings.HasPrefix(flexPart, "[~") && strings.HasSuffix(flexPart, "]"):
			m := rxReduplMarker.FindStringSubmatch(flexPart)
			var curReduplNum int
			if m == nil || len(m[1]) == 0 {
				curReduplNum = iRedupl
				flexPart = "[~" + strconv.Itoa(curReduplNum) + "]"
				iRedupl++
			} else {
				n, err := strconv.Atoi(m[1])
				if err != nil {
					errs.Raise(infl.sink, "wrong reduplication: "+flex, nil)
					return
				}
				curReduplNum = n
			}
			redupl, ok := infl.Reduplications[curReduplNum]
			if !ok {
				errs.Raise(infl.sink, "no reduplication #"+strconv.Itoa(curReduplNum)+": "+flex, nil)
				return
			}
			if redupl.Side == reduplication.SideRight {
				glossType = GlossReduplR
			} else {
				glossType = GlossReduplL
			}
			bStemStarted = true
			bStemForcedRepeat = true
			infl.FlexParts[0] = append(infl.FlexParts[0], &InflexionPart{Flex: flexPart, Gloss: glossParts[iGlossPart], GlossType: glossType})
			iGlossPart++
		case flexPart == "." || flexPart == "[.]":
			gt := GlossStem
			if bStemForcedRepeat {
				gt = GlossStemForced
			} else if bStemStarted {
				gt = GlossEmpty
			}
			bStemStarted = true
			bStemForcedRepeat = false
			// A "." gloss entry stands for the stem slot itself.
			if iGlossPart < len(glossParts) && glossParts[iGlossPart] == "." {
				iGlossPart++
			}
			infl.FlexParts[0] = append(infl.FlexParts[0], &InflexionPart{Flex: flexPart, Gloss: ".", GlossType: gt})
		case strings.HasPrefix(flexPart, "[") && strings.HasSuffix(flexPart, "]"):
			gt := GlossStem
			if bStemForcedRepeat {
				gt = GlossStemForced
			} else if bStemStarted {
				gt = GlossEmpty
			}
			bStemStarted = true
			bStemForcedRepeat = false
			infl.FlexParts[0] = append(infl.FlexParts[0], &InflexionPart{Flex: flexPart[1 : len(flexPart)-1], GlossType: gt})
		case flexPart == "<.>":
			infl.FlexParts[0] = append(infl.FlexParts[0], &InflexionPart{Flex: "<.>", Gloss: "<.>", GlossType: GlossNextFlex})
		default:
			infl.FlexParts[0] = append(infl.FlexParts[0], &InflexionPart{
				Flex:      flexPart,
				Gloss:     rxCleanGloss.ReplaceAllString(glossParts[iGlossPart], ""),
				GlossType: glossType,
			})
			iGlossPart++
		}
	}

	infl.EnsureInfixes()
	infl.RebuildValue()
}

// EnsureInfixes demotes any infix found after the stem back to an affix:
// a stem part once reached means everything before it in the scan (which
// is really after it in the word, since we scan back-to-front) is, by
// definition, not inside the stem anymore.
func (infl *Inflexion) EnsureInfixes() {
	for _, parts := range infl.FlexParts {
		for i := len(parts) - 1; i >= 0; i-- {
			switch parts[i].GlossType {
			case GlossStem, GlossStemForced, GlossEmpty, GlossReduplL, GlossReduplR:
				return
			case GlossIfx:
				parts[i].GlossType = GlossAfx
			}
		}
	}
}

// MakeFinal prohibits subsequent extension of the inflexion.
func (infl *Inflexion) MakeFinal() {
	infl.Position = PosFinal
	infl.Subsequent = nil
	if len(infl.FlexParts) == 0 {
		return
	}
	last := infl.FlexParts[len(infl.FlexParts)-1]
	filtered := last[:0:0]
	for _, p := range last {
		if p.Flex != "<.>" {
			filtered = append(filtered, p)
		}
	}
	infl.FlexParts[len(infl.FlexParts)-1] = filtered
	infl.RebuildValue()
}

var specialChars = map[byte]bool{'.': true, '[': true, ']': true, '<': true, '>': true}

// RebuildValue recomputes Flex from FlexParts; FlexParts drives behavior,
// Flex is only ever a display/debugging string representation.
func (infl *Inflexion) RebuildValue() {
	var pieces []string
	for _, fps := range infl.FlexParts {
		var b strings.Builder
		if len(infl.StemNum) > 0 {
			nums := sortedInts(infl.StemNum)
			strs := make([]string, len(nums))
			for i, n := range nums {
				strs[i] = strconv.Itoa(n)
			}
			b.WriteString("<" + strings.Join(strs, ",") + ">")
		}
		for _, fp := range fps {
			cur := b.String()
			if len(fp.Flex) > 0 && len(cur) > 0 &&
				!specialChars[fp.Flex[0]] && !specialChars[cur[len(cur)-1]] {
				b.WriteString("|")
			}
			b.WriteString(fp.Flex)
		}
		pieces = append(pieces, b.String())
	}
	infl.Flex = strings.Join(pieces, " + ")
}

// GetLength returns the length of Flex without metacharacters.
func (infl *Inflexion) GetLength() int {
	infl.RebuildValue()
	return len(rxMeta.ReplaceAllString(infl.Flex, ""))
}

// Clone returns a deep copy of the inflexion, safe to mutate independently.
func (infl *Inflexion) Clone() *Inflexion {
	clone := &Inflexion{
		Flex:           infl.Flex,
		Gramm:          infl.Gramm,
		Gloss:          infl.Gloss,
		StemNum:        cloneIntSet(infl.StemNum),
		StemNumOut:     cloneIntSet(infl.StemNumOut),
		PassStemNum:    infl.PassStemNum,
		Position:       infl.Position,
		RegexTests:     cloneTests(infl.RegexTests),
		ReplaceGrammar: infl.ReplaceGrammar,
		KeepOtherData:  infl.KeepOtherData,
		StartWithSelf:  infl.StartWithSelf,
		JoinDepth:      infl.JoinDepth,
		sink:           infl.sink,
	}
	clone.OtherData = append([][2]string(nil), infl.OtherData...)
	if infl.Reduplications != nil {
		clone.Reduplications = make(map[int]*reduplication.Reduplication, len(infl.Reduplications))
		for k, v := range infl.Reduplications {
			clone.Reduplications[k] = v.Clone()
		}
	}
	// ParadigmLink is intentionally never deep-copied (mirrors the
	// original's __deepcopy__ override): links are immutable and shared.
	clone.Subsequent = infl.Subsequent
	clone.FlexParts = make([][]*InflexionPart, len(infl.FlexParts))
	for i, parts := range infl.FlexParts {
		newParts := make([]*InflexionPart, len(parts))
		for j, p := range parts {
			pc := *p
			newParts[j] = &pc
		}
		clone.FlexParts[i] = newParts
	}
	if infl.LemmaChanger != nil {
		clone.LemmaChanger = infl.LemmaChanger.Clone()
	}
	if infl.dictRecurs != nil {
		clone.dictRecurs = make(map[string]int, len(infl.dictRecurs))
		for k, v := range infl.dictRecurs {
			clone.dictRecurs[k] = v
		}
	}
	return clone
}

func cloneTests(tests []*regextest.Test) []*regextest.Test {
	if tests == nil {
		return nil
	}
	out := make([]*regextest.Test, len(tests))
	for i, t := range tests {
		out[i] = t.Clone()
	}
	return out
}

// Recompile rebuilds every regex test's and every reduplication's
// unexported compiled regex, needed after a gob round-trip (see
// internal/snapshot).
func (infl *Inflexion) Recompile(sink errs.Sink) {
	for _, t := range infl.RegexTests {
		t.Recompile(sink)
	}
	for _, r := range infl.Reduplications {
		r.Recompile(sink)
	}
	if infl.LemmaChanger != nil {
		infl.LemmaChanger.Recompile(sink)
	}
}

func (infl *Inflexion) String() string {
	var b strings.Builder
	b.WriteString("flex: " + infl.Flex + "\n")
	b.WriteString("gramm: " + infl.Gramm + "\n")
	for i, fps := range infl.FlexParts {
		if len(infl.FlexParts) > 1 {
			b.WriteString("inflexion parts list #" + strconv.Itoa(i) + " out of " + strconv.Itoa(len(infl.FlexParts)) + ":\n")
		}
		for _, fp := range fps {
			b.WriteString(fp.Flex + "\t" + fp.Gloss + "\t" + strconv.Itoa(int(fp.GlossType)) + "\n")
		}
	}
	if len(infl.Subsequent) > 0 {
		names := make([]string, len(infl.Subsequent))
		for i, pl := range infl.Subsequent {
			names[i] = pl.Name
		}
		b.WriteString("links: " + strings.Join(names, "; ") + "\n")
	}
	return b.String()
}
