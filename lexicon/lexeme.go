// Package lexicon implements the lexical layer: lexemes decomposed into
// sublexemes (one stem set + one paradigm each), exceptional wordforms,
// lexical rules that enrich an analysis after parsing, and clitics peeled
// off before host parsing.
package lexicon

import (
	"sort"
	"strings"

	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
	"github.com/timarkh/uniparser-grammar-udm/morph"
	"github.com/timarkh/uniparser-grammar-udm/regextest"
	"github.com/timarkh/uniparser-grammar-udm/stemconv"
)

// ExceptionForm is one irregular wordform recorded directly on a lexeme,
// bypassing paradigm compilation entirely. Coexist controls whether it
// suppresses the regularly derived wordform(s) with the same gramm tags
// or merely adds to them; see DESIGN.md for why this is exposed as a
// caller-controlled flag rather than hard-wired parser behavior.
type ExceptionForm struct {
	Form    string
	Gramm   string
	Coexist bool
}

// SubLexeme is one stem/paradigm pairing generated from a Lexeme's
// stem x paradigm x gramm x gloss cross product. NumStem selects which
// stem-number slots of the paradigm's inflexions this sublexeme may bind
// to; an incorporation variant uses the sentinel set {-1}.
type SubLexeme struct {
	Lex             string
	Stem            [][]string // Stem[n] holds the variants of stem-number n
	Paradigm        string
	Gramm           string
	Gloss           string
	NumStem         map[int]bool
	NoIncorporation bool
	otherData       [][2]string
}

// OtherData returns the extra (field, value) pairs inherited from the
// owning lexeme's own other-data (dictionary-supplied metadata such as a
// translation or a reference ID).
func (sl *SubLexeme) OtherData() [][2]string {
	return sl.otherData
}

const incorpStemNum = -1

// Lexeme is one dictionary entry: an invariant lemma plus one or more
// stems, each crossed with a set of paradigms, gramm tags and glosses to
// produce its sublexemes.
type Lexeme struct {
	Lex       string
	LexRef    string
	Stems     [][]string // indexed by stem number
	Paradigms []string
	Gramms    []string
	Glosses   []string
	Exceptions []*ExceptionForm
	OtherData [][2]string
	NoIncorporation bool

	SubLexemes []*SubLexeme

	sink errs.Sink
}

// New builds a Lexeme from its descriptor node and generates its
// sublexemes, applying stem conversions along the way to fill any stem
// number left otherwise unspecified.
func New(n *descr.Node, conversions []*stemconv.StemConversion, sink errs.Sink) *Lexeme {
	lex := &Lexeme{sink: sink}
	for _, c := range n.Children {
		switch c.Name {
		case "lex":
			lex.Lex = c.Value
		case "lex-ref":
			lex.LexRef = c.Value
		case "stem":
			lex.addStem(c)
		case "paradigm":
			lex.Paradigms = append(lex.Paradigms, c.Value)
		case "gramm":
			lex.Gramms = append(lex.Gramms, c.Value)
		case "gloss":
			lex.Glosses = append(lex.Glosses, strings.ReplaceAll(c.Value, "|", "¦"))
		case "no-incorporation":
			lex.NoIncorporation = true
		case "except":
			lex.addException(c)
		default:
			lex.OtherData = append(lex.OtherData, [2]string{c.Name, c.Value})
		}
	}
	if lex.Lex == "" {
		errs.Raise(sink, "a lexeme without a lex field", n)
	}
	lex.generateStems(conversions)
	lex.generateSubLexemes()
	return lex
}

func (lex *Lexeme) addStem(n *descr.Node) {
	num := 0
	variants := []string{n.Value}
	for _, c := range n.Children {
		switch c.Name {
		case "n":
			if v, ok := parsePositiveInt(c.Value); ok {
				num = v
			}
		case "variant":
			variants = append(variants, c.Value)
		}
	}
	for len(lex.Stems) <= num {
		lex.Stems = append(lex.Stems, nil)
	}
	lex.Stems[num] = append(lex.Stems[num], variants...)
}

func parsePositiveInt(s string) (int, bool) {
	v := 0
	if len(s) == 0 {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		v = v*10 + int(r-'0')
	}
	return v, true
}

func (lex *Lexeme) addException(n *descr.Node) {
	ex := &ExceptionForm{}
	for _, c := range n.Children {
		switch c.Name {
		case "form":
			ex.Form = c.Value
		case "gramm":
			ex.Gramm = c.Value
		case "coexist":
			ex.Coexist = c.Value == "true" || c.Value == "1"
		}
	}
	lex.Exceptions = append(lex.Exceptions, ex)
}

func (lex *Lexeme) generateStems(conversions []*stemconv.StemConversion) {
	for _, sc := range conversions {
		sc.Convert(&lex.Stems)
	}
}

// NumStems returns the number of stem-number slots this lexeme declares
// (including empty gaps), used to bound the sublexeme cross product.
func (lex *Lexeme) NumStems() int {
	return len(lex.Stems)
}

// generateSubLexemes builds the stem x paradigm x gramm x gloss cross
// product. A lexeme with N stem-number slots produces one sublexeme per
// paradigm (carrying all N slots together, since a paradigm's inflexions
// pick their own stem number via stemNum), unless NoIncorporation is
// unset and the lexeme also participates in incorporation, in which case
// an extra sublexeme with NumStem={-1} and no stem restriction is added.
func (lex *Lexeme) generateSubLexemes() {
	gramms := lex.Gramms
	if len(gramms) == 0 {
		gramms = []string{""}
	}
	glosses := lex.Glosses
	if len(glosses) == 0 {
		glosses = []string{""}
	}
	for _, paradigm := range lex.Paradigms {
		for _, gramm := range gramms {
			for _, gloss := range glosses {
				sl := &SubLexeme{
					Lex:             lex.Lex,
					Stem:            lex.Stems,
					Paradigm:        paradigm,
					Gramm:           gramm,
					Gloss:           gloss,
					NoIncorporation: lex.NoIncorporation,
					otherData:       lex.OtherData,
				}
				sl.NumStem = allStemNums(lex.Stems)
				lex.SubLexemes = append(lex.SubLexemes, sl)
				if !lex.NoIncorporation {
					incorp := *sl
					incorp.NumStem = map[int]bool{incorpStemNum: true}
					lex.SubLexemes = append(lex.SubLexemes, &incorp)
				}
			}
		}
	}
}

// AddDerivedSubLexemes adds, for every existing sublexeme whose own
// paradigm name is in derivOrigins, one mirror sublexeme pointed at the
// synthesized derivParadigmPrefix+paradigm ad hoc paradigm instead
// (sharing the same stems, gramm tags and gloss), so the parser may
// enter derivational territory starting from the same stem it already
// binds to the sublexeme's regular paradigm.
func (lex *Lexeme) AddDerivedSubLexemes(derivOrigins map[string]bool, derivParadigmPrefix string) {
	var added []*SubLexeme
	for _, sl := range lex.SubLexemes {
		if !derivOrigins[sl.Paradigm] {
			continue
		}
		mirror := *sl
		mirror.Paradigm = derivParadigmPrefix + sl.Paradigm
		added = append(added, &mirror)
	}
	lex.SubLexemes = append(lex.SubLexemes, added...)
}

func allStemNums(stems [][]string) map[int]bool {
	out := make(map[int]bool, len(stems))
	for i, variants := range stems {
		if len(variants) > 0 {
			out[i] = true
		}
	}
	return out
}

// StemVariants returns the sorted stem numbers this lexeme defines.
func (lex *Lexeme) StemVariants() []int {
	var out []int
	for i, v := range lex.Stems {
		if len(v) > 0 {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// CheckForRegex evaluates tests against the fields of a candidate
// wordform/stem pairing, skipping any test whose field this helper does
// not recognize (callers with more context, like the parser, run their
// own broader field set).
func CheckForRegex(tests []*regextest.Test, fields map[string]string) bool {
	for _, t := range tests {
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

// ToRegexContext projects a sublexeme into the morph.RegexContext its
// paradigm's remaining regex tests need to resolve a ForkRegex fork.
func (sl *SubLexeme) ToRegexContext(stem string) morph.RegexContext {
	return morph.RegexContext{Stem: stem, Lemma: sl.Lex, Gramm: sl.Gramm, Gloss: sl.Gloss}
}
