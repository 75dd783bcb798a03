package morph

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/timarkh/uniparser-grammar-udm/reduplication"
)

var (
	rxCleanGlossL = regexp.MustCompile(`([>~\-])-+`)
	rxCleanGlossR = regexp.MustCompile(`-+([<~])`)
	rxCleanDashes = regexp.MustCompile(`^-+|-+$|-{2,}`)
)

// Wordform is one fully assembled analysis: a surface wordform, the same
// wordform split into morpheme-by-morpheme glossed parts, a flattened
// gloss string, and whatever tags/other-data the joined inflexion chain
// carried.
type Wordform struct {
	WF         string
	WFGlossed  string
	Gloss      string
	Gramm      string
	Lemma      string
	OtherData  [][2]string
	Reduplications map[int]*reduplication.Reduplication
}

// JoinStemFlex walks stem and the compiled flex parts in lockstep,
// producing the surface wordform, its morpheme-segmented form, and its
// gloss string. It mirrors the stem/flex interleaving of the original
// wordform assembly: stem markers consume the stem (repeatably, if
// marked STEM_FORCED), affixes and infixes are written at their slot,
// reduplication parts write their own Flex (already materialized from the
// stem by ForkRedupl), and
// stray separators left over from skipped/empty parts are cleaned up at
// the end.
func JoinStemFlex(stem, stemGloss string, flexParts []*InflexionPart) (wf, wfGlossed, gloss string) {
	var wfB, glossedB, glossB strings.Builder
	stemWritten := false

	writeSep := func(b *strings.Builder) {
		if b.Len() > 0 {
			b.WriteString("-")
		}
	}

	for _, p := range flexParts {
		switch p.GlossType {
		case GlossStem, GlossStemForced:
			wfB.WriteString(stem)
			writeSep(&glossedB)
			glossedB.WriteString(stem)
			writeSep(&glossB)
			glossB.WriteString(stemGloss)
			stemWritten = true
		case GlossStemSpec:
			wfB.WriteString(p.Flex)
			writeSep(&glossedB)
			glossedB.WriteString(p.Flex)
			writeSep(&glossB)
			glossB.WriteString(p.Gloss)
			stemWritten = true
		case GlossReduplL, GlossReduplR:
			wfB.WriteString(p.Flex)
			writeSep(&glossedB)
			glossedB.WriteString(p.Flex)
			writeSep(&glossB)
			glossB.WriteString(p.Gloss)
			stemWritten = true
		case GlossAfx:
			wfB.WriteString(p.Flex)
			writeSep(&glossedB)
			glossedB.WriteString(p.Flex)
			writeSep(&glossB)
			glossB.WriteString(p.Gloss)
		case GlossIfx:
			wfB.WriteString(p.Flex)
			writeSep(&glossedB)
			glossedB.WriteString("<" + p.Flex + ">")
			writeSep(&glossB)
			glossB.WriteString("<" + p.Gloss + ">")
		case GlossEmpty, GlossNextFlex:
			// contributes nothing to the surface form
		}
	}
	if !stemWritten {
		// an inflexion with no stem marker at all still owns the stem
		// (e.g. a pure-affix lemma-changer inflexion applied standalone).
		wfB2 := stem + wfB.String()
		return wfB2, stem + "-" + glossedB.String(), stemGloss + "-" + glossB.String()
	}
	wf = rxCleanDashes.ReplaceAllString(wfB.String(), "")
	wfGlossed = rxCleanGlossL.ReplaceAllString(glossedB.String(), "$1")
	wfGlossed = rxCleanGlossR.ReplaceAllString(wfGlossed, "$1")
	gloss = rxCleanGlossL.ReplaceAllString(glossB.String(), "$1")
	gloss = rxCleanGlossR.ReplaceAllString(gloss, "$1")
	return wf, wfGlossed, gloss
}

// BuildWordform assembles a final Wordform from a chosen stem variant and
// a fully compiled inflexion. lemma is the default lemma to report; a
// caller whose inflexion carries a LemmaChanger should resolve the
// changed lemma separately (see ResolveChangedLemma) and overwrite
// Wordform.Lemma with it.
func BuildWordform(stem, stemGloss, lemma string, infl *Inflexion) *Wordform {
	flexParts := flattenParts(infl.FlexParts)
	wf, wfGlossed, gloss := JoinStemFlex(stem, stemGloss, flexParts)
	w := &Wordform{
		WF:        wf,
		WFGlossed: wfGlossed,
		Gloss:     gloss,
		Gramm:     infl.Gramm,
		Lemma:     lemma,
		OtherData: append([][2]string(nil), infl.OtherData...),
	}
	return w
}

// ResolveChangedLemma rebuilds the lemma for an entry whose inflexion
// carries a LemmaChanger (a "<lex>" directive): it picks a stem variant
// whose stem number agrees with both the changer's own StemNum (if any)
// and the entry's numStem, builds a standalone wordform from it using the
// changer inflexion, and returns that wordform's surface form as the new
// lemma. When the changer's and the entry's stem numbers share nothing and
// the entry has a single stem slot, that slot (number 0) is used anyway.
// Returns "" if no stem variant qualifies.
func ResolveChangedLemma(lemmaChanger *Inflexion, stems [][]string, numStem map[int]bool, stemGloss string) string {
	nums := lemmaChanger.StemNum
	if nums == nil {
		nums = numStem
	} else if numStem != nil {
		narrowed := make(map[int]bool)
		for n := range nums {
			if numStem[n] {
				narrowed[n] = true
			}
		}
		if len(narrowed) == 0 && len(stems) == 1 {
			narrowed[0] = true
		}
		nums = narrowed
	}
	for _, n := range sortedInts(nums) {
		if n < 0 || n >= len(stems) {
			continue
		}
		for _, variant := range stems[n] {
			return BuildWordform(variant, stemGloss, "", lemmaChanger).WF
		}
	}
	return ""
}

// ToXML renders the wordform in the Russian National Corpus <ana> format.
func (w *Wordform) ToXML(lex, token string) string {
	var b strings.Builder
	b.WriteString(`<ana lex="`)
	b.WriteString(xmlEscape(lex))
	b.WriteString(`" gr="`)
	b.WriteString(xmlEscape(w.Gramm))
	b.WriteString(`" parts="`)
	b.WriteString(xmlEscape(w.WFGlossed))
	b.WriteString(`" gloss="`)
	b.WriteString(xmlEscape(w.Gloss))
	b.WriteString(`"`)
	for _, kv := range w.OtherData {
		b.WriteString(" ")
		b.WriteString(xmlEscape(kv[0]))
		b.WriteString(`="`)
		b.WriteString(xmlEscape(kv[1]))
		b.WriteString(`"`)
	}
	b.WriteString("></ana>")
	return b.String()
}

func xmlEscape(s string) string {
	r := strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")
	return r.Replace(s)
}

// String renders a debug key unique enough to use in a set, mirroring the
// original Wordform's __repr__-based hashing.
func (w *Wordform) String() string {
	var b strings.Builder
	b.WriteString(w.WF)
	b.WriteString("\x00")
	b.WriteString(w.Gramm)
	b.WriteString("\x00")
	b.WriteString(w.Gloss)
	b.WriteString("\x00")
	b.WriteString(w.Lemma)
	for _, kv := range w.OtherData {
		b.WriteString("\x00")
		b.WriteString(kv[0])
		b.WriteString("=")
		b.WriteString(kv[1])
	}
	return b.String()
}

// reduplNum extracts the index out of a "[~n]" flex part.
func reduplNum(flex string) (int, bool) {
	m := rxReduplMarker.FindStringSubmatch(flex)
	if m == nil || len(m[1]) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
