// Package parser implements wordform analysis: given a compiled grammar,
// split a token into clitics and a host, match the host against every
// stem whose paradigm could plausibly produce the token, and emit every
// admissible Wordform.
//
// Matching follows the "hash" method of the original analyzer: stems are
// indexed by a short literal prefix (see fillStemIndex), candidate stems
// are looked up by scanning the token's own prefixes, and each candidate
// is confirmed by building its full surface form from the compiled
// paradigm and comparing it against the token. The original also offers
// an "fst" method built on a full non-deterministic transducer walk with
// backtracking correction windows (investigate_state); that traversal is
// collapsed here into fst-indexed stem lookup plus the same generate-and-
// compare confirmation step, since the two methods only ever differ in
// how candidate stems are found, never in how a candidate is confirmed.
// Separately from the method choice, stems that allow incorporation are
// always looked up through a transducer that accepts arbitrary material
// before the stem, since that lookup can't be expressed as a prefix scan.
package parser

import (
	"context"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/timarkh/uniparser-grammar-udm/fst"
	"github.com/timarkh/uniparser-grammar-udm/grammar"
	"github.com/timarkh/uniparser-grammar-udm/internal/normalize"
	"github.com/timarkh/uniparser-grammar-udm/lexicon"
	"github.com/timarkh/uniparser-grammar-udm/morph"
)

// Method selects how candidate stems are located in a token.
type Method int

const (
	MethodHash Method = iota
	MethodFST
)

var rxCleanToken = regexp.MustCompile(`^[^\p{L}\p{N}]+|[^\p{L}\p{N}]+$`)

// Parser matches tokens against a compiled Grammar.
type Parser struct {
	g      *grammar.Grammar
	method Method

	// stemIndex maps a lowercased stem-prefix (up to MaxStemStartLen
	// runes) to every (sublexeme, stemNumber, stem variant) that starts
	// with it. Populated and consulted only under MethodHash.
	stemIndex map[string][]stemEntry

	// stemFST indexes the same entries as stemIndex, via shared-prefix
	// transducer states instead of a prefix hash. Populated and consulted
	// only under MethodFST.
	stemFST *fst.FST

	// incorpFST indexes stems of sublexemes that participate in
	// incorporation (NoIncorporation unset), reachable after an arbitrary
	// leading prefix rather than only at position zero. Built regardless
	// of method, mirroring the fact that incorporation lookup is always
	// transducer-based.
	incorpFST *fst.FST

	// Normalize maps a raw token/stem to its canonical lookup form,
	// defaulting to a plain case fold; set it to something else to adapt
	// the analyzer to an orthography with its own folding rules.
	Normalize normalize.KeyNormalizer

	// Filter, if set, is consulted for every regularly generated Wordform
	// before it is added to the results; returning false drops it. Nil by
	// default, so a lexeme's ExceptionForm entries (lexicon.Lexeme.Exceptions)
	// have no effect on parsing unless a caller wires a Filter that consults
	// them — e.g. to drop a regular analysis whose gramm tags match a
	// coexist=false exception.
	Filter func(wf *morph.Wordform, sl *lexicon.SubLexeme) bool

	cacheMu sync.Mutex
	cache   map[string][]*morph.Wordform
}

type stemEntry struct {
	sub     *lexicon.SubLexeme
	stemNum int
	stem    string
}

// incorpStemNum mirrors lexicon's own unexported sentinel (documented on
// lexicon.SubLexeme: "an incorporation variant uses the sentinel set {-1}").
const incorpStemNum = -1

// New builds a Parser over g and indexes its stems for lookup.
func New(g *grammar.Grammar, method Method) *Parser {
	p := &Parser{
		g:         g,
		method:    method,
		stemIndex: make(map[string][]stemEntry),
		incorpFST: fst.New(),
		Normalize: normalize.Default,
	}
	if method == MethodFST {
		p.stemFST = fst.New()
	}
	if g.Knobs.RememberParses {
		p.cache = make(map[string][]*morph.Wordform)
	}
	p.fillStemIndex()
	return p
}

// fillStemIndex populates the stem lookup structures from every lexeme's
// sublexemes: regular stem-number slots feed stemIndex (MethodHash) or
// stemFST (MethodFST), and every sublexeme allowed to incorporate also
// feeds incorpFST, regardless of method.
func (p *Parser) fillStemIndex() {
	for _, lex := range p.g.Lexemes {
		for _, sl := range lex.SubLexemes {
			if sl.NumStem[incorpStemNum] {
				for num, variants := range sl.Stem {
					for _, variant := range variants {
						p.incorpFST.AddIncorpStem(p.Normalize(variant), stemEntry{sub: sl, stemNum: num, stem: variant})
					}
				}
				continue
			}
			for num := range sl.NumStem {
				if num < 0 || num >= len(sl.Stem) {
					continue
				}
				for _, variant := range sl.Stem[num] {
					entry := stemEntry{sub: sl, stemNum: num, stem: variant}
					switch p.method {
					case MethodFST:
						p.stemFST.AddStem(p.Normalize(variant), entry)
					default:
						key := p.prefixKey(variant)
						p.stemIndex[key] = append(p.stemIndex[key], entry)
					}
				}
			}
		}
	}
}

func (p *Parser) prefixKey(s string) string {
	r := []rune(p.Normalize(s))
	if maxLen := p.g.Knobs.MaxStemStartLen; len(r) > maxLen {
		r = r[:maxLen]
	}
	return string(r)
}

// stemCandidate is a located stem plus the byte offset into the
// normalized host where its stem+flex material must start: zero for a
// plain stem match, non-zero when the stem was only reachable as the
// tail of an incorporation match (arbitrary material may precede it).
type stemCandidate struct {
	entry  stemEntry
	anchor int
}

// findStems returns every stem candidate whose text is a prefix of
// token, plus every incorporation stem reachable after some leading
// material within token.
func (p *Parser) findStems(token string) []stemCandidate {
	normalized := p.Normalize(token)
	var out []stemCandidate

	if p.method == MethodFST {
		for _, m := range p.stemFST.Transduce(normalized) {
			out = append(out, stemCandidate{entry: m.Payload.(stemEntry)})
		}
	} else {
		runes := []rune(normalized)
		maxLen := p.g.Knobs.MaxStemStartLen
		for l := 1; l <= maxLen && l <= len(runes); l++ {
			key := string(runes[:l])
			for _, e := range p.stemIndex[key] {
				if strings.HasPrefix(normalized, p.Normalize(e.stem)) {
					out = append(out, stemCandidate{entry: e})
				}
			}
		}
	}

	for _, m := range p.incorpFST.Transduce(normalized) {
		entry := m.Payload.(stemEntry)
		anchor := m.Length - len(p.Normalize(entry.stem))
		if anchor < 0 {
			continue
		}
		out = append(out, stemCandidate{entry: entry, anchor: anchor})
	}
	return out
}

// ParseHost matches host (already stripped of any clitics) against every
// candidate stem, returning every confirmed Wordform. A candidate
// located via incorporation is confirmed against the host's tail
// starting at its anchor rather than the whole host, since the material
// preceding an incorporated stem is not itself analyzed here.
func (p *Parser) ParseHost(host string) []*morph.Wordform {
	var results []*morph.Wordform
	for _, cand := range p.findStems(host) {
		entry := cand.entry
		if cand.anchor > len(host) {
			continue
		}
		target := host[cand.anchor:]
		paradigm, ok := p.g.Paradigm(entry.sub.Paradigm)
		if !ok {
			continue
		}
		for _, infl := range paradigm.Inflexions {
			if infl.StemNum != nil && !infl.StemNum[entry.stemNum] {
				continue
			}
			wf := morph.BuildWordform(entry.stem, entry.sub.Gloss, entry.sub.Lex, infl)
			if !strings.EqualFold(wf.WF, target) {
				continue
			}
			if infl.LemmaChanger != nil {
				if changed := morph.ResolveChangedLemma(infl.LemmaChanger, entry.sub.Stem, entry.sub.NumStem, entry.sub.Gloss); changed != "" {
					wf.Lemma = changed
				}
			}
			wf.OtherData = append(wf.OtherData, entry.sub.OtherData()...)
			if p.g.BadAnalyses != nil && p.g.BadAnalyses.IsBad(fieldsOf(wf, entry.sub)) {
				continue
			}
			if p.Filter != nil && !p.Filter(wf, entry.sub) {
				continue
			}
			p.applyLexRules(wf, entry.sub)
			results = append(results, wf)
		}
	}
	return dedup(results)
}

func fieldsOf(wf *morph.Wordform, sl *lexicon.SubLexeme) map[string]string {
	return map[string]string{
		"wf":    wf.WF,
		"lemma": wf.Lemma,
		"gramm": wf.Gramm,
		"gloss": wf.Gloss,
		"stem":  sl.Lex,
	}
}

func (p *Parser) applyLexRules(wf *morph.Wordform, sl *lexicon.SubLexeme) {
	fields := fieldsOf(wf, sl)
	for _, r := range p.g.LexRulesByLemma[wf.Lemma] {
		if extra, ok := r.Apply(fields); ok {
			wf.OtherData = append(wf.OtherData, extra...)
		}
	}
	for _, r := range p.g.LexRulesByStem[sl.Lex] {
		if extra, ok := r.Apply(fields); ok {
			wf.OtherData = append(wf.OtherData, extra...)
		}
	}
}

func dedup(wfs []*morph.Wordform) []*morph.Wordform {
	seen := make(map[string]bool, len(wfs))
	out := wfs[:0:0]
	for _, w := range wfs {
		key := w.String()
		if !seen[key] {
			seen[key] = true
			out = append(out, w)
		}
	}
	return out
}

// Hosts is one way to split a token into a clitic chain plus a host,
// returned by GetHosts.
type Hosts struct {
	Proclitics []*lexicon.Clitic
	Host       string
	Enclitics  []*lexicon.Clitic
}

// GetHosts returns the unsplit token plus one variant for every clitic
// whose surface form starts (proclitic) or ends (enclitic) token, with that
// one clitic peeled off; a variant never carries more than one clitic.
// Each variant is pre-filtered by the clitic's wf-only regex tests before
// any host parsing is attempted.
func (p *Parser) GetHosts(token string) []Hosts {
	variants := []Hosts{{Host: token}}
	for _, c := range p.g.Clitics {
		switch c.Side {
		case lexicon.SideProclitic:
			if strings.HasPrefix(p.Normalize(token), p.Normalize(c.Lex)) {
				rest := token[len(c.Lex):]
				if c.IsCompatibleStr(rest) {
					variants = append(variants, Hosts{Proclitics: []*lexicon.Clitic{c}, Host: rest})
				}
			}
		case lexicon.SideEnclitic:
			if strings.HasSuffix(p.Normalize(token), p.Normalize(c.Lex)) {
				rest := token[:len(token)-len(c.Lex)]
				if c.IsCompatibleStr(rest) {
					variants = append(variants, Hosts{Host: rest, Enclitics: []*lexicon.Clitic{c}})
				}
			}
		}
	}
	return variants
}

// Parse analyzes token, splitting off clitics and confirming candidate
// stems against every plausible paradigm. Results are cached by token
// when Knobs.RememberParses is set.
func (p *Parser) Parse(token string) []*morph.Wordform {
	token = rxCleanToken.ReplaceAllString(token, "")
	if token == "" || len([]rune(token)) > p.g.Knobs.MaxTokenLength {
		return nil
	}
	if p.cache != nil {
		p.cacheMu.Lock()
		if cached, ok := p.cache[token]; ok {
			p.cacheMu.Unlock()
			return cached
		}
		p.cacheMu.Unlock()
	}

	var all []*morph.Wordform
	for _, variant := range p.GetHosts(token) {
		for _, wf := range p.ParseHost(variant.Host) {
			w := *wf
			for _, c := range variant.Proclitics {
				w.Lemma = c.Lex + "=" + w.Lemma
				w.Gloss = c.Gloss + "=" + w.Gloss
			}
			for _, c := range variant.Enclitics {
				w.Lemma = w.Lemma + "=" + c.Lex
				w.Gloss = w.Gloss + "=" + c.Gloss
			}
			all = append(all, &w)
		}
	}
	all = dedup(all)

	if p.cache != nil {
		p.cacheMu.Lock()
		p.cache[token] = all
		p.cacheMu.Unlock()
	}
	return all
}

// TokenResult pairs a token with its analyses, for batch parsing.
type TokenResult struct {
	Token   string
	Results []*morph.Wordform
}

// ParseTokens analyzes every token concurrently, bounded by GOMAXPROCS,
// preserving input order in the returned slice.
func ParseTokens(ctx context.Context, p *Parser, tokens []string) ([]TokenResult, error) {
	out := make([]TokenResult, len(tokens))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, tok := range tokens {
		i, tok := i, tok
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			out[i] = TokenResult{Token: tok, Results: p.Parse(tok)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
