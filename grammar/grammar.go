// Package grammar assembles every loaded component — paradigms,
// lexemes, clitics, lexical rules, derivations, stem conversions and the
// bad-analysis blacklist — into one compiled Grammar value, threaded
// explicitly through compilation and parsing rather than held as package-
// or class-level global state (see DESIGN.md, "Grammar as explicit
// threaded value, not global state").
package grammar

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/timarkh/uniparser-grammar-udm/derivation"
	"github.com/timarkh/uniparser-grammar-udm/internal/config"
	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
	"github.com/timarkh/uniparser-grammar-udm/lexicon"
	"github.com/timarkh/uniparser-grammar-udm/morph"
	"github.com/timarkh/uniparser-grammar-udm/stemconv"
)

// Grammar holds every component of a loaded analyzer, fully compiled and
// ready to drive a parser. It is safe to share read-only across
// goroutines once Compile has returned: nothing in the parser mutates it.
type Grammar struct {
	Knobs config.Knobs

	Paradigms       map[string]*morph.Paradigm
	Lexemes         []*lexicon.Lexeme
	LexRulesByStem  map[string][]*lexicon.LexRule
	LexRulesByLemma map[string][]*lexicon.LexRule
	Clitics         []*lexicon.Clitic
	StemConversions []*stemconv.StemConversion
	Derivations     []*derivation.Derivation
	BadAnalyses     *lexicon.BadAnalyses

	// LexByParadigm indexes every sublexeme generated by every lexeme by
	// the (possibly forked) paradigm name it ultimately binds to, filled
	// in by Compile.
	LexByParadigm map[string][]*lexicon.SubLexeme

	Log  zerolog.Logger
	sink errs.Sink
}

// New returns an empty Grammar with default knobs, ready for the Load*
// methods to populate.
func New(sink errs.Sink, log zerolog.Logger) *Grammar {
	return &Grammar{
		Knobs:           config.Default(),
		Paradigms:       make(map[string]*morph.Paradigm),
		LexRulesByStem:  make(map[string][]*lexicon.LexRule),
		LexRulesByLemma: make(map[string][]*lexicon.LexRule),
		LexByParadigm:   make(map[string][]*lexicon.SubLexeme),
		Log:             log,
		sink:            sink,
	}
}

// Paradigm implements morph.byName so the morph package's compiler can
// resolve a link's target paradigm without depending on this package.
func (g *Grammar) Paradigm(name string) (*morph.Paradigm, bool) {
	p, ok := g.Paradigms[name]
	return p, ok
}

// LoadStemConversions registers one stem-conversion descriptor.
func (g *Grammar) LoadStemConversions(nodes []*descr.Node) {
	for _, n := range nodes {
		g.StemConversions = append(g.StemConversions, stemconv.New(n, g.sink))
	}
}

// LoadParadigms registers every paradigm descriptor, uncompiled; Compile
// performs the actual join expansion once every paradigm name is known
// (a paradigm link may point forward to one not yet seen).
func (g *Grammar) LoadParadigms(nodes []*descr.Node) {
	for _, n := range nodes {
		p := morph.NewParadigm(n, g.Knobs, g.sink)
		if _, exists := g.Paradigms[p.Name]; exists {
			errs.Raise(g.sink, "duplicate paradigm name: "+p.Name, nil)
		}
		g.Paradigms[p.Name] = p
	}
}

// LoadLexemes registers every lexeme descriptor, generating its
// sublexemes against the already-loaded stem conversions.
func (g *Grammar) LoadLexemes(nodes []*descr.Node) {
	for _, n := range nodes {
		g.Lexemes = append(g.Lexemes, lexicon.New(n, g.StemConversions, g.sink))
	}
}

// LoadLexRules registers every lexical-rule descriptor, indexing it by
// whichever of Stem/Lemma it gates on (a rule that gates on neither is
// rejected, since it would fire for every analysis unconditionally).
func (g *Grammar) LoadLexRules(nodes []*descr.Node) {
	for _, n := range nodes {
		r := lexicon.NewLexRule(n, g.sink)
		switch {
		case r.Stem != "":
			g.LexRulesByStem[r.Stem] = append(g.LexRulesByStem[r.Stem], r)
		case r.Lemma != "":
			g.LexRulesByLemma[r.Lemma] = append(g.LexRulesByLemma[r.Lemma], r)
		default:
			errs.Raise(g.sink, "a lexical rule without a stem or lemma gate", n)
		}
	}
}

// LoadClitics registers every clitic descriptor.
func (g *Grammar) LoadClitics(nodes []*descr.Node) {
	for _, n := range nodes {
		g.Clitics = append(g.Clitics, lexicon.NewClitic(n, g.sink))
	}
}

// LoadDerivations registers every derivation descriptor and expands its
// links into leaf paradigms.
func (g *Grammar) LoadDerivations(nodes []*descr.Node) {
	for _, n := range nodes {
		d := derivation.New(n, g.sink)
		for _, l := range d.Links {
			d.BuildLinks(l.FromParadigm, g.Knobs)
		}
		g.Derivations = append(g.Derivations, d)
	}
}

// LoadBadAnalyses registers the bad-analysis blacklist.
func (g *Grammar) LoadBadAnalyses(n *descr.Node) {
	g.BadAnalyses = lexicon.LoadBadAnalyses(n, g.sink)
}

// derivParadigmPrefix names the ad hoc paradigm AddDerivLinksToParadigms
// synthesizes for a given originating paradigm name.
const derivParadigmPrefix = "#deriv#paradigm#"

// AddDerivLinksToParadigms synthesizes, for every originating paradigm
// that some derivation link departs from, a "#deriv#paradigm#<origin>"
// ad hoc paradigm carrying that link's own derivational inflexion(s)
// (each continuing on to the link's ToParadigm, if any, via its own
// Subsequent link), aggregating every applicable link onto the same
// synthesized paradigm when more than one derivation touches the same
// origin. It then attaches a link to that synthesized paradigm onto
// every one of the origin paradigm's own inflexions, so that compiling
// the origin paradigm also compiles every derived form reachable from
// it, and returns the set of origin paradigm names a synthesized
// paradigm was created for (used by Compile to add derivational mirror
// sublexemes). Compile runs it before expanding any paradigm.
func (g *Grammar) AddDerivLinksToParadigms() map[string]bool {
	synth := make(map[string]*morph.Paradigm)
	var order []string
	for _, d := range g.Derivations {
		for _, l := range d.Links {
			if len(l.Inflexions) == 0 {
				continue
			}
			if _, ok := g.Paradigms[l.FromParadigm]; !ok {
				continue
			}
			name := derivParadigmPrefix + l.FromParadigm
			p, ok := synth[name]
			if !ok {
				p = &morph.Paradigm{Name: name}
				synth[name] = p
				order = append(order, name)
			}
			for _, infl := range l.Inflexions {
				infl = infl.Clone()
				if l.ToParadigm != "" {
					infl.Subsequent = append(infl.Subsequent, &morph.ParadigmLink{Name: l.ToParadigm, Position: morph.PosUnspecified})
				}
				p.Inflexions = append(p.Inflexions, infl)
			}
		}
	}
	origins := make(map[string]bool, len(order))
	for _, name := range order {
		g.Paradigms[name] = synth[name]
		origin := strings.TrimPrefix(name, derivParadigmPrefix)
		origins[origin] = true
		from, ok := g.Paradigms[origin]
		if !ok {
			continue
		}
		link := &morph.ParadigmLink{Name: name, Position: morph.PosUnspecified}
		for _, infl := range from.Inflexions {
			infl.Subsequent = append(infl.Subsequent, link)
		}
	}
	return origins
}

// Compile fully expands every paradigm (following derivation links merged
// in by AddDerivLinksToParadigms), then binds every lexeme's sublexemes
// to their (possibly reduplication/regex-forked) compiled paradigms,
// populating LexByParadigm.
func (g *Grammar) Compile() {
	derivOrigins := g.AddDerivLinksToParadigms()

	compiled := make(map[string]*morph.Paradigm, len(g.Paradigms))
	for name, p := range g.Paradigms {
		compiled[name] = morph.CompileParadigm(p, g, g.Knobs)
		g.Log.Debug().Str("paradigm", name).Int("inflexions", len(compiled[name].Inflexions)).Msg("compiled paradigm")
	}
	g.Paradigms = compiled

	for _, lex := range g.Lexemes {
		lex.AddDerivedSubLexemes(derivOrigins, derivParadigmPrefix)
		for _, sl := range lex.SubLexemes {
			g.bindSubLexeme(sl)
		}
	}
}

// RecompileRegexes rebuilds every compiled regexp.Regexp held behind an
// unexported field anywhere in the grammar (paradigms' regex tests and
// reduplications, clitics' and lexical rules' regex tests, the
// bad-analyses blacklist), which gob silently drops on the way through
// internal/snapshot since gob never touches unexported fields.
func (g *Grammar) RecompileRegexes() {
	for _, p := range g.Paradigms {
		p.Recompile(g.sink)
	}
	for _, c := range g.Clitics {
		c.Recompile(g.sink)
	}
	for _, rules := range g.LexRulesByStem {
		for _, r := range rules {
			r.Recompile(g.sink)
		}
	}
	for _, rules := range g.LexRulesByLemma {
		for _, r := range rules {
			r.Recompile(g.sink)
		}
	}
	if g.BadAnalyses != nil {
		g.BadAnalyses.Recompile(g.sink)
	}
}

func (g *Grammar) bindSubLexeme(sl *lexicon.SubLexeme) {
	base, ok := g.Paradigms[sl.Paradigm]
	if !ok {
		errs.Raise(g.sink, "lexeme "+sl.Lex+" refers to unknown paradigm "+sl.Paradigm, nil)
		return
	}
	stemText := ""
	for _, variants := range sl.Stem {
		if len(variants) > 0 {
			stemText = variants[0]
			break
		}
	}
	p := morph.ForkRedupl(base, stemText)
	forked, ok := morph.ForkRegex(p, sl.ToRegexContext(stemText))
	if !ok {
		return
	}
	g.LexByParadigm[forked.Name] = append(g.LexByParadigm[forked.Name], sl)
	if forked.Name != base.Name {
		if _, exists := g.Paradigms[forked.Name]; !exists {
			g.Paradigms[forked.Name] = forked
		}
	}
}
