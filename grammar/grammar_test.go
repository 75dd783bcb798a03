package grammar

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
	"github.com/timarkh/uniparser-grammar-udm/morph"
)

func nctParadigmNode() *descr.Node {
	return &descr.Node{Value: "Nct", Children: []*descr.Node{
		{Name: "inflexion", Value: ".", Children: []*descr.Node{
			{Name: "gramm", Value: "N"},
		}},
		{Name: "inflexion", Value: ". + yos", Children: []*descr.Node{
			{Name: "gramm", Value: "N,NOM,PL"},
			{Name: "gloss", Value: ".¦PL"},
		}},
	}}
}

func piLexemeNode() *descr.Node {
	return &descr.Node{Children: []*descr.Node{
		{Name: "lex", Value: "pi"},
		{Name: "stem", Value: "pi"},
		{Name: "paradigm", Value: "Nct"},
		{Name: "gramm", Value: "N"},
		{Name: "gloss", Value: "child"},
		{Name: "no-incorporation"},
	}}
}

func newTestGrammar() *Grammar {
	sink := &errs.Collector{}
	return New(sink, zerolog.Nop())
}

func TestLoadParadigmsRejectsDuplicateNames(t *testing.T) {
	g := newTestGrammar()
	g.LoadParadigms([]*descr.Node{nctParadigmNode(), nctParadigmNode()})
	if g.sink.(*errs.Collector).Len() != 1 {
		t.Errorf("Len() = %d, want 1 reported duplicate-name error", g.sink.(*errs.Collector).Len())
	}
}

func TestCompileBindsSubLexemesToCompiledParadigm(t *testing.T) {
	g := newTestGrammar()
	g.LoadParadigms([]*descr.Node{nctParadigmNode()})
	g.LoadLexemes([]*descr.Node{piLexemeNode()})
	g.Compile()

	p, ok := g.Paradigm("Nct")
	if !ok {
		t.Fatal("Nct paradigm missing after Compile")
	}
	if len(p.Inflexions) != 2 {
		t.Fatalf("compiled Nct has %d inflexions, want 2", len(p.Inflexions))
	}
	subs, ok := g.LexByParadigm["Nct"]
	if !ok || len(subs) != 1 {
		t.Fatalf("LexByParadigm[Nct] = %v, want exactly the pi sublexeme", subs)
	}
	if subs[0].Lex != "pi" {
		t.Errorf("bound sublexeme Lex = %q, want pi", subs[0].Lex)
	}
}

func TestLoadLexRulesIndexesByGate(t *testing.T) {
	g := newTestGrammar()
	g.LoadLexRules([]*descr.Node{
		{Children: []*descr.Node{
			{Name: "stem", Value: "pi"},
			{Name: "add", Children: []*descr.Node{{Name: "trans_en", Value: "child"}}},
		}},
		{Children: []*descr.Node{
			{Name: "lemma", Value: "beres"},
			{Name: "add", Children: []*descr.Node{{Name: "trans_en", Value: "wolf"}}},
		}},
	})
	if len(g.LexRulesByStem["pi"]) != 1 {
		t.Errorf("LexRulesByStem[pi] has %d entries, want 1", len(g.LexRulesByStem["pi"]))
	}
	if len(g.LexRulesByLemma["beres"]) != 1 {
		t.Errorf("LexRulesByLemma[beres] has %d entries, want 1", len(g.LexRulesByLemma["beres"]))
	}
}

func TestLoadLexRulesRejectsUngatedRule(t *testing.T) {
	g := newTestGrammar()
	g.LoadLexRules([]*descr.Node{
		{Children: []*descr.Node{{Name: "add", Children: []*descr.Node{{Name: "x", Value: "y"}}}}},
	})
	if g.sink.(*errs.Collector).Len() != 1 {
		t.Errorf("Len() = %d, want 1 for an ungated lexical rule", g.sink.(*errs.Collector).Len())
	}
}

func TestLoadBadAnalysesSuppressesMatchingAnalysis(t *testing.T) {
	g := newTestGrammar()
	g.LoadBadAnalyses(&descr.Node{Children: []*descr.Node{
		{Name: "bad-analysis", Children: []*descr.Node{
			{Name: "lemma", Value: "pi"},
			{Name: "gramm", Value: "N,NOM,PL"},
		}},
	}})
	if !g.BadAnalyses.IsBad(map[string]string{"lemma": "pi", "gramm": "N,NOM,PL"}) {
		t.Error("expected the plural pi analysis to be blacklisted")
	}
}

func TestAddDerivLinksToParadigmsSynthesizesDerivationParadigm(t *testing.T) {
	g := newTestGrammar()
	g.LoadParadigms([]*descr.Node{
		{Value: "Verb", Children: []*descr.Node{
			{Name: "inflexion", Value: ".", Children: []*descr.Node{{Name: "gramm", Value: "V"}}},
		}},
		{Value: "CausVerb", Children: []*descr.Node{
			{Name: "inflexion", Value: "t", Children: []*descr.Node{{Name: "gramm", Value: "V,CAUS"}}},
		}},
	})
	g.LoadDerivations([]*descr.Node{
		{Value: "Causative", Children: []*descr.Node{
			{Name: "link", Children: []*descr.Node{
				{Name: "from", Value: "Verb"},
				{Name: "to", Value: "CausVerb"},
				{Name: "inflexion", Value: ". + t", Children: []*descr.Node{
					{Name: "gramm", Value: "V,CAUS"},
					{Name: "gloss", Value: ".¦CAUS"},
				}},
			}},
		}},
	})
	origins := g.AddDerivLinksToParadigms()
	if !origins["Verb"] {
		t.Fatalf("origins = %v, want Verb", origins)
	}

	verb := g.Paradigms["Verb"]
	if len(verb.Inflexions[0].Subsequent) != 1 {
		t.Fatalf("Verb's bare inflexion has %d subsequent links, want 1", len(verb.Inflexions[0].Subsequent))
	}
	linkName := verb.Inflexions[0].Subsequent[0].Name
	if linkName != "#deriv#paradigm#Verb" {
		t.Errorf("subsequent link name = %q, want #deriv#paradigm#Verb", linkName)
	}

	synth, ok := g.Paradigms[linkName]
	if !ok {
		t.Fatal("synthesized derivation paradigm missing from g.Paradigms")
	}
	if len(synth.Inflexions) != 1 {
		t.Fatalf("synthesized paradigm has %d inflexions, want 1", len(synth.Inflexions))
	}
	derivInfl := synth.Inflexions[0]
	if !derivInfl.StartWithSelf {
		t.Error("synthesized derivation inflexion must be StartWithSelf")
	}
	if len(derivInfl.Subsequent) != 1 || derivInfl.Subsequent[0].Name != "CausVerb" {
		t.Errorf("derivation inflexion's Subsequent = %+v, want a single link to CausVerb", derivInfl.Subsequent)
	}
}

func TestAddDerivLinksToParadigmsSkipsLinksWithoutInflexions(t *testing.T) {
	g := newTestGrammar()
	g.LoadParadigms([]*descr.Node{
		{Value: "Verb", Children: []*descr.Node{
			{Name: "inflexion", Value: ".", Children: []*descr.Node{{Name: "gramm", Value: "V"}}},
		}},
	})
	g.LoadDerivations([]*descr.Node{
		{Value: "Causative", Children: []*descr.Node{
			{Name: "link", Children: []*descr.Node{
				{Name: "from", Value: "Verb"},
				{Name: "to", Value: "CausVerb"},
			}},
		}},
	})
	origins := g.AddDerivLinksToParadigms()
	if len(origins) != 0 {
		t.Errorf("origins = %v, want none (the link carries no derivational inflexion)", origins)
	}
	if len(g.Paradigms["Verb"].Inflexions[0].Subsequent) != 0 {
		t.Error("Verb's inflexion should gain no subsequent link when the derivation has no affix content")
	}
}

func TestCompileWiresDerivationThroughToAWordform(t *testing.T) {
	g := newTestGrammar()
	g.LoadParadigms([]*descr.Node{
		{Value: "Verb", Children: []*descr.Node{
			{Name: "inflexion", Value: ".", Children: []*descr.Node{{Name: "gramm", Value: "V,INF"}}},
		}},
	})
	g.LoadLexemes([]*descr.Node{
		{Children: []*descr.Node{
			{Name: "lex", Value: "vera"},
			{Name: "stem", Value: "vera"},
			{Name: "paradigm", Value: "Verb"},
			{Name: "gramm", Value: "V"},
			{Name: "gloss", Value: "speak"},
			{Name: "no-incorporation"},
		}},
	})
	g.LoadDerivations([]*descr.Node{
		{Value: "Causative", Children: []*descr.Node{
			{Name: "link", Children: []*descr.Node{
				{Name: "from", Value: "Verb"},
				{Name: "inflexion", Value: ". + t", Children: []*descr.Node{
					{Name: "gramm", Value: "V,CAUS"},
					{Name: "gloss", Value: ".¦CAUS"},
				}},
			}},
		}},
	})
	g.Compile()
	if g.sink.(*errs.Collector).Len() != 0 {
		t.Fatalf("unexpected errors: %v", g.sink.(*errs.Collector).Errors())
	}

	derivName := "#deriv#paradigm#Verb"
	subs, ok := g.LexByParadigm[derivName]
	if !ok || len(subs) != 1 {
		t.Fatalf("LexByParadigm[%s] = %v, want one mirror sublexeme for vera", derivName, subs)
	}

	synth, ok := g.Paradigm(derivName)
	if !ok {
		t.Fatal("compiled derivation paradigm missing")
	}
	var causInfl *morph.Inflexion
	for _, infl := range synth.Inflexions {
		if infl.Gramm == "V,CAUS" {
			causInfl = infl
		}
	}
	if causInfl == nil {
		t.Fatalf("compiled derivation paradigm has no V,CAUS inflexion: %+v", synth.Inflexions)
	}
	wf := morph.BuildWordform("vera", "speak", "vera", causInfl)
	if wf.WF != "verat" {
		t.Errorf("WF = %q, want verat (derivational affix applied to the stem)", wf.WF)
	}
}
