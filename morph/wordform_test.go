package morph

import (
	"testing"

	"github.com/timarkh/uniparser-grammar-udm/internal/config"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
)

func compileNctPL(t *testing.T) *Inflexion {
	t.Helper()
	sink := &errs.Collector{}
	p := nctParadigm(sink)
	reg := registry{"Nct": p}
	compiled := CompileParadigm(p, reg, config.Default())
	for _, infl := range compiled.Inflexions {
		if infl.Gramm == "N,NOM,PL" {
			return infl
		}
	}
	t.Fatal("compiled Nct paradigm is missing the N,NOM,PL inflexion")
	return nil
}

func TestBuildWordformSingular(t *testing.T) {
	sink := &errs.Collector{}
	p := nctParadigm(sink)
	reg := registry{"Nct": p}
	compiled := CompileParadigm(p, reg, config.Default())
	var sg *Inflexion
	for _, infl := range compiled.Inflexions {
		if infl.Gramm == "N" {
			sg = infl
		}
	}
	if sg == nil {
		t.Fatal("compiled Nct paradigm is missing the bare N inflexion")
	}
	wf := BuildWordform("pi", "child", "pi", sg)
	if wf.WF != "pi" {
		t.Errorf("WF = %q, want pi", wf.WF)
	}
	if wf.WFGlossed != "pi" {
		t.Errorf("WFGlossed = %q, want pi", wf.WFGlossed)
	}
	if wf.Lemma != "pi" {
		t.Errorf("Lemma = %q, want pi", wf.Lemma)
	}
}

func TestBuildWordformPlural(t *testing.T) {
	infl := compileNctPL(t)
	wf := BuildWordform("pi", "child", "pi", infl)
	if wf.WF != "piyos" {
		t.Errorf("WF = %q, want piyos", wf.WF)
	}
	if wf.WFGlossed != "pi-yos" {
		t.Errorf("WFGlossed = %q, want pi-yos", wf.WFGlossed)
	}
	if wf.Gloss != "child-PL" {
		t.Errorf("Gloss = %q, want child-PL", wf.Gloss)
	}
	if wf.Gramm != "N,NOM,PL" {
		t.Errorf("Gramm = %q, want N,NOM,PL", wf.Gramm)
	}
}

func TestResolveChangedLemmaUsesChangerStemNum(t *testing.T) {
	lc := &Inflexion{
		Flex:        "0",
		StemNum:     map[int]bool{1: true},
		PassStemNum: true,
	}
	lc.GenerateParts()
	stems := [][]string{{"pija"}, {"pi"}}
	numStem := map[int]bool{0: true, 1: true}
	got := ResolveChangedLemma(lc, stems, numStem, "child")
	if got != "pi" {
		t.Errorf("ResolveChangedLemma = %q, want pi (stem number 1)", got)
	}
}

func TestResolveChangedLemmaFallsBackToOnlyStemWhenNumStemsDisagree(t *testing.T) {
	lc := &Inflexion{
		Flex:        "0",
		StemNum:     map[int]bool{3: true},
		PassStemNum: true,
	}
	lc.GenerateParts()
	stems := [][]string{{"pi"}}
	numStem := map[int]bool{0: true}
	got := ResolveChangedLemma(lc, stems, numStem, "child")
	if got != "pi" {
		t.Errorf("ResolveChangedLemma = %q, want pi (sole stem used as a fallback)", got)
	}
}

func TestToXMLEscapesAttributes(t *testing.T) {
	w := &Wordform{WF: "piyos", Gramm: `N,"PL"`, WFGlossed: "pi-yos", Gloss: "child-PL"}
	got := w.ToXML("pi", "piyos")
	want := `<ana lex="pi" gr="N,&quot;PL&quot;" parts="pi-yos" gloss="child-PL"></ana>`
	if got != want {
		t.Errorf("ToXML = %q, want %q", got, want)
	}
}

func TestWordformStringIsStableDedupKey(t *testing.T) {
	a := &Wordform{WF: "piyos", Gramm: "N,PL", Gloss: "child-PL", Lemma: "pi"}
	b := &Wordform{WF: "piyos", Gramm: "N,PL", Gloss: "child-PL", Lemma: "pi"}
	if a.String() != b.String() {
		t.Error("identical wordforms produced different dedup keys")
	}
	c := &Wordform{WF: "piyos", Gramm: "N,SG", Gloss: "child-PL", Lemma: "pi"}
	if a.String() == c.String() {
		t.Error("different gramm tags produced the same dedup key")
	}
}
