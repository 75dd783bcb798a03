package lexicon

import (
	"testing"

	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
	"github.com/timarkh/uniparser-grammar-udm/regextest"
)

func piNode() *descr.Node {
	return &descr.Node{Children: []*descr.Node{
		{Name: "lex", Value: "pi"},
		{Name: "stem", Value: "pi"},
		{Name: "paradigm", Value: "Nct"},
		{Name: "gramm", Value: "N"},
		{Name: "gloss", Value: "child"},
	}}
}

func TestNewLexemeGeneratesOneSubLexemePerCrossProduct(t *testing.T) {
	sink := &errs.Collector{}
	lex := New(piNode(), nil, sink)
	if sink.Len() != 0 {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	if lex.Lex != "pi" {
		t.Errorf("Lex = %q, want pi", lex.Lex)
	}
	// one regular sublexeme + one incorporation variant, since
	// NoIncorporation defaults to false.
	if len(lex.SubLexemes) != 2 {
		t.Fatalf("got %d sublexemes, want 2", len(lex.SubLexemes))
	}
	var sawRegular, sawIncorp bool
	for _, sl := range lex.SubLexemes {
		if _, ok := sl.NumStem[incorpStemNum]; ok && len(sl.NumStem) == 1 {
			sawIncorp = true
		} else {
			sawRegular = true
		}
	}
	if !sawRegular || !sawIncorp {
		t.Errorf("expected one regular and one incorporation sublexeme, got %+v", lex.SubLexemes)
	}
}

func TestNewLexemeNoIncorporationSuppressesExtraVariant(t *testing.T) {
	sink := &errs.Collector{}
	n := piNode()
	n.Children = append(n.Children, &descr.Node{Name: "no-incorporation"})
	lex := New(n, nil, sink)
	if len(lex.SubLexemes) != 1 {
		t.Fatalf("got %d sublexemes, want 1 with no-incorporation set", len(lex.SubLexemes))
	}
}

func TestNewLexemeRequiresLexField(t *testing.T) {
	sink := &errs.Collector{}
	n := &descr.Node{Children: []*descr.Node{{Name: "stem", Value: "pi"}}}
	New(n, nil, sink)
	if sink.Len() != 1 {
		t.Errorf("Len() = %d, want 1 reported error for a missing lex field", sink.Len())
	}
}

func TestAddStemFillsGapsByNumber(t *testing.T) {
	sink := &errs.Collector{}
	n := &descr.Node{Children: []*descr.Node{
		{Name: "lex", Value: "pi"},
		{Name: "paradigm", Value: "Nct"},
		{Name: "stem", Value: "pija", Children: []*descr.Node{
			{Name: "n", Value: "2"},
			{Name: "variant", Value: "pijez"},
		}},
	}}
	lex := New(n, nil, sink)
	if lex.NumStems() != 3 {
		t.Fatalf("NumStems() = %d, want 3 (slots 0,1 empty, 2 filled)", lex.NumStems())
	}
	if len(lex.Stems[2]) != 2 || lex.Stems[2][0] != "pija" || lex.Stems[2][1] != "pijez" {
		t.Errorf("Stems[2] = %v, want [pija pijez]", lex.Stems[2])
	}
}

func TestAddExceptionParsesCoexist(t *testing.T) {
	sink := &errs.Collector{}
	n := piNode()
	n.Children = append(n.Children, &descr.Node{Name: "except", Children: []*descr.Node{
		{Name: "form", Value: "piyos"},
		{Name: "gramm", Value: "N,NOM,PL"},
		{Name: "coexist", Value: "true"},
	}})
	lex := New(n, nil, sink)
	if len(lex.Exceptions) != 1 {
		t.Fatalf("got %d exceptions, want 1", len(lex.Exceptions))
	}
	if !lex.Exceptions[0].Coexist {
		t.Error("Coexist should be true when the descriptor says \"true\"")
	}
}

func TestStemVariantsReturnsOnlyFilledSlots(t *testing.T) {
	lex := &Lexeme{Stems: [][]string{{"a"}, nil, {"b"}}}
	got := lex.StemVariants()
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("StemVariants() = %v, want [0 2]", got)
	}
}

func TestCheckForRegexSkipsUnknownFields(t *testing.T) {
	sink := &errs.Collector{}
	tests := []*regextest.Test{
		regextest.New("stem", "^pi", sink),
		regextest.New("next", "^X", sink),
	}
	fields := map[string]string{"stem": "pija"}
	if !CheckForRegex(tests, fields) {
		t.Error("CheckForRegex should skip a field absent from the candidate's fields")
	}
}

func TestCheckForRegexFailsOnMismatch(t *testing.T) {
	sink := &errs.Collector{}
	tests := []*regextest.Test{regextest.New("stem", "^X", sink)}
	if CheckForRegex(tests, map[string]string{"stem": "pija"}) {
		t.Error("CheckForRegex should fail when a resolvable test doesn't match")
	}
}

func TestToRegexContextProjectsSubLexemeFields(t *testing.T) {
	sl := &SubLexeme{Lex: "pi", Gramm: "N,NOM,PL", Gloss: "child-PL"}
	ctx := sl.ToRegexContext("pija")
	if ctx.Stem != "pija" || ctx.Lemma != "pi" || ctx.Gramm != "N,NOM,PL" || ctx.Gloss != "child-PL" {
		t.Errorf("ToRegexContext = %+v, unexpected projection", ctx)
	}
}

func TestAddDerivedSubLexemesAddsMirrorForOriginParadigm(t *testing.T) {
	sink := &errs.Collector{}
	n := piNode()
	n.Children = append(n.Children, &descr.Node{Name: "no-incorporation"})
	lex := New(n, nil, sink)
	if len(lex.SubLexemes) != 1 {
		t.Fatalf("got %d sublexemes, want 1", len(lex.SubLexemes))
	}

	lex.AddDerivedSubLexemes(map[string]bool{"Nct": true}, "#deriv#paradigm#")

	if len(lex.SubLexemes) != 2 {
		t.Fatalf("got %d sublexemes after AddDerivedSubLexemes, want 2", len(lex.SubLexemes))
	}
	mirror := lex.SubLexemes[1]
	if mirror.Paradigm != "#deriv#paradigm#Nct" {
		t.Errorf("mirror.Paradigm = %q, want #deriv#paradigm#Nct", mirror.Paradigm)
	}
	if mirror.Lex != "pi" || mirror.Gloss != "child" {
		t.Errorf("mirror = %+v, want the same Lex/Gloss as the original sublexeme", mirror)
	}
}

func TestAddDerivedSubLexemesSkipsParadigmsWithoutDerivations(t *testing.T) {
	sink := &errs.Collector{}
	lex := New(piNode(), nil, sink)
	before := len(lex.SubLexemes)

	lex.AddDerivedSubLexemes(map[string]bool{"SomeOtherParadigm": true}, "#deriv#paradigm#")

	if len(lex.SubLexemes) != before {
		t.Errorf("got %d sublexemes, want %d unchanged (Nct is not in derivOrigins)", len(lex.SubLexemes), before)
	}
}

func TestOtherDataCollectsUnrecognizedFields(t *testing.T) {
	sink := &errs.Collector{}
	n := piNode()
	n.Children = append(n.Children, &descr.Node{Name: "trans_en", Value: "child"})
	lex := New(n, nil, sink)
	if len(lex.OtherData) != 1 || lex.OtherData[0] != [2]string{"trans_en", "child"} {
		t.Errorf("OtherData = %v, want [[trans_en child]]", lex.OtherData)
	}
}
