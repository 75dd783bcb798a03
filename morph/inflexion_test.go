package morph

import (
	"testing"

	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
	"github.com/timarkh/uniparser-grammar-udm/internal/errs"
)

func TestNewInflexionSplitsStemAndAffix(t *testing.T) {
	sink := &errs.Collector{}
	n := &descr.Node{Value: ". + yos", Children: []*descr.Node{
		{Name: "gramm", Value: "N,NOM,PL"},
		{Name: "gloss", Value: ".¦PL"},
	}}
	infl := NewInflexion(n, sink)
	if sink.Len() != 0 {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	if len(infl.FlexParts) != 1 {
		t.Fatalf("FlexParts has %d elements, want 1 (uncompiled)", len(infl.FlexParts))
	}
	parts := infl.FlexParts[0]
	if len(parts) != 2 {
		t.Fatalf("got %d flex parts, want 2 (stem, affix)", len(parts))
	}
	if parts[0].GlossType != GlossStem {
		t.Errorf("parts[0].GlossType = %v, want GlossStem", parts[0].GlossType)
	}
	if parts[1].Flex != "yos" || parts[1].GlossType != GlossAfx {
		t.Errorf("parts[1] = %+v, want Flex=yos GlossType=GlossAfx", parts[1])
	}
}

func TestRemoveStemNumberPopulatesStemNum(t *testing.T) {
	sink := &errs.Collector{}
	n := &descr.Node{Value: "<0,1>."}
	infl := NewInflexion(n, sink)
	if infl.StemNum == nil || !infl.StemNum[0] || !infl.StemNum[1] {
		t.Errorf("StemNum = %v, want {0:true, 1:true}", infl.StemNum)
	}
	if len(infl.StemNum) != 2 {
		t.Errorf("StemNum has %d entries, want 2", len(infl.StemNum))
	}
}

func TestZeroFlexPartProducesEmptyAffix(t *testing.T) {
	sink := &errs.Collector{}
	n := &descr.Node{Value: ". + 0", Children: []*descr.Node{
		{Name: "gloss", Value: ".¦SG"},
	}}
	infl := NewInflexion(n, sink)
	parts := infl.FlexParts[0]
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	if parts[1].Flex != "" || parts[1].Gloss != "SG" {
		t.Errorf("zero-part = %+v, want empty Flex with gloss SG", parts[1])
	}
}

func TestMakeFinalStripsNextFlexMarker(t *testing.T) {
	sink := &errs.Collector{}
	n := &descr.Node{Value: ". + <.>"}
	infl := NewInflexion(n, sink)
	infl.MakeFinal()
	if infl.Position != PosFinal {
		t.Errorf("Position = %v, want PosFinal", infl.Position)
	}
	for _, p := range infl.FlexParts[0] {
		if p.Flex == "<.>" {
			t.Error("MakeFinal left a next-flex marker in place")
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	sink := &errs.Collector{}
	n := &descr.Node{Value: ". + yos", Children: []*descr.Node{
		{Name: "gramm", Value: "N,PL"},
	}}
	infl := NewInflexion(n, sink)
	clone := infl.Clone()
	clone.Gramm = "mutated"
	clone.FlexParts[0][0].Flex = "mutated"
	if infl.Gramm == "mutated" {
		t.Error("Clone shares Gramm with the original")
	}
	if infl.FlexParts[0][0].Flex == "mutated" {
		t.Error("Clone shares FlexParts with the original")
	}
}

func TestGetLengthIgnoresMetacharacters(t *testing.T) {
	sink := &errs.Collector{}
	n := &descr.Node{Value: "<0>. + yos"}
	infl := NewInflexion(n, sink)
	// Flex renders as "<0>.yos"; metacharacters <,0,>,. stripped leaves "yos".
	if got := infl.GetLength(); got != 3 {
		t.Errorf("GetLength() = %d, want 3", got)
	}
}
