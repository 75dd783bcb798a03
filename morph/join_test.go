package morph

import "testing"

func TestSpliceAtNextFlexInsertsAtMarker(t *testing.T) {
	left := []*InflexionPart{
		{Flex: "re", GlossType: GlossAfx},
		{GlossType: GlossNextFlex},
		{Flex: "ed", GlossType: GlossAfx},
	}
	right := []*InflexionPart{{Flex: "do", GlossType: GlossStem}}

	merged := spliceAtNextFlex(left, right)
	if len(merged) != 3 {
		t.Fatalf("got %d parts, want 3", len(merged))
	}
	if merged[1].Flex != "do" {
		t.Errorf("merged[1] = %+v, want the spliced-in stem part", merged[1])
	}
	if merged[2].Flex != "ed" {
		t.Errorf("merged[2] = %+v, want the trailing affix preserved", merged[2])
	}
}

func TestSpliceAtNextFlexAppendsWithoutMarker(t *testing.T) {
	left := []*InflexionPart{{Flex: "pi", GlossType: GlossStem}}
	right := []*InflexionPart{{Flex: "yos", GlossType: GlossAfx}}
	merged := spliceAtNextFlex(left, right)
	if len(merged) != 2 || merged[0].Flex != "pi" || merged[1].Flex != "yos" {
		t.Errorf("merged = %+v, want [pi yos] in order", merged)
	}
}

func TestReclassifySeamFlipsAfxToIfxPastStem(t *testing.T) {
	parts := []*InflexionPart{
		{Flex: "pi", GlossType: GlossStem},
		{Flex: "yos", GlossType: GlossAfx},
	}
	reclassifySeam(parts)
	if parts[1].GlossType != GlossIfx {
		t.Errorf("GlossType = %v, want GlossIfx once the stem has started", parts[1].GlossType)
	}
}

func TestReclassifySeamFlipsIfxToAfxBeforeStem(t *testing.T) {
	parts := []*InflexionPart{
		{Flex: "de", GlossType: GlossIfx},
		{Flex: "pi", GlossType: GlossStem},
	}
	reclassifySeam(parts)
	if parts[0].GlossType != GlossAfx {
		t.Errorf("GlossType = %v, want GlossAfx before the stem starts", parts[0].GlossType)
	}
}

func TestJoinInflexionPartsFlattensAndSplices(t *testing.T) {
	left := &Inflexion{FlexParts: [][]*InflexionPart{
		{{Flex: "pi", GlossType: GlossStem}},
		{{GlossType: GlossNextFlex}},
	}}
	right := &Inflexion{FlexParts: [][]*InflexionPart{
		{{Flex: "yos", GlossType: GlossAfx}},
	}}
	merged := joinInflexionParts(left, right)
	if len(merged) != 1 {
		t.Fatalf("joinInflexionParts should collapse to a single joined stage, got %d", len(merged))
	}
	if len(merged[0]) != 2 {
		t.Fatalf("got %d parts, want 2 (stem, affix)", len(merged[0]))
	}
	if merged[0][1].Flex != "yos" || merged[0][1].GlossType != GlossIfx {
		t.Errorf("merged[0][1] = %+v, want Flex=yos reclassified to GlossIfx", merged[0][1])
	}
}

func TestJoinInflexionPartsDiscardsLeftWhenRightStartsWithSelf(t *testing.T) {
	left := &Inflexion{FlexParts: [][]*InflexionPart{
		{{Flex: "pi", GlossType: GlossStem}, {Flex: "yos", GlossType: GlossAfx}},
	}}
	right := &Inflexion{StartWithSelf: true, FlexParts: [][]*InflexionPart{
		{{Flex: "pi", GlossType: GlossStem}, {Flex: "t", GlossType: GlossAfx}},
	}}
	merged := joinInflexionParts(left, right)
	if len(merged) != 1 || len(merged[0]) != 2 {
		t.Fatalf("joinInflexionParts = %+v, want right's own two parts only", merged)
	}
	if merged[0][0].Flex != "pi" || merged[0][1].Flex != "t" {
		t.Errorf("merged[0] = %+v, want [pi t], left's parts must not appear", merged[0])
	}
}

func TestFlattenPartsConcatenatesAllStages(t *testing.T) {
	flexParts := [][]*InflexionPart{
		{{Flex: "a"}, {Flex: "b"}},
		{{Flex: "c"}},
	}
	flat := flattenParts(flexParts)
	if len(flat) != 3 {
		t.Fatalf("got %d parts, want 3", len(flat))
	}
	if flat[0].Flex != "a" || flat[1].Flex != "b" || flat[2].Flex != "c" {
		t.Errorf("flat = %+v, want [a b c] in order", flat)
	}
}
