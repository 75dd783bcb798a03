package morph

// flattenParts concatenates every stage of FlexParts into one sequence;
// used when merging two inflexions, since only the result of a full join
// needs the multi-stage view RebuildValue prints for debugging.
func flattenParts(flexParts [][]*InflexionPart) []*InflexionPart {
	var out []*InflexionPart
	for _, stage := range flexParts {
		out = append(out, stage...)
	}
	return out
}

// joinInflexionParts splices right's flex parts into left's at the point
// marked by a trailing GlossNextFlex ("<.>") part, or appends them if left
// has no such marker, then reclassifies AFX/IFX parts across the seam: an
// affix before the stem starts is a prefix (AFX), the same slot once the
// stem has started is an infix (IFX), mirroring how a suffix attached
// after further suffixation becomes medial.
//
// If right is marked StartWithSelf, it is a fresh entry point onto the
// stem (e.g. a derivational affix) rather than a continuation of left's
// own suffixation, so left's accumulated parts are discarded outright and
// right's own parts stand alone.
func joinInflexionParts(left, right *Inflexion) [][]*InflexionPart {
	rightParts := flattenParts(right.FlexParts)

	if right.StartWithSelf {
		selfParts := make([]*InflexionPart, len(rightParts))
		copy(selfParts, rightParts)
		reclassifySeam(selfParts)
		return [][]*InflexionPart{selfParts}
	}

	leftParts := flattenParts(left.FlexParts)
	merged := spliceAtNextFlex(leftParts, rightParts)
	reclassifySeam(merged)
	return [][]*InflexionPart{merged}
}

// spliceAtNextFlex inserts right in place of the last GlossNextFlex marker
// in left, or appends right to left if no such marker exists.
func spliceAtNextFlex(left, right []*InflexionPart) []*InflexionPart {
	for i := len(left) - 1; i >= 0; i-- {
		if left[i].GlossType == GlossNextFlex {
			out := make([]*InflexionPart, 0, len(left)+len(right)-1)
			out = append(out, left[:i]...)
			out = append(out, right...)
			out = append(out, left[i+1:]...)
			return out
		}
	}
	out := make([]*InflexionPart, 0, len(left)+len(right))
	out = append(out, left...)
	out = append(out, right...)
	return out
}

// reclassifySeam walks the merged part list tracking whether the stem has
// been reached yet, flipping AFX<->IFX parts as appropriate on both sides
// of that boundary.
func reclassifySeam(parts []*InflexionPart) {
	bStemStarted := false
	for _, p := range parts {
		switch p.GlossType {
		case GlossStem, GlossStemForced, GlossReduplL, GlossReduplR:
			bStemStarted = true
		case GlossAfx:
			if bStemStarted {
				p.GlossType = GlossIfx
			}
		case GlossIfx:
			if !bStemStarted {
				p.GlossType = GlossAfx
			}
		}
	}
}
