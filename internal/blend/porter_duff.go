package blend

// Porter-Duff implementations (premultiplied alpha).

// clear clears the destination to transparent black.
func clear(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return 0, 0, 0, 0
}

// source replaces destination with source.
func source(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return sr, sg, sb, sa
}

// destination keeps destination unchanged.
func destination(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return dr, dg, db, da
}

// sourceOver composites source over destination (default blend mode).
// Formula: S + D * (1 - Sa)
func sourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invSa := 255 - sa
	return addClamp255(sr, mulDiv255(dr, invSa)),
		addClamp255(sg, mulDiv255(dg, invSa)),
		addClamp255(sb, mulDiv255(db, invSa)),
		addClamp255(sa, mulDiv255(da, invSa))
}

// destinationOver composites destination over source.
// Formula: S * (1 - Da) + D
func destinationOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invDa := 255 - da
	return addClamp255(mulDiv255(sr, invDa), dr),
		addClamp255(mulDiv255(sg, invDa), dg),
		addClamp255(mulDiv255(sb, invDa), db),
		addClamp255(mulDiv255(sa, invDa), da)
}

// sourceIn shows source where destination is opaque.
// Formula: S * Da
func sourceIn(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return mulDiv255(sr, da), mulDiv255(sg, da), mulDiv255(sb, da), mulDiv255(sa, da)
}

// destinationIn shows destination where source is opaque.
// Formula: D * Sa
func destinationIn(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return mulDiv255(dr, sa), mulDiv255(dg, sa), mulDiv255(db, sa), mulDiv255(da, sa)
}

// sourceOut shows source where destination is transparent.
// Formula: S * (1 - Da)
func sourceOut(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invDa := 255 - da
	return mulDiv255(sr, invDa), mulDiv255(sg, invDa), mulDiv255(sb, invDa), mulDiv255(sa, invDa)
}

// destinationOut shows destination where source is transparent.
// Formula: D * (1 - Sa)
func destinationOut(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invSa := 255 - sa
	return mulDiv255(dr, invSa), mulDiv255(dg, invSa), mulDiv255(db, invSa), mulDiv255(da, invSa)
}

// sourceAtop composites source over destination, preserving destination alpha.
// Formula: S * Da + D * (1 - Sa)
func sourceAtop(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invSa := 255 - sa
	return addClamp255(mulDiv255(sr, da), mulDiv255(dr, invSa)),
		addClamp255(mulDiv255(sg, da), mulDiv255(dg, invSa)),
		addClamp255(mulDiv255(sb, da), mulDiv255(db, invSa)),
		da
}

// destinationAtop composites destination over source, preserving source alpha.
// Formula: S * (1 - Da) + D * Sa
func destinationAtop(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invDa := 255 - da
	return addClamp255(mulDiv255(sr, invDa), mulDiv255(dr, sa)),
		addClamp255(mulDiv255(sg, invDa), mulDiv255(dg, sa)),
		addClamp255(mulDiv255(sb, invDa), mulDiv255(db, sa)),
		sa
}

// xor shows source and destination where they don't overlap.
// Formula: S * (1 - Da) + D * (1 - Sa)
func xor(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invDa := 255 - da
	invSa := 255 - sa
	return addClamp255(mulDiv255(sr, invDa), mulDiv255(dr, invSa)),
		addClamp255(mulDiv255(sg, invDa), mulDiv255(dg, invSa)),
		addClamp255(mulDiv255(sb, invDa), mulDiv255(db, invSa)),
		addClamp255(mulDiv255(sa, invDa), mulDiv255(da, invSa))
}

// plus adds source and destination colors, clamped to 255.
// Formula: min(S + D, 255)
func plus(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return addClamp255(sr, dr), addClamp255(sg, dg), addClamp255(sb, db), addClamp255(sa, da)
}
