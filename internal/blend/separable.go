package blend

// Separable blend modes per the W3C Compositing and Blending Level 1
// specification. Each operates on the unmultiplied color channels
// independently, composited with the standard formula:
//
//	Result = (1 - Sa)*D + (1 - Da)*S + Sa*Da*B(Sc, Dc)

// separable applies a per-channel blend function B(s, d) on unmultiplied
// values, then recomposites with premultiplied alpha.
func separable(sr, sg, sb, sa, dr, dg, db, da byte, blendChan func(s, d byte) byte) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}

	// Unpremultiply: unmultiplied = color / alpha.
	sur := byte((uint16(sr) * 255) / uint16(sa))
	sug := byte((uint16(sg) * 255) / uint16(sa))
	sub := byte((uint16(sb) * 255) / uint16(sa))
	dur := byte((uint16(dr) * 255) / uint16(da))
	dug := byte((uint16(dg) * 255) / uint16(da))
	dub := byte((uint16(db) * 255) / uint16(da))

	bR := blendChan(sur, dur)
	bG := blendChan(sug, dug)
	bB := blendChan(sub, dub)

	invSa := 255 - sa
	invDa := 255 - da
	saDa := mulDiv255(sa, da)

	outA := addClamp255(sa, mulDiv255(da, invSa))
	outR := addClamp255(addClamp255(mulDiv255(dr, invSa), mulDiv255(sr, invDa)), mulDiv255(saDa, bR))
	outG := addClamp255(addClamp255(mulDiv255(dg, invSa), mulDiv255(sg, invDa)), mulDiv255(saDa, bG))
	outB := addClamp255(addClamp255(mulDiv255(db, invSa), mulDiv255(sb, invDa)), mulDiv255(saDa, bB))

	return outR, outG, outB, outA
}

// multiply: B(Cs, Cb) = Cs * Cb
func multiply(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, mulDiv255)
}

// screen: B(Cs, Cb) = Cs + Cb - Cs*Cb
func screen(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, screenChan)
}

func screenChan(s, d byte) byte {
	return 255 - mulDiv255(255-s, 255-d)
}

// hardLight: multiply or screen depending on the source channel.
func hardLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, hardLightChan)
}

func hardLightChan(s, d byte) byte {
	if s <= 127 {
		return mulDiv255(2*s, d)
	}
	return screenChan(byte(minInt(2*int(s)-255, 255)), d)
}

// overlay: hardLight with source and backdrop swapped.
func overlay(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		return hardLightChan(d, s)
	})
}

// darken: B(Cs, Cb) = min(Cs, Cb)
func darken(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if s < d {
			return s
		}
		return d
	})
}

// lighten: B(Cs, Cb) = max(Cs, Cb)
func lighten(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if s > d {
			return s
		}
		return d
	})
}

// difference: B(Cs, Cb) = |Cs - Cb|
func difference(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if s > d {
			return s - d
		}
		return d - s
	})
}

// exclusion: B(Cs, Cb) = Cs + Cb - 2*Cs*Cb
func exclusion(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		p := mulDiv255(s, d)
		return byte(minInt(maxInt(int(s)+int(d)-2*int(p), 0), 255))
	})
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
