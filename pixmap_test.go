package strata

import "testing"

func TestPixmapSetGetPixel(t *testing.T) {
	p := NewPixmap(4, 4)
	c := RGBA{R: 1, G: 0.5, B: 0, A: 1}
	p.SetPixel(2, 3, c)

	got := p.GetPixel(2, 3)
	if got.A != 1 || got.R != 1 {
		t.Errorf("GetPixel(2, 3) = %+v", got)
	}

	// Out-of-range access is silently ignored / transparent.
	p.SetPixel(-1, 0, c)
	p.SetPixel(4, 0, c)
	if got := p.GetPixel(99, 99); got != Transparent {
		t.Errorf("out-of-range GetPixel = %+v, want Transparent", got)
	}
}

func TestPixmapZeroSize(t *testing.T) {
	p := NewPixmap(0, 0)
	if p.Width() != 0 || p.Height() != 0 {
		t.Fatalf("zero pixmap dims = %dx%d", p.Width(), p.Height())
	}
	p.Clear(White) // must not panic
	if got := p.GetPixel(0, 0); got != Transparent {
		t.Errorf("GetPixel on empty pixmap = %+v", got)
	}

	n := NewPixmap(-3, 5)
	if n.Width() != 0 {
		t.Errorf("negative width clamped to %d, want 0", n.Width())
	}
}

func TestPixmapClone(t *testing.T) {
	p := NewPixmap(2, 2)
	p.SetPixel(0, 0, White)
	c := p.Clone()
	c.SetPixel(0, 0, Transparent)
	if p.GetPixel(0, 0) == c.GetPixel(0, 0) {
		t.Errorf("Clone() shares backing storage")
	}
}

func TestPixmapNRGBASharesMemory(t *testing.T) {
	p := NewPixmap(2, 2)
	img := p.NRGBA()
	img.Pix[0] = 200
	if p.Data()[0] != 200 {
		t.Errorf("NRGBA() copied instead of sharing memory")
	}
}

func TestPixmapPNGRoundTrip(t *testing.T) {
	p := NewPixmap(3, 3)
	p.SetPixel(1, 1, RGBA{R: 0.2, G: 0.4, B: 0.6, A: 1})

	data, err := p.EncodePNG()
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	q, err := DecodePNG(data)
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if q.Width() != 3 || q.Height() != 3 {
		t.Fatalf("decoded dims = %dx%d", q.Width(), q.Height())
	}
	if q.GetPixel(1, 1).A != 1 {
		t.Errorf("decoded pixel lost alpha: %+v", q.GetPixel(1, 1))
	}
}

func TestPixmapFillAndStrokeRect(t *testing.T) {
	p := NewPixmap(10, 10)
	p.FillRect(RectOf(2, 2, 4, 4), White)
	if p.GetPixel(3, 3) != White {
		t.Errorf("FillRect missed interior pixel")
	}
	if p.GetPixel(7, 7) != Transparent {
		t.Errorf("FillRect painted outside region")
	}

	q := NewPixmap(10, 10)
	q.StrokeRect(RectOf(1, 1, 5, 5), Black)
	if q.GetPixel(1, 1) != Black || q.GetPixel(5, 5) != Black {
		t.Errorf("StrokeRect missed corners")
	}
	if q.GetPixel(3, 3) != Transparent {
		t.Errorf("StrokeRect filled interior")
	}
}
