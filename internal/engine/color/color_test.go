package color

import "testing"

func TestRGBA(t *testing.T) {
	c := RGBA(1, 0.5, 0, 1)
	want := Color{255, 128, 0, 255}
	if c != want {
		t.Errorf("RGBA() = %v, want %v", c, want)
	}
}

func TestPackRoundTrip(t *testing.T) {
	c := Color{1, 2, 3, 4}
	if got := FromUint32(c.Uint32()); got != c {
		t.Errorf("FromUint32(Uint32()) = %v, want %v", got, c)
	}
	if White.Uint32() != 0xFFFFFFFF {
		t.Errorf("White.Uint32() = %X", White.Uint32())
	}
}

func TestNormalize255(t *testing.T) {
	r, g, b := Normalize255(510, 255, 0)
	if r != 255 || g != 127 || b != 0 {
		t.Errorf("Normalize255(510,255,0) = %d,%d,%d", r, g, b)
	}
	r, g, b = Normalize255(10, 20, 30)
	if r != 10 || g != 20 || b != 30 {
		t.Errorf("Normalize255 changed in-range color: %d,%d,%d", r, g, b)
	}
}

func TestWithWhiteRGB(t *testing.T) {
	c := Color{1, 2, 3, 77}.WithWhiteRGB()
	if c != (Color{255, 255, 255, 77}) {
		t.Errorf("WithWhiteRGB() = %v", c)
	}
}
