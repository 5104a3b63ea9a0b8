package math

import "testing"

func TestPeriodicTables(t *testing.T) {
	tests := []struct {
		fn   WaveFunc
		x    float32
		want float32
	}{
		{FuncSin, 0, 0},
		{FuncSin, 0.25, 1},
		{FuncSin, 0.75, -1},
		{FuncSquare, 0.1, -1},
		{FuncSquare, 0.6, 1},
		{FuncTriangle, 0, 0},
		{FuncTriangle, 0.25, 1},
		{FuncTriangle, 0.75, -1},
		{FuncSawtooth, 0.5, 0.5},
		{FuncInverseSawtooth, 0.25, 0.75},
	}
	for _, tt := range tests {
		got := Periodic(tt.fn, tt.x)
		if abs(got-tt.want) > 1e-3 {
			t.Errorf("Periodic(%v, %v) = %v, want %v", tt.fn, tt.x, got, tt.want)
		}
	}
}

func TestPeriodicWraps(t *testing.T) {
	for _, x := range []float32{0.125, 0.4, 0.9} {
		a := Periodic(FuncSin, x)
		if b := Periodic(FuncSin, x+3); a != b {
			t.Errorf("sin(%v) = %v, sin(%v+3) = %v", x, a, x, b)
		}
		if b := Periodic(FuncSin, x-1); a != b {
			t.Errorf("sin(%v) = %v, sin(%v-1) = %v", x, a, x, b)
		}
	}
}

func TestSinCosFrac(t *testing.T) {
	if abs(SinFrac(64, 256)-1) > 1e-5 {
		t.Errorf("SinFrac(64,256) = %v, want 1", SinFrac(64, 256))
	}
	if abs(CosFrac(0, 256)-1) > 1e-5 {
		t.Errorf("CosFrac(0,256) = %v, want 1", CosFrac(0, 256))
	}
}

func TestParseWaveFunc(t *testing.T) {
	f, ok := ParseWaveFunc("triangle")
	if !ok || f != FuncTriangle {
		t.Errorf("ParseWaveFunc(triangle) = %v, %v", f, ok)
	}
	if _, ok := ParseWaveFunc("noise"); ok {
		t.Error("ParseWaveFunc(noise) should fail")
	}
}

func TestClamp255(t *testing.T) {
	if Clamp255(-4) != 0 || Clamp255(300) != 255 || Clamp255(17) != 17 {
		t.Error("Clamp255 out of range")
	}
}
