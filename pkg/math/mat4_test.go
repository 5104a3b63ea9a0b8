package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestModelMatchesUnTransform(t *testing.T) {
	c := Coords{
		Origin: Vec3{10, 20, 30},
		Axis:   [3]Vec3{{0, 1, 0}, {-1, 0, 0}, {0, 0, 1}},
	}
	p := Vec3{1, 2, 3}
	got := Model(c).TransformPoint(p)
	want := c.UnTransformPoint(p)
	if got != want {
		t.Errorf("Model().TransformPoint() = %v, want %v", got, want)
	}
}

func TestViewLooksDownNegativeZ(t *testing.T) {
	c := IdentityCoords()
	c.Origin = Vec3{5, 0, 0}
	v := View(c)

	ahead := v.TransformPoint(Vec3{15, 0, 0})
	if ahead.Z != -10 || ahead.X != 0 || ahead.Y != 0 {
		t.Errorf("point ahead = %v, want (0,0,-10)", ahead)
	}
	left := v.TransformPoint(Vec3{5, 1, 0})
	if left.X != -1 {
		t.Errorf("point to the left = %v, want x=-1", left)
	}
	up := v.TransformPoint(Vec3{5, 0, 1})
	if up.Y != 1 {
		t.Errorf("point above = %v, want y=1", up)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/2), 1, 1, 100)
	if m[11] != -1 {
		t.Errorf("Perspective w row = %f, want -1", m[11])
	}
	if abs(m[0]-1) > 1e-5 || abs(m[5]-1) > 1e-5 {
		t.Errorf("Perspective focal = %f,%f, want 1", m[0], m[5])
	}
}

func TestOrtho(t *testing.T) {
	m := Ortho(0, 640, 480, 0, -1, 1)
	p := m.TransformPoint(Vec3{640, 0, 0})
	if abs(p.X-1) > 1e-5 || abs(p.Y-1) > 1e-5 {
		t.Errorf("Ortho corner = %v, want (1,1)", p)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
