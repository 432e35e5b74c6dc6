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
	m := Translate(Vec3{1, 2, 3})
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(Vec3{5, 10, 15})
	if got := m.Translation(); got != (Vec3{5, 10, 15}) {
		t.Errorf("Translate: got %+v, want (5, 10, 15)", got)
	}
	if got := m.TransformVec3(Vec3{1, 2, 3}); got != (Vec3{6, 12, 18}) {
		t.Errorf("TransformVec3: got %+v", got)
	}
}

func TestFromRotationTranslation(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi))
	m := FromRotationTranslation(q, Vec3{0, 1, 0})

	got := m.TransformVec3(Vec3{X: 1})
	want := Vec3{-1, 1, 0}
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRotateMatchesQuat(t *testing.T) {
	angle := float32(0.7)
	tests := []struct {
		name string
		m    Mat4
		axis Vec3
	}{
		{"x", RotateX(angle), Vec3{X: 1}},
		{"y", RotateY(angle), Vec3{Y: 1}},
		{"z", RotateZ(angle), Vec3{Z: 1}},
	}
	p := Vec3{0.3, -0.2, 0.9}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := QuatFromAxisAngle(tt.axis, angle).Rotate(p)
			if got := tt.m.TransformVec3(p); !got.ApproxEqual(want, 1e-5) {
				t.Errorf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestLookAt(t *testing.T) {
	view := LookAt(Vec3{0, 0, 10}, Vec3{}, Vec3{Y: 1})
	got := view.TransformVec3(Vec3{})
	if !got.ApproxEqual(Vec3{0, 0, -10}, 1e-5) {
		t.Errorf("origin should sit 10 units in front of the eye, got %+v", got)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/2), 1, 1, 100)
	if math.Abs(float64(m[0]-1)) > 1e-5 || math.Abs(float64(m[5]-1)) > 1e-5 {
		t.Errorf("90 degree fov should give unit focal scale, got %v %v", m[0], m[5])
	}
	if m[11] != -1 {
		t.Errorf("expected -1 in perspective row, got %v", m[11])
	}
}
