package math

import "testing"

func TestVec3Basics(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Errorf("Add: got %+v", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 3, 3}) {
		t.Errorf("Sub: got %+v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot: got %v", got)
	}
	if got := (Vec3{X: 1}).Cross(Vec3{Y: 1}); got != (Vec3{Z: 1}) {
		t.Errorf("Cross: got %+v", got)
	}
	if got := a.Negate(); got != (Vec3{-1, -2, -3}) {
		t.Errorf("Negate: got %+v", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	if got := (Vec3{3, 0, 4}).Normalize(); !got.ApproxEqual(Vec3{0.6, 0, 0.8}, 1e-6) {
		t.Errorf("Normalize: got %+v", got)
	}
	if got := (Vec3{}).Normalize(); got != Zero3 {
		t.Errorf("zero vector should stay zero, got %+v", got)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 10, -4}
	b := Vec3{10, 20, 4}

	tests := []struct {
		t    float32
		want Vec3
	}{
		{0, a},
		{1, b},
		{0.5, Vec3{5, 15, 0}},
	}
	for _, tt := range tests {
		if got := a.Lerp(b, tt.t); !got.ApproxEqual(tt.want, 1e-6) {
			t.Errorf("Lerp(%v): got %+v, want %+v", tt.t, got, tt.want)
		}
	}
}

func TestVec3ArrayRoundTrip(t *testing.T) {
	v := Vec3{1.5, -2, 3}
	if got := Vec3FromArray(v.Array()); got != v {
		t.Errorf("got %+v, want %+v", got, v)
	}
}
