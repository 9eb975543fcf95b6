package math

import (
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
	if v.LengthSquared() != 25 {
		t.Errorf("Vec2.LengthSquared() = %v, want 25", v.LengthSquared())
	}
}

func TestVec2Normalize(t *testing.T) {
	v := Vec2{3, 4}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec2.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec2{}).Normalize() != (Vec2{}) {
		t.Error("zero vector should normalize to zero")
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{2, 3, 6}
	if got := v.Length(); got != 7 {
		t.Errorf("Vec3.Length() = %v, want 7", got)
	}
	if got := v.LengthSquared(); got != 49 {
		t.Errorf("Vec3.LengthSquared() = %v, want 49", got)
	}
}

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	tests := []struct {
		name string
		got  Vec3
		want Vec3
	}{
		{"add", a.Add(b), Vec3{5, 7, 9}},
		{"sub", b.Sub(a), Vec3{3, 3, 3}},
		{"mul", a.Mul(b), Vec3{4, 10, 18}},
		{"scale", a.Scale(2), Vec3{2, 4, 6}},
		{"min", Vec3{1, 9, 3}.Min(Vec3{4, 2, 6}), Vec3{1, 2, 3}},
		{"max", Vec3{1, 9, 3}.Max(Vec3{4, 2, 6}), Vec3{4, 9, 6}},
		{"splat", Splat3(7), Vec3{7, 7, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if got := a.Dot(b); got != 32 {
		t.Errorf("Vec3.Dot() = %v, want 32", got)
	}
}

func TestVec4(t *testing.T) {
	v := Vec4{1, 2, 2, 4}
	if got := v.Length(); got != 5 {
		t.Errorf("Vec4.Length() = %v, want 5", got)
	}
	if got := v.XYZ(); got != (Vec3{1, 2, 2}) {
		t.Errorf("Vec4.XYZ() = %v", got)
	}
	if got := v.Scale(0.5).Add(Vec4{1, 1, 1, 1}); got != (Vec4{1.5, 2, 2, 3}) {
		t.Errorf("Vec4 scale/add = %v", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0.5, 0.5},
		{300, 255},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in, 0, 255); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := Clamp(int16(-40000/2), -100, 100); got != -100 {
		t.Errorf("Clamp(int16) = %v, want -100", got)
	}
}
