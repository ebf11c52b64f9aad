// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package utils

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
)

var box = r3.Vector{X: 10, Y: 10, Z: 10}

func TestGenerateRandomPoints_Length(t *testing.T) {
	tests := []struct {
		name string
		cnt  int
		seed int64
	}{
		{"zero points", 0, 42},
		{"one point", 1, 42},
		{"ten points", 10, 0},
		{"hundred points", 100, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := GenerateRandomPoints(box, tt.cnt, tt.seed)
			if err != nil {
				t.Fatalf("GenerateRandomPoints(%v, %v, %v) error = %v, want nil", box, tt.cnt, tt.seed, err)
			}
			if len(points) != tt.cnt {
				t.Errorf("GenerateRandomPoints(%v, %v, %v) len = %v, want %v", box, tt.cnt, tt.seed,
					len(points), tt.cnt)
			}
		})
	}
}

func TestGenerateRandomPoints_InsideBox(t *testing.T) {
	size := r3.Vector{X: 3, Y: 0.5, Z: 7}
	points, err := GenerateRandomPoints(size, 500, 7)
	if err != nil {
		t.Fatalf("GenerateRandomPoints(...) error = %v, want nil", err)
	}
	for i, p := range points {
		if p.X < 0 || p.X > size.X || p.Y < 0 || p.Y > size.Y || p.Z < 0 || p.Z > size.Z {
			t.Errorf("points[%d] = %v, outside [0, %v]", i, p, size)
		}
	}
}

func TestGenerateRandomPoints_Determinism(t *testing.T) {
	a, _ := GenerateRandomPoints(box, 10, 0)
	b, _ := GenerateRandomPoints(box, 10, 0)
	if diff := cmp.Diff(b, a); diff != "" {
		t.Errorf("GenerateRandomPoints(box, 10, 0) mismatch (-want +got):\n%v", diff)
	}
	c, _ := GenerateRandomPoints(box, 10, 1)
	if cmp.Equal(a, c) {
		t.Errorf("GenerateRandomPoints(box, 10, 0) and seed 1 returned the same points")
	}
}

func TestGenerateRandomPoints_Errors(t *testing.T) {
	tests := []struct {
		name string
		size r3.Vector
		cnt  int
		want error
	}{
		{"zero size", r3.Vector{X: 10, Y: 0, Z: 10}, 1, ErrInvalidSize},
		{"negative size", r3.Vector{X: -10, Y: 10, Z: 10}, 1, ErrInvalidSize},
		{"nan size", r3.Vector{X: math.NaN(), Y: 10, Z: 10}, 1, ErrInvalidSize},
		{"negative count", box, -1, ErrInvalidCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GenerateRandomPoints(tt.size, tt.cnt, 0); !errors.Is(err, tt.want) {
				t.Errorf("GenerateRandomPoints(%v, %v, 0) error = %v, want %v", tt.size, tt.cnt, err, tt.want)
			}
		})
	}
}

func TestGridResolution(t *testing.T) {
	tests := []struct {
		name string
		size r3.Vector
		cnt  int
		want [3]int
		err  error
	}{
		{"cube", box, 1000, [3]int{10, 10, 10}, nil},
		{"small cube", box, 27, [3]int{3, 3, 3}, nil},
		{"aspect", r3.Vector{X: 20, Y: 10, Z: 5}, 1000, [3]int{20, 10, 5}, nil},
		{"no points", box, 0, [3]int{}, ErrEmptyGrid},
		{"thin slab", r3.Vector{X: 10, Y: 10, Z: 1}, 8, [3]int{4, 4, 0}, ErrEmptyGrid},
		{"negative count", box, -8, [3]int{}, ErrInvalidCount},
		{"invalid size", r3.Vector{X: 1, Y: 1}, 8, [3]int{}, ErrInvalidSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GridResolution(tt.size, tt.cnt)
			if !errors.Is(err, tt.err) {
				t.Fatalf("GridResolution(%v, %v) error = %v, want %v", tt.size, tt.cnt, err, tt.err)
			}
			if got != tt.want {
				t.Errorf("GridResolution(%v, %v) = %v, want %v", tt.size, tt.cnt, got, tt.want)
			}
		})
	}
}

func TestGeneratePerturbedGrid_Shell(t *testing.T) {
	tests := []struct {
		name       string
		setters    []GridOption
		wantPoints int
		wantMasked int
	}{
		{"default", nil, 1000 - 6*6*6, 1000 - 8*8*8},
		{"thickness 1", []GridOption{WithShellThickness(1)}, 1000 - 8*8*8, 1000 - 8*8*8},
		{"thickness 3", []GridOption{WithShellThickness(3)}, 1000 - 4*4*4, 1000 - 8*8*8},
		{"full grid", []GridOption{WithShellThickness(5)}, 1000, 1000 - 8*8*8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, mask, err := GeneratePerturbedGrid(box, 1000, 0.5, 3, tt.setters...)
			if err != nil {
				t.Fatalf("GeneratePerturbedGrid(...) error = %v, want nil", err)
			}
			if len(points) != tt.wantPoints || len(mask) != len(points) {
				t.Fatalf("len(points), len(mask) = %v, %v, want %v, %v", len(points), len(mask), tt.wantPoints, tt.wantPoints)
			}
			masked := 0
			for _, m := range mask {
				if m {
					masked++
				}
			}
			if masked != tt.wantMasked {
				t.Errorf("masked points = %v, want %v", masked, tt.wantMasked)
			}
		})
	}
}

func TestGeneratePerturbedGrid_CellCenters(t *testing.T) {
	points, mask, err := GeneratePerturbedGrid(box, 27, 0, 0)
	if err != nil {
		t.Fatalf("GeneratePerturbedGrid(...) error = %v, want nil", err)
	}
	unit := 10.0 / 3
	center := r3.Vector{X: 5, Y: 5, Z: 5}
	for i, p := range points {
		for _, x := range []float64{p.X, p.Y, p.Z} {
			k := x/unit - 0.5
			if math.Abs(k-math.Round(k)) > 1e-12 {
				t.Errorf("points[%d] = %v, not at a cell center", i, p)
			}
		}
		if isCenter := p.Sub(center).Norm() < 1e-12; mask[i] == isCenter {
			t.Errorf("mask[%d] = %v for point %v", i, mask[i], p)
		}
	}
}

func TestGeneratePerturbedGrid_Perturbation(t *testing.T) {
	const perturbation = 0.8
	size := r3.Vector{X: 8, Y: 8, Z: 4}
	res, err := GridResolution(size, 512)
	if err != nil {
		t.Fatalf("GridResolution(...) error = %v, want nil", err)
	}
	points, _, err := GeneratePerturbedGrid(size, 512, perturbation, 11, WithShellThickness(8))
	if err != nil {
		t.Fatalf("GeneratePerturbedGrid(...) error = %v, want nil", err)
	}
	if len(points) != res[0]*res[1]*res[2] {
		t.Fatalf("len(points) = %v, want %v", len(points), res[0]*res[1]*res[2])
	}
	unit := r3.Vector{X: size.X / float64(res[0]), Y: size.Y / float64(res[1]), Z: size.Z / float64(res[2])}
	moved := false
	for i, p := range points {
		if p.X < 0 || p.X > size.X || p.Y < 0 || p.Y > size.Y || p.Z < 0 || p.Z > size.Z {
			t.Errorf("points[%d] = %v, outside the box", i, p)
		}
		for _, d := range []float64{
			math.Abs(p.X/unit.X - math.Floor(p.X/unit.X) - 0.5),
			math.Abs(p.Y/unit.Y - math.Floor(p.Y/unit.Y) - 0.5),
			math.Abs(p.Z/unit.Z - math.Floor(p.Z/unit.Z) - 0.5),
		} {
			if d > perturbation/2+1e-12 {
				t.Errorf("points[%d] = %v, moved %v grid units from its cell center", i, p, d)
			}
			if d > 1e-9 {
				moved = true
			}
		}
	}
	if !moved {
		t.Errorf("no point was perturbed")
	}
}

func TestGeneratePerturbedGrid_Errors(t *testing.T) {
	tests := []struct {
		name    string
		size    r3.Vector
		cnt     int
		setters []GridOption
		want    error
	}{
		{"zero shell", box, 27, []GridOption{WithShellThickness(0)}, ErrInvalidShell},
		{"negative shell", box, 27, []GridOption{WithShellThickness(-2)}, ErrInvalidShell},
		{"empty grid", box, 0, nil, ErrEmptyGrid},
		{"invalid size", r3.Vector{X: 10, Y: 10}, 27, nil, ErrInvalidSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := GeneratePerturbedGrid(tt.size, tt.cnt, 0, 0, tt.setters...); !errors.Is(err, tt.want) {
				t.Errorf("GeneratePerturbedGrid(...) error = %v, want %v", err, tt.want)
			}
		})
	}
}
