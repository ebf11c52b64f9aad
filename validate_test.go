// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r3voronoi

import (
	"errors"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
)

func sampleCells() []Cell {
	return []Cell{
		{ID: 0, Volume: 1.5, Position: r3.Vector{X: 1}, Centroid: r3.Vector{Y: 0.1}},
		{ID: 1, Volume: 2.5, Position: r3.Vector{X: 2}, Centroid: r3.Vector{Y: 0.2}},
		{ID: 2, Volume: 3.5, Position: r3.Vector{X: 3}, Centroid: r3.Vector{Y: 0.3}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(b []Cell) []Cell
		wantKind MismatchKind
		wantID   int
		wantErr  bool
	}{
		{"equal", func(b []Cell) []Cell { return b }, 0, 0, false},
		{"shuffled", func(b []Cell) []Cell { return []Cell{b[2], b[0], b[1]} }, 0, 0, false},
		{"volume within tolerance", func(b []Cell) []Cell { b[1].Volume += 5e-4; return b }, 0, 0, false},
		{"centroid within tolerance", func(b []Cell) []Cell { b[1].Centroid.Z += 5e-4; return b }, 0, 0, false},
		{"length", func(b []Cell) []Cell { return b[:2] }, MismatchLength, -1, true},
		{"id", func(b []Cell) []Cell { b[2].ID = 7; return b }, MismatchID, 2, true},
		{"volume", func(b []Cell) []Cell { b[1].Volume += 2e-3; return b }, MismatchVolume, 1, true},
		{"position", func(b []Cell) []Cell { b[2].Position.Z += 1e-4; return b }, MismatchPosition, 2, true},
		{"centroid", func(b []Cell) []Cell { b[0].Centroid.X -= 2e-3; return b }, MismatchCentroid, 0, true},
		{"nan volume", func(b []Cell) []Cell { b[0].Volume = nan(); return b }, MismatchVolume, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := sampleCells()
			b := tt.mutate(sampleCells())
			err := Validate(a, b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(...) error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrValidationMismatch) {
				t.Errorf("errors.Is(%v, ErrValidationMismatch) = false, want true", err)
			}
			var me *MismatchError
			if !errors.As(err, &me) {
				t.Fatalf("errors.As(%v, *MismatchError) = false, want true", err)
			}
			if me.Kind != tt.wantKind || me.ID != tt.wantID {
				t.Errorf("mismatch = (%v, %d), want (%v, %d)", me.Kind, me.ID, tt.wantKind, tt.wantID)
			}
		})
	}
}

func TestValidate_FailFast(t *testing.T) {
	a := sampleCells()
	b := sampleCells()
	b[0].Volume += 1
	b[2].Volume += 1
	var me *MismatchError
	if err := Validate(a, b); !errors.As(err, &me) {
		t.Fatalf("Validate(...) error = %v, want *MismatchError", err)
	}
	if me.ID != 0 {
		t.Errorf("first mismatch ID = %v, want 0", me.ID)
	}
	if me.A != 1.5 || me.B != 2.5 {
		t.Errorf("mismatch values = %v, %v, want 1.5, 2.5", me.A, me.B)
	}
}

func TestValidate_DoesNotReorderInput(t *testing.T) {
	a := sampleCells()
	b := []Cell{a[2], a[1], a[0]}
	if err := Validate(a, b); err != nil {
		t.Fatalf("Validate(...) error = %v, want nil", err)
	}
	want := []int{2, 1, 0}
	got := []int{b[0].ID, b[1].ID, b[2].ID}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("input order changed (-want +got):\n%s", diff)
	}
}

func TestValidateWithTolerances(t *testing.T) {
	a := sampleCells()
	b := sampleCells()
	b[1].Volume += 0.05
	if err := Validate(a, b); err == nil {
		t.Errorf("Validate(...) error = nil, want non-nil")
	}
	tol := DefaultTolerances()
	tol.Volume = 0.1
	if err := ValidateWithTolerances(a, b, tol); err != nil {
		t.Errorf("ValidateWithTolerances(..., volume 0.1) error = %v, want nil", err)
	}
}

func TestMismatches(t *testing.T) {
	a := sampleCells()
	b := sampleCells()
	b[0].Centroid.X += 1
	b[2].Position.Y += 1

	got, err := Mismatches(a, b, DefaultTolerances())
	if err != nil {
		t.Fatalf("Mismatches(...) error = %v, want nil", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(Mismatches(...)) = %v, want 2", len(got))
	}
	if got[0].ID != 0 || got[0].Kind != MismatchCentroid {
		t.Errorf("got[0] = (%d, %v), want (0, centroid)", got[0].ID, got[0].Kind)
	}
	if got[1].ID != 2 || got[1].Kind != MismatchPosition {
		t.Errorf("got[1] = (%d, %v), want (2, position)", got[1].ID, got[1].Kind)
	}

	if _, err := Mismatches(a, b[:1], DefaultTolerances()); !errors.Is(err, ErrValidationMismatch) {
		t.Errorf("Mismatches(length differs) error = %v, want ErrValidationMismatch", err)
	}
}

func TestMismatchKind_String(t *testing.T) {
	tests := []struct {
		kind MismatchKind
		want string
	}{
		{MismatchLength, "length"},
		{MismatchID, "id"},
		{MismatchVolume, "volume"},
		{MismatchPosition, "position"},
		{MismatchCentroid, "centroid"},
		{MismatchKind(42), "MismatchKind(42)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("MismatchKind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
