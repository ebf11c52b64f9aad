// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r3voronoi

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

const (
	defaultVolumeTolerance   = 1e-3
	defaultPositionTolerance = 1e-5
	defaultCentroidTolerance = 1e-3
)

// Tolerances are the absolute limits used when comparing two cells.
type Tolerances struct {
	Volume   float64
	Position float64
	Centroid float64
}

func DefaultTolerances() Tolerances {
	return Tolerances{
		Volume:   defaultVolumeTolerance,
		Position: defaultPositionTolerance,
		Centroid: defaultCentroidTolerance,
	}
}

type MismatchKind int

const (
	MismatchLength MismatchKind = iota
	MismatchID
	MismatchVolume
	MismatchPosition
	MismatchCentroid
)

func (k MismatchKind) String() string {
	switch k {
	case MismatchLength:
		return "length"
	case MismatchID:
		return "id"
	case MismatchVolume:
		return "volume"
	case MismatchPosition:
		return "position"
	case MismatchCentroid:
		return "centroid"
	}
	return fmt.Sprintf("MismatchKind(%d)", int(k))
}

// MismatchError describes the first disagreement between two results.
type MismatchError struct {
	Kind MismatchKind
	// ID is the cell the check failed on, -1 for MismatchLength.
	ID int
	// A and B are the compared values.
	A, B any
	// Delta is the measured difference and Tolerance the violated limit.
	Delta     float64
	Tolerance float64
}

func (e *MismatchError) Error() string {
	switch e.Kind {
	case MismatchLength:
		return fmt.Sprintf("%v: %d cells vs %d cells", ErrValidationMismatch, e.A, e.B)
	case MismatchID:
		return fmt.Sprintf("%v: cell ids %v vs %v", ErrValidationMismatch, e.A, e.B)
	}
	return fmt.Sprintf("%v: cell %d %v %v vs %v (delta %g, tolerance %g)",
		ErrValidationMismatch, e.ID, e.Kind, e.A, e.B, e.Delta, e.Tolerance)
}

func (e *MismatchError) Unwrap() error {
	return ErrValidationMismatch
}

// Validate checks that a and b describe the same tessellation using the
// default tolerances. It stops at the first mismatch.
func Validate(a, b []Cell) error {
	return ValidateWithTolerances(a, b, DefaultTolerances())
}

// ValidateWithTolerances sorts copies of a and b by ID and compares them pair
// by pair. Only volume, position and centroid are compared: the boundary of a
// cell has no unique face decomposition.
func ValidateWithTolerances(a, b []Cell, tol Tolerances) error {
	sa, sb := sortedByID(a), sortedByID(b)
	if len(sa) != len(sb) {
		err := &MismatchError{Kind: MismatchLength, ID: -1, A: len(sa), B: len(sb)}
		Logger().Warn("validation failed", "err", err)
		return err
	}
	for i := range sa {
		if err := ComparePair(&sa[i], &sb[i], tol); err != nil {
			Logger().Warn("validation failed", "err", err)
			return err
		}
	}
	Logger().Info("tessellations agree", "cells", len(sa))
	return nil
}

// ComparePair compares two cells that should share a generator.
func ComparePair(a, b *Cell, tol Tolerances) error {
	if a.ID != b.ID {
		return &MismatchError{Kind: MismatchID, ID: a.ID, A: a.ID, B: b.ID}
	}
	if d := math.Abs(a.Volume - b.Volume); !(d < tol.Volume) {
		return &MismatchError{Kind: MismatchVolume, ID: a.ID, A: a.Volume, B: b.Volume, Delta: d, Tolerance: tol.Volume}
	}
	if d := a.Position.Distance(b.Position); !(d < tol.Position) {
		return &MismatchError{Kind: MismatchPosition, ID: a.ID, A: a.Position, B: b.Position, Delta: d, Tolerance: tol.Position}
	}
	if d := a.Centroid.Distance(b.Centroid); !(d < tol.Centroid) {
		return &MismatchError{Kind: MismatchCentroid, ID: a.ID, A: a.Centroid, B: b.Centroid, Delta: d, Tolerance: tol.Centroid}
	}
	return nil
}

// Mismatches compares every pair instead of stopping at the first failure.
// A length mismatch is still returned as an error.
func Mismatches(a, b []Cell, tol Tolerances) ([]*MismatchError, error) {
	sa, sb := sortedByID(a), sortedByID(b)
	if len(sa) != len(sb) {
		return nil, &MismatchError{Kind: MismatchLength, ID: -1, A: len(sa), B: len(sb)}
	}
	var out []*MismatchError
	for i := range sa {
		if err := ComparePair(&sa[i], &sb[i], tol); err != nil {
			out = append(out, err.(*MismatchError))
		}
	}
	return out, nil
}

func sortedByID(cells []Cell) []Cell {
	out := slices.Clone(cells)
	slices.SortFunc(out, func(x, y Cell) int { return cmp.Compare(x.ID, y.ID) })
	return out
}
