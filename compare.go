// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r3voronoi

import (
	"fmt"
	"slices"
	"time"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Result is the output of one backend.
type Result struct {
	Backend string
	Cells   []Cell
	Elapsed time.Duration
}

// TotalVolume returns the summed volume of all cells.
func (r *Result) TotalVolume() float64 {
	return floats.Sum(volumes(r.Cells))
}

// MeanVolume returns the mean cell volume, or 0 without cells.
func (r *Result) MeanVolume() float64 {
	if len(r.Cells) == 0 {
		return 0
	}
	return stat.Mean(volumes(r.Cells), nil)
}

func volumes(cells []Cell) []float64 {
	vs := make([]float64, len(cells))
	for i := range cells {
		vs[i] = cells[i].Volume
	}
	return vs
}

// Comparison holds two validated tessellations of the same points. It is not
// modified after Compare returns.
type Comparison struct {
	Size   r3.Vector
	Points []r3.Vector
	A, B   Result
}

// Compare runs a and b one after the other on private copies of points and
// validates their results with the default tolerances.
func Compare(size r3.Vector, points []r3.Vector, a, b Backend) (*Comparison, error) {
	ra, err := run(a, size, points)
	if err != nil {
		return nil, err
	}
	rb, err := run(b, size, points)
	if err != nil {
		return nil, err
	}
	if err := Validate(ra.Cells, rb.Cells); err != nil {
		return nil, fmt.Errorf("%s vs %s: %w", ra.Backend, rb.Backend, err)
	}
	Logger().Info("comparison finished",
		"points", len(points),
		a.Name(), ra.Elapsed,
		b.Name(), rb.Elapsed,
		"volume", ra.TotalVolume())
	return &Comparison{
		Size:   size,
		Points: slices.Clone(points),
		A:      ra,
		B:      rb,
	}, nil
}

func run(b Backend, size r3.Vector, points []r3.Vector) (Result, error) {
	t0 := time.Now()
	cells, err := b.Build(size, slices.Clone(points))
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", b.Name(), err)
	}
	for i := range cells {
		if err := cells[i].Check(); err != nil {
			return Result{}, fmt.Errorf("%s: %w: %w", b.Name(), ErrTopologyMismatch, err)
		}
	}
	return Result{Backend: b.Name(), Cells: cells, Elapsed: time.Since(t0)}, nil
}

// Masked returns the cells whose generator is flagged in mask.
func Masked(cells []Cell, mask []bool) []Cell {
	var out []Cell
	for _, c := range cells {
		if c.ID >= 0 && c.ID < len(mask) && mask[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
