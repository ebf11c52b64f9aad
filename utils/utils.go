// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package utils provides utility functions for generating point clouds for 3-D Voronoi tessellations.

package utils

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
)

const (
	defaultShellThickness = 2
)

var (
	ErrInvalidSize  = errors.New("utils: box size must be positive on every axis")
	ErrInvalidCount = errors.New("utils: point count must not be negative")
	ErrEmptyGrid    = errors.New("utils: grid resolution is zero along an axis")
	ErrInvalidShell = errors.New("utils: shell thickness must be positive")
)

// GenerateRandomPoints generates cnt uniformly distributed points in the box [0, size].
// The seed parameter ensures reproducibility.
func GenerateRandomPoints(size r3.Vector, cnt int, seed int64) ([]r3.Vector, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if cnt < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, cnt)
	}
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	points := make([]r3.Vector, cnt)

	for i := range cnt {
		points[i] = r3.Vector{
			X: random.Float64() * size.X,
			Y: random.Float64() * size.Y,
			Z: random.Float64() * size.Z,
		}
	}

	return points, nil
}

type GridOptions struct {
	// ShellThickness is the number of grid layers sampled next to every face
	// of the box. Deeper cells are skipped.
	ShellThickness int
}

type GridOption func(*GridOptions) error

func WithShellThickness(th int) GridOption {
	return func(o *GridOptions) error {
		if th <= 0 {
			return fmt.Errorf("WithShellThickness: %w, got %d", ErrInvalidShell, th)
		}
		o.ShellThickness = th
		return nil
	}
}

// GridResolution spreads the cube root of cnt over the axes in proportion to
// the aspect ratio of size. The product of the result is generally not cnt.
func GridResolution(size r3.Vector, cnt int) ([3]int, error) {
	if err := checkSize(size); err != nil {
		return [3]int{}, err
	}
	if cnt < 0 {
		return [3]int{}, fmt.Errorf("%w: %d", ErrInvalidCount, cnt)
	}
	rel := size.Mul(1 / math.Cbrt(size.X*size.Y*size.Z))
	c := math.Cbrt(float64(cnt))
	res := [3]int{
		int(math.Round(rel.X * c)),
		int(math.Round(rel.Y * c)),
		int(math.Round(rel.Z * c)),
	}
	if res[0] == 0 || res[1] == 0 || res[2] == 0 {
		return res, fmt.Errorf("%w: %v for %d points", ErrEmptyGrid, res, cnt)
	}
	return res, nil
}

// GeneratePerturbedGrid places one point near the center of every cell of a
// grid with GridResolution(size, cnt) cells, moved by up to perturbation/2 grid
// units along each axis and clamped into the box. Only cells within the shell
// thickness of a face of the grid are sampled.
//
// The returned mask flags points in the outermost layer of the grid.
func GeneratePerturbedGrid(size r3.Vector, cnt int, perturbation float64, seed int64,
	setters ...GridOption) ([]r3.Vector, []bool, error) {
	opts := GridOptions{
		ShellThickness: defaultShellThickness,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, nil, err
		}
	}
	res, err := GridResolution(size, cnt)
	if err != nil {
		return nil, nil, err
	}

	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	jitter := func() float64 {
		return perturbation * (random.Float64() - 0.5)
	}
	nx, ny, nz := res[0], res[1], res[2]
	unit := r3.Vector{X: size.X / float64(nx), Y: size.Y / float64(ny), Z: size.Z / float64(nz)}
	th := opts.ShellThickness

	var points []r3.Vector
	var mask []bool
	for i := range nx {
		for j := range ny {
			for k := range nz {
				if inner(i, nx, th) && inner(j, ny, th) && inner(k, nz, th) {
					continue
				}
				p := r3.Vector{
					X: (float64(i) + 0.5 + jitter()) * unit.X,
					Y: (float64(j) + 0.5 + jitter()) * unit.Y,
					Z: (float64(k) + 0.5 + jitter()) * unit.Z,
				}
				points = append(points, clamp(p, size))
				mask = append(mask, i == 0 || i == nx-1 || j == 0 || j == ny-1 || k == 0 || k == nz-1)
			}
		}
	}

	return points, mask, nil
}

func inner(i, n, th int) bool {
	return i >= th && i < n-th
}

func clamp(p, size r3.Vector) r3.Vector {
	return r3.Vector{
		X: math.Min(math.Max(p.X, 0), size.X),
		Y: math.Min(math.Max(p.Y, 0), size.Y),
		Z: math.Min(math.Max(p.Z, 0), size.Z),
	}
}

func checkSize(size r3.Vector) error {
	if !(size.X > 0 && size.Y > 0 && size.Z > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSize, size)
	}
	return nil
}
