// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r3voronoi

import (
	"fmt"
	"math"

	"github.com/2dChan/r3voronoi/r3clip"
	"github.com/golang/geo/r3"
)

// ClipBackend builds cells with the r3clip integrator.
type ClipBackend struct {
	opts []r3clip.Option
}

func NewClipBackend(setters ...r3clip.Option) *ClipBackend {
	return &ClipBackend{opts: setters}
}

func (b *ClipBackend) Name() string {
	return "r3clip"
}

func (b *ClipBackend) Build(size r3.Vector, points []r3.Vector) ([]Cell, error) {
	it, err := timed("r3clip.Build", func() (*r3clip.Integrator, error) {
		return r3clip.Build(points, r3.Vector{}, size, b.opts...)
	})
	if err != nil {
		return nil, fmt.Errorf("clip backend: %w", err)
	}
	return timed("r3clip extract", func() ([]Cell, error) {
		return clipCells(it, points)
	})
}

func clipCells(it *r3clip.Integrator, points []r3.Vector) ([]Cell, error) {
	if it.NumCells() != len(points) {
		return nil, fmt.Errorf("%w: %d cells for %d points", ErrTopologyMismatch, it.NumCells(), len(points))
	}

	cells := make([]Cell, it.NumCells())
	for i := range it.NumCells() {
		cc := it.Cell(i)
		if cc.Idx != i {
			return nil, fmt.Errorf("%w: cell %d reports index %d", ErrTopologyMismatch, i, cc.Idx)
		}
		if cc.Loc != points[i] {
			return nil, fmt.Errorf("%w: cell %d located at %v, point is %v", ErrTopologyMismatch, i, cc.Loc, points[i])
		}

		vs := make([]r3.Vector, len(cc.Vertices))
		for k, v := range cc.Vertices {
			vs[k] = v.Sub(cc.Loc)
		}
		n := cc.NumFaces()
		faces := make([][]int, n)
		normals := make([]r3.Vector, n)
		neighbors := make([]int, n)
		for f := range n {
			face := cc.Face(f)
			faces[f] = append([]int(nil), face.Vertices...)
			normals[f] = face.Normal()
			neighbors[f] = clipNeighbor(face)
		}

		cells[i] = Cell{
			ID:          cc.Idx,
			Vertices:    vs,
			Faces:       faces,
			Volume:      math.Abs(cc.Volume()),
			Position:    cc.Loc,
			Centroid:    cc.Centroid().Sub(cc.Loc),
			FaceNormals: normals,
			Neighbors:   neighbors,
		}
	}
	return cells, nil
}

func clipNeighbor(f r3clip.Face) int {
	switch f.Wall {
	case r3clip.WallXMin:
		return WallXMin
	case r3clip.WallXMax:
		return WallXMax
	case r3clip.WallYMin:
		return WallYMin
	case r3clip.WallYMax:
		return WallYMax
	case r3clip.WallZMin:
		return WallZMin
	case r3clip.WallZMax:
		return WallZMax
	}
	return f.Neighbor
}
