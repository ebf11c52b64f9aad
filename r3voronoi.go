// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package r3voronoi cross-validates bounded 3-D Voronoi tessellations computed
// by independent engines. Backends translate the native output of an engine
// into canonical Cells; Validate checks that two results agree.
package r3voronoi

import (
	"errors"

	"github.com/golang/geo/r3"
)

var (
	// ErrTopologyMismatch reports an engine result that breaks the contract
	// of its backend. The whole batch is discarded.
	ErrTopologyMismatch = errors.New("r3voronoi: topology mismatch")
	// ErrValidationMismatch reports two results that disagree.
	ErrValidationMismatch = errors.New("r3voronoi: validation mismatch")
)

// Wall ids used in Cell.Neighbors for faces on the bounding box.
const (
	WallXMin = -1 - iota
	WallXMax
	WallYMin
	WallYMax
	WallZMin
	WallZMax
)

// Cell is the canonical description of a Voronoi cell.
type Cell struct {
	// ID is the index of the generating point.
	ID int
	// Vertices are relative to Position.
	Vertices []r3.Vector
	// NOTE: Sort in CCW per face (look from outside the cell)
	Faces [][]int
	// Volume is never negative.
	Volume float64
	// Position is the generating point.
	Position r3.Vector
	// Centroid is relative to Position.
	Centroid r3.Vector
	// FaceNormals are the outward normals, aligned with Faces.
	FaceNormals []r3.Vector
	// Neighbors holds the ID behind every face, or a Wall id.
	Neighbors []int
}

// Backend builds canonical cells for every point inside the box [0, size].
// Implementations must not modify points.
type Backend interface {
	Name() string
	Build(size r3.Vector, points []r3.Vector) ([]Cell, error)
}
