// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package r3clip computes bounded 3-D Voronoi tessellations by clipping the
// bounding box of every generator with the bisector planes of its nearest
// neighbours. All cells are built at once and exposed in absolute
// coordinates.
package r3clip

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

const (
	defaultEps       = 1e-10
	defaultNeighbors = 24
)

var (
	ErrCoincidentPoints = errors.New("r3clip: coincident generators")
	ErrOutsideBox       = errors.New("r3clip: generator outside the box")
	ErrInvalidBox       = errors.New("r3clip: box width must be positive")
)

// NoNeighbor marks a face that lies on the box.
const NoNeighbor = -1

// Wall identifies the box face a cell face lies on.
type Wall int

const (
	NoWall Wall = iota
	WallXMin
	WallXMax
	WallYMin
	WallYMax
	WallZMin
	WallZMax
)

type Options struct {
	// Eps is the clipping tolerance relative to the largest box width.
	Eps float64
	// Neighbors is the size of the first nearest-neighbour query per cell.
	Neighbors int
}

type Option func(*Options) error

func WithEps(eps float64) Option {
	return func(o *Options) error {
		if eps <= 0 {
			return fmt.Errorf("WithEps: eps must be positive, got %v", eps)
		}
		o.Eps = eps
		return nil
	}
}

func WithNeighbors(k int) Option {
	return func(o *Options) error {
		if k <= 0 {
			return fmt.Errorf("WithNeighbors: k must be positive, got %d", k)
		}
		o.Neighbors = k
		return nil
	}
}

// Face is a planar face of a ConvexCell.
type Face struct {
	// NOTE: Sort in CCW (look from outside the cell)
	Vertices []int
	// Neighbor is the generator on the other side, or NoNeighbor on walls.
	Neighbor int
	Wall     Wall

	normal r3.Vector
	offset float64
}

// Normal returns the outward unit normal.
func (f Face) Normal() r3.Vector {
	return f.normal
}

// ConvexCell is the Voronoi cell of one generator.
type ConvexCell struct {
	Idx      int
	Loc      r3.Vector
	Vertices []r3.Vector
	Faces    []Face

	volume   float64
	centroid r3.Vector
}

func (c *ConvexCell) NumFaces() int {
	return len(c.Faces)
}

func (c *ConvexCell) Face(f int) Face {
	if f < 0 || f >= len(c.Faces) {
		panic("Face: index out of range")
	}
	return c.Faces[f]
}

func (c *ConvexCell) FaceVertices(f int) []int {
	return c.Face(f).Vertices
}

// Volume returns the volume integrated over the face loops. It is positive
// for the counter-clockwise loops produced by Build.
func (c *ConvexCell) Volume() float64 {
	return c.volume
}

// Centroid returns the centroid in absolute coordinates.
func (c *ConvexCell) Centroid() r3.Vector {
	return c.centroid
}

// Integrator holds every cell of a tessellation, indexed like the input
// points.
type Integrator struct {
	Anchor r3.Vector
	Width  r3.Vector

	cells []ConvexCell
}

func (it *Integrator) NumCells() int {
	return len(it.cells)
}

func (it *Integrator) Cell(i int) *ConvexCell {
	if i < 0 || i >= len(it.cells) {
		panic("Cell: index out of range")
	}
	return &it.cells[i]
}

func (it *Integrator) Cells() []ConvexCell {
	return it.cells
}

// Build tessellates the box [anchor, anchor+width] around points.
func Build(points []r3.Vector, anchor, width r3.Vector, setters ...Option) (*Integrator, error) {
	opts := Options{
		Eps:       defaultEps,
		Neighbors: defaultNeighbors,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}
	if width.X <= 0 || width.Y <= 0 || width.Z <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBox, width)
	}

	hi := anchor.Add(width)
	all := make(sites, len(points))
	for i, p := range points {
		if p.X < anchor.X || p.Y < anchor.Y || p.Z < anchor.Z ||
			p.X > hi.X || p.Y > hi.Y || p.Z > hi.Z {
			return nil, fmt.Errorf("%w: point %d at %v", ErrOutsideBox, i, p)
		}
		all[i] = site{idx: i, pos: p}
	}

	it := &Integrator{
		Anchor: anchor,
		Width:  width,
		cells:  make([]ConvexCell, len(points)),
	}
	if len(points) == 0 {
		return it, nil
	}

	eps := opts.Eps * max(width.X, width.Y, width.Z)
	tree := kdtree.New(all, false)
	for i, p := range points {
		poly, err := buildCell(tree, i, p, len(points), anchor, width, opts.Neighbors, eps)
		if err != nil {
			return nil, err
		}
		vol, moment := poly.integrate(p)
		it.cells[i] = ConvexCell{
			Idx:      i,
			Loc:      p,
			Vertices: poly.verts,
			Faces:    poly.faces,
			volume:   vol,
			centroid: p.Add(moment.Mul(1 / vol)),
		}
	}
	return it, nil
}

func buildCell(tree *kdtree.Tree, i int, p r3.Vector, n int, anchor, width r3.Vector, k int, eps float64) (*polyhedron, error) {
	q := site{idx: i, pos: p}
	poly := newBox(anchor, width)

	keeper := kdtree.NewNKeeper(min(k, n-1) + 1)
	tree.NearestSet(keeper, q)
	near := collect(keeper.Heap, i)
	if err := clipAll(poly, p, near, eps); err != nil {
		return nil, fmt.Errorf("cell %d: %w", i, err)
	}

	// Bisectors of generators farther than twice the cell radius cannot cut
	// the cell.
	var searched float64
	for _, nb := range near {
		searched = max(searched, nb.dist2)
	}
	if len(near) == n-1 || 4*poly.maxDist2(p) <= searched {
		return poly, nil
	}

	seen := make(map[int]bool, len(near))
	for _, nb := range near {
		seen[nb.idx] = true
	}
	far := kdtree.NewDistKeeper(4 * poly.maxDist2(p))
	tree.NearestSet(far, q)
	rest := collect(far.Heap, i)
	rest = slices.DeleteFunc(rest, func(nb neighbor) bool { return seen[nb.idx] })
	if err := clipAll(poly, p, rest, eps); err != nil {
		return nil, fmt.Errorf("cell %d: %w", i, err)
	}
	return poly, nil
}

func clipAll(poly *polyhedron, p r3.Vector, near []neighbor, eps float64) error {
	sort.Slice(near, func(a, b int) bool { return near[a].dist2 < near[b].dist2 })
	for _, nb := range near {
		if nb.dist2 == 0 {
			return fmt.Errorf("%w: %d", ErrCoincidentPoints, nb.idx)
		}
		poly.clip(bisector(p, nb.pos), nb.idx, eps)
	}
	return nil
}
