// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r3voronoi

import (
	"fmt"
	"math"

	"github.com/2dChan/r3voronoi/r3hull"
	"github.com/golang/geo/r3"
)

// HullBackend builds cells by walking an r3hull container.
type HullBackend struct {
	grid *[3]int
	opts []r3hull.Option
}

type HullOption func(*HullBackend)

// WithGrid overrides the container grid computed by ContainerGrid.
func WithGrid(grid [3]int) HullOption {
	return func(b *HullBackend) {
		b.grid = &grid
	}
}

func WithContainerOptions(setters ...r3hull.Option) HullOption {
	return func(b *HullBackend) {
		b.opts = append(b.opts, setters...)
	}
}

func NewHullBackend(setters ...HullOption) *HullBackend {
	b := &HullBackend{}
	for _, set := range setters {
		set(b)
	}
	return b
}

func (b *HullBackend) Name() string {
	return "r3hull"
}

// ContainerGrid returns the block grid for numPoints points in a box of the
// given size: the cube root of the point count spread over the axes by their
// share of the box, plus one.
func ContainerGrid(size r3.Vector, numPoints int) [3]int {
	rel := size.Mul(2 / (size.X + size.Y + size.Z))
	n := math.Ceil(math.Cbrt(float64(numPoints)))
	return [3]int{
		int(n*rel.X) + 1,
		int(n*rel.Y) + 1,
		int(n*rel.Z) + 1,
	}
}

func (b *HullBackend) Build(size r3.Vector, points []r3.Vector) ([]Cell, error) {
	grid := ContainerGrid(size, len(points))
	if b.grid != nil {
		grid = *b.grid
	}
	con, err := r3hull.NewContainer(r3.Vector{}, size, grid, b.opts...)
	if err != nil {
		return nil, fmt.Errorf("hull backend: %w", err)
	}
	for i, p := range points {
		if err := con.Put(i, p); err != nil {
			return nil, fmt.Errorf("hull backend: %w", err)
		}
	}
	return timed("r3hull cells", func() ([]Cell, error) {
		return hullCells(con, len(points))
	})
}

func hullCells(con *r3hull.Container, n int) ([]Cell, error) {
	cells := make([]Cell, 0, n)
	loop := r3hull.NewLoopAll(con)
	if !loop.Start() {
		if n != 0 {
			return nil, fmt.Errorf("%w: empty traversal for %d points", ErrTopologyMismatch, n)
		}
		return cells, nil
	}

	seen := make([]bool, n)
	for {
		id := loop.ParticleID()
		if id < 0 || id >= n || seen[id] {
			return nil, fmt.Errorf("%w: unexpected particle %d", ErrTopologyMismatch, id)
		}
		seen[id] = true

		vc, err := con.ComputeCell(loop)
		if err != nil {
			return nil, fmt.Errorf("%w: no cell for particle %d: %w", ErrTopologyMismatch, id, err)
		}
		cell, err := decodeHullCell(id, loop.Position(), vc)
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell)

		if !loop.Inc() {
			break
		}
	}
	if len(cells) != n {
		return nil, fmt.Errorf("%w: traversal ended after %d of %d points", ErrTopologyMismatch, len(cells), n)
	}
	return cells, nil
}

func decodeHullCell(id int, pos r3.Vector, vc *r3hull.VoroCell) (Cell, error) {
	vs, err := vectors(vc.VerticesLocal())
	if err != nil {
		return Cell{}, fmt.Errorf("particle %d vertices: %w", id, err)
	}
	normals, err := vectors(vc.Normals())
	if err != nil {
		return Cell{}, fmt.Errorf("particle %d normals: %w", id, err)
	}
	faces, err := decodeFaces(vc.FaceOrders(), vc.FaceVertices())
	if err != nil {
		return Cell{}, fmt.Errorf("particle %d: %w", id, err)
	}
	if len(normals) != len(faces) || len(vc.Neighbors()) != len(faces) {
		return Cell{}, fmt.Errorf("%w: particle %d has %d faces, %d normals, %d neighbors",
			ErrTopologyMismatch, id, len(faces), len(normals), len(vc.Neighbors()))
	}
	neighbors := make([]int, len(faces))
	for f, nb := range vc.Neighbors() {
		neighbors[f] = hullNeighbor(nb)
	}

	ctr := vc.Centroid()
	return Cell{
		ID:          id,
		Vertices:    vs,
		Faces:       faces,
		Volume:      vc.Volume(),
		Position:    pos,
		Centroid:    r3.Vector{X: ctr[0], Y: ctr[1], Z: ctr[2]},
		FaceNormals: normals,
		Neighbors:   neighbors,
	}, nil
}

func vectors(flat []float64) ([]r3.Vector, error) {
	if len(flat)%3 != 0 {
		return nil, fmt.Errorf("%w: %d coordinates", ErrTopologyMismatch, len(flat))
	}
	vs := make([]r3.Vector, len(flat)/3)
	for i := range vs {
		vs[i] = r3.Vector{X: flat[3*i], Y: flat[3*i+1], Z: flat[3*i+2]}
	}
	return vs, nil
}

func hullNeighbor(nb int) int {
	switch nb {
	case r3hull.WallXMin:
		return WallXMin
	case r3hull.WallXMax:
		return WallXMax
	case r3hull.WallYMin:
		return WallYMin
	case r3hull.WallYMax:
		return WallYMax
	case r3hull.WallZMin:
		return WallZMin
	case r3hull.WallZMax:
		return WallZMax
	}
	return nb
}

// faceDecoder splits a flattened face stream where every face is stored as
// its order followed by that many vertex indices. face walks the order list,
// pos walks the stream.
type faceDecoder struct {
	orders []int
	stream []int
	face   int
	pos    int
}

// next returns the following face, or false once every order is consumed.
func (d *faceDecoder) next() ([]int, bool, error) {
	if d.face >= len(d.orders) {
		return nil, false, nil
	}
	order := d.orders[d.face]
	if d.pos >= len(d.stream) {
		return nil, false, fmt.Errorf("%w: face %d starts past the end of %d indices",
			ErrTopologyMismatch, d.face, len(d.stream))
	}
	if d.stream[d.pos] != order {
		return nil, false, fmt.Errorf("%w: face %d has order %d, stream says %d",
			ErrTopologyMismatch, d.face, order, d.stream[d.pos])
	}
	d.pos++
	if order < 0 || d.pos+order > len(d.stream) {
		return nil, false, fmt.Errorf("%w: face %d of order %d overruns %d indices",
			ErrTopologyMismatch, d.face, order, len(d.stream))
	}
	face := append([]int(nil), d.stream[d.pos:d.pos+order]...)
	d.pos += order
	d.face++
	return face, true, nil
}

// done checks that the stream was consumed exactly.
func (d *faceDecoder) done() error {
	if d.face != len(d.orders) || d.pos != len(d.stream) {
		return fmt.Errorf("%w: consumed %d of %d face indices", ErrTopologyMismatch, d.pos, len(d.stream))
	}
	return nil
}

func decodeFaces(orders, stream []int) ([][]int, error) {
	d := faceDecoder{orders: orders, stream: stream}
	faces := make([][]int, 0, len(orders))
	for {
		face, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		faces = append(faces, face)
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return faces, nil
}
