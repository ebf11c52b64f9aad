// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r3hull

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

const (
	// Vertices closer than mergeRel times the container extent are merged.
	mergeRel = 1e-8
)

// VoroCell is a computed cell in the frame of its particle.
type VoroCell struct {
	vertices     []float64
	faceOrders   []int
	faceVertices []int
	normals      []float64
	neighbors    []int
	volume       float64
	centroid     [3]float64
}

// VerticesLocal returns the vertex coordinates relative to the particle as
// x0, y0, z0, x1, ...
func (vc *VoroCell) VerticesLocal() []float64 {
	return vc.vertices
}

// FaceOrders returns the number of vertices of every face.
func (vc *VoroCell) FaceOrders() []int {
	return vc.faceOrders
}

// FaceVertices returns, for every face, its order followed by that many
// vertex indices in counter-clockwise order (look from outside the cell).
func (vc *VoroCell) FaceVertices() []int {
	return vc.faceVertices
}

// Normals returns the outward unit normal of every face as x0, y0, z0, x1, ...
func (vc *VoroCell) Normals() []float64 {
	return vc.normals
}

// Neighbors returns the particle id behind every face, or a wall id.
func (vc *VoroCell) Neighbors() []int {
	return vc.neighbors
}

func (vc *VoroCell) NumFaces() int {
	return len(vc.faceOrders)
}

func (vc *VoroCell) Volume() float64 {
	return vc.volume
}

// Centroid returns the centroid relative to the particle.
func (vc *VoroCell) Centroid() [3]float64 {
	return vc.centroid
}

// ComputeCell computes the cell of the particle under the cursor. Blocks are
// searched in rings of growing Chebyshev distance until no unvisited particle
// can cut the cell.
func (c *Container) ComputeCell(l *LoopAll) (*VoroCell, error) {
	if l.c != c {
		return nil, fmt.Errorf("ComputeCell: loop belongs to another container")
	}
	p := l.current()
	home := c.blockOf(p.pos)
	size := c.Max.Sub(c.Min)
	scale := max(size.X, size.Y, size.Z)
	minBlock := min(c.blockSize.X, c.blockSize.Y, c.blockSize.Z)
	maxRing := max(c.Grid[0], c.Grid[1], c.Grid[2])

	hs := c.walls(p.pos)
	nearest := math.Inf(1)
	for ring := 0; ; ring++ {
		var err error
		c.forRing(home, ring, func(b int) {
			for slot, q := range c.blocks[b] {
				if b == l.block && slot == l.slot {
					continue
				}
				r := q.pos.Sub(p.pos)
				d2 := r.Norm2()
				if d2 == 0 {
					err = fmt.Errorf("%w: %d and %d", ErrCoincidentPoints, p.id, q.id)
					return
				}
				nearest = min(nearest, d2)
				d := math.Sqrt(d2)
				hs = append(hs, halfSpace{normal: r.Mul(1 / d), offset: d / 2, neighbor: q.id})
			}
		})
		if err != nil {
			return nil, err
		}
		covered := ring >= maxRing-1
		if ring == 0 && !covered {
			continue
		}

		center := c.center(p.pos, nearest)
		pt, err := intersect(hs, center, c.opts.Eps, mergeRel*scale)
		if err != nil {
			return nil, fmt.Errorf("particle %d: %w", p.id, err)
		}
		reach := float64(ring) * minBlock
		if covered || 4*pt.maxNorm2() <= reach*reach {
			return newVoroCell(pt, hs), nil
		}
	}
}

// forRing calls fn with every block index at Chebyshev distance ring from
// home.
func (c *Container) forRing(home [3]int, ring int, fn func(b int)) {
	for dz := -ring; dz <= ring; dz++ {
		z := home[2] + dz
		if z < 0 || z >= c.Grid[2] {
			continue
		}
		for dy := -ring; dy <= ring; dy++ {
			y := home[1] + dy
			if y < 0 || y >= c.Grid[1] {
				continue
			}
			for dx := -ring; dx <= ring; dx++ {
				x := home[0] + dx
				if x < 0 || x >= c.Grid[0] {
					continue
				}
				if max(abs(dx), abs(dy), abs(dz)) != ring {
					continue
				}
				fn(c.blockIndex([3]int{x, y, z}))
			}
		}
	}
}

func (c *Container) walls(p r3.Vector) []halfSpace {
	return []halfSpace{
		{normal: r3.Vector{X: -1}, offset: p.X - c.Min.X, neighbor: WallXMin},
		{normal: r3.Vector{X: 1}, offset: c.Max.X - p.X, neighbor: WallXMax},
		{normal: r3.Vector{Y: -1}, offset: p.Y - c.Min.Y, neighbor: WallYMin},
		{normal: r3.Vector{Y: 1}, offset: c.Max.Y - p.Y, neighbor: WallYMax},
		{normal: r3.Vector{Z: -1}, offset: p.Z - c.Min.Z, neighbor: WallZMin},
		{normal: r3.Vector{Z: 1}, offset: c.Max.Z - p.Z, neighbor: WallZMax},
	}
}

// center returns a point strictly inside the cell, relative to p. It is the
// particle itself unless the particle lies on a wall; then it is moved
// inwards by less than a quarter of the distance to the nearest particle.
func (c *Container) center(p r3.Vector, nearest2 float64) r3.Vector {
	size := c.Max.Sub(c.Min)
	step := min(size.X, size.Y, size.Z) / 4
	if !math.IsInf(nearest2, 1) {
		step = min(step, math.Sqrt(nearest2)/8)
	}
	slack := mergeRel * max(size.X, size.Y, size.Z)

	var d r3.Vector
	if p.X-c.Min.X <= slack {
		d.X = step
	} else if c.Max.X-p.X <= slack {
		d.X = -step
	}
	if p.Y-c.Min.Y <= slack {
		d.Y = step
	} else if c.Max.Y-p.Y <= slack {
		d.Y = -step
	}
	if p.Z-c.Min.Z <= slack {
		d.Z = step
	} else if c.Max.Z-p.Z <= slack {
		d.Z = -step
	}
	return d
}

func newVoroCell(pt *polytope, hs []halfSpace) *VoroCell {
	vc := &VoroCell{
		vertices:   make([]float64, 0, len(pt.verts)*3),
		faceOrders: make([]int, 0, len(pt.faces)),
		normals:    make([]float64, 0, len(pt.faces)*3),
		neighbors:  make([]int, 0, len(pt.faces)),
	}
	for _, v := range pt.verts {
		vc.vertices = append(vc.vertices, v.X, v.Y, v.Z)
	}
	for i, f := range pt.faces {
		h := hs[pt.planes[i]]
		vc.faceOrders = append(vc.faceOrders, len(f))
		vc.faceVertices = append(vc.faceVertices, len(f))
		vc.faceVertices = append(vc.faceVertices, f...)
		vc.normals = append(vc.normals, h.normal.X, h.normal.Y, h.normal.Z)
		vc.neighbors = append(vc.neighbors, h.neighbor)
	}
	vol, centroid := pt.moments()
	vc.volume = vol
	vc.centroid = [3]float64{centroid.X, centroid.Y, centroid.Z}
	return vc
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
