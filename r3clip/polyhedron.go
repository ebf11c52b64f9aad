// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r3clip

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
)

// plane is the half-space Normal·x <= Offset with a unit Normal.
type plane struct {
	normal r3.Vector
	offset float64
}

func bisector(p, q r3.Vector) plane {
	d := q.Sub(p)
	n := d.Normalize()
	return plane{normal: n, offset: n.Dot(p.Add(q).Mul(0.5))}
}

// polyhedron is a convex polytope with counter-clockwise face loops when
// looking from outside.
type polyhedron struct {
	verts []r3.Vector
	faces []Face
}

// newBox returns the box [anchor, anchor+width]. Vertex i has coordinate
// bits (i&1, i&2, i&4) along x, y, z.
func newBox(anchor, width r3.Vector) *polyhedron {
	p := &polyhedron{verts: make([]r3.Vector, 8)}
	for i := range 8 {
		p.verts[i] = r3.Vector{
			X: anchor.X + float64(i&1)*width.X,
			Y: anchor.Y + float64((i>>1)&1)*width.Y,
			Z: anchor.Z + float64((i>>2)&1)*width.Z,
		}
	}
	hi := anchor.Add(width)
	p.faces = []Face{
		wallFace(WallXMin, []int{0, 4, 6, 2}, r3.Vector{X: -1}, -anchor.X),
		wallFace(WallXMax, []int{1, 3, 7, 5}, r3.Vector{X: 1}, hi.X),
		wallFace(WallYMin, []int{0, 1, 5, 4}, r3.Vector{Y: -1}, -anchor.Y),
		wallFace(WallYMax, []int{2, 6, 7, 3}, r3.Vector{Y: 1}, hi.Y),
		wallFace(WallZMin, []int{0, 2, 3, 1}, r3.Vector{Z: -1}, -anchor.Z),
		wallFace(WallZMax, []int{4, 5, 7, 6}, r3.Vector{Z: 1}, hi.Z),
	}
	return p
}

func wallFace(w Wall, loop []int, n r3.Vector, offset float64) Face {
	return Face{
		Vertices: loop,
		Neighbor: NoNeighbor,
		Wall:     w,
		normal:   n,
		offset:   offset,
	}
}

// clip intersects the polyhedron with pl and caps the cut with a face owned by
// neighbor. It reports whether any vertex was removed.
func (p *polyhedron) clip(pl plane, neighbor int, eps float64) bool {
	dist := make([]float64, len(p.verts))
	cut := false
	for i, v := range p.verts {
		dist[i] = pl.normal.Dot(v) - pl.offset
		if dist[i] > eps {
			cut = true
		}
	}
	if !cut {
		return false
	}

	remap := make([]int, len(p.verts))
	verts := make([]r3.Vector, 0, len(p.verts)+4)
	var onPlane []int
	for i, v := range p.verts {
		if dist[i] > eps {
			remap[i] = -1
			continue
		}
		remap[i] = len(verts)
		verts = append(verts, v)
		if dist[i] >= -eps {
			onPlane = append(onPlane, remap[i])
		}
	}

	edgeCuts := make(map[[2]int]int)
	intersect := func(a, b int) int {
		key := [2]int{min(a, b), max(a, b)}
		if idx, ok := edgeCuts[key]; ok {
			return idx
		}
		t := dist[a] / (dist[a] - dist[b])
		idx := len(verts)
		verts = append(verts, p.verts[a].Add(p.verts[b].Sub(p.verts[a]).Mul(t)))
		onPlane = append(onPlane, idx)
		edgeCuts[key] = idx
		return idx
	}

	faces := make([]Face, 0, len(p.faces)+1)
	for _, f := range p.faces {
		n := len(f.Vertices)
		loop := make([]int, 0, n+1)
		for k := range n {
			a, b := f.Vertices[k], f.Vertices[(k+1)%n]
			if dist[a] <= eps {
				loop = append(loop, remap[a])
			}
			if (dist[a] < -eps && dist[b] > eps) || (dist[a] > eps && dist[b] < -eps) {
				loop = append(loop, intersect(a, b))
			}
		}
		if len(loop) < 3 {
			continue
		}
		f.Vertices = loop
		faces = append(faces, f)
	}

	if len(onPlane) >= 3 {
		faces = append(faces, Face{
			Vertices: sortAround(verts, onPlane, pl.normal),
			Neighbor: neighbor,
			Wall:     NoWall,
			normal:   pl.normal,
			offset:   pl.offset,
		})
	}

	p.verts = verts
	p.faces = faces
	p.compact()
	return true
}

// sortAround orders coplanar vertices counter-clockwise around n.
func sortAround(verts []r3.Vector, idx []int, n r3.Vector) []int {
	var c r3.Vector
	for _, i := range idx {
		c = c.Add(verts[i])
	}
	c = c.Mul(1 / float64(len(idx)))

	u := n.Ortho()
	w := n.Cross(u)
	angle := make(map[int]float64, len(idx))
	for _, i := range idx {
		d := verts[i].Sub(c)
		angle[i] = math.Atan2(d.Dot(w), d.Dot(u))
	}
	out := append([]int(nil), idx...)
	sort.Slice(out, func(a, b int) bool { return angle[out[a]] < angle[out[b]] })
	return out
}

// compact drops vertices no longer referenced by any face.
func (p *polyhedron) compact() {
	used := make([]int, len(p.verts))
	for i := range used {
		used[i] = -1
	}
	verts := p.verts[:0:0]
	for _, f := range p.faces {
		for _, v := range f.Vertices {
			if used[v] < 0 {
				used[v] = len(verts)
				verts = append(verts, p.verts[v])
			}
		}
	}
	if len(verts) == len(p.verts) {
		return
	}
	for fi := range p.faces {
		for k, v := range p.faces[fi].Vertices {
			p.faces[fi].Vertices[k] = used[v]
		}
	}
	p.verts = verts
}

// maxDist2 returns the largest squared distance from o to a vertex.
func (p *polyhedron) maxDist2(o r3.Vector) float64 {
	var r float64
	for _, v := range p.verts {
		r = max(r, v.Sub(o).Norm2())
	}
	return r
}

// integrate returns the volume and first moment of the polyhedron by summing
// signed tetrahedra spanned by o and each fan triangle of the face loops.
func (p *polyhedron) integrate(o r3.Vector) (float64, r3.Vector) {
	var vol float64
	var moment r3.Vector
	for _, f := range p.faces {
		a := p.verts[f.Vertices[0]].Sub(o)
		for k := 1; k+1 < len(f.Vertices); k++ {
			b := p.verts[f.Vertices[k]].Sub(o)
			c := p.verts[f.Vertices[k+1]].Sub(o)
			v := a.Dot(b.Cross(c)) / 6
			vol += v
			moment = moment.Add(a.Add(b).Add(c).Mul(v / 4))
		}
	}
	return vol, moment
}
