// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r3hull

import (
	"fmt"
	"slices"

	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
)

// halfSpace is Normal·x <= Offset in the particle frame, with a unit Normal.
type halfSpace struct {
	normal   r3.Vector
	offset   float64
	neighbor int
}

// polytope is the intersection of a set of half-spaces.
type polytope struct {
	verts []r3.Vector
	// NOTE: Sort in CCW per face (look from outside the cell)
	faces [][]int
	// planes holds the half-space index of every face.
	planes []int
}

// intersect computes the bounded intersection of hs. center must lie strictly
// inside every half-space: each half-space maps to the dual point
// n/(offset-n·center), the hull facets of the dual points map to cell
// vertices and the hull vertices map to cell faces.
func intersect(hs []halfSpace, center r3.Vector, eps, mergeTol float64) (pt *polytope, err error) {
	duals := make([]r3.Vector, len(hs))
	for i, h := range hs {
		off := h.offset - h.normal.Dot(center)
		if off <= 0 {
			return nil, fmt.Errorf("%w: center not inside half-space %d", ErrDegenerateCell, i)
		}
		duals[i] = h.normal.Mul(1 / off)
	}

	// quickhull asserts on nearly degenerate input instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			pt, err = nil, fmt.Errorf("%w: quickhull: %v", ErrDegenerateCell, r)
		}
	}()
	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(duals, true, true, eps)
	if len(ch.Indices) < 12 || len(ch.Indices)%3 != 0 {
		return nil, fmt.Errorf("%w: inconsistent number of indices returned from QuickHull: %d",
			ErrDegenerateCell, len(ch.Indices))
	}

	numTriangles := len(ch.Indices) / 3
	triangles := make([][3]int, numTriangles)
	incidentOffsets := make([]int, len(hs)+1)
	incidentIndices := make([]int, numTriangles*3)
	for _, idx := range ch.Indices {
		incidentOffsets[idx+1]++
	}
	for i := range len(hs) {
		incidentOffsets[i+1] += incidentOffsets[i]
	}
	nxt := make([]int, len(hs))
	copy(nxt, incidentOffsets[:len(hs)])
	for i := range numTriangles {
		base := i * 3
		for j := range 3 {
			v := ch.Indices[base+j]
			triangles[i][j] = v
			incidentIndices[nxt[v]] = i
			nxt[v]++
		}
		sortTriangleVerticesCCW(&triangles[i], duals)
	}

	pt = &polytope{}
	triangleVertex := make([]int, numTriangles)
	for i, t := range triangles {
		a, b, c := duals[t[0]], duals[t[1]], duals[t[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		den := n.Dot(a)
		if den <= 0 {
			return nil, fmt.Errorf("%w: hull facet %d passes through the center", ErrDegenerateCell, i)
		}
		triangleVertex[i] = pt.addVertex(n.Mul(1/den).Add(center), mergeTol)
	}

	for h := range hs {
		incident := incidentIndices[incidentOffsets[h]:incidentOffsets[h+1]]
		if len(incident) == 0 {
			// Interior dual point, the half-space is redundant.
			continue
		}
		sortIncidentTriangleIndicesCCW(h, incident, triangles)

		loop := make([]int, 0, len(incident))
		for _, t := range incident {
			v := triangleVertex[t]
			if len(loop) > 0 && loop[len(loop)-1] == v {
				continue
			}
			loop = append(loop, v)
		}
		for len(loop) > 1 && loop[0] == loop[len(loop)-1] {
			loop = loop[:len(loop)-1]
		}
		// Half-spaces touching the cell along an edge or in a vertex collapse.
		if len(loop) < 3 {
			continue
		}
		if newellNormal(pt.verts, loop).Dot(hs[h].normal) < 0 {
			slices.Reverse(loop)
		}
		pt.faces = append(pt.faces, loop)
		pt.planes = append(pt.planes, h)
	}
	if len(pt.faces) < 4 {
		return nil, fmt.Errorf("%w: %d faces", ErrDegenerateCell, len(pt.faces))
	}
	return pt, nil
}

func (pt *polytope) addVertex(v r3.Vector, tol float64) int {
	for i, w := range pt.verts {
		if v.Sub(w).Norm2() <= tol*tol {
			return i
		}
	}
	pt.verts = append(pt.verts, v)
	return len(pt.verts) - 1
}

func (pt *polytope) maxNorm2() float64 {
	var r float64
	for _, v := range pt.verts {
		r = max(r, v.Norm2())
	}
	return r
}

// moments returns the volume and centroid, using tetrahedra spanned by the
// frame origin and a fan of each face.
func (pt *polytope) moments() (float64, r3.Vector) {
	var vol float64
	var moment r3.Vector
	for _, f := range pt.faces {
		a := pt.verts[f[0]]
		for k := 1; k+1 < len(f); k++ {
			b, c := pt.verts[f[k]], pt.verts[f[k+1]]
			v := a.Dot(b.Cross(c)) / 6
			vol += v
			moment = moment.Add(a.Add(b).Add(c).Mul(v / 4))
		}
	}
	if vol <= 0 {
		return 0, r3.Vector{}
	}
	return vol, moment.Mul(1 / vol)
}

func newellNormal(verts []r3.Vector, loop []int) r3.Vector {
	var n r3.Vector
	for k, i := range loop {
		a, b := verts[i], verts[loop[(k+1)%len(loop)]]
		n = n.Add(a.Cross(b))
	}
	return n
}

// The origin lies inside the dual hull, so a facet is CCW (look from
// outside) when its normal points away from the origin.
func sortTriangleVerticesCCW(t *[3]int, v []r3.Vector) {
	p0, p1, p2 := v[t[0]], v[t[1]], v[t[2]]
	norm := p1.Sub(p0).Cross(p2.Sub(p0))
	if norm.Dot(p0) < 0 {
		t[1], t[2] = t[2], t[1]
	}
}

func sortIncidentTriangleIndicesCCW(vIdx int, incidentTris []int, tris [][3]int) {
	n := len(incidentTris)
	for i := 1; i < n; i++ {
		nxt := NextVertex(tris[incidentTris[i-1]], vIdx)
		for j := i; j < n; j++ {
			prv := PrevVertex(tris[incidentTris[j]], vIdx)
			if nxt == prv {
				incidentTris[i], incidentTris[j] = incidentTris[j], incidentTris[i]
				break
			}
		}
	}
}

func PrevVertex(t [3]int, vIdx int) int {
	switch vIdx {
	case t[0]:
		return t[2]
	case t[1]:
		return t[0]
	case t[2]:
		return t[1]
	}
	panic("PrevVertex: vIdx not in triangle")
}

func NextVertex(t [3]int, vIdx int) int {
	switch vIdx {
	case t[0]:
		return t[1]
	case t[1]:
		return t[2]
	case t[2]:
		return t[0]
	}
	panic("NextVertex: vIdx not in triangle")
}
