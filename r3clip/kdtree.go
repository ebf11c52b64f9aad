// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r3clip

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// site is a generator stored in the kd-tree. Distance is squared Euclidean,
// matching kdtree.Point.
type site struct {
	idx int
	pos r3.Vector
}

func coord(v r3.Vector, d kdtree.Dim) float64 {
	switch d {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	panic("coord: dimension out of range")
}

func (s site) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(site)
	return coord(s.pos, d) - coord(q.pos, d)
}

func (s site) Dims() int { return 3 }

func (s site) Distance(c kdtree.Comparable) float64 {
	q := c.(site)
	return s.pos.Sub(q.pos).Norm2()
}

type sites []site

func (s sites) Index(i int) kdtree.Comparable         { return s[i] }
func (s sites) Len() int                              { return len(s) }
func (s sites) Pivot(d kdtree.Dim) int                { return sitePlane{sites: s, dim: d}.Pivot() }
func (s sites) Slice(start, end int) kdtree.Interface { return s[start:end] }

// sitePlane orders sites along a single dimension for median partitioning.
type sitePlane struct {
	sites
	dim kdtree.Dim
}

func (p sitePlane) Less(i, j int) bool {
	return coord(p.sites[i].pos, p.dim) < coord(p.sites[j].pos, p.dim)
}

func (p sitePlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p sitePlane) Slice(start, end int) kdtree.SortSlicer {
	p.sites = p.sites[start:end]
	return p
}

func (p sitePlane) Swap(i, j int) { p.sites[i], p.sites[j] = p.sites[j], p.sites[i] }

// neighbor is a candidate generator with its squared distance to the query.
type neighbor struct {
	idx   int
	pos   r3.Vector
	dist2 float64
}

func collect(h kdtree.Heap, self int) []neighbor {
	out := make([]neighbor, 0, len(h))
	for _, cd := range h {
		// Keepers hold a sentinel entry without a Comparable.
		if cd.Comparable == nil {
			continue
		}
		s := cd.Comparable.(site)
		if s.idx == self {
			continue
		}
		out = append(out, neighbor{idx: s.idx, pos: s.pos, dist2: cd.Dist})
	}
	return out
}
