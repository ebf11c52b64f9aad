// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package r3voronoi

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// NumVertices returns the number of vertices in the cell.
func (c *Cell) NumVertices() int {
	return len(c.Vertices)
}

// NumFaces returns the number of faces in the cell.
func (c *Cell) NumFaces() int {
	return len(c.Faces)
}

// Vertex returns the vertex at the specified index in absolute coordinates.
// It returns an error if the index is out of range.
func (c *Cell) Vertex(i int) (r3.Vector, error) {
	if i < 0 || i >= len(c.Vertices) {
		return r3.Vector{}, fmt.Errorf("Vertex: index %d out of range [0 %d)", i, len(c.Vertices))
	}
	return c.Position.Add(c.Vertices[i]), nil
}

// AbsCentroid returns the centroid in absolute coordinates.
func (c *Cell) AbsCentroid() r3.Vector {
	return c.Position.Add(c.Centroid)
}

// Edges returns every undirected edge of the cell boundary once, as pairs of
// vertex indices with the smaller index first.
func (c *Cell) Edges() [][2]int {
	seen := make(map[[2]int]struct{})
	var edges [][2]int
	for _, f := range c.Faces {
		for k, a := range f {
			b := f[(k+1)%len(f)]
			e := [2]int{min(a, b), max(a, b)}
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			edges = append(edges, e)
		}
	}
	return edges
}

// Check verifies the structural invariants of the cell.
func (c *Cell) Check() error {
	if len(c.FaceNormals) != len(c.Faces) {
		return fmt.Errorf("cell %d: %d face normals for %d faces", c.ID, len(c.FaceNormals), len(c.Faces))
	}
	if c.Neighbors != nil && len(c.Neighbors) != len(c.Faces) {
		return fmt.Errorf("cell %d: %d neighbors for %d faces", c.ID, len(c.Neighbors), len(c.Faces))
	}
	for f, face := range c.Faces {
		if len(face) < 3 {
			return fmt.Errorf("cell %d: face %d has %d vertices", c.ID, f, len(face))
		}
		for _, v := range face {
			if v < 0 || v >= len(c.Vertices) {
				return fmt.Errorf("cell %d: face %d vertex %d out of range [0 %d)", c.ID, f, v, len(c.Vertices))
			}
		}
	}
	if c.Volume < 0 || math.IsNaN(c.Volume) {
		return fmt.Errorf("cell %d: invalid volume %v", c.ID, c.Volume)
	}
	return nil
}
