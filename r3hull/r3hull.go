// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package r3hull computes 3-D Voronoi cells one at a time from a
// block-partitioned particle container. Every cell is the polar dual of the
// convex hull of its inverted neighbour offsets. Cell geometry is reported in
// coordinates local to the particle, as flat arrays.
package r3hull

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
)

const (
	defaultEps = 1e-10
)

var (
	ErrInvalidGrid      = errors.New("r3hull: grid dimensions must be positive")
	ErrInvalidBounds    = errors.New("r3hull: container bounds must be non-empty")
	ErrOutsideContainer = errors.New("r3hull: particle outside the container")
	ErrCoincidentPoints = errors.New("r3hull: coincident particles")
	ErrDegenerateCell   = errors.New("r3hull: degenerate cell")
)

// Wall ids reported by VoroCell.Neighbors for faces on the container.
const (
	WallXMin = -1 - iota
	WallXMax
	WallYMin
	WallYMax
	WallZMin
	WallZMax
)

type Options struct {
	// Eps is the hull tolerance relative to the point cloud extent.
	Eps float64
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

type particle struct {
	id  int
	pos r3.Vector
}

// Container stores particles in a regular grid of blocks.
type Container struct {
	Min, Max r3.Vector
	Grid     [3]int

	blockSize r3.Vector
	blocks    [][]particle
	count     int
	opts      Options
}

func NewContainer(lo, hi r3.Vector, grid [3]int, setters ...Option) (*Container, error) {
	opts := Options{
		Eps: defaultEps,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}
	if grid[0] <= 0 || grid[1] <= 0 || grid[2] <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGrid, grid)
	}
	if !(hi.X > lo.X && hi.Y > lo.Y && hi.Z > lo.Z) {
		return nil, fmt.Errorf("%w: %v %v", ErrInvalidBounds, lo, hi)
	}

	size := hi.Sub(lo)
	return &Container{
		Min:  lo,
		Max:  hi,
		Grid: grid,
		blockSize: r3.Vector{
			X: size.X / float64(grid[0]),
			Y: size.Y / float64(grid[1]),
			Z: size.Z / float64(grid[2]),
		},
		blocks: make([][]particle, grid[0]*grid[1]*grid[2]),
		opts:   opts,
	}, nil
}

// NumParticles returns the number of particles put into the container.
func (c *Container) NumParticles() int {
	return c.count
}

// Put stores particle id at p.
func (c *Container) Put(id int, p r3.Vector) error {
	if p.X < c.Min.X || p.Y < c.Min.Y || p.Z < c.Min.Z ||
		p.X > c.Max.X || p.Y > c.Max.Y || p.Z > c.Max.Z {
		return fmt.Errorf("%w: particle %d at %v", ErrOutsideContainer, id, p)
	}
	b := c.blockIndex(c.blockOf(p))
	c.blocks[b] = append(c.blocks[b], particle{id: id, pos: p})
	c.count++
	return nil
}

func (c *Container) blockOf(p r3.Vector) [3]int {
	d := p.Sub(c.Min)
	return [3]int{
		min(int(d.X/c.blockSize.X), c.Grid[0]-1),
		min(int(d.Y/c.blockSize.Y), c.Grid[1]-1),
		min(int(d.Z/c.blockSize.Z), c.Grid[2]-1),
	}
}

func (c *Container) blockIndex(b [3]int) int {
	return b[0] + c.Grid[0]*(b[1]+c.Grid[1]*b[2])
}

// LoopAll visits every particle of a container, block by block.
type LoopAll struct {
	c     *Container
	block int
	slot  int
}

func NewLoopAll(c *Container) *LoopAll {
	return &LoopAll{c: c}
}

// Start moves to the first particle. It returns false for an empty container.
func (l *LoopAll) Start() bool {
	l.block, l.slot = 0, 0
	return l.skipEmpty()
}

// Inc moves to the next particle. It returns false once every particle has
// been visited.
func (l *LoopAll) Inc() bool {
	if l.block >= len(l.c.blocks) {
		return false
	}
	l.slot++
	return l.skipEmpty()
}

func (l *LoopAll) skipEmpty() bool {
	for l.block < len(l.c.blocks) && l.slot >= len(l.c.blocks[l.block]) {
		l.block++
		l.slot = 0
	}
	return l.block < len(l.c.blocks)
}

func (l *LoopAll) current() particle {
	if l.block >= len(l.c.blocks) {
		panic("LoopAll: cursor exhausted")
	}
	return l.c.blocks[l.block][l.slot]
}

// ParticleID returns the id of the current particle.
func (l *LoopAll) ParticleID() int {
	return l.current().id
}

// Position returns the position of the current particle.
func (l *LoopAll) Position() r3.Vector {
	return l.current().pos
}
