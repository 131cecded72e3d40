// Package dataflow implements a worklist fixpoint solver over one CFG,
// parameterized by a join-semilattice and a transfer function.
package dataflow

import (
	"fmt"

	"github.com/xab-mack/tactscan/internal/ir"
	"github.com/xab-mack/tactscan/internal/lattice"
)

// TransferFn maps a node's joined predecessor state to its output state.
// It must be monotone with respect to the lattice order for the solver to
// terminate; the engine does not check this.
type TransferFn[T any] func(node *ir.Node, in T) T

// Result is the computed least fixpoint: one state per node. The whole map
// is exposed so detectors can fold over intermediate states, not only the
// exit node's.
type Result[T any] struct {
	states map[ir.NodeIdx]T
}

// At returns the state computed for node idx. Asking for a node the solver
// never saw is an internal-consistency defect and panics.
func (r *Result[T]) At(idx ir.NodeIdx) T {
	s, ok := r.states[idx]
	if !ok {
		panic(fmt.Sprintf("dataflow: no state recorded for node %d", idx))
	}
	return s
}

// States returns a copy of the node-to-state association; mutating it does
// not affect later reads through At.
func (r *Result[T]) States() map[ir.NodeIdx]T {
	out := make(map[ir.NodeIdx]T, len(r.states))
	for k, v := range r.states {
		out[k] = v
	}
	return out
}

// Solver runs the worklist algorithm. The engine is direction-agnostic: it
// always joins over predecessors before calling transfer, so a backward
// analysis presents the CFG's Reverse graph instead.
type Solver[T any] struct {
	lat      lattice.Lattice[T]
	transfer TransferFn[T]
}

func NewSolver[T any](lat lattice.Lattice[T], transfer TransferFn[T]) *Solver[T] {
	return &Solver[T]{lat: lat, transfer: transfer}
}

// Solve computes the least fixpoint reachable from bottom. Every node starts
// at bottom and is seeded on the worklist; a node whose output state grows
// pushes its successors back on. Processing order changes only the iteration
// count, never the fixpoint.
func (s *Solver[T]) Solve(g *ir.CFG) *Result[T] {
	n := g.NumNodes()
	states := make(map[ir.NodeIdx]T, n)
	for i := 0; i < n; i++ {
		states[ir.NodeIdx(i)] = s.lat.Bottom()
	}

	worklist := make([]ir.NodeIdx, 0, n)
	queued := make([]bool, n)
	for i := 0; i < n; i++ {
		worklist = append(worklist, ir.NodeIdx(i))
		queued[i] = true
	}

	for len(worklist) > 0 {
		idx := worklist[0]
		worklist = worklist[1:]
		queued[idx] = false

		in := s.lat.Bottom()
		for _, p := range g.Preds(idx) {
			in = s.lat.Join(in, states[p])
		}
		out := s.transfer(g.Node(idx), in)
		if s.lat.Leq(out, states[idx]) {
			continue
		}
		states[idx] = s.lat.Join(states[idx], out)
		for _, succ := range g.Succs(idx) {
			if !queued[succ] {
				worklist = append(worklist, succ)
				queued[succ] = true
			}
		}
	}
	return &Result[T]{states: states}
}
