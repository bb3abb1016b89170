package nixgen

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/andrewgazelka/nix-cargo-unit/internal/unitgraph"
)

// IndexSet is a set of unit indices. Closures are handed out as pointers
// to a shared IndexSet rather than copied per caller: every unit whose
// transitive closure has already been computed reuses the very same map
// instead of paying to re-walk or re-copy it, which is what keeps the
// O(n^2) naive approach (recompute + flatten per unit, independently)
// from ever happening — a unit's closure is computed exactly once no
// matter how many consumers share it.
type IndexSet map[int]struct{}

// Sorted returns the set's members in ascending order, for deterministic
// rendering.
func (s IndexSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// ClosureIndex memoizes the transitive dependency closure (excluding
// build-script run units) of every unit in g, computed by depth-first
// traversal over each unit's direct-dependency array. A unit reachable
// only through a run-custom-build edge is still traversed through (its
// own dependencies are followed) but never added to a closure itself,
// since run units never produce a library to search.
//
// The per-node memo additionally keys on an xxhash digest of the sorted
// direct-dependency index set (not the cryptographic identity hash,
// which is reserved for the content-addressing guarantee the spec
// mandates SHA-256 for) so that two units with textually different
// pkg_ids but identical dependency shapes share one closure computation.
type ClosureIndex struct {
	g       *unitgraph.Graph
	closure map[int]IndexSet
	byShape map[uint64]IndexSet
	visit   map[int]bool // cycle guard during DFS
}

// NewClosureIndex computes closures for every unit in g eagerly; the
// whole graph is small enough (compilation units per workspace, not
// per-file) that eager computation is simpler than a lazy cache and the
// emitter needs every unit's closure anyway.
func NewClosureIndex(g *unitgraph.Graph) *ClosureIndex {
	ci := &ClosureIndex{
		g:       g,
		closure: make(map[int]IndexSet, len(g.Units)),
		byShape: make(map[uint64]IndexSet),
		visit:   make(map[int]bool, len(g.Units)),
	}
	for i := range g.Units {
		ci.closureOf(i)
	}
	return ci
}

// Closure returns the shared transitive-closure set for unit index i.
func (ci *ClosureIndex) Closure(i int) IndexSet {
	return ci.closure[i]
}

func (ci *ClosureIndex) closureOf(i int) IndexSet {
	if s, ok := ci.closure[i]; ok {
		return s
	}
	if ci.visit[i] {
		// Defensive cycle guard; a well-formed unit graph is acyclic.
		return IndexSet{}
	}
	ci.visit[i] = true
	defer delete(ci.visit, i)

	shape := shapeHash(ci.g.Units[i].Dependencies)
	if cached, ok := ci.byShape[shape]; ok {
		ci.closure[i] = cached
		return cached
	}

	acc := IndexSet{}
	for _, d := range ci.g.Units[i].Dependencies {
		dep := &ci.g.Units[d.Index]
		if !dep.IsBuildScriptRun() {
			acc[d.Index] = struct{}{}
		}
		for idx := range ci.closureOf(d.Index) {
			acc[idx] = struct{}{}
		}
	}

	ci.closure[i] = acc
	ci.byShape[shape] = acc
	return acc
}

func shapeHash(deps []unitgraph.Dependency) uint64 {
	indices := make([]int, len(deps))
	for i, d := range deps {
		indices[i] = d.Index
	}
	sort.Ints(indices)

	h := xxhash.New()
	buf := make([]byte, 8)
	for _, idx := range indices {
		for b := 0; b < 8; b++ {
			buf[b] = byte(idx >> (8 * b))
		}
		h.Write(buf)
	}
	return h.Sum64()
}
