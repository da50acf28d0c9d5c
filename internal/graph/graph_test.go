package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jayminwest/kotadb-index/internal/graph"
	"github.com/jayminwest/kotadb-index/internal/model"
)

func fileEdge(from, to string) model.DependencyEdge {
	return model.DependencyEdge{FromFileID: &from, ToFileID: &to, Type: model.DependencyFileImport}
}

func TestDependenciesAndDependentsTraversal(t *testing.T) {
	// a -> b -> c, a -> d
	a, b, c, d := "a", "b", "c", "d"
	g := graph.Build([]model.DependencyEdge{fileEdge(a, b), fileEdge(b, c), fileEdge(a, d)})

	deps := g.Dependencies(model.NodeRef{FileID: a}.Key(), 0)
	keys := keysOf(deps)
	require.Contains(t, keys, model.NodeRef{FileID: b}.Key())
	require.Contains(t, keys, model.NodeRef{FileID: c}.Key())
	require.Contains(t, keys, model.NodeRef{FileID: d}.Key())

	dependents := g.Dependents(model.NodeRef{FileID: c}.Key(), 0)
	depKeys := keysOf(dependents)
	require.Contains(t, depKeys, model.NodeRef{FileID: b}.Key())
	require.Contains(t, depKeys, model.NodeRef{FileID: a}.Key())
}

func TestDependenciesRespectsDepthBound(t *testing.T) {
	a, b, c := "a", "b", "c"
	g := graph.Build([]model.DependencyEdge{fileEdge(a, b), fileEdge(b, c)})

	deps := g.Dependencies(model.NodeRef{FileID: a}.Key(), 1)
	keys := keysOf(deps)
	require.Contains(t, keys, model.NodeRef{FileID: b}.Key())
	require.NotContains(t, keys, model.NodeRef{FileID: c}.Key())
}

func TestFindCyclesDetectsCycleAndSelfLoop(t *testing.T) {
	a, b := "a", "b"
	g := graph.Build([]model.DependencyEdge{fileEdge(a, b), fileEdge(b, a)})
	cycles := g.FindCycles()
	require.NotEmpty(t, cycles)

	self := "self"
	g2 := graph.Build([]model.DependencyEdge{fileEdge(self, self)})
	cycles2 := g2.FindCycles()
	require.Len(t, cycles2, 1)
}

func keysOf(results []graph.TraversalResult) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.NodeKey)
	}
	return out
}
