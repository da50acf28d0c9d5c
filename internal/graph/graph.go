// Package graph builds the cross-file/cross-symbol dependency graph and
// answers cycle-detection and transitive-closure queries over it (spec.md
// §4.6). Grounded on the visited-set iterative traversal idiom the teacher
// used for its own graph-shaped code before that package was deleted
// (internal/world/dataflow.go's explicit visited maps and depth-bounded BFS
// frontier) — generalized here from a Datalog-fact dependency graph to the
// file/symbol adjacency map this spec requires.
package graph

import "github.com/jayminwest/kotadb-index/internal/model"

// Graph is an in-memory adjacency-map view over a repository's dependency
// edges, built fresh from storage for each query (spec.md §4.6: "given a
// set of edges, build an adjacency map").
type Graph struct {
	edges []model.DependencyEdge
	out   map[string][]model.DependencyEdge // node key -> outbound edges
}

// Build constructs a Graph from edges.
func Build(edges []model.DependencyEdge) *Graph {
	g := &Graph{edges: edges, out: map[string][]model.DependencyEdge{}}
	for _, e := range edges {
		from := fromKey(e)
		if from == "" {
			continue
		}
		g.out[from] = append(g.out[from], e)
	}
	return g
}

func fromKey(e model.DependencyEdge) string {
	if e.FromSymbolID != nil {
		return model.NodeRef{SymbolID: *e.FromSymbolID}.Key()
	}
	if e.FromFileID != nil {
		return model.NodeRef{FileID: *e.FromFileID}.Key()
	}
	return ""
}

func toKey(e model.DependencyEdge) string {
	if e.ToSymbolID != nil {
		return model.NodeRef{SymbolID: *e.ToSymbolID}.Key()
	}
	if e.ToFileID != nil {
		return model.NodeRef{FileID: *e.ToFileID}.Key()
	}
	return ""
}

// visitColor is the tri-color DFS state spec.md §4.6 mandates for cycle
// detection: white (unvisited), gray (on the current DFS stack), black
// (fully explored).
type visitColor int

const (
	white visitColor = iota
	gray
	black
)

// Cycle is one back-edge-identified cycle, as an ordered node key sequence
// (spec.md §4.6: "Return cycle chains (ordered node sequences)").
type Cycle struct {
	Nodes []string
}

// FindCycles runs DFS with tri-color marking over every node reachable
// from any edge endpoint, reporting one Cycle per back edge encountered.
// Self-loops (a node with an edge to itself) are tolerated and reported as
// a length-2 cycle, per spec.md §4.6: "tolerates self-loops".
func (g *Graph) FindCycles() []Cycle {
	color := map[string]visitColor{}
	var cycles []Cycle

	var nodes []string
	seen := map[string]bool{}
	for _, e := range g.edges {
		for _, k := range []string{fromKey(e), toKey(e)} {
			if k != "" && !seen[k] {
				seen[k] = true
				nodes = append(nodes, k)
			}
		}
	}

	var stack []string
	var visit func(node string)
	visit = func(node string) {
		color[node] = gray
		stack = append(stack, node)

		for _, e := range g.out[node] {
			next := toKey(e)
			if next == "" {
				continue
			}
			switch color[next] {
			case white:
				visit(next)
			case gray:
				cycles = append(cycles, Cycle{Nodes: backEdgeChain(stack, next)})
			case black:
				// fully explored elsewhere, no cycle through here
			}
		}

		stack = stack[:len(stack)-1]
		color[node] = black
	}

	for _, n := range nodes {
		if color[n] == white {
			visit(n)
		}
	}
	return cycles
}

// backEdgeChain extracts the cycle from the current DFS stack: the portion
// from target's first occurrence to the top, closing back to target.
func backEdgeChain(stack []string, target string) []string {
	start := 0
	for i, n := range stack {
		if n == target {
			start = i
			break
		}
	}
	chain := append([]string{}, stack[start:]...)
	chain = append(chain, target)
	return chain
}

// TraversalResult pairs a reached node with its BFS depth from the
// starting node (spec.md §4.6: "depth-bounded BFS frontier").
type TraversalResult struct {
	NodeKey string
	Depth   int
}

// Dependents returns every node with a path leading into start, i.e. the
// transitive closure over inbound edges, breadth-first and depth-bounded.
func (g *Graph) Dependents(start string, maxDepth int) []TraversalResult {
	in := map[string][]string{}
	for _, e := range g.edges {
		f, t := fromKey(e), toKey(e)
		if f == "" || t == "" {
			continue
		}
		in[t] = append(in[t], f)
	}
	return bfs(start, maxDepth, in)
}

// Dependencies returns every node reachable by following outbound edges
// from start, breadth-first and depth-bounded (spec.md §4.6 transitive
// dependencies query).
func (g *Graph) Dependencies(start string, maxDepth int) []TraversalResult {
	out := map[string][]string{}
	for key, edges := range g.out {
		for _, e := range edges {
			if t := toKey(e); t != "" {
				out[key] = append(out[key], t)
			}
		}
	}
	return bfs(start, maxDepth, out)
}

func bfs(start string, maxDepth int, adjacency map[string][]string) []TraversalResult {
	visited := map[string]bool{start: true}
	frontier := []string{start}
	var out []TraversalResult

	for depth := 1; len(frontier) > 0 && (maxDepth <= 0 || depth <= maxDepth); depth++ {
		var next []string
		for _, node := range frontier {
			for _, neighbor := range adjacency[node] {
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				out = append(out, TraversalResult{NodeKey: neighbor, Depth: depth})
				next = append(next, neighbor)
			}
		}
		frontier = next
	}
	return out
}
