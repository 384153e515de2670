// Package cluster computes connected-component clusterings of a tag graph
// over a filtration of activity thresholds.
package cluster

import (
	"maps"
	"slices"
)

// Graph is an undirected graph over string nodes.
type Graph struct {
	adj map[string]map[string]struct{}
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{adj: make(map[string]map[string]struct{})}
}

// AddNode adds n if it is not already present.
func (g *Graph) AddNode(n string) {
	if _, ok := g.adj[n]; !ok {
		g.adj[n] = make(map[string]struct{})
	}
}

// AddEdge connects a and b, adding both nodes as needed. Self loops only add the node.
func (g *Graph) AddEdge(a, b string) {
	g.AddNode(a)
	g.AddNode(b)
	if a == b {
		return
	}
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
}

// HasNode reports whether n is in the graph.
func (g *Graph) HasNode(n string) bool {
	_, ok := g.adj[n]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.adj)
}

// Nodes returns all nodes in sorted order.
func (g *Graph) Nodes() []string {
	return slices.Sorted(maps.Keys(g.adj))
}

// Neighbors returns the neighbors of n in sorted order.
func (g *Graph) Neighbors(n string) []string {
	return slices.Sorted(maps.Keys(g.adj[n]))
}

// Degree returns the number of neighbors of n.
func (g *Graph) Degree(n string) int {
	return len(g.adj[n])
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, nb := range g.adj {
		total += len(nb)
	}
	return total / 2
}
