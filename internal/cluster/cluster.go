package cluster

import (
	"cmp"
	"errors"
	"maps"
	"slices"
)

// ErrNoActivity is returned when the activity function has no values.
var ErrNoActivity = errors.New("no activity values")

// DefaultSplitFanIn is the fan-in a transition must exceed to count as a split.
const DefaultSplitFanIn = 2

// Cluster is a sorted set of nodes.
type Cluster []string

// SubsetOf reports whether every node of c is also in other.
func (c Cluster) SubsetOf(other Cluster) bool {
	for _, n := range c {
		if _, ok := slices.BinarySearch(other, n); !ok {
			return false
		}
	}
	return true
}

// MonotoneClustering returns the connected components of the subgraph of g
// induced by the nodes that satisfy keep. Each cluster is sorted and the
// clusters are ordered by their first node.
func MonotoneClustering(g *Graph, keep func(node string) bool) []Cluster {
	seen := make(map[string]bool)
	var clusters []Cluster

	for _, start := range g.Nodes() {
		if seen[start] || !keep(start) {
			continue
		}
		seen[start] = true
		component := Cluster{start}
		queue := []string{start}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			for _, nb := range g.Neighbors(n) {
				if seen[nb] || !keep(nb) {
					continue
				}
				seen[nb] = true
				component = append(component, nb)
				queue = append(queue, nb)
			}
		}
		slices.Sort(component)
		clusters = append(clusters, component)
	}

	slices.SortFunc(clusters, func(a, b Cluster) int {
		return cmp.Compare(a[0], b[0])
	})
	return clusters
}

// Clusters returns the clustering at threshold rho: the components formed by
// the nodes with f(node) >= rho. Nodes without a value in f are never active.
func Clusters(g *Graph, f map[string]float64, rho float64) []Cluster {
	return MonotoneClustering(g, func(n string) bool {
		v, ok := f[n]
		return ok && v >= rho
	})
}

// Level is the clustering at one threshold of the filtration.
type Level struct {
	Threshold float64
	Clusters  []Cluster
}

// Filtration returns one level per distinct value of f, in ascending order of
// threshold. Lower thresholds admit more nodes, so clusters only merge while
// walking the result from last to first.
func Filtration(g *Graph, f map[string]float64) ([]Level, error) {
	if len(f) == 0 {
		return nil, ErrNoActivity
	}
	thresholds := slices.Sorted(maps.Values(f))
	thresholds = slices.Compact(thresholds)

	levels := make([]Level, len(thresholds))
	for i, rho := range thresholds {
		levels[i] = Level{Threshold: rho, Clusters: Clusters(g, f, rho)}
	}
	return levels, nil
}

// FanIn counts, for every cluster of coarse, how many clusters of fine it contains.
func FanIn(coarse, fine []Cluster) []int {
	counts := make([]int, len(coarse))
	for i, c := range coarse {
		for _, sub := range fine {
			if sub.SubsetOf(c) {
				counts[i]++
			}
		}
	}
	return counts
}

// Split is the result of split detection.
type Split struct {
	Threshold float64
	Clusters  []Cluster
	// FanIn[i] holds the fan-in counts of the transition from level i+1 to level i.
	FanIn [][]int
}

// SplitForce finds the finest transition where a cluster absorbs more than
// DefaultSplitFanIn finer clusters.
func SplitForce(g *Graph, f map[string]float64) (Split, error) {
	return SplitForceWithLimit(g, f, DefaultSplitFanIn)
}

// SplitForceWithLimit scans the filtration from the finest transition to the
// coarsest and stops at the first one with a fan-in above limit. It reports
// the level just finer than that transition. Without such a transition the
// coarsest level is reported.
func SplitForceWithLimit(g *Graph, f map[string]float64, limit int) (Split, error) {
	levels, err := Filtration(g, f)
	if err != nil {
		return Split{}, err
	}

	fanIn := make([][]int, len(levels)-1)
	for i := range fanIn {
		fanIn[i] = FanIn(levels[i].Clusters, levels[i+1].Clusters)
	}

	chosen := 0
	for i := len(fanIn) - 1; i >= 0; i-- {
		if slices.ContainsFunc(fanIn[i], func(n int) bool { return n > limit }) {
			chosen = i + 1
			break
		}
	}

	return Split{
		Threshold: levels[chosen].Threshold,
		Clusters:  levels[chosen].Clusters,
		FanIn:     fanIn,
	}, nil
}
