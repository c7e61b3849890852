package infodiff

// topo.go provides structural measurements of a built network.  The general
// approach is to convert the network into the data structures of the gonum
// graph package, which has the component analysis built in, and to use the
// gonum stat package for moments of degree sequences

import (
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/stat"
)

// buildConnGraph returns an undirected gonum graph with one node per network
// node and an edge wherever a connection exists.  Self-loops and parallel
// connections collapse, which does not change connectivity
func buildConnGraph(nw *Network) *simple.UndirectedGraph {
	connGraph := simple.NewUndirectedGraph()
	for id := 0; id < nw.NumNodes(); id++ {
		connGraph.AddNode(simple.Node(id))
	}

	for id := 0; id < nw.NumNodes(); id++ {
		for _, conn := range nw.Node(id).Connections() {
			if conn.To == id || connGraph.HasEdgeBetween(int64(id), int64(conn.To)) {
				continue
			}
			connGraph.SetEdge(simple.Edge{F: simple.Node(id), T: simple.Node(conn.To)})
		}
	}
	return connGraph
}

// ComponentSizes returns the sizes of the connected components of the
// network, largest first
func ComponentSizes(nw *Network) []int {
	if nw.NumNodes() == 0 {
		return []int{}
	}
	components := topo.ConnectedComponents(buildConnGraph(nw))

	sizes := make([]int, len(components))
	for idx, comp := range components {
		sizes[idx] = len(comp)
	}
	slices.SortFunc(sizes, func(a, b int) int { return b - a })
	return sizes
}

// GiantComponentFraction is the share of nodes that belong to the largest component
func GiantComponentFraction(nw *Network) float64 {
	sizes := ComponentSizes(nw)
	if len(sizes) == 0 {
		return 0.0
	}
	return float64(sizes[0]) / float64(nw.NumNodes())
}

// MolloyReed evaluates <k^2> - 2<k> for a degree sequence.  A configuration
// model network is expected to have a giant component when it is positive
func MolloyReed(degrees []int) float64 {
	if len(degrees) == 0 {
		return 0.0
	}
	k := make([]float64, len(degrees))
	k2 := make([]float64, len(degrees))
	for idx, d := range degrees {
		k[idx] = float64(d)
		k2[idx] = float64(d) * float64(d)
	}
	return stat.Mean(k2, nil) - 2.0*stat.Mean(k, nil)
}
