package infodiff

import (
	"testing"

	"github.com/iti/rngstream"
)

// seqSource replays a fixed sequence of uniforms, cycling when it runs out
type seqSource struct {
	vals []float64
	idx  int
}

func (ss *seqSource) RandU01() float64 {
	v := ss.vals[ss.idx%len(ss.vals)]
	ss.idx += 1
	return v
}

// newStream returns a fresh rngstream named after the test
func newStream(t *testing.T) *rngstream.RngStream {
	t.Helper()
	return rngstream.New(t.Name())
}

// ringNetwork connects n nodes in a cycle, node i to node i+1
func ringNetwork(n int, transmissibility float64, rng U01Source) *Network {
	nodes := make([]Node, n)
	for id := range nodes {
		nodes[id] = createNode(id, 1.0, rng)
	}
	for id := 0; id < n; id++ {
		next := (id + 1) % n
		nodes[id].AddConnection(Connection{Type: Outgoing, To: next})
		nodes[next].AddConnection(Connection{Type: Incoming, To: id})
	}
	return createNetwork(nodes, transmissibility, rng, nil)
}

// pairsNetwork builds n nodes connected by the listed undirected pairs
func pairsNetwork(n int, pairs [][2]int, rng U01Source) *Network {
	nodes := make([]Node, n)
	for id := range nodes {
		nodes[id] = createNode(id, 1.0, rng)
	}
	for _, pair := range pairs {
		nodes[pair[0]].AddConnection(Connection{Type: Outgoing, To: pair[1]})
		nodes[pair[1]].AddConnection(Connection{Type: Incoming, To: pair[0]})
	}
	return createNetwork(nodes, 1.0, rng, nil)
}
