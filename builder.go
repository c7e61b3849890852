package infodiff

// builder.go realizes one random network with the configuration model.  Each
// node draws a target degree; the free degree slots ('stubs') are then paired
// at random, each end chosen with probability proportional to the free degree
// remaining at a node, until no further pair can be formed

import (
	"errors"
	"fmt"
	"log/slog"
)

// Connectivity reports whether every stub found a partner
type Connectivity int

const (
	EverythingOK Connectivity = iota
	DanglingConnections
)

var cnToStr map[Connectivity]string = map[Connectivity]string{EverythingOK: "everything_ok",
	DanglingConnections: "dangling_connections"}

func (cn Connectivity) String() string {
	return cnToStr[cn]
}

// ErrDanglingConnections is returned by Construct when stubs remain unmatched
// and the network properties do not tolerate that.  The caller may retry
var ErrDanglingConnections = errors.New("network has dangling connections")

// NetworkBuilder builds networks from NetworkProperties, drawing from a single random source
type NetworkBuilder struct {
	rngstrm U01Source
	logger  *slog.Logger
}

// CreateNetworkBuilder is a constructor
func CreateNetworkBuilder(rng U01Source, logger *slog.Logger) *NetworkBuilder {
	nb := new(NetworkBuilder)
	nb.rngstrm = rng
	nb.logger = orDiscard(logger)
	return nb
}

// Construct builds one network.  The returned Connectivity tells whether
// stubs were left unmatched.  When they were and props.DanglingOK is false
// the network is discarded and ErrDanglingConnections returned.  An invalid
// degree distribution is reported as a configuration error
func (nb *NetworkBuilder) Construct(props *NetworkProperties) (*Network, Connectivity, error) {
	nb.logger.Debug("network build started", "nodes", props.NumNodes)

	dd, err := nb.createDegreeDist(props)
	if err != nil {
		return nil, DanglingConnections, err
	}

	nodes := nb.createNodes(props)
	freeDegrees := nb.createFreeDegrees(len(nodes), dd)
	connectivity := nb.connectNodesRandomly(nodes, freeDegrees, props.LoopsOK)

	if connectivity != EverythingOK && !props.DanglingOK {
		nb.logger.Debug("built network is not considered due to dangling connections")
		return nil, connectivity, ErrDanglingConnections
	}

	nw := createNetwork(nodes, props.Transmissibility, nb.rngstrm, nb.logger)
	nb.logger.Debug("network build finished", "connectivity", connectivity.String())
	return nw, connectivity, nil
}

// createNodes makes the node shells, with ids 0..N-1
func (nb *NetworkBuilder) createNodes(props *NetworkProperties) []Node {
	nodes := make([]Node, props.NumNodes)
	for id := range nodes {
		nodes[id] = createNode(id, props.CharacteristicTime, nb.rngstrm)
	}
	return nodes
}

// createDegreeDist selects and prepares the degree distribution named in the properties
func (nb *NetworkBuilder) createDegreeDist(props *NetworkProperties) (*DegreeDist, error) {
	kind, err := degreeDistFromStr(props.DegreeDist)
	if err != nil {
		return nil, err
	}

	dd, err := CreateDegreeDist(kind, props.KMin, props.DistParameter(), props.NumNodes, nb.rngstrm)
	if err != nil {
		return nil, err
	}
	dd.GenerateDistribution()

	nb.logger.Debug("degree distribution ready", "type", kind.String(),
		"k_min", dd.Range().Min, "k_max", dd.Range().Max)
	return dd, nil
}

// createFreeDegrees draws the target degree of each node
func (nb *NetworkBuilder) createFreeDegrees(numNodes int, dd *DegreeDist) []int {
	freeDegrees := make([]int, numNodes)
	for idx := range freeDegrees {
		freeDegrees[idx] = dd.RandomDegree()
	}

	// a sequence failing the Molloy-Reed criterion is legal, but is not expected to
	// produce a giant component
	if numNodes > 0 && MolloyReed(freeDegrees) <= 0.0 {
		nb.logger.Warn("degree sequence fails the Molloy-Reed criterion", "value", MolloyReed(freeDegrees))
	}
	return freeDegrees
}

// connectNodesRandomly pairs stubs until no further connection is possible.
// freeDegrees is consumed.  The Connectivity reflects whether any stub is left
func (nb *NetworkBuilder) connectNodesRandomly(nodes []Node, freeDegrees []int, allowLoops bool) Connectivity {
	nb.logger.Debug("connecting nodes started")

	fd := createFreeDegreeTable(freeDegrees)
	for fd.canConnect(allowLoops) {
		nb.createRandomConnection(nodes, fd, allowLoops)
	}

	nb.logger.Debug("connecting nodes finished", "dangling", fd.total)
	if fd.total == 0 {
		return EverythingOK
	}
	return DanglingConnections
}

// createRandomConnection chooses the two ends of a connection.  The first
// end's stub is taken before the second end is drawn, so one stub is never
// paired with itself.  A rejected self-loop gives both stubs back
func (nb *NetworkBuilder) createRandomConnection(nodes []Node, fd *freeDegreeTable, allowLoops bool) {
	firstID := fd.pick(nb.rngstrm)
	fd.add(firstID, -1)
	secondID := fd.pick(nb.rngstrm)
	fd.add(secondID, -1)

	if firstID != secondID || allowLoops {
		nodes[firstID].AddConnection(Connection{Type: Outgoing, To: secondID})
		nodes[secondID].AddConnection(Connection{Type: Incoming, To: firstID})
		return
	}

	fd.add(firstID, 1)
	fd.add(secondID, 1)
}

// freeDegreeTable keeps the remaining free degree of every node in a Fenwick
// tree, so that the node holding the r-th free stub is found in log time
type freeDegreeTable struct {
	free    []int // free degree by node id
	tree    []int // Fenwick tree over free, 1-based
	total   int   // sum of free
	nonZero int   // number of nodes with free > 0
	topStep int   // largest power of two <= len(free)
}

// createFreeDegreeTable is a constructor
func createFreeDegreeTable(freeDegrees []int) *freeDegreeTable {
	fd := new(freeDegreeTable)
	fd.free = make([]int, len(freeDegrees))
	fd.tree = make([]int, len(freeDegrees)+1)
	fd.topStep = 1
	for fd.topStep*2 <= len(freeDegrees) {
		fd.topStep *= 2
	}
	for id, d := range freeDegrees {
		if d < 0 {
			panic(fmt.Errorf("negative degree %d drawn for node %d", d, id))
		}
		fd.add(id, d)
	}
	return fd
}

// add changes the free degree of node id by delta
func (fd *freeDegreeTable) add(id, delta int) {
	before := fd.free[id]
	fd.free[id] += delta
	fd.total += delta
	if before == 0 && fd.free[id] > 0 {
		fd.nonZero += 1
	} else if before > 0 && fd.free[id] == 0 {
		fd.nonZero -= 1
	}
	for idx := id + 1; idx < len(fd.tree); idx += idx & (-idx) {
		fd.tree[idx] += delta
	}
}

// canConnect tells whether another connection can be formed.  Without loops
// two distinct nodes need free stubs; with loops two stubs anywhere suffice
func (fd *freeDegreeTable) canConnect(allowLoops bool) bool {
	if allowLoops {
		return fd.total >= 2
	}
	return fd.nonZero >= 2
}

// pick draws r uniformly from [1, total] and returns the first node whose
// cumulative free degree reaches r
func (fd *freeDegreeTable) pick(rng U01Source) int {
	r := randIntRange(rng, 1, fd.total)

	pos := 0
	for step := fd.topStep; step > 0; step /= 2 {
		if pos+step < len(fd.tree) && fd.tree[pos+step] < r {
			pos += step
			r -= fd.tree[pos]
		}
	}
	// pos is the count of leading nodes whose cumulative sum stays below r
	return pos
}
