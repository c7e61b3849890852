package infodiff

// net.go holds the run-time representation of a contact network: the nodes,
// their connections, and the one-shot 'informed' state that diffusion changes.
// The Network owns its nodes in a slice indexed by node id, and connections
// refer to other nodes by id only

import (
	"fmt"
	"golang.org/x/exp/slices"
	"log/slog"
	"math"
)

// ConnectionType records which end of a connection a node holds.  It is
// informational only, information flows both ways along a connection
type ConnectionType int

const (
	Outgoing ConnectionType = iota
	Incoming
)

var ctToStr map[ConnectionType]string = map[ConnectionType]string{Outgoing: "outgoing", Incoming: "incoming"}

func (ct ConnectionType) String() string {
	return ctToStr[ct]
}

// Connection is one end of an edge, as seen from the node that holds it
type Connection struct {
	Type ConnectionType
	To   int // id of the node at the other end
}

// Node is a member of the network.  Its id never changes; its connections
// are added while the network is built, and it is informed at most once
type Node struct {
	id          int
	connections []Connection
	informed    bool
	infTime     float64   // meaningful only when informed is true
	rate        float64   // rate of the exponential propagation delay
	rngstrm     U01Source // random source of the worker running the trial
}

// createNode is a constructor.  charTime is the mean propagation delay
// across a connection
func createNode(id int, charTime float64, rng U01Source) Node {
	return Node{id: id, connections: make([]Connection, 0), rate: 1.0 / charTime, rngstrm: rng}
}

// ID returns the node's identity
func (nd *Node) ID() int {
	return nd.id
}

// AddConnection appends a connection to the node's adjacency list
func (nd *Node) AddConnection(conn Connection) {
	nd.connections = append(nd.connections, conn)
}

// Connections returns the adjacency list
func (nd *Node) Connections() []Connection {
	return nd.connections
}

// IsConnectedTo is true if one of the node's connections leads to node id
func (nd *Node) IsConnectedTo(id int) bool {
	return slices.ContainsFunc(nd.connections, func(conn Connection) bool { return conn.To == id })
}

// Degree is the length of the adjacency list
func (nd *Node) Degree() int {
	return len(nd.connections)
}

// IsInformed is true once Inform has been called
func (nd *Node) IsInformed() bool {
	return nd.informed
}

// InformationTime returns the time the node was informed, and whether it has been
func (nd *Node) InformationTime() (float64, bool) {
	return nd.infTime, nd.informed
}

// Inform marks the node as informed at time now and tries every connection,
// regardless of its type.  Each succeeds with probability transmissibility,
// and a success schedules an event at the far end after an exponentially
// distributed delay.  The node must not already be informed
func (nd *Node) Inform(now, transmissibility float64) []Event {
	if nd.informed {
		panic(fmt.Errorf("node %d informed twice", nd.id))
	}
	nd.informed = true
	nd.infTime = now

	events := make([]Event, 0, len(nd.connections))
	for _, conn := range nd.connections {
		if !bernoulli(nd.rngstrm.RandU01(), transmissibility) {
			continue
		}
		delay := expRV(nd.rngstrm.RandU01(), nd.rate)
		events = append(events, Event{From: nd.id, To: conn.To, Time: now + delay})
	}
	return events
}

// ResultRecord is what a trial reports about one informed node: the time it
// was informed, measured from the end of seeding, and its degree
type ResultRecord struct {
	Time   float64
	Degree int
}

// Result holds the records of one trial in ascending time order.  Nodes
// that were never informed have no record
type Result []ResultRecord

// Network is the collection of nodes used by one trial
type Network struct {
	nodes            []Node
	transmissibility float64
	rngstrm          U01Source
	logger           *slog.Logger
}

// createNetwork is a constructor; it takes ownership of nodes
func createNetwork(nodes []Node, transmissibility float64, rng U01Source, logger *slog.Logger) *Network {
	nw := new(Network)
	nw.nodes = nodes
	nw.transmissibility = transmissibility
	nw.rngstrm = rng
	nw.logger = orDiscard(logger)
	return nw
}

// NumNodes returns the number of nodes in the network
func (nw *Network) NumNodes() int {
	return len(nw.nodes)
}

// Node returns a pointer to the node with the given id
func (nw *Network) Node(id int) *Node {
	return &nw.nodes[id]
}

// Transmissibility returns the per-connection success probability
func (nw *Network) Transmissibility() float64 {
	return nw.transmissibility
}

// Degrees returns the degree of every node, indexed by node id
func (nw *Network) Degrees() []int {
	degrees := make([]int, len(nw.nodes))
	for idx := range nw.nodes {
		degrees[idx] = nw.nodes[idx].Degree()
	}
	return degrees
}

// NumInformed counts the informed nodes
func (nw *Network) NumInformed() int {
	cnt := 0
	for idx := range nw.nodes {
		if nw.nodes[idx].informed {
			cnt += 1
		}
	}
	return cnt
}

// InjectInformationToRandomNode picks a node uniformly among those not yet
// informed and informs it at time now.  Every one of its connections
// transmits.  The network must have at least one uninformed node
func (nw *Network) InjectInformationToRandomNode(now float64) []Event {
	_, events := nw.seedRandomNode(now)
	return events
}

// seedRandomNode does the work of InjectInformationToRandomNode and also
// returns the id of the node chosen
func (nw *Network) seedRandomNode(now float64) (int, []Event) {
	uninformed := len(nw.nodes) - nw.NumInformed()
	if uninformed == 0 {
		panic("no uninformed node left to seed")
	}

	// choose the k-th uninformed node, which is uniform over the uninformed ones
	k := randIntRange(nw.rngstrm, 0, uninformed-1)
	for idx := range nw.nodes {
		if nw.nodes[idx].informed {
			continue
		}
		if k == 0 {
			nw.logger.Debug("node initially informed", "node", idx, "time", now)
			return idx, nw.nodes[idx].Inform(now, 1.0)
		}
		k -= 1
	}
	panic("uninformed node count is inconsistent")
}

// InformNode informs node id at time now using the network's transmissibility
func (nw *Network) InformNode(id int, now float64) []Event {
	nw.logger.Debug("inform node", "node", id, "time", now, "degree", nw.nodes[id].Degree())
	return nw.nodes[id].Inform(now, nw.transmissibility)
}

// IsInformed reports whether node id has been informed
func (nw *Network) IsInformed(id int) bool {
	return nw.nodes[id].informed
}

// Result gathers a record for each informed node, with time measured from
// timeOfInitialization (and never negative), sorted by ascending time
func (nw *Network) Result(timeOfInitialization float64) Result {
	result := make(Result, 0, len(nw.nodes))
	for idx := range nw.nodes {
		infTime, informed := nw.nodes[idx].InformationTime()
		if !informed {
			continue
		}
		adjusted := math.Max(infTime-timeOfInitialization, 0.0)
		result = append(result, ResultRecord{Time: adjusted, Degree: nw.nodes[idx].Degree()})
	}

	slices.SortStableFunc(result, func(a, b ResultRecord) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	return result
}
