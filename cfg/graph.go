// Package cfg defines the control-flow graph produced by the translator.
//
// Nodes are kept in an arena keyed by the offset of their first instruction.
// Edges are directed and typed; at most one edge exists per ordered pair of
// nodes.
package cfg

import (
	"sort"

	"github.com/deepnoodle-ai/cilsil/bytecode"
)

// NodeID identifies a node within one graph.
type NodeID int

// NoNode is used where a node reference is absent, e.g. the predecessor of
// the method entry.
const NoNode NodeID = -1

// NodeKind classifies a node.
type NodeKind uint8

const (
	// NodeBlock is a straight-line run of instructions.
	NodeBlock NodeKind = iota
	// NodeExit is the synthetic exit node. It has no instructions.
	NodeExit
)

// String returns the lowercase name of the node kind.
func (k NodeKind) String() string {
	switch k {
	case NodeBlock:
		return "block"
	case NodeExit:
		return "exit"
	default:
		return "unknown"
	}
}

// EdgeKind describes why control may flow along an edge.
type EdgeKind uint8

const (
	EdgeNormal EdgeKind = iota
	EdgeTrue
	EdgeFalse
	EdgeCase
	EdgeLeave
	EdgeFinally
	EdgeExceptional
)

// String returns the lowercase name of the edge kind.
func (k EdgeKind) String() string {
	switch k {
	case EdgeNormal:
		return "normal"
	case EdgeTrue:
		return "true"
	case EdgeFalse:
		return "false"
	case EdgeCase:
		return "case"
	case EdgeLeave:
		return "leave"
	case EdgeFinally:
		return "finally"
	case EdgeExceptional:
		return "exceptional"
	default:
		return "unknown"
	}
}

// Node is a point in the translated control-flow graph.
type Node struct {
	ID   NodeID
	Kind NodeKind
	// Offset is the offset of the first instruction, or -1 for the exit node.
	Offset int
	// Offsets lists every instruction folded into the node, in order.
	Offsets []int
	// Handler is set when the node is the entry of an exception handler.
	Handler *bytecode.HandlerKind
}

// IsHandlerEntry reports whether the node starts an exception handler.
func (n *Node) IsHandlerEntry() bool {
	return n.Handler != nil
}

// Edge is a directed connection between two nodes.
type Edge struct {
	From NodeID
	To   NodeID
	Kind EdgeKind
}

// Region is an exception region retained on the graph for downstream
// consumers.
type Region struct {
	Kind         bytecode.HandlerKind
	TryStart     int
	TryEnd       int
	HandlerStart int
	HandlerEnd   int
	CatchType    string
	// Entry is the node where the handler is entered, or NoNode when the
	// handler was never reached.
	Entry NodeID
}

type edgeKey struct {
	from NodeID
	to   NodeID
}

// Graph is the control-flow graph of one method body.
type Graph struct {
	method   string
	nodes    []*Node
	byOffset map[int]NodeID
	edges    []Edge
	edgeSet  map[edgeKey]struct{}
	entry    NodeID
	exit     NodeID
	regions  []Region
}

// New returns an empty graph for the named method.
func New(method string) *Graph {
	return &Graph{
		method:   method,
		byOffset: map[int]NodeID{},
		edgeSet:  map[edgeKey]struct{}{},
		entry:    NoNode,
		exit:     NoNode,
	}
}

// Method returns the name of the method the graph was built from.
func (g *Graph) Method() string {
	return g.method
}

// LookupOrCreate returns the node starting at the given offset, creating it
// if needed. The second return value reports whether the node was created.
func (g *Graph) LookupOrCreate(offset int) (*Node, bool) {
	if id, ok := g.byOffset[offset]; ok {
		return g.nodes[id], false
	}
	node := &Node{
		ID:      NodeID(len(g.nodes)),
		Kind:    NodeBlock,
		Offset:  offset,
		Offsets: []int{offset},
	}
	g.nodes = append(g.nodes, node)
	g.byOffset[offset] = node.ID
	return node, true
}

// NodeAt returns the node starting at the given offset.
func (g *Graph) NodeAt(offset int) (*Node, bool) {
	id, ok := g.byOffset[offset]
	if !ok {
		return nil, false
	}
	return g.nodes[id], true
}

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Exit returns the synthetic exit node, creating it on first use.
func (g *Graph) Exit() *Node {
	if g.exit != NoNode {
		return g.nodes[g.exit]
	}
	node := &Node{ID: NodeID(len(g.nodes)), Kind: NodeExit, Offset: -1}
	g.nodes = append(g.nodes, node)
	g.exit = node.ID
	return node
}

// HasExit reports whether the exit node has been created.
func (g *Graph) HasExit() bool {
	return g.exit != NoNode
}

// SetEntry marks the node where execution of the method begins.
func (g *Graph) SetEntry(id NodeID) {
	g.entry = id
}

// Entry returns the method entry node, or NoNode for an empty graph.
func (g *Graph) Entry() NodeID {
	return g.entry
}

// Append folds the instruction at offset into the node.
func (g *Graph) Append(id NodeID, offset int) {
	node := g.nodes[id]
	node.Offsets = append(node.Offsets, offset)
}

// Connect adds an edge between two nodes. It returns false, leaving the graph
// unchanged, when an edge between the pair already exists.
func (g *Graph) Connect(from, to NodeID, kind EdgeKind) bool {
	key := edgeKey{from: from, to: to}
	if _, ok := g.edgeSet[key]; ok {
		return false
	}
	g.edgeSet[key] = struct{}{}
	g.edges = append(g.edges, Edge{From: from, To: to, Kind: kind})
	return true
}

// HasEdge reports whether an edge connects the two nodes.
func (g *Graph) HasEdge(from, to NodeID) bool {
	_, ok := g.edgeSet[edgeKey{from: from, to: to}]
	return ok
}

// NodeCount returns the number of nodes, including the exit node.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Nodes returns the nodes sorted by offset, with the exit node last.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.nodes))
	copy(nodes, g.nodes)
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Offset < b.Offset
	})
	return nodes
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// Successors returns the outgoing edges of a node.
func (g *Graph) Successors(id NodeID) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// Predecessors returns the incoming edges of a node.
func (g *Graph) Predecessors(id NodeID) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.To == id {
			out = append(out, e)
		}
	}
	return out
}

// AddRegion records an exception region annotation.
func (g *Graph) AddRegion(r Region) {
	g.regions = append(g.regions, r)
}

// RegionCount returns the number of exception regions.
func (g *Graph) RegionCount() int {
	return len(g.regions)
}

// RegionAt returns the exception region at the given index.
func (g *Graph) RegionAt(index int) Region {
	return g.regions[index]
}
