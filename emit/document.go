// Package emit renders translated graphs for downstream tools.
package emit

import (
	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/cfg"
)

// GraphDocument is the serializable form of one graph.
type GraphDocument struct {
	Method  string           `json:"method"`
	Entry   *int             `json:"entry,omitempty"`
	Nodes   []NodeDocument   `json:"nodes"`
	Edges   []EdgeDocument   `json:"edges"`
	Regions []RegionDocument `json:"regions,omitempty"`
}

// NodeDocument is the serializable form of a node.
type NodeDocument struct {
	ID           int      `json:"id"`
	Kind         string   `json:"kind"`
	Label        string   `json:"label"`
	Offsets      []int    `json:"offsets,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
	Handler      string   `json:"handler,omitempty"`
}

// EdgeDocument is the serializable form of an edge.
type EdgeDocument struct {
	From int    `json:"from"`
	To   int    `json:"to"`
	Kind string `json:"kind"`
}

// RegionDocument is the serializable form of an exception region.
type RegionDocument struct {
	Kind         string `json:"kind"`
	TryStart     int    `json:"try_start"`
	TryEnd       int    `json:"try_end"`
	HandlerStart int    `json:"handler_start"`
	HandlerEnd   int    `json:"handler_end"`
	CatchType    string `json:"catch_type,omitempty"`
	Entry        *int   `json:"entry,omitempty"`
}

// NewGraphDocument converts a graph. When body is not nil, every node also
// lists the text of its instructions.
func NewGraphDocument(g *cfg.Graph, body *bytecode.MethodBody) GraphDocument {
	doc := GraphDocument{
		Method: g.Method(),
		Entry:  nodeRef(g.Entry()),
		Nodes:  []NodeDocument{},
		Edges:  []EdgeDocument{},
	}
	for _, n := range g.Nodes() {
		nd := NodeDocument{
			ID:      int(n.ID),
			Kind:    n.Kind.String(),
			Label:   nodeLabel(n),
			Offsets: n.Offsets,
		}
		if n.Handler != nil {
			nd.Handler = n.Handler.String()
		}
		if body != nil {
			for _, offset := range n.Offsets {
				if instr, ok := body.At(offset); ok {
					nd.Instructions = append(nd.Instructions, instr.String())
				}
			}
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, EdgeDocument{
			From: int(e.From),
			To:   int(e.To),
			Kind: e.Kind.String(),
		})
	}
	for i := 0; i < g.RegionCount(); i++ {
		r := g.RegionAt(i)
		doc.Regions = append(doc.Regions, RegionDocument{
			Kind:         r.Kind.String(),
			TryStart:     r.TryStart,
			TryEnd:       r.TryEnd,
			HandlerStart: r.HandlerStart,
			HandlerEnd:   r.HandlerEnd,
			CatchType:    r.CatchType,
			Entry:        nodeRef(r.Entry),
		})
	}
	return doc
}

func nodeRef(id cfg.NodeID) *int {
	if id == cfg.NoNode {
		return nil
	}
	v := int(id)
	return &v
}

func nodeLabel(n *cfg.Node) string {
	if n.Kind == cfg.NodeExit {
		return "exit"
	}
	return bytecode.Label(n.Offset)
}
