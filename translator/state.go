package translator

import (
	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/cfg"
	"github.com/deepnoodle-ai/cilsil/errz"
)

type pred struct {
	node cfg.NodeID
	kind cfg.EdgeKind
}

type workItem struct {
	offset int
	preds  []pred
}

// State is the mutable context threaded through the translation of one
// method body. Each translation owns a private State; it is not safe for
// concurrent use.
//
// The work-list is a LIFO stack. Visitation order affects the order in which
// nodes are created but not the shape of the graph, since nodes are keyed by
// offset.
type State struct {
	// AppendToPreviousNode makes the next translated instruction fold into
	// the current node instead of starting a new one. Parsers that fork or
	// end control flow clear it.
	AppendToPreviousNode bool

	body     *bytecode.MethodBody
	regions  *Regions
	graph    *cfg.Graph
	observer Observer

	stack   []*workItem
	queued  map[int]*workItem
	visited map[int]bool
	parsed  []bytecode.Instruction
	leaders map[int]bool
	current cfg.NodeID
}

// NewState returns the initial translation state for a body.
func NewState(body *bytecode.MethodBody, regions *Regions, observer Observer) *State {
	if observer == nil {
		observer = NoOpObserver{}
	}
	s := &State{
		body:     body,
		regions:  regions,
		graph:    cfg.New(body.Name()),
		observer: observer,
		queued:   map[int]*workItem{},
		visited:  map[int]bool{},
		current:  cfg.NoNode,
	}
	s.leaders = findLeaders(body, regions)
	return s
}

// findLeaders returns the offsets that must begin a node: the method entry,
// every branch target, every region boundary and every instruction that
// follows one which does not simply fall through.
func findLeaders(body *bytecode.MethodBody, regions *Regions) map[int]bool {
	leaders := map[int]bool{}
	if body.InstructionCount() == 0 {
		return leaders
	}
	leaders[body.InstructionAt(0).Offset] = true
	for i := 0; i < body.InstructionCount(); i++ {
		instr := body.InstructionAt(i)
		for _, target := range instr.Targets {
			leaders[target] = true
		}
		if !endsBlock(instr) {
			continue
		}
		if next, ok := body.Next(instr); ok {
			leaders[next.Offset] = true
		}
	}
	for _, offset := range regions.Boundaries() {
		leaders[offset] = true
	}
	return leaders
}

// Body returns the method body being translated.
func (s *State) Body() *bytecode.MethodBody {
	return s.body
}

// Regions returns the exception-region tables of the body.
func (s *State) Regions() *Regions {
	return s.regions
}

// Graph returns the graph under construction.
func (s *State) Graph() *cfg.Graph {
	return s.graph
}

// Current returns the node the most recently translated instruction belongs
// to.
func (s *State) Current() cfg.NodeID {
	return s.current
}

// IsLeader reports whether the offset must begin a new node.
func (s *State) IsLeader(offset int) bool {
	return s.leaders[offset]
}

// Visited reports whether the offset has been translated.
func (s *State) Visited(offset int) bool {
	return s.visited[offset]
}

// Queued reports whether the offset is waiting on the work-list.
func (s *State) Queued(offset int) bool {
	_, ok := s.queued[offset]
	return ok
}

// VisitedCount returns the number of translated instructions.
func (s *State) VisitedCount() int {
	return len(s.visited)
}

// Pending returns the queued offsets from the bottom of the stack to the top.
func (s *State) Pending() []int {
	out := make([]int, len(s.stack))
	for i, item := range s.stack {
		out[i] = item.offset
	}
	return out
}

// ParsedBack returns the instruction translated n steps before the current
// one, in translation order. ParsedBack(0) is the current instruction.
func (s *State) ParsedBack(n int) (bytecode.Instruction, bool) {
	idx := len(s.parsed) - 1 - n
	if n < 0 || idx < 0 {
		return bytecode.Instruction{}, false
	}
	return s.parsed[idx], true
}

// Resolve returns the instruction at a branch target offset.
func (s *State) Resolve(offset int) (bytecode.Instruction, error) {
	instr, ok := s.body.At(offset)
	if !ok {
		at := offset
		if current, ok := s.ParsedBack(0); ok {
			at = current.Offset
		}
		return bytecode.Instruction{}, errz.Newf(errz.ErrMalformed, at,
			"branch target %s is not an instruction of the method", bytecode.Label(offset))
	}
	return instr, nil
}

// Push schedules an instruction for translation with an edge of the given
// kind from the current node. Offsets that were already translated are
// connected immediately; offsets already waiting gain another predecessor.
func (s *State) Push(instr bytecode.Instruction, kind cfg.EdgeKind) error {
	from := s.current
	if s.visited[instr.Offset] {
		node, ok := s.graph.NodeAt(instr.Offset)
		if !ok {
			return errz.Newf(errz.ErrInternal, instr.Offset,
				"%s was folded into another node but is the target of an edge", bytecode.Label(instr.Offset))
		}
		s.connect(from, node.ID, kind)
		return nil
	}
	if item, ok := s.queued[instr.Offset]; ok {
		if from != cfg.NoNode {
			item.preds = append(item.preds, pred{node: from, kind: kind})
		}
		return nil
	}
	item := &workItem{offset: instr.Offset}
	if from != cfg.NoNode {
		item.preds = append(item.preds, pred{node: from, kind: kind})
	}
	s.queued[instr.Offset] = item
	s.stack = append(s.stack, item)
	s.observer.OnPush(instr)
	return nil
}

// PushOffset resolves a branch target and pushes it.
func (s *State) PushOffset(offset int, kind cfg.EdgeKind) error {
	instr, err := s.Resolve(offset)
	if err != nil {
		return err
	}
	return s.Push(instr, kind)
}

// ConnectExit adds an edge from the current node to the exit node.
func (s *State) ConnectExit(kind cfg.EdgeKind) {
	if s.current == cfg.NoNode {
		return
	}
	s.connect(s.current, s.graph.Exit().ID, kind)
}

func (s *State) connect(from, to cfg.NodeID, kind cfg.EdgeKind) {
	if from == cfg.NoNode {
		return
	}
	if s.graph.Connect(from, to, kind) {
		s.observer.OnEdge(cfg.Edge{From: from, To: to, Kind: kind})
	}
}

func (s *State) pop() (*workItem, bool) {
	if len(s.stack) == 0 {
		return nil, false
	}
	item := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.queued, item.offset)
	return item, true
}

// begin marks the item's instruction as translated and places it in the
// graph, either folded into the current node or as the first instruction of
// a new one.
func (s *State) begin(item *workItem, instr bytecode.Instruction) {
	s.visited[instr.Offset] = true
	s.parsed = append(s.parsed, instr)

	if s.AppendToPreviousNode && !s.leaders[instr.Offset] &&
		len(item.preds) == 1 && item.preds[0].node == s.current && s.current != cfg.NoNode {
		s.graph.Append(s.current, instr.Offset)
		return
	}

	node, created := s.graph.LookupOrCreate(instr.Offset)
	if created {
		if kind, ok := s.handlerKindAt(instr.Offset); ok {
			node.Handler = &kind
		}
		if instr.Index == 0 {
			s.graph.SetEntry(node.ID)
		}
		s.observer.OnNode(node)
	}
	for _, p := range item.preds {
		s.connect(p.node, node.ID, p.kind)
	}
	s.current = node.ID
}

func (s *State) handlerKindAt(offset int) (bytecode.HandlerKind, bool) {
	for i := 0; i < s.regions.HandlerCount(); i++ {
		h := s.regions.HandlerAt(i)
		if h.Entry() == offset {
			return h.Kind, true
		}
	}
	return 0, false
}
