package translator

import (
	"testing"

	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/cfg"
	"github.com/deepnoodle-ai/cilsil/op"
	"github.com/stretchr/testify/require"
)

func ins(offset int, code op.Code, targets ...int) bytecode.Instruction {
	return bytecode.Instruction{Offset: offset, Opcode: code, Targets: targets}
}

func newBody(t *testing.T, handlers []bytecode.ExceptionHandler, instructions ...bytecode.Instruction) *bytecode.MethodBody {
	t.Helper()
	body, err := bytecode.NewMethodBody(bytecode.MethodParams{
		Name:         "Test::Method",
		Instructions: instructions,
		Handlers:     handlers,
	})
	require.Nil(t, err)
	return body
}

func finally(tryStart, tryEnd, start, end int) bytecode.ExceptionHandler {
	return bytecode.ExceptionHandler{
		Kind:         bytecode.HandlerFinally,
		TryStart:     tryStart,
		TryEnd:       tryEnd,
		HandlerStart: start,
		HandlerEnd:   end,
	}
}

func catch(tryStart, tryEnd, start, end int) bytecode.ExceptionHandler {
	return bytecode.ExceptionHandler{
		Kind:         bytecode.HandlerCatch,
		TryStart:     tryStart,
		TryEnd:       tryEnd,
		HandlerStart: start,
		HandlerEnd:   end,
		CatchType:    "System.Exception",
	}
}

func translate(t *testing.T, body *bytecode.MethodBody, opts ...Option) *cfg.Graph {
	t.Helper()
	g, err := New(opts...).Translate(body)
	require.Nil(t, err)
	return g
}

func node(t *testing.T, g *cfg.Graph, offset int) *cfg.Node {
	t.Helper()
	n, ok := g.NodeAt(offset)
	require.True(t, ok, "no node starts at %s", bytecode.Label(offset))
	return n
}

func edgeKind(t *testing.T, g *cfg.Graph, from, to *cfg.Node) cfg.EdgeKind {
	t.Helper()
	for _, e := range g.Successors(from.ID) {
		if e.To == to.ID {
			return e.Kind
		}
	}
	t.Fatalf("no edge from %d to %d", from.Offset, to.Offset)
	return 0
}

func edgesBetween(g *cfg.Graph, from, to *cfg.Node) int {
	count := 0
	for _, e := range g.Edges() {
		if e.From == from.ID && e.To == to.ID {
			count++
		}
	}
	return count
}

// replay marks the given offsets as translated, in order, without
// dispatching them. Each one starts a fresh node.
func replay(t *testing.T, s *State, offsets ...int) {
	t.Helper()
	for _, offset := range offsets {
		instr, ok := s.Body().At(offset)
		require.True(t, ok)
		s.begin(&workItem{offset: offset}, instr)
	}
}

func newState(t *testing.T, body *bytecode.MethodBody) *State {
	t.Helper()
	regions, err := NewRegions(body)
	require.Nil(t, err)
	return NewState(body, regions, nil)
}

type recordingObserver struct {
	NoOpObserver
	visits []int
	pushes []int
	nodes  int
	edges  []cfg.Edge
}

func (r *recordingObserver) OnVisit(instr bytecode.Instruction) {
	r.visits = append(r.visits, instr.Offset)
}

func (r *recordingObserver) OnPush(instr bytecode.Instruction) {
	r.pushes = append(r.pushes, instr.Offset)
}

func (r *recordingObserver) OnNode(*cfg.Node) {
	r.nodes++
}

func (r *recordingObserver) OnEdge(e cfg.Edge) {
	r.edges = append(r.edges, e)
}
