package translator

import (
	"testing"

	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/cfg"
	"github.com/deepnoodle-ai/cilsil/errz"
	"github.com/deepnoodle-ai/cilsil/op"
	"github.com/stretchr/testify/require"
)

func TestStraightLine(t *testing.T) {
	body := newBody(t, nil,
		ins(0, op.Ldarg0),
		ins(1, op.Ldarg1),
		ins(2, op.Add),
		ins(3, op.Ret),
	)
	g := translate(t, body)
	require.Equal(t, 2, g.NodeCount())
	entry := g.Node(g.Entry())
	require.Equal(t, []int{0, 1, 2, 3}, entry.Offsets)
	require.True(t, g.HasEdge(entry.ID, g.Exit().ID))
	require.Equal(t, 1, g.EdgeCount())
}

func TestEmptyBody(t *testing.T) {
	body := newBody(t, nil)
	g := translate(t, body)
	require.Equal(t, 0, g.NodeCount())
	require.Equal(t, cfg.NoNode, g.Entry())
}

func TestConditionalBranch(t *testing.T) {
	body := newBody(t, nil,
		ins(0, op.Ldarg0),
		ins(1, op.BrtrueS, 4),
		ins(3, op.Ret),
		ins(4, op.Ret),
	)
	g := translate(t, body)
	head := node(t, g, 0)
	require.Equal(t, []int{0, 1}, head.Offsets)
	require.Equal(t, cfg.EdgeFalse, edgeKind(t, g, head, node(t, g, 3)))
	require.Equal(t, cfg.EdgeTrue, edgeKind(t, g, head, node(t, g, 4)))
}

func TestConditionalBranchToSuccessor(t *testing.T) {
	body := newBody(t, nil,
		ins(0, op.Ldarg0),
		ins(1, op.BrfalseS, 3),
		ins(3, op.Ret),
	)
	g := translate(t, body)
	head := node(t, g, 0)
	succs := g.Successors(head.ID)
	require.Len(t, succs, 1)
	require.Equal(t, cfg.EdgeNormal, succs[0].Kind)
}

func TestBackwardBranchTerminates(t *testing.T) {
	body := newBody(t, nil,
		ins(0, op.LdcI40),
		ins(1, op.Stloc0),
		ins(2, op.Ldloc0),
		ins(3, op.BrtrueS, 2),
		ins(5, op.Ret),
	)
	obs := &recordingObserver{}
	g := translate(t, body, WithObserver(obs))

	loop := node(t, g, 2)
	require.Equal(t, []int{2, 3}, loop.Offsets)
	require.Equal(t, cfg.EdgeTrue, edgeKind(t, g, loop, loop))
	require.Equal(t, cfg.EdgeFalse, edgeKind(t, g, loop, node(t, g, 5)))
	require.Equal(t, []int{0, 1}, node(t, g, 0).Offsets)
	require.ElementsMatch(t, []int{0, 1, 2, 3, 5}, obs.visits)
}

func TestUnconditionalBranch(t *testing.T) {
	body := newBody(t, nil,
		ins(0, op.BrS, 3),
		ins(2, op.Nop),
		ins(3, op.Ret),
	)
	g := translate(t, body)
	require.Equal(t, cfg.EdgeNormal, edgeKind(t, g, node(t, g, 0), node(t, g, 3)))
	_, ok := g.NodeAt(2)
	require.False(t, ok, "unreachable code must not produce a node")
}

func TestSwitch(t *testing.T) {
	body := newBody(t, nil,
		ins(0, op.Ldarg0),
		ins(1, op.Switch, 19, 20, 19),
		ins(18, op.Ret),
		ins(19, op.Ret),
		ins(20, op.Ret),
	)
	g := translate(t, body)
	head := node(t, g, 0)
	require.Len(t, g.Successors(head.ID), 3)
	require.Equal(t, cfg.EdgeNormal, edgeKind(t, g, head, node(t, g, 18)))
	require.Equal(t, cfg.EdgeCase, edgeKind(t, g, head, node(t, g, 19)))
	require.Equal(t, cfg.EdgeCase, edgeKind(t, g, head, node(t, g, 20)))
}

func TestThrowOutsideTryEscapes(t *testing.T) {
	body := newBody(t, nil,
		ins(0, op.Newobj),
		ins(5, op.Throw),
	)
	g := translate(t, body)
	entry := node(t, g, 0)
	require.Equal(t, cfg.EdgeExceptional, edgeKind(t, g, entry, g.Exit()))
}

func TestThrowInsideTryReachesCatch(t *testing.T) {
	body := newBody(t,
		[]bytecode.ExceptionHandler{catch(0, 6, 6, 9)},
		ins(0, op.Newobj),
		ins(5, op.Throw),
		ins(6, op.Pop),
		ins(7, op.LeaveS, 9),
		ins(9, op.Ret),
	)
	g := translate(t, body)
	try := node(t, g, 0)
	handler := node(t, g, 6)
	require.True(t, handler.IsHandlerEntry())
	require.Equal(t, bytecode.HandlerCatch, *handler.Handler)
	require.Equal(t, cfg.EdgeExceptional, edgeKind(t, g, try, handler))
	require.False(t, g.HasEdge(try.ID, g.Exit().ID))
	require.Equal(t, cfg.EdgeLeave, edgeKind(t, g, handler, node(t, g, 9)))
	require.Equal(t, 1, g.RegionCount())
	require.Equal(t, "System.Exception", g.RegionAt(0).CatchType)
}

func TestRethrowAndFilter(t *testing.T) {
	body := newBody(t,
		[]bytecode.ExceptionHandler{{
			Kind:         bytecode.HandlerFilter,
			TryStart:     0,
			TryEnd:       3,
			FilterStart:  3,
			HandlerStart: 7,
			HandlerEnd:   10,
		}},
		ins(0, op.Nop),
		ins(1, op.LeaveS, 10),
		ins(3, op.Pop),
		ins(4, op.LdcI41),
		ins(5, op.Endfilter),
		ins(7, op.Pop),
		ins(8, op.LeaveS, 10),
		ins(10, op.Ret),
	)
	g := translate(t, body)
	filter := node(t, g, 3)
	require.Equal(t, bytecode.HandlerFilter, *filter.Handler)
	require.Equal(t, []int{3, 4, 5}, filter.Offsets)
	handlerBody := node(t, g, 7)
	require.Equal(t, cfg.EdgeTrue, edgeKind(t, g, filter, handlerBody))
	require.True(t, g.HasEdge(handlerBody.ID, node(t, g, 10).ID))
	require.Nil(t, handlerBody.Handler)
}

func TestJmpLeavesMethod(t *testing.T) {
	body := newBody(t, nil, ins(0, op.Jmp), ins(5, op.Ret))
	g := translate(t, body)
	require.True(t, g.HasEdge(node(t, g, 0).ID, g.Exit().ID))
	_, ok := g.NodeAt(5)
	require.False(t, ok)
}

func TestEveryReachableOffsetVisitedOnce(t *testing.T) {
	bodies := map[string]*bytecode.MethodBody{
		"chained finally": chainedFinallyBody(t),
		"loop": newBody(t, nil,
			ins(0, op.Nop),
			ins(1, op.Ldloc0),
			ins(2, op.BrtrueS, 1),
			ins(4, op.Ldloc1),
			ins(5, op.BrfalseS, 0),
			ins(7, op.Ret),
		),
		"switch": newBody(t, nil,
			ins(0, op.Ldarg0),
			ins(1, op.Switch, 0, 18, 18),
			ins(18, op.Ret),
		),
	}
	for name, body := range bodies {
		for _, policy := range []LeavePolicy{LeaveConcatenatedFinally, LeaveTargetFilter} {
			t.Run(name+"/"+policy.String(), func(t *testing.T) {
				obs := &recordingObserver{}
				g := translate(t, body, WithObserver(obs), WithLeavePolicy(policy))

				seen := map[int]bool{}
				for _, offset := range obs.visits {
					require.False(t, seen[offset], "offset %d translated twice", offset)
					seen[offset] = true
				}
				require.LessOrEqual(t, len(obs.visits), body.InstructionCount())

				folded, blocks := 0, 0
				for _, n := range g.Nodes() {
					if n.Kind == cfg.NodeBlock {
						blocks++
					}
					for _, offset := range n.Offsets {
						require.True(t, seen[offset])
						folded++
					}
				}
				require.Equal(t, len(obs.visits), folded)
				require.Equal(t, blocks, obs.nodes)
				require.Len(t, obs.edges, g.EdgeCount())
			})
		}
	}
}

func TestUnresolvedBranchTarget(t *testing.T) {
	body := newBody(t, nil,
		ins(0, op.Ldarg0),
		ins(1, op.BrtrueS, 40),
		ins(3, op.Ret),
	)
	_, err := New().Translate(body)
	require.NotNil(t, err)
	kind, ok := errz.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errz.ErrMalformed, kind)
	require.False(t, errz.IsFatal(err))
	require.Equal(t, "Test::Method: malformed input at IL_0001: branch target IL_0028 is not an instruction of the method", err.Error())
}

func TestFallOffEnd(t *testing.T) {
	body := newBody(t, nil, ins(0, op.Nop))
	_, err := New().Translate(body)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "falls through past the end of the method")
}

func TestMalformedRegion(t *testing.T) {
	body := newBody(t,
		[]bytecode.ExceptionHandler{finally(2, 1, 2, 3)},
		ins(0, op.Nop),
		ins(1, op.Nop),
		ins(2, op.Endfinally),
		ins(3, op.Ret),
	)
	_, err := New().Translate(body)
	require.NotNil(t, err)
	kind, _ := errz.KindOf(err)
	require.Equal(t, errz.ErrMalformed, kind)
}

func TestUnclaimedInstructionIsFatal(t *testing.T) {
	body := newBody(t, nil, ins(0, op.Invalid), ins(1, op.Ret))
	_, err := New().Translate(body)
	require.NotNil(t, err)
	kind, _ := errz.KindOf(err)
	require.Equal(t, errz.ErrUnclaimed, kind)
	require.True(t, errz.IsFatal(err))

	body = newBody(t, nil, ins(0, op.Nop), ins(1, op.Ret))
	_, err = New(WithParsers(&ReturnParser{})).Translate(body)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "no parser claims opcode nop")
}

func TestStepBudget(t *testing.T) {
	body := newBody(t, nil,
		ins(0, op.Nop),
		ins(1, op.Nop),
		ins(2, op.Ret),
	)
	_, err := New(WithMaxSteps(1)).Translate(body)
	require.NotNil(t, err)
	kind, _ := errz.KindOf(err)
	require.Equal(t, errz.ErrBudget, kind)

	_, err = New(WithMaxSteps(3)).Translate(body)
	require.Nil(t, err)
}

func TestTranslatorDefaults(t *testing.T) {
	tr := New()
	require.Equal(t, LeaveConcatenatedFinally, tr.Policy())
	require.Len(t, tr.Dispatcher().Parsers(), 9)
}
