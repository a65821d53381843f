package cilsil

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/cfg"
	"github.com/deepnoodle-ai/cilsil/errz"
	"github.com/deepnoodle-ai/cilsil/op"
	"github.com/deepnoodle-ai/cilsil/translator"
	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func method(t *testing.T, name string, instrs ...bytecode.Instruction) *bytecode.MethodBody {
	t.Helper()
	body, err := bytecode.NewMethodBody(bytecode.MethodParams{Name: name, Instructions: instrs})
	require.Nil(t, err)
	return body
}

func straight(t *testing.T, name string) *bytecode.MethodBody {
	return method(t, name,
		bytecode.Instruction{Offset: 0, Opcode: op.Ldarg0},
		bytecode.Instruction{Offset: 1, Opcode: op.Ret},
	)
}

func broken(t *testing.T, name string) *bytecode.MethodBody {
	return method(t, name,
		bytecode.Instruction{Offset: 0, Opcode: op.BrS, Targets: []int{9}},
		bytecode.Instruction{Offset: 2, Opcode: op.Ret},
	)
}

func unclaimed(t *testing.T, name string) *bytecode.MethodBody {
	return method(t, name,
		bytecode.Instruction{Offset: 0, Opcode: op.Invalid},
		bytecode.Instruction{Offset: 1, Opcode: op.Ret},
	)
}

func TestTranslatePartialFailure(t *testing.T) {
	asm := &bytecode.Assembly{
		Name: "Sample.dll",
		Methods: []*bytecode.MethodBody{
			straight(t, "A::One"),
			broken(t, "A::Two"),
			straight(t, "A::Three"),
		},
	}
	result, err := Translate(context.Background(), asm)
	require.NotNil(t, err)
	require.NotNil(t, result)
	require.NotEqual(t, uuid.Nil, result.RunID)
	require.Equal(t, "Sample.dll", result.Assembly)

	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	require.Len(t, merr.Errors, 1)
	kind, _ := errz.KindOf(merr.Errors[0])
	require.Equal(t, errz.ErrMalformed, kind)

	require.Len(t, result.Graphs(), 2)
	failed := result.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, "A::Two", failed[0].Method.Name())
	require.Nil(t, failed[0].Graph)

	g, ok := result.Graph("A::Three")
	require.True(t, ok)
	require.Equal(t, "A::Three", g.Method())
	_, ok = result.Graph("A::Two")
	require.False(t, ok)
}

func TestTranslateKeepsInputOrder(t *testing.T) {
	asm := &bytecode.Assembly{}
	for i := 0; i < 40; i++ {
		asm.Methods = append(asm.Methods, straight(t, fmt.Sprintf("M::m%02d", i)))
	}
	result, err := Translate(context.Background(), asm, WithWorkers(8))
	require.Nil(t, err)
	require.Len(t, result.Methods, 40)
	for i, m := range result.Methods {
		require.Equal(t, fmt.Sprintf("M::m%02d", i), m.Method.Name())
		require.Equal(t, m.Method.Name(), m.Graph.Method())
	}
}

func TestFailFastSkipsRemainingMethods(t *testing.T) {
	asm := &bytecode.Assembly{
		Methods: []*bytecode.MethodBody{
			unclaimed(t, "A::Bad"),
			straight(t, "A::Later"),
			straight(t, "A::Last"),
		},
	}
	result, err := Translate(context.Background(), asm, WithWorkers(1), WithFailFast())
	require.NotNil(t, err)
	require.True(t, errz.IsFatal(result.Methods[0].Err))
	for _, m := range result.Methods[1:] {
		require.Nil(t, m.Graph)
		require.ErrorIs(t, m.Err, context.Canceled)
		require.Contains(t, m.Err.Error(), "skipped")
	}

	// Without fail-fast the fatal error stays local to its method.
	result, err = Translate(context.Background(), asm, WithWorkers(1))
	require.NotNil(t, err)
	require.Len(t, result.Graphs(), 2)
}

func TestMalformedMethodDoesNotFailFast(t *testing.T) {
	asm := &bytecode.Assembly{
		Methods: []*bytecode.MethodBody{broken(t, "A::Bad"), straight(t, "A::Good")},
	}
	result, err := Translate(context.Background(), asm, WithWorkers(1), WithFailFast())
	require.NotNil(t, err)
	require.Len(t, result.Graphs(), 1)
}

func TestRejectedMethodsKeepDocumentOrder(t *testing.T) {
	rejectErr := errz.New(errz.ErrMalformed, 0, "leave.s takes exactly one target, got 0").
		WithMethod("A::Rejected")
	asm := &bytecode.Assembly{
		Methods: []*bytecode.MethodBody{straight(t, "A::First"), straight(t, "A::Third")},
		Rejected: []bytecode.RejectedMethod{
			{Index: 3, Name: "A::Tail", Err: rejectErr},
			{Index: 1, Name: "A::Rejected", Err: rejectErr},
		},
	}
	result, err := Translate(context.Background(), asm, WithWorkers(1), WithFailFast())
	require.NotNil(t, err)
	require.Len(t, err.(*multierror.Error).Errors, 2)

	var names []string
	for _, m := range result.Methods {
		names = append(names, m.Name)
	}
	require.Equal(t, []string{"A::First", "A::Rejected", "A::Third", "A::Tail"}, names)
	require.Nil(t, result.Methods[1].Method)
	require.Equal(t, rejectErr, result.Methods[1].Err)
	require.Len(t, result.Graphs(), 2)
	require.Len(t, result.Failed(), 2)

	_, ok := result.Graph("A::Third")
	require.True(t, ok)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	asm := &bytecode.Assembly{
		Methods: []*bytecode.MethodBody{straight(t, "A::One"), straight(t, "A::Two")},
	}
	result, err := Translate(ctx, asm)
	require.NotNil(t, err)
	require.Empty(t, result.Graphs())
	require.Len(t, result.Failed(), 2)
}

func TestEmptyAssembly(t *testing.T) {
	result, err := Translate(context.Background(), &bytecode.Assembly{Name: "Empty.dll"})
	require.Nil(t, err)
	require.Empty(t, result.Methods)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	asm := &bytecode.Assembly{
		Name:    "Logged.dll",
		Methods: []*bytecode.MethodBody{straight(t, "A::Good"), broken(t, "A::Bad")},
	}
	result, _ := Translate(context.Background(), asm, WithLogger(logger), WithWorkers(1))

	out := buf.String()
	require.Contains(t, out, `"run_id":"`+result.RunID.String()+`"`)
	require.Contains(t, out, `"message":"method translated"`)
	require.Contains(t, out, `"message":"method translation failed"`)
	require.Contains(t, out, `"method":"A::Bad"`)
	require.Contains(t, out, `"kind":"malformed input"`)
	require.Contains(t, out, `"offset":0`)
}

type countingObserver struct {
	translator.NoOpObserver
	mu    sync.Mutex
	nodes int
}

func (c *countingObserver) OnNode(*cfg.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes++
}

func TestOptionsReachTranslator(t *testing.T) {
	obs := &countingObserver{}
	asm := &bytecode.Assembly{
		Methods: []*bytecode.MethodBody{straight(t, "A::One"), straight(t, "A::Two")},
	}
	_, err := Translate(context.Background(), asm, WithObserver(obs), WithWorkers(2))
	require.Nil(t, err)
	require.Equal(t, 2, obs.nodes)

	_, err = Translate(context.Background(), asm, WithMaxSteps(1))
	require.NotNil(t, err)
	kind, _ := errz.KindOf(err.(*multierror.Error).Errors[0])
	require.Equal(t, errz.ErrBudget, kind)
}
