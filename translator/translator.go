package translator

import (
	"errors"

	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/cfg"
	"github.com/deepnoodle-ai/cilsil/errz"
)

// Option configures a Translator.
type Option func(*Translator)

// WithLeavePolicy selects how leave instructions are wired. The default is
// LeaveConcatenatedFinally.
func WithLeavePolicy(policy LeavePolicy) Option {
	return func(t *Translator) {
		t.policy = policy
	}
}

// WithMaxSteps caps the number of work-list items processed for one method.
// A value <= 0 selects the default budget derived from the instruction count.
func WithMaxSteps(steps int) Option {
	return func(t *Translator) {
		t.maxSteps = steps
	}
}

// WithObserver sets an observer for translation events.
func WithObserver(observer Observer) Option {
	return func(t *Translator) {
		t.observer = observer
	}
}

// WithParsers replaces the default parser chain.
func WithParsers(parsers ...Parser) Option {
	return func(t *Translator) {
		t.parsers = parsers
	}
}

// WithoutExceptionalEdges skips the edges from protected blocks to their
// handlers that are otherwise added after traversal.
func WithoutExceptionalEdges() Option {
	return func(t *Translator) {
		t.skipExceptional = true
	}
}

// Translator turns method bodies into control-flow graphs. A Translator holds
// only configuration, so one value may translate many bodies concurrently.
type Translator struct {
	policy          LeavePolicy
	maxSteps        int
	observer        Observer
	parsers         []Parser
	skipExceptional bool
	dispatcher      *Dispatcher
}

// New returns a Translator configured with the given options.
func New(opts ...Option) *Translator {
	t := &Translator{}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.parsers == nil {
		t.parsers = DefaultParsers(t.policy)
	}
	t.dispatcher = NewDispatcher(t.parsers...)
	return t
}

// Dispatcher returns the parser chain used by the translator.
func (t *Translator) Dispatcher() *Dispatcher {
	return t.dispatcher
}

// Policy returns the configured leave policy.
func (t *Translator) Policy() LeavePolicy {
	return t.policy
}

func (t *Translator) budget(body *bytecode.MethodBody) int {
	if t.maxSteps > 0 {
		return t.maxSteps
	}
	return 4*body.InstructionCount() + 16
}

// Translate builds the control-flow graph of one method body. Errors are
// *errz.TranslationError values carrying the method name.
func (t *Translator) Translate(body *bytecode.MethodBody) (*cfg.Graph, error) {
	graph, err := t.translate(body)
	if err != nil {
		var terr *errz.TranslationError
		if errors.As(err, &terr) {
			return nil, terr.WithMethod(body.Name())
		}
		return nil, errz.New(errz.ErrInternal, errz.NoOffset, err.Error()).
			WithCause(err).WithMethod(body.Name())
	}
	return graph, nil
}

func (t *Translator) translate(body *bytecode.MethodBody) (*cfg.Graph, error) {
	regions, err := NewRegions(body)
	if err != nil {
		return nil, err
	}
	state := NewState(body, regions, t.observer)
	if body.InstructionCount() == 0 {
		return state.Graph(), nil
	}

	// Handlers are seeded first so that, with a LIFO work-list, the method
	// entry is translated before any handler that nothing else reaches.
	for _, entry := range regions.Entries() {
		if err := state.PushOffset(entry, cfg.EdgeExceptional); err != nil {
			return nil, err
		}
	}
	if err := state.Push(body.InstructionAt(0), cfg.EdgeNormal); err != nil {
		return nil, err
	}

	limit := t.budget(body)
	steps := 0
	for {
		item, ok := state.pop()
		if !ok {
			break
		}
		steps++
		if steps > limit {
			return nil, errz.Newf(errz.ErrBudget, item.offset,
				"translation exceeded %d steps", limit)
		}
		instr, ok := body.At(item.offset)
		if !ok {
			return nil, errz.Newf(errz.ErrInternal, item.offset, "queued offset is not an instruction")
		}
		state.observer.OnVisit(instr)
		state.begin(item, instr)
		if err := t.dispatcher.Dispatch(instr, state); err != nil {
			return nil, err
		}
	}

	t.annotateRegions(state)
	return state.Graph(), nil
}

// annotateRegions records the exception regions on the graph and, unless
// disabled, connects every node that starts inside a try block to the entry
// of its handler.
func (t *Translator) annotateRegions(state *State) {
	graph := state.Graph()
	regions := state.Regions()
	nodes := graph.Nodes()
	for i := 0; i < regions.HandlerCount(); i++ {
		h := regions.HandlerAt(i)
		region := cfg.Region{
			Kind:         h.Kind,
			TryStart:     h.TryStart,
			TryEnd:       h.TryEnd,
			HandlerStart: h.HandlerStart,
			HandlerEnd:   h.HandlerEnd,
			CatchType:    h.CatchType,
			Entry:        cfg.NoNode,
		}
		entry, ok := graph.NodeAt(h.Entry())
		if ok {
			region.Entry = entry.ID
		}
		graph.AddRegion(region)
		if !ok || t.skipExceptional {
			continue
		}
		for _, node := range nodes {
			if node.Kind == cfg.NodeBlock && h.InTry(node.Offset) {
				state.connect(node.ID, entry.ID, cfg.EdgeExceptional)
			}
		}
	}
}
