package translator

import (
	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/cfg"
)

// Observer is an interface for observing translation events. It can be used
// for tracing, coverage or debugging without modifying the translator.
//
// Observer methods are called synchronously from the translation loop.
// Implementations should be fast. Embed NoOpObserver to implement only the
// methods you need.
type Observer interface {
	// OnPush is called when an offset is added to the work-list.
	OnPush(instr bytecode.Instruction)

	// OnVisit is called when an instruction is taken off the work-list,
	// before it is dispatched.
	OnVisit(instr bytecode.Instruction)

	// OnNode is called when a new node is created.
	OnNode(node *cfg.Node)

	// OnEdge is called when a new edge is added.
	OnEdge(edge cfg.Edge)
}

// NoOpObserver implements Observer with no-op methods.
type NoOpObserver struct{}

func (NoOpObserver) OnPush(bytecode.Instruction)  {}
func (NoOpObserver) OnVisit(bytecode.Instruction) {}
func (NoOpObserver) OnNode(*cfg.Node)             {}
func (NoOpObserver) OnEdge(cfg.Edge)              {}
