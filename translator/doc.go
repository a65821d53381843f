// Package translator builds control-flow graphs from CIL method bodies.
//
// A Translator walks a method with a work-list of instruction offsets. Each
// popped instruction is placed in the graph, either folded into the node of
// its predecessor or as the first instruction of a new node, and then handed
// to an ordered chain of parsers. The first parser that claims the opcode
// pushes the successors and wires the edges. Leave instructions get special
// treatment so that finally blocks laid out back to back are chained without
// redundant edges.
//
// Exception regions are read once into a Regions table before traversal.
// After traversal, every node that starts inside a try block is connected to
// its handler with an exceptional edge.
package translator
