package translator

import (
	"sort"

	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/errz"
)

// Regions holds the exception-region tables of one method body. It is built
// once before traversal and only read afterwards.
type Regions struct {
	// StartToEnd maps the start offset of every try block and every handler
	// block to its exclusive end offset. When several regions share a start,
	// the widest one is kept.
	StartToEnd map[int]int
	// EntryKinds maps the entry offset of catch and filter handlers to their
	// kind. Finally and fault handlers are entered by leave/endfinally
	// chaining rather than with an exception object, so they are absent.
	EntryKinds map[int]bytecode.HandlerKind

	handlers     []bytecode.ExceptionHandler
	finallyStart map[int]bool
}

// NewRegions builds the region tables for the given body. Handlers whose
// offsets are inverted or do not land on instruction boundaries are
// reported as malformed input.
func NewRegions(body *bytecode.MethodBody) (*Regions, error) {
	r := &Regions{
		StartToEnd:   map[int]int{},
		EntryKinds:   map[int]bytecode.HandlerKind{},
		finallyStart: map[int]bool{},
	}
	end := body.EndOffset()
	boundary := func(offset int) bool {
		return offset == end || body.HasOffset(offset)
	}
	for i := 0; i < body.HandlerCount(); i++ {
		h := body.HandlerAt(i)
		if h.TryStart >= h.TryEnd || h.HandlerStart >= h.HandlerEnd {
			return nil, errz.Newf(errz.ErrMalformed, errz.NoOffset,
				"exception handler %d has an empty or inverted span", i)
		}
		if !body.HasOffset(h.TryStart) || !body.HasOffset(h.HandlerStart) {
			return nil, errz.Newf(errz.ErrMalformed, errz.NoOffset,
				"exception handler %d does not start on an instruction", i)
		}
		if !boundary(h.TryEnd) || !boundary(h.HandlerEnd) {
			return nil, errz.Newf(errz.ErrMalformed, errz.NoOffset,
				"exception handler %d does not end on an instruction boundary", i)
		}
		if h.Kind == bytecode.HandlerFilter {
			if !body.HasOffset(h.FilterStart) || h.FilterStart >= h.HandlerStart {
				return nil, errz.Newf(errz.ErrMalformed, errz.NoOffset,
					"exception handler %d has an invalid filter block", i)
			}
			r.addSpan(h.FilterStart, h.HandlerEnd)
		}
		r.addSpan(h.TryStart, h.TryEnd)
		r.addSpan(h.HandlerStart, h.HandlerEnd)
		switch h.Kind {
		case bytecode.HandlerCatch, bytecode.HandlerFilter:
			r.EntryKinds[h.Entry()] = h.Kind
		case bytecode.HandlerFinally, bytecode.HandlerFault:
			r.finallyStart[h.HandlerStart] = true
		}
		r.handlers = append(r.handlers, h)
	}
	return r, nil
}

func (r *Regions) addSpan(start, end int) {
	if current, ok := r.StartToEnd[start]; !ok || end > current {
		r.StartToEnd[start] = end
	}
}

// IsStart reports whether a region starts at the offset.
func (r *Regions) IsStart(offset int) bool {
	_, ok := r.StartToEnd[offset]
	return ok
}

// IsEntry reports whether the offset is a catch or filter handler entry.
func (r *Regions) IsEntry(offset int) bool {
	_, ok := r.EntryKinds[offset]
	return ok
}

// IsFinallyStart reports whether a finally or fault handler starts at the
// offset.
func (r *Regions) IsFinallyStart(offset int) bool {
	return r.finallyStart[offset]
}

// Inside reports whether the offset falls within any region span.
func (r *Regions) Inside(offset int) bool {
	for start, end := range r.StartToEnd {
		if offset >= start && offset < end {
			return true
		}
	}
	return false
}

// InTry reports whether the offset lies inside any protected try block.
func (r *Regions) InTry(offset int) bool {
	for _, h := range r.handlers {
		if h.InTry(offset) {
			return true
		}
	}
	return false
}

// HandlerCount returns the number of handlers the tables were built from.
func (r *Regions) HandlerCount() int {
	return len(r.handlers)
}

// HandlerAt returns the handler at the given index.
func (r *Regions) HandlerAt(index int) bytecode.ExceptionHandler {
	return r.handlers[index]
}

// Entries returns the distinct entry offsets of all handlers in ascending
// order.
func (r *Regions) Entries() []int {
	seen := map[int]bool{}
	var out []int
	for _, h := range r.handlers {
		if entry := h.Entry(); !seen[entry] {
			seen[entry] = true
			out = append(out, entry)
		}
	}
	sort.Ints(out)
	return out
}

// Boundaries returns every region start and end offset.
func (r *Regions) Boundaries() []int {
	var out []int
	for start, end := range r.StartToEnd {
		out = append(out, start, end)
	}
	sort.Ints(out)
	return out
}
