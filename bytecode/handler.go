package bytecode

// HandlerKind identifies the kind of an exception handler.
type HandlerKind uint8

const (
	HandlerCatch HandlerKind = iota
	HandlerFilter
	HandlerFinally
	HandlerFault
)

// String returns the lowercase name of the handler kind.
func (k HandlerKind) String() string {
	switch k {
	case HandlerCatch:
		return "catch"
	case HandlerFilter:
		return "filter"
	case HandlerFinally:
		return "finally"
	case HandlerFault:
		return "fault"
	default:
		return "unknown"
	}
}

// ParseHandlerKind resolves a handler kind from its name.
func ParseHandlerKind(name string) (HandlerKind, bool) {
	switch name {
	case "catch":
		return HandlerCatch, true
	case "filter":
		return HandlerFilter, true
	case "finally":
		return HandlerFinally, true
	case "fault":
		return HandlerFault, true
	default:
		return 0, false
	}
}

// ExceptionHandler describes a protected try block and the handler attached
// to it. End offsets are exclusive.
type ExceptionHandler struct {
	Kind         HandlerKind
	TryStart     int    // offset where the try block starts
	TryEnd       int    // offset just past the try block
	HandlerStart int    // offset of the handler's first instruction
	HandlerEnd   int    // offset just past the handler
	FilterStart  int    // offset of the filter block (filter handlers only)
	CatchType    string // caught exception type (catch handlers only)
}

// Entry returns the offset where control enters the handler. For filter
// handlers this is the start of the filter block.
func (h ExceptionHandler) Entry() int {
	if h.Kind == HandlerFilter {
		return h.FilterStart
	}
	return h.HandlerStart
}

// InTry reports whether the offset lies inside the protected try block.
func (h ExceptionHandler) InTry(offset int) bool {
	return offset >= h.TryStart && offset < h.TryEnd
}
