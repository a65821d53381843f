// Package cilsil translates the CIL method bodies of an assembly into
// control-flow graphs.
//
// Methods are translated independently and in parallel. A method that fails
// to translate does not prevent the others from producing graphs; its error
// is recorded in the result and included in the aggregate error returned by
// Translate.
package cilsil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/deepnoodle-ai/cilsil/bytecode"
	"github.com/deepnoodle-ai/cilsil/cfg"
	"github.com/deepnoodle-ai/cilsil/errz"
	"github.com/deepnoodle-ai/cilsil/translator"
	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// MethodResult is the outcome of translating one method. Method is nil when
// the method was rejected before translation.
type MethodResult struct {
	Name     string
	Method   *bytecode.MethodBody
	Graph    *cfg.Graph
	Err      error
	Duration time.Duration
}

// Result holds the outcome of translating an assembly. Methods are listed in
// the order of the input, whatever order the workers finished in.
type Result struct {
	RunID    uuid.UUID
	Assembly string
	Methods  []MethodResult
}

// Graphs returns the graphs of all methods that translated successfully.
func (r *Result) Graphs() []*cfg.Graph {
	var out []*cfg.Graph
	for _, m := range r.Methods {
		if m.Graph != nil {
			out = append(out, m.Graph)
		}
	}
	return out
}

// Failed returns the results of all methods that did not translate.
func (r *Result) Failed() []MethodResult {
	var out []MethodResult
	for _, m := range r.Methods {
		if m.Err != nil {
			out = append(out, m)
		}
	}
	return out
}

// Graph returns the graph of the named method.
func (r *Result) Graph(method string) (*cfg.Graph, bool) {
	for _, m := range r.Methods {
		if m.Name == method && m.Graph != nil {
			return m.Graph, true
		}
	}
	return nil, false
}

// Translate builds a graph for every method of the assembly. The returned
// error aggregates the per-method failures; the result is always non-nil and
// carries the graphs of the methods that succeeded.
func Translate(ctx context.Context, asm *bytecode.Assembly, opts ...Option) (*Result, error) {
	o := collectOptions(opts...)
	runID, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	logger := o.logger.With().
		Str("run_id", runID.String()).
		Str("assembly", asm.Name).
		Logger()

	result := &Result{
		RunID:    runID,
		Assembly: asm.Name,
		Methods:  layout(asm),
	}
	tr := translator.New(o.translatorOpts()...)

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(o.workers)
	for i := range result.Methods {
		i, method := i, result.Methods[i].Method
		if method == nil {
			logger.Warn().
				Err(result.Methods[i].Err).
				Str("method", result.Methods[i].Name).
				Msg("method rejected")
			continue
		}
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				result.Methods[i].Err = fmt.Errorf("%s: skipped: %w", method.Name(), err)
				return nil
			}
			start := time.Now()
			graph, err := tr.Translate(method)
			result.Methods[i].Duration = time.Since(start)
			if err != nil {
				result.Methods[i].Err = err
				event := logger.Warn().Err(err).Str("method", method.Name())
				var terr *errz.TranslationError
				if errors.As(err, &terr) {
					event = event.Int("offset", terr.Offset).Stringer("kind", terr.Kind)
				}
				event.Msg("method translation failed")
				if o.failFast && errz.IsFatal(err) {
					return err
				}
				return nil
			}
			result.Methods[i].Graph = graph
			logger.Debug().
				Str("method", method.Name()).
				Int("nodes", graph.NodeCount()).
				Int("edges", graph.EdgeCount()).
				Dur("elapsed", result.Methods[i].Duration).
				Msg("method translated")
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		logger.Error().Err(err).Msg("translation aborted")
	}

	var merr *multierror.Error
	failed := 0
	for _, m := range result.Methods {
		if m.Err != nil {
			merr = multierror.Append(merr, m.Err)
			failed++
		}
	}
	logger.Info().
		Int("methods", len(result.Methods)).
		Int("failed", failed).
		Msg("assembly translated")
	return result, merr.ErrorOrNil()
}

// layout places the translatable methods and the rejected ones in the order of
// the source document.
func layout(asm *bytecode.Assembly) []MethodResult {
	rejected := append([]bytecode.RejectedMethod(nil), asm.Rejected...)
	sort.SliceStable(rejected, func(i, j int) bool {
		return rejected[i].Index < rejected[j].Index
	})
	out := make([]MethodResult, 0, len(asm.Methods)+len(rejected))
	next := 0
	addRejected := func() {
		r := rejected[next]
		out = append(out, MethodResult{Name: r.Name, Err: r.Err})
		next++
	}
	for _, method := range asm.Methods {
		for next < len(rejected) && rejected[next].Index <= len(out) {
			addRejected()
		}
		out = append(out, MethodResult{Name: method.Name(), Method: method})
	}
	for next < len(rejected) {
		addRejected()
	}
	return out
}
