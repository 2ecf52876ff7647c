// Package query ties the compiler, algebra, and rowsource packages
// together behind the small lifecycle surface an embedding application
// sees: a World holding shared library state, a Query owning one compiled
// pattern's variable table and rowsource tree, and prepare/execute/close
// operations that return ordinary Go errors instead of aborting.
package query

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rasqal-go/sparql/pkg/compiler"
	"github.com/rasqal-go/sparql/pkg/expr"
	"github.com/rasqal-go/sparql/pkg/pattern"
	"github.com/rasqal-go/sparql/pkg/rdfterm"
	"github.com/rasqal-go/sparql/pkg/rowsource"
	"github.com/rasqal-go/sparql/pkg/triplestore"
)

// Options configures a World. The zero value is a usable default.
type Options struct {
	// BaseURI resolves relative URI()/IRI() expression arguments.
	BaseURI string
	// Logger receives operational messages (SERVICE fallbacks, prepare
	// failures). A nil Logger defaults to a stderr logger with a "sparql: "
	// prefix.
	Logger *log.Logger
	// RandSeed seeds RAND(); zero means "seed from the current time".
	RandSeed int64
}

// World is shared, reusable state across many prepared queries against the
// same triples source: the options (base URI, RAND() seed), the logger, and
// the source itself. Blank-node ids come from a package-level UUID generator
// shared by every query.
type World struct {
	opts   Options
	logger *Logger
	source triplestore.Source
}

// NewWorld constructs a World over a triples source.
func NewWorld(source triplestore.Source, opts Options) *World {
	std := opts.Logger
	if std == nil {
		std = log.New(os.Stderr, "sparql: ", log.LstdFlags)
	}
	return &World{opts: opts, logger: NewLogger(std), source: source}
}

// Logger exposes the World's severity-tagged logger for callers that want
// to log alongside it (e.g. a CLI driver echoing prepare failures).
func (w *World) Logger() *Logger { return w.logger }

// Query is one prepared query: its own variable table, compiled algebra,
// and rowsource tree. Prepare must succeed before Execute is callable.
type Query struct {
	world    *World
	vt       *rdfterm.VarTable
	compiler *compiler.Compiler
	prepared bool
	failed   error

	top    rowsource.Rowsource
	result []string // output variable order, once known
}

// NewQuery creates an unprepared Query bound to w.
func NewQuery(w *World) *Query {
	vt := rdfterm.NewVarTable()
	return &Query{world: w, vt: vt, compiler: compiler.New(vt)}
}

// Prepare compiles p and builds its rowsource tree. It returns a non-nil
// error on failure and marks the query permanently failed; a failed
// query's Execute always returns the original error without attempting
// anything.
func (q *Query) Prepare(p *pattern.Pattern) error {
	if q.failed != nil {
		return q.failed
	}
	alg, err := q.compiler.Compile(p)
	if err != nil {
		q.failed = fmt.Errorf("query: prepare: %w", err)
		q.world.logger.Error(nil, "prepare failed: %v", q.failed)
		return q.failed
	}

	t := time.Now().UTC()
	now := rdfterm.DateTime{Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		Hour: t.Hour(), Minute: t.Minute(), Second: float64(t.Second()), HasTZ: true, TZOffsetMinutes: 0}
	seed := q.world.opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	evalCtx := expr.NewContext(q.world.opts.BaseURI, nil, newBlankID, seed, now)

	builder := &rowsource.Builder{Source: q.world.source, Ctx: evalCtx, Logger: q.world.logger.Std()}
	evalCtx.Exists = &rowsource.ExistsEvaluator{Builder: builder}

	top, err := builder.Build(alg)
	if err != nil {
		q.failed = fmt.Errorf("query: prepare: building rowsource tree: %w", err)
		q.world.logger.Error(nil, "prepare failed: %v", q.failed)
		return q.failed
	}
	q.top = top
	q.result = top.EnsureVariables().Vars
	q.prepared = true
	return nil
}

// Variables returns the output variable order of a prepared query.
func (q *Query) Variables() []string { return q.result }

// Execute returns every solution row as a slice of Bindings, in the
// rowsource tree's natural pull order. Execute requires a successful
// Prepare.
func (q *Query) Execute(ctx context.Context) ([]rdfterm.Bindings, error) {
	if q.failed != nil {
		return nil, q.failed
	}
	if !q.prepared {
		return nil, fmt.Errorf("query: Execute called before a successful Prepare")
	}
	rows, err := q.top.ReadAllRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("query: execute: %w", err)
	}
	out := make([]rdfterm.Bindings, len(rows))
	for i, r := range rows {
		out[i] = r.ToBindings()
	}
	return out, nil
}

// ExecuteAsk runs the query as SPARQL ASK would: read at most one row and
// report whether any solution exists, short-circuiting the rest of the
// pipeline.
func (q *Query) ExecuteAsk(ctx context.Context) (bool, error) {
	if q.failed != nil {
		return false, q.failed
	}
	if !q.prepared {
		return false, fmt.Errorf("query: ExecuteAsk called before a successful Prepare")
	}
	row, err := q.top.ReadRow(ctx)
	if err != nil {
		return false, fmt.Errorf("query: executeAsk: %w", err)
	}
	return row != nil, nil
}

// Reset rewinds a prepared query's rowsource tree so Execute can be called
// again from the start.
func (q *Query) Reset() error {
	if !q.prepared {
		return fmt.Errorf("query: Reset called before a successful Prepare")
	}
	return q.top.Reset()
}

// Close releases a query. There is no external resource to release in this
// in-process engine; Close exists so callers have a stable lifecycle
// surface to hold even when a future Source implementation does need one.
func (q *Query) Close() error { return nil }

func newBlankID() string { return uuid.NewString() }
