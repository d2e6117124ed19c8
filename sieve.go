// Package sieve filters semi-structured event records with a small
// query language. A filter expression is parsed into a rule tree,
// type-specialized once by a compiler that knows the domain type of
// each record field, and then evaluated against any number of records.
package sieve

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/sievelabs/sieve/internal/filter"
	"github.com/sievelabs/sieve/internal/ops"
	"github.com/sievelabs/sieve/internal/parser"
	"github.com/sievelabs/sieve/internal/rules"
	"github.com/sievelabs/sieve/internal/types"
)

const progressThreshold = 1000

// Engine ties the expression parser, the type-directed compiler and
// the record evaluator together. Engines are safe for concurrent use:
// compiled filters are immutable and the traversers are stateless.
type Engine struct {
	compiler  *filter.Compiler
	evaluator *filter.Evaluator
}

// Filter is a compiled filter expression, ready for repeated
// evaluation against records.
type Filter struct {
	Expression string
	Tree       rules.Node
}

// New builds an engine. With an empty configurationPath the default
// IDEA-style field schema is used; otherwise the YAML configuration is
// loaded and its fields extend the default schema.
func New(configurationPath string) (*Engine, error) {
	schema := filter.DefaultSchema()
	if configurationPath != "" {
		config, err := parseConfigurationFile(configurationPath)
		if err != nil {
			return nil, err
		}
		if err := extendSchema(schema, config.Fields); err != nil {
			return nil, err
		}
	}
	return NewWithSchema(schema), nil
}

// NewWithSchema builds an engine around an explicit coercion schema.
func NewWithSchema(schema filter.Schema) *Engine {
	operators := ops.New()
	return &Engine{
		compiler:  filter.NewCompiler(schema, operators),
		evaluator: filter.NewEvaluator(operators),
	}
}

// Compile parses and type-specializes one filter expression. A
// malformed literal fails here, before any record is touched.
func (e *Engine) Compile(expression string) (*Filter, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", expression, err)
	}
	compiled, err := e.compiler.Compile(tree)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}
	return &Filter{Expression: expression, Tree: compiled}, nil
}

// CompileTree type-specializes an already built rule tree.
func (e *Engine) CompileTree(tree rules.Node) (rules.Node, error) {
	return e.compiler.Compile(tree)
}

// Eval evaluates a compiled filter against one record and returns the
// raw result (a boolean for predicates, a scalar or sequence for
// arithmetic expressions).
func (e *Engine) Eval(f *Filter, record any) (any, error) {
	return e.evaluator.Eval(f.Tree, record)
}

// Match reports whether one record satisfies the filter.
func (e *Engine) Match(f *Filter, record any) (bool, error) {
	return e.evaluator.Match(f.Tree, record)
}

// ProcessRecords evaluates a compiled filter against a batch of
// records and returns one Match per record. Evaluation errors abort
// the batch; partial-failure policy belongs to the caller.
func ProcessRecords(
	ctx context.Context,
	logger *zap.Logger,
	engine *Engine,
	f *Filter,
	records []any,
	showProgress bool,
) ([]types.Match, error) {
	var bar *progressbar.ProgressBar
	if showProgress && len(records) >= progressThreshold {
		bar = progressbar.Default(int64(len(records)), "filtering")
	}

	matches := make([]types.Match, 0, len(records))
	for i, record := range records {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		value, err := engine.Eval(f, record)
		if err != nil {
			if logger != nil {
				logger.Error("Error evaluating record", zap.Int("record", i), zap.Error(err))
			}
			return nil, err
		}
		matches = append(matches, types.Match{
			Index:      i,
			Expression: f.Expression,
			Matched:    ops.Truthy(value),
			Value:      value,
			ID:         recordID(record),
		})
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return matches, nil
}

func recordID(record any) string {
	m, ok := record.(map[string]any)
	if !ok {
		return ""
	}
	if id, ok := m["ID"].(string); ok {
		return id
	}
	return ""
}
