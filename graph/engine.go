package graph

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/RaghavOG/advance-rag/internal/metrics"
	"github.com/RaghavOG/advance-rag/types"
)

// End is the terminal step name. Routing functions return it to finish a run.
const End = "__end__"

// defaultMaxTransitions bounds a single run. Loops in the graph are bounded
// by state counters; this budget is a backstop against wiring mistakes, not
// a control-flow mechanism.
const defaultMaxTransitions = 256

// NodeFunc executes one step against the current state and returns the
// partial update it owns. Failures are encoded in the update's Status, never
// as Go errors, so one bad step cannot abort the run.
type NodeFunc func(ctx context.Context, s *State) Update

// RouteFunc inspects the state after a step and names the next step.
type RouteFunc func(s *State) string

type conditionalEdge struct {
	route   RouteFunc
	allowed map[string]struct{}
}

// Engine is a directed graph of named steps with fixed and conditional
// edges. Execution is synchronous: run the current step, merge its update
// into the state, resolve the next step, repeat until End.
type Engine struct {
	entry          string
	nodes          map[string]NodeFunc
	fixedEdges     map[string]string
	condEdges      map[string]conditionalEdge
	maxTransitions int

	logger  *zap.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer
}

// NewEngine creates an empty engine. collector may be nil.
func NewEngine(logger *zap.Logger, collector *metrics.Collector) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		nodes:          make(map[string]NodeFunc),
		fixedEdges:     make(map[string]string),
		condEdges:      make(map[string]conditionalEdge),
		maxTransitions: defaultMaxTransitions,
		logger:         logger,
		metrics:        collector,
		tracer:         otel.Tracer("advance-rag/graph"),
	}
}

// AddNode registers a named step.
func (e *Engine) AddNode(name string, fn NodeFunc) *Engine {
	e.nodes[name] = fn
	return e
}

// SetEntryPoint names the first step of every run.
func (e *Engine) SetEntryPoint(name string) *Engine {
	e.entry = name
	return e
}

// AddEdge wires a fixed from→to transition.
func (e *Engine) AddEdge(from, to string) *Engine {
	e.fixedEdges[from] = to
	return e
}

// AddConditionalEdges wires a routing function after from. The function's
// result must be one of targets (or End when listed); anything else is a
// wiring bug and fails the run.
func (e *Engine) AddConditionalEdges(from string, route RouteFunc, targets ...string) *Engine {
	allowed := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		allowed[t] = struct{}{}
	}
	e.condEdges[from] = conditionalEdge{route: route, allowed: allowed}
	return e
}

// SetMaxTransitions overrides the run transition budget.
func (e *Engine) SetMaxTransitions(n int) *Engine {
	if n > 0 {
		e.maxTransitions = n
	}
	return e
}

// Validate checks the graph wiring: an entry point exists, every edge
// references a registered node, and every node has an outgoing edge.
func (e *Engine) Validate() error {
	if e.entry == "" {
		return fmt.Errorf("graph: no entry point set")
	}
	if _, ok := e.nodes[e.entry]; !ok {
		return fmt.Errorf("graph: entry point %q is not a registered node", e.entry)
	}
	for from, to := range e.fixedEdges {
		if _, ok := e.nodes[from]; !ok {
			return fmt.Errorf("graph: edge from unknown node %q", from)
		}
		if to != End {
			if _, ok := e.nodes[to]; !ok {
				return fmt.Errorf("graph: edge %q→%q targets unknown node", from, to)
			}
		}
	}
	for from, ce := range e.condEdges {
		if _, ok := e.nodes[from]; !ok {
			return fmt.Errorf("graph: conditional edge from unknown node %q", from)
		}
		for target := range ce.allowed {
			if target != End {
				if _, ok := e.nodes[target]; !ok {
					return fmt.Errorf("graph: conditional edge %q→%q targets unknown node", from, target)
				}
			}
		}
	}
	for name := range e.nodes {
		_, hasFixed := e.fixedEdges[name]
		_, hasCond := e.condEdges[name]
		if !hasFixed && !hasCond {
			return fmt.Errorf("graph: node %q has no outgoing edge", name)
		}
	}
	return nil
}

// Run executes the graph against the given state until End, mutating the
// state in place. The only errors it returns are wiring bugs and budget
// exhaustion; domain failures travel through the state's Status.
func (e *Engine) Run(ctx context.Context, state *State) error {
	if err := e.Validate(); err != nil {
		return err
	}

	ctx, runSpan := e.tracer.Start(ctx, "graph.run",
		trace.WithAttributes(attribute.String("run_id", state.RunID)))
	defer runSpan.End()

	current := e.entry
	for transitions := 0; current != End; transitions++ {
		if transitions >= e.maxTransitions {
			return types.NewError(types.ErrGraphTransition,
				fmt.Sprintf("transition budget %d exhausted at node %q", e.maxTransitions, current))
		}

		node, ok := e.nodes[current]
		if !ok {
			return fmt.Errorf("graph: unknown node %q", current)
		}

		start := time.Now()
		nodeCtx, span := e.tracer.Start(ctx, "graph.node."+current)
		update := node(nodeCtx, state)
		update.apply(state)
		span.End()

		elapsed := time.Since(start)
		nodeStatus := string(state.Status.Code)
		if nodeStatus == "" {
			nodeStatus = "ok"
		}
		e.metrics.RecordNodeExecution(current, nodeStatus, elapsed)
		e.logger.Debug("node executed",
			zap.String("run_id", state.RunID),
			zap.String("node", current),
			zap.String("status", state.Status.String()),
			zap.Duration("elapsed", elapsed))

		next, err := e.nextStep(current, state)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

func (e *Engine) nextStep(current string, state *State) (string, error) {
	if ce, ok := e.condEdges[current]; ok {
		target := ce.route(state)
		if _, allowed := ce.allowed[target]; !allowed {
			return "", types.NewError(types.ErrGraphTransition,
				fmt.Sprintf("route from %q returned %q, not in allow-list", current, target))
		}
		return target, nil
	}
	if to, ok := e.fixedEdges[current]; ok {
		return to, nil
	}
	return "", fmt.Errorf("graph: node %q has no outgoing edge", current)
}
