// Package orchestration implements the reflection conversation as an
// explicit state machine: a fixed set of named nodes, fixed and conditional
// edges, one entry-resolution rule, and a designated suspension node. An
// invocation runs nodes in sequence until it lands on the suspension node
// (more user input needed) or the terminal node (conversation over), then
// returns control to the caller with the mutated state.
package orchestration

import (
	"context"
	"log/slog"

	"github.com/barfet/wellbeing-check-in-agent/internal/logging"
	"github.com/barfet/wellbeing-check-in-agent/pkg/domain"
	"github.com/barfet/wellbeing-check-in-agent/pkg/ports"
)

// stepFunc mutates the state in place. Step functions never fail the turn:
// generator errors degrade to fallbacks recorded on the state.
type stepFunc func(ctx context.Context, st *domain.ConversationState)

// routerFunc picks a decision token for a conditional edge.
type routerFunc func(ctx context.Context, st *domain.ConversationState) string

type conditionalEdge struct {
	route   routerFunc
	targets map[string]string
}

// Orchestrator holds the conversation graph and the injected text-generation
// capability. It keeps no per-conversation state; every invocation is a pure
// function of the state handed in, so distinct conversations may run
// concurrently against the same Orchestrator.
type Orchestrator struct {
	gen    ports.TextGenerator
	logger *slog.Logger

	critiqueModel string
	depthModel    string
	maxSteps      int

	onGeneratorFailure func(node string)

	steps       map[string]stepFunc
	fixedEdges  map[string]string
	conditional map[string]conditionalEdge
	suspendAt   map[string]bool
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger for step and routing events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithCritiqueModel sets the model hint used for the summary critique call.
func WithCritiqueModel(model string) Option {
	return func(o *Orchestrator) { o.critiqueModel = model }
}

// WithDepthModel sets the model hint used for the depth-assessment call.
func WithDepthModel(model string) Option {
	return func(o *Orchestrator) { o.depthModel = model }
}

// WithMaxSteps overrides the per-invocation node-visit ceiling.
func WithMaxSteps(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxSteps = n
		}
	}
}

// WithGeneratorFailureObserver registers a hook invoked whenever a step
// degrades to a fallback because the generator failed. Used for metrics.
func WithGeneratorFailureObserver(fn func(node string)) Option {
	return func(o *Orchestrator) { o.onGeneratorFailure = fn }
}

// New builds the orchestrator around the given text generator. The graph is
// fixed; options tune models, logging, and the step ceiling.
func New(gen ports.TextGenerator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:                gen,
		logger:             logging.NewNop(),
		maxSteps:           DefaultMaxStepsPerTurn,
		onGeneratorFailure: func(string) {},
	}
	for _, opt := range opts {
		opt(o)
	}

	o.steps = map[string]stepFunc{
		NodeInitiate:          o.stepInitiate,
		NodeProbe:             o.stepProbe,
		NodeClassifySentiment: o.stepClassifySentiment,
		NodeSummarize:         o.stepSummarize,
		NodeCheckSummary:      o.stepCheckSummary,
		NodePresentSummary:    o.stepPresentSummary,
		NodeEndConversation:   o.stepEndConversation,
		NodeWaitForInput:      func(context.Context, *domain.ConversationState) {},
		NodeHandleFeedback:    func(context.Context, *domain.ConversationState) {},
	}

	o.fixedEdges = map[string]string{
		NodeInitiate:       NodeWaitForInput,
		NodeProbe:          NodeWaitForInput,
		NodeSummarize:      NodeCheckSummary,
		NodePresentSummary: NodeEndConversation,
	}

	o.conditional = map[string]conditionalEdge{
		NodeClassifySentiment: {
			route: o.routeShouldContinueProbing,
			targets: map[string]string{
				decisionProbe:     NodeProbe,
				decisionSummarize: NodeSummarize,
			},
		},
		NodeCheckSummary: {
			route: o.routeAfterSummaryCheck,
			targets: map[string]string{
				decisionSummarize: NodeSummarize,
				decisionEnd:       NodePresentSummary,
			},
		},
		NodeHandleFeedback: {
			route: o.routeSummaryFeedback,
			targets: map[string]string{
				decisionContinue: NodeClassifySentiment,
				decisionFinish:   NodeEndConversation,
			},
		},
	}

	o.suspendAt = map[string]bool{
		NodeWaitForInput: true,
	}

	return o
}
