package orchestration

import (
	"context"
	"fmt"

	"github.com/barfet/wellbeing-check-in-agent/pkg/domain"
)

// TurnResult is what one invocation hands back to the caller: the mutated
// state, the agent-facing output, and whether the conversation is over.
type TurnResult struct {
	State       *domain.ConversationState
	AgentOutput string
	IsFinal     bool

	// HaltedAt names the node execution stopped on, for observability.
	HaltedAt string
}

// StepLimitError reports a turn that exceeded the node-visit ceiling. It
// indicates a routing cycle and is fatal for the invocation.
type StepLimitError struct {
	Limit int
	Node  string
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("conversation step limit %d exceeded at node %q", e.Limit, e.Node)
}

// InvalidStateError wraps a validation failure of incoming state. The caller
// should surface it as a client error; the conversation was not advanced.
type InvalidStateError struct {
	Reason error
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid conversation state: %v", e.Reason)
}

func (e *InvalidStateError) Unwrap() error { return e.Reason }

// Run executes one turn: it resolves the entry node from the state, then
// walks the graph until it reaches the suspension node or the terminal node,
// mutating the state along the way. The caller must not invoke two turns
// concurrently against the same state.
func (o *Orchestrator) Run(ctx context.Context, st *domain.ConversationState) (*TurnResult, error) {
	if st == nil {
		return nil, &InvalidStateError{Reason: fmt.Errorf("state is nil")}
	}
	if err := st.Validate(); err != nil {
		return nil, &InvalidStateError{Reason: err}
	}

	node := o.entryNode(st)
	o.logger.Debug("turn started", "entry", node)

	for visits := 0; ; visits++ {
		if visits >= o.maxSteps {
			return nil, &StepLimitError{Limit: o.maxSteps, Node: node}
		}

		o.steps[node](ctx, st)

		if o.suspendAt[node] || node == NodeEndConversation {
			break
		}

		next, err := o.nextNode(ctx, st, node)
		if err != nil {
			return nil, err
		}
		node = next
	}

	output, final := ResolveTurn(st)
	o.logger.Debug("turn finished", "halted_at", node, "is_final", final)
	return &TurnResult{
		State:       st,
		AgentOutput: output,
		IsFinal:     final,
		HaltedAt:    node,
	}, nil
}

// entryNode replaces the graph framework's implicit re-entry: the state alone
// determines where execution resumes.
func (o *Orchestrator) entryNode(st *domain.ConversationState) string {
	if len(st.History) == 0 {
		return NodeInitiate
	}
	last, _ := st.LastUtterance()
	if last.Speaker == domain.SpeakerUser {
		if st.HasApprovedSummary() {
			// The user is reacting to a summary that was already presented.
			return NodeHandleFeedback
		}
		return NodeClassifySentiment
	}
	// A question is already pending and no new input arrived: suspend again.
	return NodeWaitForInput
}

func (o *Orchestrator) nextNode(ctx context.Context, st *domain.ConversationState, node string) (string, error) {
	if edge, ok := o.conditional[node]; ok {
		decision := edge.route(ctx, st)
		target, ok := edge.targets[decision]
		if !ok {
			return "", fmt.Errorf("node %q routed to unknown decision %q", node, decision)
		}
		return target, nil
	}
	if target, ok := o.fixedEdges[node]; ok {
		return target, nil
	}
	return "", fmt.Errorf("node %q has no outgoing edge", node)
}

// ResolveTurn classifies a post-run state into the caller-facing output and
// finality flag. Checked in priority order: a delivered summary, a pending
// question, an explicit summary failure, any other error, and two unexpected
// terminal shapes that are reported as generic failures.
func ResolveTurn(st *domain.ConversationState) (agentOutput string, isFinal bool) {
	hasSummary := st.Summary != "" && !st.SummaryFailed()

	switch {
	case hasSummary && !st.NeedsCorrection:
		return st.Summary, true

	case st.CurrentQuestion != "":
		return st.CurrentQuestion, false

	case st.SummaryFailed():
		out := st.Summary
		if st.ErrorMessage != "" {
			out += fmt.Sprintf(" (Error details: %s)", st.ErrorMessage)
		}
		return out, true

	case st.ErrorMessage != "":
		return fmt.Sprintf("An error occurred: %s", st.ErrorMessage), true

	case hasSummary && st.NeedsCorrection:
		if st.ErrorMessage == "" {
			st.ErrorMessage = "Conversation ended with a summary still needing correction."
		}
		return "An internal error occurred during summary validation.", true

	default:
		if st.ErrorMessage == "" {
			st.ErrorMessage = "Conversation reached an unexpected final state."
		}
		return "An unexpected error occurred. Please try again.", true
	}
}
