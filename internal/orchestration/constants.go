package orchestration

// Node names of the conversation graph.
const (
	NodeInitiate          = "initiate"
	NodeWaitForInput      = "wait_for_input"
	NodeClassifySentiment = "classify_sentiment"
	NodeProbe             = "probe"
	NodeSummarize         = "summarize"
	NodeCheckSummary      = "check_summary"
	NodePresentSummary    = "present_summary"
	NodeHandleFeedback    = "handle_feedback"
	NodeEndConversation   = "end_conversation"
)

const (
	// MaxProbeAttempts is the hard ceiling on probe steps before
	// summarization is forced regardless of content.
	MaxProbeAttempts = 5

	// MaxCorrectionAttempts is the number of summary retries after the first
	// attempt, i.e. up to MaxCorrectionAttempts+1 summaries total.
	MaxCorrectionAttempts = 2

	// DefaultMaxStepsPerTurn bounds node visits in a single invocation. It is
	// a backstop independent of the probe and correction ceilings; exceeding
	// it fails the invocation.
	DefaultMaxStepsPerTurn = 16
)

// nodeDepthCheck labels depth-assessment generator failures in the failure
// observer. The call happens while routing out of classify_sentiment, so it
// has no node of its own in the graph.
const nodeDepthCheck = "depth_check"

// Routing decision tokens returned by the conditional routers. The graph
// wiring maps them to target nodes.
const (
	decisionProbe     = "PROBE"
	decisionSummarize = "SUMMARIZE"
	decisionEnd       = "END"
	decisionContinue  = "continue"
	decisionFinish    = "end"
)

// Fallback texts and error markers. The exact strings are part of the
// observable behavior: callers and tests match against them.
const (
	fallbackProbeEmpty = "Could you please elaborate on that?"
	fallbackProbeError = "I encountered an issue. Could you perhaps rephrase or tell me more generally?"

	errProberNeedsHistory     = "Internal Error: Prober requires history."
	errSummarizerNeedsHistory = "Internal Error: Summarizer requires history."

	summarySkippedNoHistory = "(Summary generation skipped: No history)"

	// checkSkipMarker flags a critique that never ran, as opposed to a
	// genuine rejection. The post-critique router terminates on it.
	checkSkipMarker = "Summary check skipped"
)
