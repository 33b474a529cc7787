package orchestration

import (
	"context"
	"fmt"
	"strings"

	"github.com/barfet/wellbeing-check-in-agent/internal/prompts"
	"github.com/barfet/wellbeing-check-in-agent/pkg/domain"
)

// stepInitiate produces the opening question. Re-entry with a non-empty
// history is a no-op so the node is safe to pass through on every turn.
func (o *Orchestrator) stepInitiate(_ context.Context, st *domain.ConversationState) {
	if len(st.History) > 0 {
		o.logger.Debug("initiate: history present, skipping")
		return
	}

	question := prompts.Initiation(st.Topic)
	st.CurrentQuestion = question
	st.History = []domain.Utterance{{Speaker: domain.SpeakerAgent, Text: question}}
	st.ErrorMessage = ""
	o.logger.Info("initiate: opening question generated", "topic", st.Topic)
}

// stepProbe asks the generator for one open-ended follow-up question. All
// generator failures degrade to fixed fallback questions; the conversation
// always continues.
func (o *Orchestrator) stepProbe(ctx context.Context, st *domain.ConversationState) {
	st.ErrorMessage = ""
	st.ProbeCount++
	o.logger.Info("probe: generating follow-up", "attempt", st.ProbeCount)

	if len(st.History) == 0 {
		o.logger.Warn("probe: called with empty history")
		st.ErrorMessage = errProberNeedsHistory
		return
	}

	question, err := o.gen.Generate(ctx, prompts.Probe(st.History), "")
	if err != nil {
		o.logger.Error("probe: generator failed", "err", err)
		o.onGeneratorFailure(NodeProbe)
		st.ErrorMessage = fmt.Sprintf("Error generating follow-up: %v", err)
		st.CurrentQuestion = fallbackProbeError
		st.AppendAgent(st.CurrentQuestion)
		return
	}

	question = strings.TrimSpace(question)
	if question == "" {
		o.logger.Warn("probe: generator returned empty question, using fallback")
		question = fallbackProbeEmpty
		st.ErrorMessage = "LLM failed to generate a specific question, using fallback."
	}
	st.CurrentQuestion = question
	st.AppendAgent(question)
}

// stepClassifySentiment classifies the last user utterance. Sentiment is
// advisory: any anomaly or failure silently degrades to neutral.
func (o *Orchestrator) stepClassifySentiment(ctx context.Context, st *domain.ConversationState) {
	last, ok := st.LastUtterance()
	if !ok || last.Speaker != domain.SpeakerUser {
		o.logger.Warn("classify_sentiment: last entry not from user, defaulting to neutral")
		st.LastSentiment = domain.SentimentNeutral
		return
	}

	resp, err := o.gen.Generate(ctx, prompts.Sentiment(last.Text), "")
	if err != nil {
		o.logger.Error("classify_sentiment: generator failed, defaulting to neutral", "err", err)
		o.onGeneratorFailure(NodeClassifySentiment)
		st.LastSentiment = domain.SentimentNeutral
		return
	}

	switch sentiment := domain.Sentiment(strings.ToLower(strings.TrimSpace(resp))); sentiment {
	case domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral:
		st.LastSentiment = sentiment
	default:
		o.logger.Warn("classify_sentiment: unexpected response, defaulting to neutral", "response", resp)
		st.LastSentiment = domain.SentimentNeutral
	}
}

// stepSummarize generates (or regenerates) the summary. Each call counts as
// one correction attempt; prior critique feedback, if present, is folded into
// the prompt and cleared later by the critique step.
func (o *Orchestrator) stepSummarize(ctx context.Context, st *domain.ConversationState) {
	st.ErrorMessage = ""
	st.Summary = ""
	st.CurrentQuestion = ""
	st.CorrectionAttempts++
	o.logger.Info("summarize: generating summary", "attempt", st.CorrectionAttempts)

	if len(st.History) == 0 {
		o.logger.Warn("summarize: called with empty history")
		st.ErrorMessage = errSummarizerNeedsHistory
		st.Summary = summarySkippedNoHistory
		return
	}

	summary, err := o.gen.Generate(ctx, prompts.Summarize(st.History, st.CorrectionFeedback), "")
	if err != nil {
		o.logger.Error("summarize: generator failed", "err", err, "attempt", st.CorrectionAttempts)
		o.onGeneratorFailure(NodeSummarize)
		st.ErrorMessage = fmt.Sprintf("Error generating summary: %v", err)
		st.Summary = fmt.Sprintf("(Summary generation attempt %d encountered an error.)", st.CorrectionAttempts)
		return
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		o.logger.Warn("summarize: generator returned empty summary", "attempt", st.CorrectionAttempts)
		st.Summary = fmt.Sprintf("(Summary generation attempt %d failed - empty response)", st.CorrectionAttempts)
		st.ErrorMessage = "LLM failed to generate a summary."
		return
	}
	st.Summary = summary
}

// stepCheckSummary critiques the summary. It is pessimistic: needs_correction
// is true unless the generator explicitly approves with YES. Missing or
// failed summaries skip the critique entirely; the skip is marked on
// error_message so the router can distinguish it from a rejection.
func (o *Orchestrator) stepCheckSummary(ctx context.Context, st *domain.ConversationState) {
	st.ErrorMessage = ""
	st.NeedsCorrection = true
	st.CorrectionFeedback = ""

	if st.Summary == "" || st.SummaryFailed() {
		o.logger.Warn("check_summary: missing or failed summary, skipping critique", "summary", st.Summary)
		st.ErrorMessage = checkSkipMarker + " due to missing/failed summary."
		return
	}
	if len(st.History) == 0 {
		o.logger.Warn("check_summary: missing history, skipping critique")
		st.ErrorMessage = checkSkipMarker + " due to missing history."
		return
	}

	resp, err := o.gen.Generate(ctx, prompts.CheckSummary(st.History, st.Summary), o.critiqueModel)
	if err != nil {
		o.logger.Error("check_summary: generator failed", "err", err)
		o.onGeneratorFailure(NodeCheckSummary)
		st.ErrorMessage = fmt.Sprintf("Error checking summary quality: %v", err)
		st.NeedsCorrection = true
		st.CorrectionFeedback = "Failed to perform summary check due to an error."
		return
	}

	verdict := strings.TrimSpace(resp)
	if strings.HasPrefix(strings.ToUpper(verdict), "YES") {
		o.logger.Info("check_summary: summary approved")
		st.NeedsCorrection = false
		return
	}

	feedback := verdict
	if strings.HasPrefix(strings.ToUpper(verdict), "NO") {
		// Drop the whole leading verdict token, not a fixed two bytes:
		// responses like "Not detailed enough" must keep their feedback
		// intact after the first word.
		if i := strings.IndexAny(verdict, " \t\n"); i >= 0 {
			feedback = strings.TrimSpace(verdict[i+1:])
		} else {
			feedback = ""
		}
		feedback = strings.TrimSpace(strings.TrimLeft(feedback, ",.:;!-"))
	}
	if feedback == "" || strings.EqualFold(feedback, "NO") {
		feedback = "Summary deemed insufficient, but no specific feedback provided."
	}
	st.NeedsCorrection = true
	st.CorrectionFeedback = feedback
	o.logger.Warn("check_summary: summary needs correction", "feedback", feedback)
}

// stepPresentSummary hands the summary off to the user. A valid summary
// clears the pending question; an existing error is surfaced as-is.
func (o *Orchestrator) stepPresentSummary(_ context.Context, st *domain.ConversationState) {
	switch {
	case st.Summary != "" && st.ErrorMessage == "":
		st.CurrentQuestion = ""
		o.logger.Info("present_summary: summary prepared for presentation")
	case st.ErrorMessage != "":
		o.logger.Error("present_summary: presenting with error state", "err", st.ErrorMessage)
	default:
		o.logger.Warn("present_summary: reached without a summary")
		st.ErrorMessage = "Internal error: Reached summary presentation without a summary."
	}
}

// stepEndConversation is the terminal marker.
func (o *Orchestrator) stepEndConversation(_ context.Context, st *domain.ConversationState) {
	st.CurrentQuestion = ""
	o.logger.Info("end_conversation: conversation marked as ended")
}
