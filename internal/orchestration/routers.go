package orchestration

import (
	"context"
	"fmt"
	"strings"

	"github.com/barfet/wellbeing-check-in-agent/internal/prompts"
	"github.com/barfet/wellbeing-check-in-agent/pkg/domain"
)

// acceptKeywords and continueKeywords drive the post-presentation feedback
// routing. Substring matching is a brittle heuristic inherited from the
// original design; see DESIGN.md before replacing it with a classifier call.
var (
	acceptKeywords   = []string{"looks good", "that's correct", "yes", "perfect", "sounds right", "agree"}
	continueKeywords = []string{"more", "actually", "wait", "add", "change", "forgot"}
)

// routeShouldContinueProbing decides between probing again and summarizing.
// The probe ceiling wins over everything; short histories always probe; the
// depth assessment breaks ties and defaults to probing on any uncertainty.
func (o *Orchestrator) routeShouldContinueProbing(ctx context.Context, st *domain.ConversationState) string {
	o.logger.Info("routing: depth check", "probe_count", st.ProbeCount)

	if st.ProbeCount >= MaxProbeAttempts {
		o.logger.Warn("routing: max probe attempts reached, forcing summarization", "max", MaxProbeAttempts)
		return decisionSummarize
	}
	if len(st.History) < 3 {
		o.logger.Info("routing: history too short for depth check, probing")
		return decisionProbe
	}

	resp, err := o.gen.Generate(ctx, prompts.ReflectionDepth(st.History), o.depthModel)
	if err != nil {
		o.logger.Error("routing: depth check failed, defaulting to probe", "err", err)
		o.onGeneratorFailure(nodeDepthCheck)
		return decisionProbe
	}
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(resp)), "YES") {
		o.logger.Info("routing: depth sufficient, summarizing")
		return decisionSummarize
	}
	o.logger.Info("routing: depth insufficient, probing")
	return decisionProbe
}

// routeAfterSummaryCheck decides between a correction retry and termination.
// A skipped critique terminates immediately; exhausted attempts terminate
// with the flawed summary still delivered; approval resets the attempt
// counter so a later cycle starts fresh.
func (o *Orchestrator) routeAfterSummaryCheck(_ context.Context, st *domain.ConversationState) string {
	o.logger.Info("routing: after summary check",
		"needs_correction", st.NeedsCorrection,
		"attempts", st.CorrectionAttempts,
	)

	if strings.Contains(st.ErrorMessage, checkSkipMarker) {
		o.logger.Warn("routing: critique was skipped, terminating")
		return decisionEnd
	}

	if st.NeedsCorrection && st.CorrectionAttempts <= MaxCorrectionAttempts {
		o.logger.Info("routing: summary rejected, retrying", "next_attempt", st.CorrectionAttempts+1)
		return decisionSummarize
	}

	if st.NeedsCorrection {
		o.logger.Warn("routing: correction attempts exhausted, delivering flawed summary")
		if st.ErrorMessage == "" {
			st.ErrorMessage = fmt.Sprintf("Summary failed validation after %d attempts.", MaxCorrectionAttempts+1)
		}
		return decisionEnd
	}

	o.logger.Info("routing: summary approved")
	st.CorrectionAttempts = 0
	return decisionEnd
}

// routeSummaryFeedback interprets the user's reaction to a presented summary.
// Acceptance keywords end the conversation; continuation keywords loop back
// into the probe/summarize cycle; anything ambiguous is treated as implicit
// acceptance to avoid looping indefinitely.
func (o *Orchestrator) routeSummaryFeedback(_ context.Context, st *domain.ConversationState) string {
	last, ok := st.LastUtterance()
	if !ok || last.Speaker != domain.SpeakerUser {
		o.logger.Warn("routing: expected user feedback after summary, defaulting to end")
		return decisionFinish
	}

	feedback := strings.ToLower(last.Text)
	for _, kw := range acceptKeywords {
		if strings.Contains(feedback, kw) {
			o.logger.Info("routing: user accepted summary")
			return decisionFinish
		}
	}
	for _, kw := range continueKeywords {
		if strings.Contains(feedback, kw) {
			// Continuing invalidates the presented summary; a fresh one is
			// generated once probing finishes again.
			st.Summary = ""
			st.CorrectionFeedback = ""
			o.logger.Info("routing: user wants to continue after summary")
			return decisionContinue
		}
	}
	o.logger.Info("routing: feedback unclear, assuming acceptance")
	return decisionFinish
}
