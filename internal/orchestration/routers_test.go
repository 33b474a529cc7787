package orchestration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/barfet/wellbeing-check-in-agent/pkg/domain"
	"github.com/barfet/wellbeing-check-in-agent/pkg/ports"
)

func probedState() *domain.ConversationState {
	st := answeredState()
	st.AppendAgent("What was the hardest part?")
	st.AppendUser("Telling my family I had to cancel our plans.")
	return st
}

func TestRouteShouldContinueProbing(t *testing.T) {
	t.Run("probe ceiling forces summarization without a depth call", func(t *testing.T) {
		o := New(refusingGen(t))
		st := probedState()
		st.ProbeCount = MaxProbeAttempts

		assert.Equal(t, decisionSummarize, o.routeShouldContinueProbing(context.Background(), st))
	})

	t.Run("short history always probes without a depth call", func(t *testing.T) {
		o := New(refusingGen(t))
		st := answeredState()

		assert.Equal(t, decisionProbe, o.routeShouldContinueProbing(context.Background(), st))
	})

	t.Run("depth YES summarizes", func(t *testing.T) {
		o := New(fixedGen("YES", nil))
		st := probedState()

		assert.Equal(t, decisionSummarize, o.routeShouldContinueProbing(context.Background(), st))
	})

	t.Run("depth NO probes", func(t *testing.T) {
		o := New(fixedGen("NO", nil))
		st := probedState()

		assert.Equal(t, decisionProbe, o.routeShouldContinueProbing(context.Background(), st))
	})

	t.Run("depth failure defaults to probing and reports its own label", func(t *testing.T) {
		var failedNodes []string
		o := New(fixedGen("", errors.New("boom")),
			WithGeneratorFailureObserver(func(node string) {
				failedNodes = append(failedNodes, node)
			}))
		st := probedState()

		assert.Equal(t, decisionProbe, o.routeShouldContinueProbing(context.Background(), st))
		assert.Equal(t, []string{"depth_check"}, failedNodes)
	})

	t.Run("depth check uses the configured model hint", func(t *testing.T) {
		var seenHint string
		gen := ports.GeneratorFunc(func(_ context.Context, _ string, hint string) (string, error) {
			seenHint = hint
			return "NO", nil
		})
		o := New(gen, WithDepthModel("depth-model"))

		o.routeShouldContinueProbing(context.Background(), probedState())

		assert.Equal(t, "depth-model", seenHint)
	})
}

func TestRouteAfterSummaryCheck(t *testing.T) {
	o := New(refusingGen(t))

	t.Run("skipped critique terminates", func(t *testing.T) {
		st := answeredState()
		st.NeedsCorrection = true
		st.ErrorMessage = "Summary check skipped due to missing/failed summary."

		assert.Equal(t, decisionEnd, o.routeAfterSummaryCheck(context.Background(), st))
	})

	t.Run("rejection within budget retries", func(t *testing.T) {
		st := answeredState()
		st.NeedsCorrection = true
		st.CorrectionAttempts = 1

		assert.Equal(t, decisionSummarize, o.routeAfterSummaryCheck(context.Background(), st))

		st.CorrectionAttempts = MaxCorrectionAttempts
		assert.Equal(t, decisionSummarize, o.routeAfterSummaryCheck(context.Background(), st))
	})

	t.Run("exhausted budget terminates with an error", func(t *testing.T) {
		st := answeredState()
		st.NeedsCorrection = true
		st.CorrectionAttempts = MaxCorrectionAttempts + 1

		assert.Equal(t, decisionEnd, o.routeAfterSummaryCheck(context.Background(), st))
		assert.Equal(t, "Summary failed validation after 3 attempts.", st.ErrorMessage)
	})

	t.Run("approval terminates and resets the attempt counter", func(t *testing.T) {
		st := answeredState()
		st.NeedsCorrection = false
		st.CorrectionAttempts = 2

		assert.Equal(t, decisionEnd, o.routeAfterSummaryCheck(context.Background(), st))
		assert.Zero(t, st.CorrectionAttempts)
	})
}

func TestRouteSummaryFeedback(t *testing.T) {
	o := New(refusingGen(t))

	presented := func(reply string) *domain.ConversationState {
		st := probedState()
		st.Summary = "You reflected on a slipped release and canceled family plans."
		st.NeedsCorrection = false
		st.AppendUser(reply)
		return st
	}

	t.Run("acceptance ends the conversation", func(t *testing.T) {
		for _, reply := range []string{"That's correct, thanks!", "Looks good.", "yes"} {
			st := presented(reply)
			assert.Equal(t, decisionFinish, o.routeSummaryFeedback(context.Background(), st), "reply %q", reply)
		}
	})

	t.Run("continuation keywords loop back and invalidate the summary", func(t *testing.T) {
		st := presented("Actually, I forgot to mention the retro.")

		assert.Equal(t, decisionContinue, o.routeSummaryFeedback(context.Background(), st))
		assert.Empty(t, st.Summary)
		assert.Empty(t, st.CorrectionFeedback)
	})

	t.Run("ambiguous feedback is treated as acceptance", func(t *testing.T) {
		st := presented("hm ok")
		assert.Equal(t, decisionFinish, o.routeSummaryFeedback(context.Background(), st))
	})

	t.Run("missing user feedback ends the conversation", func(t *testing.T) {
		st := probedState()
		st.AppendAgent("Here is your summary.")
		assert.Equal(t, decisionFinish, o.routeSummaryFeedback(context.Background(), st))
	})
}
