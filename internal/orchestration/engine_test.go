package orchestration_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barfet/wellbeing-check-in-agent/internal/orchestration"
	"github.com/barfet/wellbeing-check-in-agent/pkg/domain"
	"github.com/barfet/wellbeing-check-in-agent/pkg/ports"
)

// scriptedGen answers by prompt shape: sentiment, depth, summary, critique,
// and probe prompts each get their scripted response.
type scriptedGen struct {
	sentiment string
	depth     string
	probe     string
	summary   string
	critiques []string // consumed one per critique call
}

func (g *scriptedGen) Generate(_ context.Context, prompt string, _ string) (string, error) {
	switch {
	case strings.Contains(prompt, "Classify the sentiment"):
		return g.sentiment, nil
	case strings.Contains(prompt, "Answer only with YES or NO"):
		return g.depth, nil
	case strings.Contains(prompt, "Critique this summary"):
		if len(g.critiques) == 0 {
			return "YES", nil
		}
		verdict := g.critiques[0]
		g.critiques = g.critiques[1:]
		return verdict, nil
	case strings.Contains(prompt, "concise summary"):
		return g.summary, nil
	default:
		return g.probe, nil
	}
}

func TestRun_FirstTurnSuspendsWithOpeningQuestion(t *testing.T) {
	gen := ports.GeneratorFunc(func(context.Context, string, string) (string, error) {
		t.Fatal("first turn must not call the generator")
		return "", nil
	})
	o := orchestration.New(gen)

	st := domain.NewConversationState("my presentation")
	result, err := o.Run(context.Background(), st)
	require.NoError(t, err)

	assert.False(t, result.IsFinal)
	assert.Equal(t, orchestration.NodeWaitForInput, result.HaltedAt)
	assert.Contains(t, result.AgentOutput, "'my presentation'")
	require.Len(t, result.State.History, 1)
	assert.Equal(t, domain.SpeakerAgent, result.State.History[0].Speaker)
}

func TestRun_SecondTurnProbes(t *testing.T) {
	gen := &scriptedGen{
		sentiment: "negative",
		probe:     "What was the hardest part of that?",
	}
	o := orchestration.New(gen)

	st := domain.NewConversationState("work stress")
	st.AppendAgent("Okay, let's reflect on 'work stress'.")
	st.AppendUser("The release slipped and I worked the weekend.")

	result, err := o.Run(context.Background(), st)
	require.NoError(t, err)

	assert.False(t, result.IsFinal)
	assert.Equal(t, "What was the hardest part of that?", result.AgentOutput)
	assert.Equal(t, domain.SentimentNegative, result.State.LastSentiment)
	assert.Equal(t, 1, result.State.ProbeCount)

	last, _ := result.State.LastUtterance()
	assert.Equal(t, domain.SpeakerAgent, last.Speaker)
}

func TestRun_ApprovedSummaryEndsConversation(t *testing.T) {
	gen := &scriptedGen{
		sentiment: "neutral",
		depth:     "YES",
		summary:   "You reflected on a slipped release and what it cost you.",
		critiques: []string{"YES"},
	}
	o := orchestration.New(gen)

	st := deepConversation()
	result, err := o.Run(context.Background(), st)
	require.NoError(t, err)

	assert.True(t, result.IsFinal)
	assert.Equal(t, orchestration.NodeEndConversation, result.HaltedAt)
	assert.Equal(t, "You reflected on a slipped release and what it cost you.", result.AgentOutput)
	assert.False(t, result.State.NeedsCorrection)
	assert.Zero(t, result.State.CorrectionAttempts, "approval resets the attempt counter")
	assert.Empty(t, result.State.CurrentQuestion)
}

func TestRun_CorrectionRetryThenApproval(t *testing.T) {
	gen := &scriptedGen{
		sentiment: "neutral",
		depth:     "YES",
		summary:   "A summary.",
		critiques: []string{"NO: missing the user's feelings.", "YES"},
	}
	o := orchestration.New(gen)

	result, err := o.Run(context.Background(), deepConversation())
	require.NoError(t, err)

	assert.True(t, result.IsFinal)
	assert.Equal(t, "A summary.", result.AgentOutput)
	assert.False(t, result.State.NeedsCorrection)
}

func TestRun_CorrectionExhaustionDeliversError(t *testing.T) {
	gen := &scriptedGen{
		sentiment: "neutral",
		depth:     "YES",
		summary:   "A summary the critique never likes.",
		critiques: []string{"NO: reason 1", "NO: reason 2", "NO: reason 3"},
	}
	o := orchestration.New(gen)

	result, err := o.Run(context.Background(), deepConversation())
	require.NoError(t, err)

	assert.True(t, result.IsFinal)
	assert.Equal(t, 3, result.State.CorrectionAttempts)
	assert.Equal(t, "Summary failed validation after 3 attempts.", result.State.ErrorMessage)
	assert.Contains(t, result.AgentOutput, "An error occurred: Summary failed validation after 3 attempts.")
}

func TestRun_ProbeCeilingForcesSummary(t *testing.T) {
	gen := &scriptedGen{
		sentiment: "neutral",
		depth:     "NO", // never considers the reflection deep enough
		summary:   "Forced summary.",
		critiques: []string{"YES"},
	}
	o := orchestration.New(gen)

	st := deepConversation()
	st.ProbeCount = orchestration.MaxProbeAttempts

	result, err := o.Run(context.Background(), st)
	require.NoError(t, err)

	assert.True(t, result.IsFinal)
	assert.Equal(t, "Forced summary.", result.AgentOutput)
	assert.Equal(t, orchestration.MaxProbeAttempts, result.State.ProbeCount, "no further probes past the ceiling")
}

func TestRun_FeedbackAcceptanceEnds(t *testing.T) {
	gen := ports.GeneratorFunc(func(context.Context, string, string) (string, error) {
		t.Fatal("feedback acceptance must not call the generator")
		return "", nil
	})
	o := orchestration.New(gen)

	st := deepConversation()
	st.Summary = "You reflected on a slipped release."
	st.NeedsCorrection = false
	st.AppendAgent(st.Summary)
	st.AppendUser("Yes, that's correct. Thanks!")

	result, err := o.Run(context.Background(), st)
	require.NoError(t, err)

	assert.True(t, result.IsFinal)
	assert.Equal(t, "You reflected on a slipped release.", result.AgentOutput)
}

func TestRun_FeedbackContinuationLoopsBack(t *testing.T) {
	gen := &scriptedGen{
		sentiment: "neutral",
		depth:     "NO",
		probe:     "Tell me more about the retro.",
	}
	o := orchestration.New(gen)

	st := deepConversation()
	st.Summary = "You reflected on a slipped release."
	st.NeedsCorrection = false
	st.AppendAgent(st.Summary)
	st.AppendUser("Actually, I forgot to mention the retro.")

	result, err := o.Run(context.Background(), st)
	require.NoError(t, err)

	assert.False(t, result.IsFinal, "continuation re-enters the probing loop")
	assert.Equal(t, "Tell me more about the retro.", result.AgentOutput)
	assert.Empty(t, result.State.Summary, "stale summary is dropped on continuation")
}

func TestRun_NoNewInputSuspendsAgain(t *testing.T) {
	gen := ports.GeneratorFunc(func(context.Context, string, string) (string, error) {
		t.Fatal("re-suspension must not call the generator")
		return "", nil
	})
	o := orchestration.New(gen)

	st := domain.NewConversationState("work stress")
	st.AppendAgent("What happened?")
	st.CurrentQuestion = "What happened?"

	result, err := o.Run(context.Background(), st)
	require.NoError(t, err)

	assert.False(t, result.IsFinal)
	assert.Equal(t, "What happened?", result.AgentOutput)
	assert.Equal(t, orchestration.NodeWaitForInput, result.HaltedAt)
}

func TestRun_RejectsInvalidState(t *testing.T) {
	o := orchestration.New(&scriptedGen{})

	var invalid *orchestration.InvalidStateError

	_, err := o.Run(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.As(err, &invalid))

	st := domain.NewConversationState("topic")
	st.History = []domain.Utterance{{Speaker: "system", Text: "nope"}}
	_, err = o.Run(context.Background(), st)
	require.Error(t, err)
	assert.True(t, errors.As(err, &invalid))
}

func TestRun_StepLimitAborts(t *testing.T) {
	gen := &scriptedGen{
		sentiment: "neutral",
		depth:     "YES",
		summary:   "A summary.",
		critiques: []string{"YES"},
	}
	o := orchestration.New(gen, orchestration.WithMaxSteps(2))

	_, err := o.Run(context.Background(), deepConversation())
	require.Error(t, err)

	var limitErr *orchestration.StepLimitError
	assert.True(t, errors.As(err, &limitErr))
	assert.Equal(t, 2, limitErr.Limit)
}

// deepConversation is a history long enough to pass the depth pre-check,
// ending on a user utterance.
func deepConversation() *domain.ConversationState {
	st := domain.NewConversationState("work stress")
	st.AppendAgent("Okay, let's reflect on 'work stress'.")
	st.AppendUser("The release slipped and I worked the weekend.")
	st.AppendAgent("What was the hardest part of that?")
	st.AppendUser("Telling my family I had to cancel our plans.")
	st.ProbeCount = 1
	return st
}
