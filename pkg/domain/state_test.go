package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtterance_JSONRoundTrip(t *testing.T) {
	u := Utterance{Speaker: SpeakerAgent, Text: "How did that make you feel?"}

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `["agent","How did that make you feel?"]`, string(data))

	var decoded Utterance
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, u, decoded)
}

func TestUtterance_UnmarshalRejectsBadShapes(t *testing.T) {
	var u Utterance

	assert.Error(t, json.Unmarshal([]byte(`["agent"]`), &u), "one element")
	assert.Error(t, json.Unmarshal([]byte(`["agent","hi","extra"]`), &u), "three elements")
	assert.Error(t, json.Unmarshal([]byte(`{"speaker":"agent","text":"hi"}`), &u), "object instead of array")
}

func TestConversationState_JSONRoundTrip(t *testing.T) {
	st := NewConversationState("work stress")
	st.AppendAgent("Okay, let's reflect on 'work stress'.")
	st.AppendUser("The deadline slipped again.")
	st.AppendAgent("What made the deadline slip?")
	st.AppendUser("We underestimated the migration.")
	st.AppendAgent("How did you feel about that?")
	st.CurrentQuestion = "How did you feel about that?"
	st.ProbeCount = 2
	st.LastSentiment = SentimentNegative

	data, err := json.Marshal(st)
	require.NoError(t, err)

	var decoded ConversationState
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *st, decoded)

	// History entries stay tuple-shaped on the wire.
	assert.Contains(t, string(data), `["user","The deadline slipped again."]`)
}

func TestConversationState_SummaryFailed(t *testing.T) {
	st := NewConversationState("")
	assert.False(t, st.SummaryFailed(), "empty summary is not a failure")

	st.Summary = "You reflected on a slipped deadline."
	assert.False(t, st.SummaryFailed())

	st.Summary = "(Summary generation attempt 2 failed - empty response)"
	assert.True(t, st.SummaryFailed())

	st.Summary = "(Summary generation skipped: No history)"
	assert.True(t, st.SummaryFailed())
}

func TestConversationState_HasApprovedSummary(t *testing.T) {
	st := NewConversationState("")
	assert.False(t, st.HasApprovedSummary())

	st.Summary = "A real summary."
	st.NeedsCorrection = true
	assert.False(t, st.HasApprovedSummary(), "rejected summary is not approved")

	st.NeedsCorrection = false
	assert.True(t, st.HasApprovedSummary())

	st.Summary = "(Summary generation attempt 1 encountered an error.)"
	assert.False(t, st.HasApprovedSummary(), "failure placeholder is not approved")
}

func TestConversationState_Clone(t *testing.T) {
	st := NewConversationState("topic")
	st.AppendAgent("question")

	cp := st.Clone()
	cp.AppendUser("answer")
	cp.Topic = "other"

	assert.Len(t, st.History, 1, "clone must not share the history slice")
	assert.Equal(t, "topic", st.Topic)
}

func TestConversationState_Validate(t *testing.T) {
	st := NewConversationState("topic")
	st.AppendAgent("question")
	st.AppendUser("answer")
	require.NoError(t, st.Validate())

	bad := st.Clone()
	bad.History = append(bad.History, Utterance{Speaker: "system", Text: "nope"})
	assert.Error(t, bad.Validate(), "unknown speaker")

	bad = st.Clone()
	bad.ProbeCount = -1
	assert.Error(t, bad.Validate(), "negative probe count")

	bad = st.Clone()
	bad.CorrectionAttempts = -2
	assert.Error(t, bad.Validate(), "negative correction attempts")

	bad = st.Clone()
	bad.LastSentiment = "ecstatic"
	assert.Error(t, bad.Validate(), "unknown sentiment")
}
