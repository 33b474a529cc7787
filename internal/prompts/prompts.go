// Package prompts contains the pure functions that turn conversation state
// into prompt strings. No I/O happens here; every function is deterministic
// in its inputs.
package prompts

import (
	"fmt"
	"strings"

	"github.com/barfet/wellbeing-check-in-agent/pkg/domain"
)

// Initiation returns the opening agent question. It is plain string
// formatting, not a generator prompt: the first question never needs a model.
func Initiation(topic string) string {
	if topic != "" {
		return fmt.Sprintf("Okay, let's reflect on '%s'. To start, could you tell me briefly what happened regarding this?", topic)
	}
	return "Hello! What topic or experience would you like to reflect on today?"
}

// Sentiment builds a prompt that classifies a single user message as
// positive, negative, or neutral.
func Sentiment(userMessage string) string {
	return fmt.Sprintf(`Classify the sentiment of the following user message. Respond with only one word: 'positive', 'negative', or 'neutral'.

User Message: %q

Sentiment:`, userMessage)
}

// Probe builds a prompt asking for one open-ended follow-up question about
// the user's most recent statement. If the last entry is not from the user
// (a flow anomaly) it falls back to a generic prompt instead of referencing a
// nonexistent utterance.
func Probe(history []domain.Utterance) string {
	if len(history) == 0 {
		return "Ask a generic open-ended question to start the reflection."
	}

	last := history[len(history)-1]
	if last.Speaker != domain.SpeakerUser {
		return "Ask a generic open-ended question to encourage further reflection."
	}

	return fmt.Sprintf(`Based on the following conversation history:
%s

Ask the user *one* relevant, open-ended follow-up question to encourage deeper reflection on their last statement ('%s'). Focus on exploring feelings, challenges, learnings, or specifics. Avoid simple yes/no questions.`,
		formatHistory(history), last.Text)
}

// Summarize builds the summarization prompt. When correctionFeedback is set
// from a prior failed critique it is appended verbatim as a directive; this
// function does not clear the feedback, the critique step does on its next
// run.
func Summarize(history []domain.Utterance, correctionFeedback string) string {
	if len(history) == 0 {
		return "Cannot generate summary: No conversation history provided."
	}

	base := fmt.Sprintf(`Based on the following conversation history between an agent and a user:

%s

Please provide a concise summary of the key points discussed, focusing on the user's reflections, challenges mentioned, and any potential learnings or insights revealed. Structure it as a short paragraph or a few bullet points.`,
		formatHistory(history))

	if correctionFeedback != "" {
		return fmt.Sprintf("%s\n\nPREVIOUS ATTEMPT FEEDBACK: %s\nPlease generate a *revised* summary addressing this feedback.", base, correctionFeedback)
	}
	return base
}

// CheckSummary builds the critique prompt: answer YES to accept, or NO
// followed by a reason.
func CheckSummary(history []domain.Utterance, summary string) string {
	if len(history) == 0 || summary == "" {
		return "Cannot check summary: Missing history or summary."
	}

	return fmt.Sprintf(`Review the following conversation history:

%s

Now review this generated summary:

SUMMARY:
%s

Critique this summary based on the history. Is it accurate, relevant, and does it capture the key points, feelings, and challenges discussed?
If the summary is good and requires no changes, respond with only YES.
If the summary is lacking or inaccurate, respond with NO, followed by a brief explanation of what specific information is missing or needs correction based *only* on the conversation history.`,
		formatHistory(history), summary)
}

// ReflectionDepth builds the depth-assessment prompt: strict YES/NO on
// whether the topic has been explored in sufficient detail.
func ReflectionDepth(history []domain.Utterance) string {
	if len(history) < 3 {
		return "Cannot assess depth: Insufficient history provided. Respond with NO."
	}

	return fmt.Sprintf(`Review the following conversation history between an agent and a user reflecting on a topic:

%s

Based *only* on this history, has the user explored their experience, challenges, feelings, or learnings in sufficient detail to allow for a meaningful summary? Consider if the core aspects seem covered. Answer only with YES or NO.`,
		formatHistory(history))
}

func formatHistory(history []domain.Utterance) string {
	lines := make([]string, 0, len(history))
	for _, u := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", u.Speaker, u.Text))
	}
	return strings.Join(lines, "\n")
}
