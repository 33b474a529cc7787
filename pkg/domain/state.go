package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Speaker identifies who produced a history entry.
type Speaker string

const (
	SpeakerAgent Speaker = "agent"
	SpeakerUser  Speaker = "user"
)

// Sentiment is the advisory classification of the user's last message.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// SummaryFailureMarker is the prefix shared by all placeholder summaries
// produced when generation fails. The critique step and the turn resolver
// both test for it.
const SummaryFailureMarker = "(Summary generation"

// Utterance is a single (speaker, text) history entry.
//
// The wire format is a two-element JSON array ["agent", "..."] so that
// serialized conversations round-trip against the original tuple encoding.
// Element order is load-bearing.
type Utterance struct {
	Speaker Speaker
	Text    string
}

// MarshalJSON encodes the utterance as ["speaker", "text"].
func (u Utterance) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{string(u.Speaker), u.Text})
}

// UnmarshalJSON decodes a two-element ["speaker", "text"] array.
func (u *Utterance) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("history entry must be a [speaker, text] array: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("history entry must have exactly 2 elements, got %d", len(pair))
	}
	u.Speaker = Speaker(pair[0])
	u.Text = pair[1]
	return nil
}

// ConversationState is the sole entity threaded through every step of a
// reflection. It is owned by the caller between turns and mutated in place by
// the orchestrator. The field set and history ordering are the wire contract:
// any persistence layer must round-trip it losslessly.
type ConversationState struct {
	// Topic is set once at conversation start and immutable afterward.
	Topic string `json:"topic,omitempty"`

	// History is the append-only conversation transcript. The last entry
	// determines whose turn it is.
	History []Utterance `json:"history"`

	// CurrentQuestion is the latest agent question awaiting an answer.
	// Empty once a summary path is entered.
	CurrentQuestion string `json:"current_question,omitempty"`

	// Summary is the latest generated summary. Cleared at the start of every
	// summarization attempt.
	Summary string `json:"summary,omitempty"`

	// NeedsCorrection reports the critique verdict. The critique step resets
	// it to true on entry, so it is only meaningfully false after an
	// explicit approval.
	NeedsCorrection bool `json:"needs_correction"`

	// CorrectionFeedback carries the critique's explanation when the summary
	// was rejected.
	CorrectionFeedback string `json:"correction_feedback,omitempty"`

	// CorrectionAttempts counts summarization attempts (not critiques).
	CorrectionAttempts int `json:"correction_attempts"`

	// ProbeCount counts probe steps and bounds the probing loop.
	ProbeCount int `json:"probe_count"`

	// LastSentiment is advisory; it defaults to neutral on any failure.
	LastSentiment Sentiment `json:"last_sentiment,omitempty"`

	// ErrorMessage holds the last recoverable error description.
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewConversationState creates a fresh state for the given topic. The topic
// may be empty; the opening question is then generic.
func NewConversationState(topic string) *ConversationState {
	return &ConversationState{Topic: topic}
}

// LastUtterance returns the most recent history entry, if any.
func (s *ConversationState) LastUtterance() (Utterance, bool) {
	if len(s.History) == 0 {
		return Utterance{}, false
	}
	return s.History[len(s.History)-1], true
}

// AppendAgent appends an agent utterance to the history.
func (s *ConversationState) AppendAgent(text string) {
	s.History = append(s.History, Utterance{Speaker: SpeakerAgent, Text: text})
}

// AppendUser appends a user utterance to the history.
func (s *ConversationState) AppendUser(text string) {
	s.History = append(s.History, Utterance{Speaker: SpeakerUser, Text: text})
}

// SummaryFailed reports whether the current summary is a generation-failure
// placeholder rather than real content.
func (s *ConversationState) SummaryFailed() bool {
	return s.Summary != "" && strings.Contains(s.Summary, SummaryFailureMarker)
}

// HasApprovedSummary reports whether a real summary exists and the critique
// accepted it.
func (s *ConversationState) HasApprovedSummary() bool {
	return s.Summary != "" && !s.SummaryFailed() && !s.NeedsCorrection
}

// Clone returns a deep copy. Stores use it so callers cannot mutate persisted
// state through a shared slice.
func (s *ConversationState) Clone() *ConversationState {
	cp := *s
	if s.History != nil {
		cp.History = make([]Utterance, len(s.History))
		copy(cp.History, s.History)
	}
	return &cp
}

// Validate rejects malformed incoming state before any step runs.
func (s *ConversationState) Validate() error {
	for i, u := range s.History {
		if u.Speaker != SpeakerAgent && u.Speaker != SpeakerUser {
			return fmt.Errorf("history[%d]: unknown speaker %q", i, u.Speaker)
		}
	}
	if s.ProbeCount < 0 {
		return fmt.Errorf("probe_count must not be negative, got %d", s.ProbeCount)
	}
	if s.CorrectionAttempts < 0 {
		return fmt.Errorf("correction_attempts must not be negative, got %d", s.CorrectionAttempts)
	}
	switch s.LastSentiment {
	case "", SentimentPositive, SentimentNegative, SentimentNeutral:
	default:
		return fmt.Errorf("unknown sentiment %q", s.LastSentiment)
	}
	return nil
}
