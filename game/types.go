// Package game implements the round elimination engine: it drives a
// registered player set through true/false rounds, collecting one answer per
// player under a shared deadline and narrowing the field to the players who
// answered correctly, until a single winner remains or none do.
package game

import "strings"

// Verdict is the normalized classification of a player's answer for one
// round: an explicit true/false or no usable response before the deadline.
type Verdict int

const (
	// VerdictNoResponse covers timeouts, connection errors, and
	// unrecognized tokens alike.
	VerdictNoResponse Verdict = iota
	VerdictTrue
	VerdictFalse
)

// String returns a human-readable name for the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictTrue:
		return "True"
	case VerdictFalse:
		return "False"
	default:
		return "NoResponse"
	}
}

// Matches reports whether the verdict is an explicit answer equal to the
// expected boolean. NoResponse never matches.
func (v Verdict) Matches(expected bool) bool {
	if expected {
		return v == VerdictTrue
	}

	return v == VerdictFalse
}

// ParseAnswer normalizes a raw answer token. Y, T, and 1 mean true; N, F,
// and 0 mean false; matching is case-insensitive. Anything else counts as
// no response.
//
// Parameters:
//   - token: The raw token received from the client
//
// Returns:
//   - The normalized verdict
func ParseAnswer(token string) Verdict {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "Y", "T", "1":
		return VerdictTrue
	case "N", "F", "0":
		return VerdictFalse
	default:
		return VerdictNoResponse
	}
}

// Outcome is the terminal value of a session: the winner's display name, or
// no winner at all. Produced exactly once per session.
type Outcome struct {
	Winner string
}

// NoWinner is the outcome of a session that ended without a winner.
var NoWinner = Outcome{}

// HasWinner reports whether the session produced a winner.
func (o Outcome) HasWinner() bool {
	return o.Winner != ""
}

// QuestionSource supplies trivia questions. Implementations are expected to
// be side-effect-free from the engine's perspective and to not exhaust
// within a session.
type QuestionSource interface {
	// RandomQuestion returns a question text and its expected answer.
	RandomQuestion() (text string, answer bool)
}

// RoundObserver is notified after each evaluated round with the display
// names of the players who answered correctly. Used by statistics consumers.
type RoundObserver interface {
	RoundCompleted(round int, correct []string)
}
