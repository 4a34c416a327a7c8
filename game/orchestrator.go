package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cyberinferno/trivia-royale/logger"
	"github.com/cyberinferno/trivia-royale/registry"
)

// GameOverPrefix starts every terminal payload so naive clients can
// pattern-match the end of a session.
const GameOverPrefix = "Game over!"

// Result is what one session run produced: the terminal outcome and the
// number of rounds played.
type Result struct {
	Outcome Outcome
	Rounds  int
}

// Orchestrator is the round state machine. It owns the active player set for
// the whole session: rounds never overlap, and evaluation for a round starts
// only after every answer read has resolved or timed out. The collector and
// announcer receive read-only snapshots.
type Orchestrator struct {
	Logger    logger.Logger
	Source    QuestionSource
	Collector *Collector
	Announcer *Announcer

	// ServerName appears in the round-1 welcome message.
	ServerName string

	// AnswerDeadline bounds each round's answer collection.
	AnswerDeadline time.Duration

	// MaxRounds caps the session; 0 means unlimited. A session that hits the
	// cap ends with no winner. This resolves the otherwise non-terminating
	// case of a field that never answers correctly.
	MaxRounds int

	// Observer, when set, is notified after each evaluated round.
	Observer RoundObserver
}

// Run drives rounds over the registered roster until the session reaches a
// terminal outcome, then delivers the game-over message to every registered
// player. The roster's registration order determines the round-1 numbering.
//
// Per round: draw a question, broadcast it to the active players, collect
// answers under the deadline, then narrow the active set to the players who
// answered correctly — unless nobody did, in which case the field is
// unchanged and a fresh question is asked. The instant exactly one player
// answers correctly, that player wins.
//
// Parameters:
//   - ctx: Cancels the session between rounds
//   - roster: All registered players, in registration order
//
// Returns:
//   - The terminal outcome and rounds played
func (o *Orchestrator) Run(ctx context.Context, roster []*registry.Player) Result {
	if len(roster) == 0 {
		o.Logger.Info("no players registered, session ends with no winner")
		return Result{Outcome: NoWinner}
	}

	active := make([]*registry.Player, len(roster))
	copy(active, roster)

	round := 1
	for {
		if err := ctx.Err(); err != nil {
			o.Logger.Info("session cancelled", logger.Field{Key: "round", Value: round})
			return o.finish(roster, NoWinner, round-1)
		}

		if o.MaxRounds > 0 && round > o.MaxRounds {
			o.Logger.Info("round cap reached without a winner",
				logger.Field{Key: "max_rounds", Value: o.MaxRounds})
			return o.finish(roster, NoWinner, round-1)
		}

		text, expected := o.Source.RandomQuestion()
		question := fmt.Sprintf("True or false: %s", text)

		o.Logger.Info("round starting",
			logger.Field{Key: "round", Value: round},
			logger.Field{Key: "active_players", Value: len(active)})

		o.Announcer.Broadcast(active, o.composeQuestion(round, roster, active, question))

		verdicts := o.Collector.Collect(active, o.AnswerDeadline)

		correct, resultMsg := o.evaluate(active, verdicts, expected)
		// Eliminated players still see the round outcome.
		o.Announcer.Broadcast(roster, resultMsg)

		if len(correct) > 0 {
			active = correct
		}

		if o.Observer != nil {
			names := make([]string, len(correct))
			for i, p := range correct {
				names[i] = p.Name
			}
			o.Observer.RoundCompleted(round, names)
		}

		switch {
		case len(correct) == 1:
			o.Logger.Info("winner decided",
				logger.Field{Key: "round", Value: round},
				logger.Field{Key: "winner", Value: correct[0].Name})
			return o.finish(roster, Outcome{Winner: correct[0].Name}, round)
		case len(active) == 0:
			// Degenerate start: nothing left to narrow.
			return o.finish(roster, NoWinner, round)
		default:
			round++
		}
	}
}

// composeQuestion builds the round broadcast: round 1 welcomes the full
// roster with its numbering, later rounds name the surviving field.
func (o *Orchestrator) composeQuestion(round int, roster, active []*registry.Player, question string) string {
	if round == 1 {
		var sb strings.Builder
		fmt.Fprintf(&sb, "Welcome to the %s server, where we are answering trivia questions.\n", o.ServerName)
		for i, p := range roster {
			fmt.Fprintf(&sb, "Player %d: %s\n", i+1, p.Name)
		}
		sb.WriteString("==\n")
		sb.WriteString(question)
		sb.WriteString("\n")
		return sb.String()
	}

	return fmt.Sprintf("Round %d, played by %s:\n%s\n", round, joinNames(active), question)
}

// evaluate partitions the active set by verdict and renders the per-player
// round summary in active order, tagging a lone correct answer as the win.
func (o *Orchestrator) evaluate(active []*registry.Player, verdicts map[*registry.Player]Verdict, expected bool) ([]*registry.Player, string) {
	var correct []*registry.Player
	lines := make([]string, 0, len(active))
	winnerLine := -1

	for _, p := range active {
		v := verdicts[p]
		switch {
		case v.Matches(expected):
			correct = append(correct, p)
			winnerLine = len(lines)
			lines = append(lines, fmt.Sprintf("%s is correct!", p.Name))
		case v == VerdictNoResponse:
			lines = append(lines, fmt.Sprintf("%s did not respond on time!", p.Name))
		default:
			lines = append(lines, fmt.Sprintf("%s is incorrect!", p.Name))
		}
	}

	if len(correct) == 1 {
		lines[winnerLine] += fmt.Sprintf(" %s Wins!", correct[0].Name)
	}

	return correct, strings.Join(lines, "\n") + "\n"
}

// finish delivers the terminal payload to every registered player.
func (o *Orchestrator) finish(roster []*registry.Player, outcome Outcome, rounds int) Result {
	var msg string
	if outcome.HasWinner() {
		msg = fmt.Sprintf("%s\nCongratulations to the winner: %s", GameOverPrefix, outcome.Winner)
	} else {
		msg = fmt.Sprintf("%s\nNo winners", GameOverPrefix)
	}

	o.Announcer.Broadcast(roster, msg)
	return Result{Outcome: outcome, Rounds: rounds}
}

// joinNames renders player names as "a, b and c".
func joinNames(players []*registry.Player) string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}

	if len(names) == 1 {
		return names[0]
	}

	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
