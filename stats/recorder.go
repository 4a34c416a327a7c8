// Package stats aggregates correct-answer scores across rounds and sessions
// for the post-game summaries the server logs.
package stats

import (
	"sort"
	"sync"

	"github.com/cyberinferno/trivia-royale/logger"
)

// PlayerScore pairs a display name with a correct-answer count.
type PlayerScore struct {
	Name    string
	Correct int
}

// Summary is a point-in-time view of the recorder: games played, the best
// player ever, the average rounds per game, and the latest session's ranking.
type Summary struct {
	GamesPlayed   int
	BestPlayer    string
	BestScore     int
	AverageRounds int
	LatestRanking []PlayerScore
}

// Recorder tracks per-session and all-time correct-answer counts. It
// implements game.RoundObserver and is safe for concurrent use, though the
// orchestrator feeds it sequentially.
type Recorder struct {
	log logger.Logger

	mu          sync.Mutex
	gamesPlayed int
	totalRounds int
	allTime     map[string]int
	current     map[string]int
	lastRanking []PlayerScore
}

// NewRecorder creates an empty Recorder.
func NewRecorder(log logger.Logger) *Recorder {
	return &Recorder{
		log:     log,
		allTime: make(map[string]int),
		current: make(map[string]int),
	}
}

// RoundCompleted awards one point to each player who answered the round
// correctly. Implements game.RoundObserver.
func (r *Recorder) RoundCompleted(round int, correct []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range correct {
		r.current[name]++
		r.allTime[name]++
	}
}

// SessionFinished folds the current session into the all-time tallies,
// records the session ranking, and logs a summary.
//
// Parameters:
//   - winner: The winning display name, or "" for a no-winner session
//   - rounds: Rounds played in the session
func (r *Recorder) SessionFinished(winner string, rounds int) {
	r.mu.Lock()
	r.gamesPlayed++
	r.totalRounds += rounds

	r.lastRanking = ranking(r.current)
	r.current = make(map[string]int)
	r.mu.Unlock()

	s := r.Summary()
	r.log.Info("game statistics",
		logger.Field{Key: "winner", Value: winner},
		logger.Field{Key: "games_played", Value: s.GamesPlayed},
		logger.Field{Key: "best_player", Value: s.BestPlayer},
		logger.Field{Key: "best_score", Value: s.BestScore},
		logger.Field{Key: "avg_rounds", Value: s.AverageRounds})
}

// Summary returns the current aggregate view.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		GamesPlayed:   r.gamesPlayed,
		LatestRanking: append([]PlayerScore(nil), r.lastRanking...),
	}

	for name, score := range r.allTime {
		if score > s.BestScore || (score == s.BestScore && (s.BestPlayer == "" || name < s.BestPlayer)) {
			s.BestPlayer = name
			s.BestScore = score
		}
	}

	if r.gamesPlayed > 0 {
		s.AverageRounds = r.totalRounds / r.gamesPlayed
	}

	return s
}

// ranking sorts session scores descending, breaking ties by name.
func ranking(scores map[string]int) []PlayerScore {
	out := make([]PlayerScore, 0, len(scores))
	for name, score := range scores {
		out = append(out, PlayerScore{Name: name, Correct: score})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Correct != out[j].Correct {
			return out[i].Correct > out[j].Correct
		}
		return out[i].Name < out[j].Name
	})

	return out
}
