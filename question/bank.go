// Package question supplies trivia questions to the game engine. The engine
// itself treats the source as an external collaborator; Bank is the stock
// implementation shipped with the server.
package question

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/cyberinferno/trivia-royale/logger"
)

// maxDrawAttempts bounds the search for a question outside the recently-asked
// window before giving up and repeating one.
const maxDrawAttempts = 32

// Question is one true/false trivia statement.
type Question struct {
	Text   string
	Answer bool
}

// Bank is a fixed question list with uniform random draws. Questions asked
// recently are suppressed for a TTL window so short sessions do not see
// repeats; when every question is suppressed the draw falls back to any.
// Safe for concurrent use.
type Bank struct {
	log       logger.Logger
	questions []Question
	recent    *cache.Cache
}

// NewBank creates a Bank with the given recently-asked suppression window.
// With no questions supplied, the built-in list is used.
//
// Parameters:
//   - log: Destination for draw diagnostics
//   - suppressFor: How long an asked question stays out of the draw pool
//   - questions: Optional custom question list
//
// Returns:
//   - A Bank ready for concurrent RandomQuestion calls
func NewBank(log logger.Logger, suppressFor time.Duration, questions ...Question) *Bank {
	if len(questions) == 0 {
		questions = defaultQuestions
	}

	return &Bank{
		log:       log,
		questions: questions,
		recent:    cache.New(suppressFor, suppressFor),
	}
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}

// RandomQuestion draws a question uniformly, preferring one not asked within
// the suppression window.
//
// Returns:
//   - The question text and its expected boolean answer
func (b *Bank) RandomQuestion() (string, bool) {
	idx := rand.Intn(len(b.questions))
	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		key := strconv.Itoa(idx)
		if _, asked := b.recent.Get(key); !asked {
			b.recent.SetDefault(key, struct{}{})
			break
		}
		idx = rand.Intn(len(b.questions))
	}

	q := b.questions[idx]
	b.log.Debug("question drawn", logger.Field{Key: "index", Value: idx})
	return q.Text, q.Answer
}

var defaultQuestions = []Question{
	{"The Great Wall of China is visible from the Moon with the naked eye.", false},
	{"Octopuses have three hearts.", true},
	{"The capital of Australia is Sydney.", false},
	{"Sound travels faster in water than in air.", true},
	{"Humans have more than five senses.", true},
	{"Goldfish have a memory span of only three seconds.", false},
	{"Mount Everest is the tallest mountain measured from base to peak.", false},
	{"A bolt of lightning is hotter than the surface of the Sun.", true},
	{"Bats are blind.", false},
	{"Honey never spoils.", true},
	{"The Pacific is the largest ocean on Earth.", true},
	{"Sharks are mammals.", false},
	{"Venus is the hottest planet in the solar system.", true},
	{"An ostrich's eye is bigger than its brain.", true},
	{"The human body has four lungs.", false},
	{"Bananas grow on trees.", false},
	{"Antarctica is the largest desert on Earth.", true},
	{"The speed of light is about 300,000 kilometers per second.", true},
	{"Penguins live at the North Pole.", false},
	{"Water boils at a lower temperature at high altitude.", true},
	{"Spiders are insects.", false},
	{"The heart of a shrimp is located in its head.", true},
	{"There are 100 seconds in a minute.", false},
	{"DNA stands for deoxyribonucleic acid.", true},
}
