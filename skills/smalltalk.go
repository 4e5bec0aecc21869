package skills

import (
	"context"
	"math/rand"
	"time"
)

var jokes = []string{
	"Why do programmers prefer dark mode? Because light attracts bugs.",
	"I told my computer I needed a break, and it said no problem, it would go to sleep.",
	"There are only 10 kinds of people: those who understand binary and those who don't.",
	"Why did the developer go broke? Because they used up all their cache.",
}

var quotes = []string{
	"Simplicity is the ultimate sophistication. Leonardo da Vinci.",
	"The best way to predict the future is to invent it. Alan Kay.",
	"Talk is cheap. Show me the code. Linus Torvalds.",
	"Programs must be written for people to read. Harold Abelson.",
}

var facts = []string{
	"Honey never spoils. Archaeologists have found edible honey in ancient tombs.",
	"Octopuses have three hearts and blue blood.",
	"A day on Venus is longer than a year on Venus.",
	"The first computer bug was an actual moth, found in 1947.",
}

// picker selects a random entry from a fixed list. Tests inject a seeded
// source to make selection deterministic.
type picker struct {
	entries []string
	rng     *rand.Rand
}

func newPicker(entries []string, rng *rand.Rand) picker {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return picker{entries: entries, rng: rng}
}

func (p picker) pick() string {
	return p.entries[p.rng.Intn(len(p.entries))]
}

// Joke tells one of a fixed set of jokes.
type Joke struct{ pool picker }

// NewJoke creates the joke skill. A nil rng means non-deterministic picks.
func NewJoke(rng *rand.Rand) *Joke {
	return &Joke{pool: newPicker(jokes, rng)}
}

func (j *Joke) Name() string { return "joke" }

func (j *Joke) Phrases() []string {
	return []string{"tell me a joke", "make me laugh", "say something funny"}
}

func (j *Joke) Handle(ctx context.Context, command string) (string, error) {
	return j.pool.pick(), nil
}

// Quote recites a famous quote.
type Quote struct{ pool picker }

// NewQuote creates the quote skill.
func NewQuote(rng *rand.Rand) *Quote {
	return &Quote{pool: newPicker(quotes, rng)}
}

func (q *Quote) Name() string { return "quote" }

func (q *Quote) Phrases() []string {
	return []string{"tell me a quote", "give me a quote", "inspire me"}
}

func (q *Quote) Handle(ctx context.Context, command string) (string, error) {
	return q.pool.pick(), nil
}

// Fact shares a random fact.
type Fact struct{ pool picker }

// NewFact creates the fact skill.
func NewFact(rng *rand.Rand) *Fact {
	return &Fact{pool: newPicker(facts, rng)}
}

func (f *Fact) Name() string { return "fact" }

func (f *Fact) Phrases() []string {
	return []string{"tell me a fact", "tell me something interesting", "random fact"}
}

func (f *Fact) Handle(ctx context.Context, command string) (string, error) {
	return f.pool.pick(), nil
}
