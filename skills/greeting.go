package skills

import (
	"context"
	"time"
)

// Greeting answers social pleasantries with a time-of-day aware reply.
type Greeting struct {
	Now func() time.Time
}

// NewGreeting creates the greeting skill on the system clock.
func NewGreeting() *Greeting {
	return &Greeting{Now: time.Now}
}

func (g *Greeting) Name() string { return "greeting" }

func (g *Greeting) Phrases() []string {
	return []string{
		"hello",
		"hi there",
		"good morning",
		"good afternoon",
		"good evening",
		"how are you",
	}
}

func (g *Greeting) Handle(ctx context.Context, command string) (string, error) {
	hour := g.Now().Hour()
	switch {
	case hour < 12:
		return "Good morning! How can I help?", nil
	case hour < 18:
		return "Good afternoon! How can I help?", nil
	default:
		return "Good evening! How can I help?", nil
	}
}
