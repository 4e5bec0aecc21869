// Package skills contains the built-in command handlers. Each skill is a
// small self-contained unit: a name, the phrases it answers, and a handler.
// External effects (clock, HTTP, process execution, filesystem) are injected
// so every skill is testable without the real environment.
package skills

import (
	"context"
	"fmt"
	"time"
)

// Clock answers questions about the current time.
type Clock struct {
	Now func() time.Time
}

// NewClock creates the time skill on the system clock.
func NewClock() *Clock {
	return &Clock{Now: time.Now}
}

func (c *Clock) Name() string { return "clock" }

func (c *Clock) Phrases() []string {
	return []string{
		"what time is it",
		"tell me the time",
		"what is the time",
	}
}

func (c *Clock) Handle(ctx context.Context, command string) (string, error) {
	now := c.Now()
	return fmt.Sprintf("It is %s.", now.Format("3:04 PM")), nil
}

// Calendar answers questions about today's date.
type Calendar struct {
	Now func() time.Time
}

// NewCalendar creates the date skill on the system clock.
func NewCalendar() *Calendar {
	return &Calendar{Now: time.Now}
}

func (c *Calendar) Name() string { return "calendar" }

func (c *Calendar) Phrases() []string {
	return []string{
		"what is the date",
		"what day is it",
		"what is today",
	}
}

func (c *Calendar) Handle(ctx context.Context, command string) (string, error) {
	now := c.Now()
	return fmt.Sprintf("Today is %s.", now.Format("Monday, January 2")), nil
}
