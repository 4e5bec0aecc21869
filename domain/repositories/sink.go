package repositories

import "context"

// ResponseSink is where the assistant emits its side of the conversation.
// The actual text-to-speech engine is an external collaborator behind this
// interface.
type ResponseSink interface {
	// Speak voices the given text to the user.
	Speak(ctx context.Context, text string) error
	// Log emits text that should be visible to an operator but not spoken.
	Log(text string)
}

// Chimer is optionally implemented by sinks that can play a short
// acknowledgement tone when the wake word is recognized.
type Chimer interface {
	Chime(ctx context.Context) error
}
