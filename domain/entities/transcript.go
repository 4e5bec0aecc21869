package entities

// Transcript is the textual result of speech recognition over a captured
// audio segment.
type Transcript struct {
	Text       string  `json:"text" bson:"text"`
	Confidence float64 `json:"confidence" bson:"confidence"`
	Language   string  `json:"language,omitempty" bson:"language,omitempty"`
}

// IsEmpty reports whether the transcript carries no recognized speech.
// An empty transcript means "no match" and must never be dispatched.
func (t Transcript) IsEmpty() bool {
	return t.Text == ""
}
