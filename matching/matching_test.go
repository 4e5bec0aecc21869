package matching

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases and strips punctuation", " What time is it? ", "what time is it"},
		{"collapses whitespace", "what   time\tis it", "what time is it"},
		{"keeps digits", "volume 50", "volume 50"},
		{"empty input", "", ""},
		{"only punctuation", "?!...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		pattern   string
		want      float64
	}{
		{"exact match", "What time is it?", "what time is it", 1.0},
		{"containment", "lewis, what time is it", "what time is it", 0.9},
		{"no overlap", "open the door", "what time is it", 0.0},
		{"partial token overlap", "time please", "what time is it", 0.8 * 1.0 / 4.0},
		{"empty candidate", "", "what time is it", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.candidate, tt.pattern); got != tt.want {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.candidate, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestBestPrefersExactOverFuzzy(t *testing.T) {
	patterns := []string{"time", "what time is it"}

	// "what time is it" contains the fuzzy candidate "time", but the exact
	// phrase must win even though "time" was registered first.
	idx, score := Best("what time is it", patterns)
	if idx != 1 {
		t.Errorf("expected exact pattern index 1, got %d", idx)
	}
	if score != 1.0 {
		t.Errorf("expected score 1.0, got %v", score)
	}
}

func TestBestTieBrokenByRegistrationOrder(t *testing.T) {
	// Both patterns are contained in the candidate with the same score;
	// the first registered must win.
	patterns := []string{"turn on", "the light"}

	idx, _ := Best("turn on the light", patterns)
	if idx != 0 {
		t.Errorf("expected first registered pattern to win, got index %d", idx)
	}
}

func TestBestNoMatch(t *testing.T) {
	idx, score := Best("completely unrelated", []string{"what time is it"})
	if idx != -1 || score != 0 {
		t.Errorf("expected no match, got index %d score %v", idx, score)
	}
}
