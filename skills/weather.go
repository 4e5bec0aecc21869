package skills

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Weather fetches current conditions from wttr.in's plain-text endpoint.
// Client and BaseURL are swappable for tests.
type Weather struct {
	Client  *http.Client
	BaseURL string
	City    string
}

// NewWeather creates the weather skill. An empty city lets wttr.in
// geolocate the caller.
func NewWeather(city string) *Weather {
	return &Weather{
		Client:  &http.Client{Timeout: 8 * time.Second},
		BaseURL: "https://wttr.in",
		City:    city,
	}
}

func (w *Weather) Name() string { return "weather" }

func (w *Weather) Phrases() []string {
	return []string{
		"what is the weather",
		"how is the weather",
		"is it going to rain",
	}
}

func (w *Weather) Handle(ctx context.Context, command string) (string, error) {
	// format=3 returns a single line like "London: ⛅️ +11°C".
	endpoint := fmt.Sprintf("%s/%s?format=3", w.BaseURL, url.PathEscape(w.City))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build weather request: %w", err)
	}
	req.Header.Set("User-Agent", "curl/8.0")

	resp, err := w.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather service returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("read weather response: %w", err)
	}

	report := strings.TrimSpace(string(body))
	if report == "" {
		return "", fmt.Errorf("weather service returned an empty report")
	}
	return fmt.Sprintf("The weather right now: %s.", report), nil
}
