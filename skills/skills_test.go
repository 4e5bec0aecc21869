package skills

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func fixedTime(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 3, 1, hour, 4, 0, 0, time.UTC)
	}
}

func TestClockSpeaksTheTime(t *testing.T) {
	clock := NewClock()
	clock.Now = fixedTime(15)

	reply, err := clock.Handle(context.Background(), "what time is it")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if reply != "It is 3:04 PM." {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestCalendarSpeaksTheDate(t *testing.T) {
	calendar := NewCalendar()
	calendar.Now = fixedTime(9)

	reply, err := calendar.Handle(context.Background(), "what is the date")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if reply != "Today is Sunday, March 1." {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestGreetingFollowsTimeOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{8, "Good morning! How can I help?"},
		{14, "Good afternoon! How can I help?"},
		{21, "Good evening! How can I help?"},
	}

	for _, tt := range tests {
		greeting := NewGreeting()
		greeting.Now = fixedTime(tt.hour)

		reply, err := greeting.Handle(context.Background(), "hello")
		if err != nil {
			t.Fatalf("Handle failed at hour %d: %v", tt.hour, err)
		}
		if reply != tt.want {
			t.Errorf("hour %d: expected %q, got %q", tt.hour, tt.want, reply)
		}
	}
}

func TestJokePicksFromPool(t *testing.T) {
	joke := NewJoke(rand.New(rand.NewSource(1)))

	reply, err := joke.Handle(context.Background(), "tell me a joke")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	found := false
	for _, j := range jokes {
		if reply == j {
			found = true
		}
	}
	if !found {
		t.Errorf("reply %q is not a known joke", reply)
	}
}

func TestWeatherReportsWttrLine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "format=3") {
			t.Errorf("expected format=3 query, got %q", r.URL.RawQuery)
		}
		w.Write([]byte("Lisbon: Sunny +22C\n"))
	}))
	defer server.Close()

	weather := NewWeather("Lisbon")
	weather.BaseURL = server.URL
	weather.Client = server.Client()

	reply, err := weather.Handle(context.Background(), "what is the weather")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if reply != "The weather right now: Lisbon: Sunny +22C." {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestWeatherFailsOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	weather := NewWeather("Lisbon")
	weather.BaseURL = server.URL
	weather.Client = server.Client()

	if _, err := weather.Handle(context.Background(), "what is the weather"); err == nil {
		t.Fatal("expected an error from a failing weather service")
	}
}

func TestVolumeCommands(t *testing.T) {
	tests := []struct {
		command  string
		wantArgs string
		reply    string
	}{
		{"turn up the volume", "set Master 10%+", "Volume up."},
		{"turn down the volume", "set Master 10%-", "Volume down."},
		{"mute", "set Master mute", "Muted."},
		{"unmute", "set Master unmute", "Unmuted."},
	}

	for _, tt := range tests {
		var got string
		volume := NewVolumeWithRunner(func(ctx context.Context, name string, args ...string) error {
			got = name + " " + strings.Join(args, " ")
			return nil
		})

		reply, err := volume.Handle(context.Background(), tt.command)
		if err != nil {
			t.Fatalf("%q: Handle failed: %v", tt.command, err)
		}
		if got != "amixer "+tt.wantArgs {
			t.Errorf("%q: expected mixer call %q, got %q", tt.command, "amixer "+tt.wantArgs, got)
		}
		if reply != tt.reply {
			t.Errorf("%q: expected reply %q, got %q", tt.command, tt.reply, reply)
		}
	}
}

func TestVolumeMixerFailure(t *testing.T) {
	volume := NewVolumeWithRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("no mixer")
	})

	if _, err := volume.Handle(context.Background(), "mute"); err == nil {
		t.Fatal("expected mixer failure to surface")
	}
}

func TestStatusTemperature(t *testing.T) {
	fileSys := afero.NewMemMapFs()
	if err := afero.WriteFile(fileSys, thermalZonePath, []byte("48500\n"), 0o644); err != nil {
		t.Fatalf("seed thermal zone: %v", err)
	}

	status := &Status{fileSys: fileSys}
	temp, ok := status.temperature()
	if !ok {
		t.Fatal("expected a temperature reading")
	}
	if temp != 48.5 {
		t.Errorf("expected 48.5 degrees, got %f", temp)
	}
}

func TestStatusTemperatureMissing(t *testing.T) {
	status := &Status{fileSys: afero.NewMemMapFs()}
	if _, ok := status.temperature(); ok {
		t.Fatal("expected no reading without a thermal zone")
	}
}
