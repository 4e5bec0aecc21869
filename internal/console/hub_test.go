package console

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestHubDropAfterClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	hub.Close()

	dropped := make(chan struct{})
	go func() {
		hub.drop(&client{send: make(chan []byte)})
		close(dropped)
	}()

	select {
	case <-dropped:
	case <-time.After(2 * time.Second):
		t.Fatal("drop blocked after hub close")
	}
}
