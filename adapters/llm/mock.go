package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
)

// Mock is a canned-response model for tests and for running the daemon
// without any API key.
type Mock struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	prompts []string
	seeded  [][]repositories.ChatMessage
}

// NewMock creates a mock model answering with reply.
func NewMock(reply string) *Mock {
	return &Mock{Reply: reply}
}

// Generate implements repositories.LargeLanguageModel.
func (m *Mock) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}
	return fmt.Sprintf("I heard you say: %s", prompt), nil
}

// GenerateChat implements repositories.LargeLanguageModel.
func (m *Mock) GenerateChat(ctx context.Context, history []repositories.ChatMessage) (repositories.ChatSession, error) {
	m.mu.Lock()
	m.seeded = append(m.seeded, append([]repositories.ChatMessage(nil), history...))
	m.mu.Unlock()
	return &mockChatSession{model: m, history: history}, nil
}

// Prompts returns every prompt seen so far.
func (m *Mock) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Seeded returns the history each chat session was opened with.
func (m *Mock) Seeded() [][]repositories.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]repositories.ChatMessage(nil), m.seeded...)
}

type mockChatSession struct {
	model   *Mock
	history []repositories.ChatMessage
}

func (s *mockChatSession) SendMessage(ctx context.Context, message repositories.ChatMessage) (repositories.ChatMessage, error) {
	text, err := s.model.Generate(ctx, message.Content)
	if err != nil {
		return repositories.ChatMessage{}, err
	}
	reply := repositories.ChatMessage{Role: repositories.AssistantRole, Content: text}
	s.history = append(s.history, message, reply)
	return reply, nil
}

func (s *mockChatSession) History() ([]repositories.ChatMessage, error) {
	return s.history, nil
}
