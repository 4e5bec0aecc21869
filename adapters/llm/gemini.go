// Package llm provides the fallback language model used for commands that no
// registered handler matches.
package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/srreparos7z-rgb/lewisia/domain/repositories"
)

const (
	defaultModel          = "gemini-2.0-flash"
	defaultMaxTokens      = 256
	defaultTimeoutSeconds = 8
)

// systemPrompt gives the assistant its voice: short spoken answers, no
// markup, since everything it says goes through a TTS engine.
const systemPrompt = "You are Lewis, a concise voice assistant running on a " +
	"small home device. Answer in one or two short spoken sentences, with no " +
	"formatting, lists or markup. If you do not know, say so plainly."

var fallbacks = []string{
	"Sorry, I could not think of an answer right now.",
	"I did not catch that, could you try again?",
}

// GeminiLLM implements the LargeLanguageModel interface using Google's
// Gemini API.
type GeminiLLM struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

// NewGemini creates a new Gemini LLM instance.
func NewGemini(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiLLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiLLM{
		client: client,
		logger: logger,
		model:  defaultModel,
	}, nil
}

// Generate implements repositories.LargeLanguageModel.
func (g *GeminiLLM) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeoutSeconds*time.Second)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(systemPrompt, genai.RoleUser),
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(defaultMaxTokens),
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		g.logger.Error("gemini generate failed", zap.Error(err))
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := responseText(response)
	if text == "" {
		g.logger.Warn("gemini returned no content")
		return fallbacks[int(time.Now().UnixNano())%len(fallbacks)], nil
	}
	return text, nil
}

// GenerateChat creates a chat session with history.
func (g *GeminiLLM) GenerateChat(ctx context.Context, history []repositories.ChatMessage) (repositories.ChatSession, error) {
	return &geminiChatSession{
		llm:     g,
		history: history,
	}, nil
}

type geminiChatSession struct {
	llm     *GeminiLLM
	history []repositories.ChatMessage
}

// SendMessage sends a message and gets a response, updating the history.
func (s *geminiChatSession) SendMessage(ctx context.Context, message repositories.ChatMessage) (repositories.ChatMessage, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	for _, msg := range s.history {
		contents = append(contents, genai.NewContentFromText(msg.Content, geminiRole(msg.Role)))
	}
	userContent := genai.NewContentFromText(message.Content, genai.RoleUser)
	contents = append(contents, userContent)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeoutSeconds*time.Second)
	defer cancel()

	response, err := s.llm.client.Models.GenerateContent(ctx, s.llm.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: int32(defaultMaxTokens),
	})
	if err != nil {
		s.llm.logger.Error("gemini chat failed", zap.Error(err))
		return repositories.ChatMessage{}, fmt.Errorf("send message: %w", err)
	}

	text := responseText(response)
	if text == "" {
		text = fallbacks[int(time.Now().UnixNano())%len(fallbacks)]
	}

	reply := repositories.ChatMessage{
		Role:    repositories.AssistantRole,
		Content: text,
	}
	s.history = append(s.history, message, reply)
	return reply, nil
}

// History returns the current conversation history.
func (s *geminiChatSession) History() ([]repositories.ChatMessage, error) {
	return s.history, nil
}

func responseText(response *genai.GenerateContentResponse) string {
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range response.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text
}

func geminiRole(role repositories.Role) genai.Role {
	if role == repositories.AssistantRole {
		return genai.RoleModel
	}
	return genai.RoleUser
}
