package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"gamedocs.dev/interview-wizard/internal/wizard"
)

// ErrEmptyResponse indicates the model answered but produced no usable
// text. Callers recover locally (fallback question, empty tag list)
// rather than surfacing it to the user.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Gemini talks to the hosted Gemini API. It is an explicitly constructed
// handle passed into the services that need it, never a package global,
// so tests and parallel sessions can substitute their own gateway. The
// model name and all generation parameters travel with each call's
// Settings.
type Gemini struct {
	client *genai.Client
}

// New creates a gateway authenticated with the given API key.
func New(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() {
	if g.client == nil {
		return
	}
	if err := g.client.Close(); err != nil {
		log.Printf("Error closing GenAI client: %v", err)
	}
}

// SendChat sends one message on top of the compiled chat history and
// returns the model's text.
func (g *Gemini) SendChat(ctx context.Context, history []wizard.ChatMessage, message string, settings wizard.Settings) (string, error) {
	model := g.model(settings)

	session := model.StartChat()
	for _, msg := range history {
		session.History = append(session.History, &genai.Content{
			Role:  msg.Role,
			Parts: []genai.Part{genai.Text(msg.Text)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("gemini chat SendMessage failed: %w", err)
	}
	return responseText(resp)
}

// GenerateOnce sends a single standalone prompt with no chat history.
func (g *Gemini) GenerateOnce(ctx context.Context, prompt string, settings wizard.Settings) (string, error) {
	resp, err := g.model(settings).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini GenerateContent failed: %w", err)
	}
	return responseText(resp)
}

func (g *Gemini) model(settings wizard.Settings) *genai.GenerativeModel {
	model := g.client.GenerativeModel(settings.Model)
	temp := settings.Temperature
	maxTokens := settings.MaxOutputTokens
	topP := settings.TopP
	topK := settings.TopK
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     &temp,
		MaxOutputTokens: &maxTokens,
		TopP:            &topP,
		TopK:            &topK,
	}
	return model
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
