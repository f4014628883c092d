package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gamedocs.dev/interview-wizard/internal/gateway"
	"gamedocs.dev/interview-wizard/internal/wizard"
)

// ModelGateway is the boundary to the hosted language model. The Gemini
// implementation lives in internal/gateway; tests substitute stubs.
type ModelGateway interface {
	SendChat(ctx context.Context, history []wizard.ChatMessage, message string, settings wizard.Settings) (string, error)
	GenerateOnce(ctx context.Context, prompt string, settings wizard.Settings) (string, error)
}

// ErrInsufficientData is returned by Document when no turn has been
// answered yet; the model is never called with a degenerate transcript.
var ErrInsufficientData = errors.New("no answered turns to build a document from")

// GatewayUnavailableQuestion is shown in place of a generated question
// when the model cannot be reached. The interview must stay usable for
// manual entry, so transport failures never surface as errors here.
const GatewayUnavailableQuestion = "The assistant could not be reached. " +
	"Type your own next question below, or submit your answer again to retry."

// InterviewService implements the three interview operations and their
// degradation policies on top of a ModelGateway.
type InterviewService struct {
	gateway ModelGateway
}

func NewInterviewService(gw ModelGateway) *InterviewService {
	return &InterviewService{gateway: gw}
}

// NextQuestion produces the next interview question for the ledger. The
// first question is a fixed literal and skips the model entirely. A model
// reply that is empty or whitespace falls back to the pre-authored
// question table; a transport failure yields a placeholder question. The
// only error returned is an invalid Settings record.
func (s *InterviewService) NextQuestion(ctx context.Context, ledger *wizard.Ledger, settings wizard.Settings, blacklist []string) (string, error) {
	if ledger.Len() == 0 {
		return wizard.OpeningQuestion, nil
	}

	if err := settings.Validate(); err != nil {
		return "", err
	}

	history, prompt := wizard.CompileNextQuestion(ledger, blacklist)
	reply, err := s.gateway.SendChat(ctx, history, prompt, settings)
	if err != nil {
		if errors.Is(err, gateway.ErrEmptyResponse) {
			log.Printf("Model returned no question, using fallback: %v", err)
			return wizard.FallbackQuestion(ledger.Len()), nil
		}
		log.Printf("Model gateway unreachable for next question: %v", err)
		return GatewayUnavailableQuestion, nil
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		log.Println("Model returned a blank question, using fallback")
		return wizard.FallbackQuestion(ledger.Len()), nil
	}
	return reply, nil
}

// Document folds every answered turn into one Markdown game design
// document. Unlike the question path there is no degraded output: a
// gateway failure is an explicit error, never a silent empty document.
func (s *InterviewService) Document(ctx context.Context, ledger *wizard.Ledger, settings wizard.Settings) (string, error) {
	if len(ledger.AnsweredTurns()) == 0 {
		return "", ErrInsufficientData
	}

	if err := settings.Validate(); err != nil {
		return "", err
	}

	doc, err := s.gateway.GenerateOnce(ctx, wizard.CompileDocument(ledger), settings)
	if err != nil {
		return "", fmt.Errorf("document generation failed: %w", err)
	}
	if strings.TrimSpace(doc) == "" {
		return "", fmt.Errorf("document generation failed: %w", gateway.ErrEmptyResponse)
	}
	return doc, nil
}

// SuggestTags asks the model to pick tags for a question from the fixed
// vocabulary. Tag suggestion is a convenience, not a correctness path:
// every failure mode — invalid settings, transport error, empty or
// unparseable reply — degrades to an empty list and is only logged.
func (s *InterviewService) SuggestTags(ctx context.Context, question string, vocabulary []string, settings wizard.Settings) []string {
	if err := settings.Validate(); err != nil {
		log.Printf("Tag suggestion skipped, invalid settings: %v", err)
		return []string{}
	}
	if len(vocabulary) == 0 {
		return []string{}
	}

	reply, err := s.gateway.GenerateOnce(ctx, wizard.CompileTagPrompt(question, vocabulary), settings)
	if err != nil {
		log.Printf("Tag suggestion failed: %v", err)
		return []string{}
	}
	return wizard.FilterToVocabulary(wizard.ExtractTagArray(reply), vocabulary)
}
