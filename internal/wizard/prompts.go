package wizard

import (
	"fmt"
	"strings"
)

// Roles used in the compiled chat history. They match what the Gemini
// API expects, so the gateway can pass messages through unchanged.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatMessage is one role-tagged message of the compiled chat history.
type ChatMessage struct {
	Role string
	Text string
}

// OpeningQuestion starts every session. It is a fixed literal: the first
// question is never model-generated, so an empty ledger never triggers a
// model call.
const OpeningQuestion = "What is the core idea of your game? Describe it in one sentence."

// openingAnswer stands in for the user's previous answer when compiling
// the very first model-generated question.
const openingAnswer = "I want to create a game. Help me put together a design document."

// fallbackQuestions is the pre-authored question sequence used when the
// model returns nothing usable. It is indexed by turn count and clamps to
// its last entry once exhausted.
var fallbackQuestions = []string{
	"What genre is your game?",
	"Who is the target audience for your game?",
	"What are the core mechanics of your game?",
	"What visual style are you aiming for?",
	"What story or plot do you have planned for your game?",
	"Which platforms are you targeting for release?",
	"What unique features will set your game apart from competitors?",
	"How do you plan to monetize your game?",
	"What resources will you need to develop this game?",
	"What else would you like to add to your game design document?",
}

// FallbackQuestion returns the pre-authored question for the given ledger
// length, clamped to the end of the table.
func FallbackQuestion(turnCount int) string {
	idx := turnCount - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(fallbackQuestions) {
		idx = len(fallbackQuestions) - 1
	}
	return fallbackQuestions[idx]
}

// CompileNextQuestion turns the ledger into the chat history and prompt
// for the next interview question. Each closed turn except the last
// contributes a model message (its question) and a user message (its
// answer); the last turn is excluded, since it is either the open
// question being answered now or, on an empty ledger, missing entirely.
// The blacklist carries question texts the user rejected; they are folded
// into the prompt as a do-not-repeat clause.
func CompileNextQuestion(l *Ledger, blacklist []string) (history []ChatMessage, prompt string) {
	turns := l.Turns()
	for i, t := range turns {
		if i == len(turns)-1 {
			break
		}
		if !t.Answered {
			continue
		}
		history = append(history,
			ChatMessage{Role: RoleModel, Text: t.Question},
			ChatMessage{Role: RoleUser, Text: t.Answer},
		)
	}

	lastAnswer := l.LastAnswer()
	if lastAnswer == "" {
		lastAnswer = openingAnswer
	}

	var sb strings.Builder
	sb.WriteString("You are a game design interview assistant. Your job is to help the user ")
	sb.WriteString("build a game design document by asking logical, concise questions.\n\n")
	fmt.Fprintf(&sb, "Here is the user's previous answer: %q\n\n", lastAnswer)
	sb.WriteString("Ask ONE next logical question that helps the user describe their game ")
	sb.WriteString("concept better. Do not repeat questions that were already asked. ")
	sb.WriteString("Do not add any extra phrases, only the question itself.")
	if len(blacklist) > 0 {
		sb.WriteString("\n\nNever ask any of these rejected questions again:\n")
		for _, q := range blacklist {
			fmt.Fprintf(&sb, "- %s\n", q)
		}
	}
	return history, sb.String()
}

// documentSeparator joins transcript blocks in the document prompt.
const documentSeparator = "\n\n---\n\n"

// CompileDocument builds the single prompt that turns every answered turn
// into one coherent Markdown game design document. Callers must check
// that at least one turn is answered before calling the model; compiling
// an empty transcript is a caller bug, not a compiler concern.
func CompileDocument(l *Ledger) string {
	blocks := make([]string, 0, l.Len())
	for _, t := range l.AnsweredTurns() {
		blocks = append(blocks, fmt.Sprintf("### %s\n\n%s\n\n**Tags: %s**",
			t.Question, t.Answer, strings.Join(t.Tags, ", ")))
	}
	transcript := strings.Join(blocks, documentSeparator)

	var sb strings.Builder
	sb.WriteString("You are an experienced writer and game designer. Take the following ")
	sb.WriteString("series of questions, answers and tags and turn it into a coherent, ")
	sb.WriteString("well-structured game design document formatted in Markdown.\n\n")
	sb.WriteString("Instructions:\n")
	sb.WriteString("1. Analyze the whole conversation.\n")
	sb.WriteString("2. Create a logical structure, grouping content by theme and using the tags as hints.\n")
	sb.WriteString("3. Use Markdown headings, lists and emphasis.\n")
	sb.WriteString("4. Write coherent prose, not a transcript.\n")
	sb.WriteString("5. Base the document only on information present in the conversation; never invent facts.\n\n")
	sb.WriteString("Here is the conversation to process:\n---\n")
	sb.WriteString(transcript)
	sb.WriteString("\n---\n\nProduce the complete game design document in Markdown.")
	return sb.String()
}

// MaxSuggestedTags caps how many tags the model is asked to pick.
const MaxSuggestedTags = 3

// CompileTagPrompt builds the tag-suggestion prompt: pick at most three
// tags from the vocabulary relevant to the question and answer with only
// a JSON array of strings.
func CompileTagPrompt(question string, vocabulary []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze the following question from a game design interview assistant "+
		"and pick up to %d of the most relevant tags from the provided list.\n\n", MaxSuggestedTags)
	fmt.Fprintf(&sb, "Question: %q\n\n", question)
	sb.WriteString("Available tags:\n")
	sb.WriteString(strings.Join(vocabulary, ", "))
	sb.WriteString("\n\nYour reply must be a JSON array containing only strings with the chosen tags, ")
	sb.WriteString(`for example: ["tag1", "tag2", "tag3"]. `)
	sb.WriteString("Do not add any explanation or extra text, only the JSON array.")
	return sb.String()
}
