package wizard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answeredLedger(t *testing.T, pairs ...[2]string) *Ledger {
	t.Helper()
	l := NewLedger()
	for _, pair := range pairs {
		require.NoError(t, l.Append(pair[0]))
		require.NoError(t, l.Answer(pair[1]))
	}
	return l
}

func TestCompileNextQuestionEmptyLedger(t *testing.T) {
	history, prompt := CompileNextQuestion(NewLedger(), nil)

	assert.Empty(t, history)
	assert.Contains(t, prompt, "I want to create a game")
}

func TestCompileNextQuestionExcludesLastTurn(t *testing.T) {
	l := answeredLedger(t,
		[2]string{"q1", "a1"},
		[2]string{"q2", "a2"},
	)
	require.NoError(t, l.Append("q3")) // open turn

	history, prompt := CompileNextQuestion(l, nil)

	// q1/a1 and q2/a2 are closed and not last; q3 is excluded.
	require.Len(t, history, 4)
	assert.Equal(t, ChatMessage{Role: RoleModel, Text: "q1"}, history[0])
	assert.Equal(t, ChatMessage{Role: RoleUser, Text: "a1"}, history[1])
	assert.Equal(t, ChatMessage{Role: RoleModel, Text: "q2"}, history[2])
	assert.Equal(t, ChatMessage{Role: RoleUser, Text: "a2"}, history[3])
	for _, msg := range history {
		assert.NotEqual(t, "q3", msg.Text)
	}

	assert.Contains(t, prompt, `"a2"`, "prompt must carry the most recent answer")
}

func TestCompileNextQuestionSingleClosedTurn(t *testing.T) {
	l := answeredLedger(t, [2]string{"q1", "a1"})

	history, prompt := CompileNextQuestion(l, nil)

	assert.Empty(t, history, "the only turn is the last turn and is excluded")
	assert.Contains(t, prompt, `"a1"`)
}

func TestCompileNextQuestionBlacklist(t *testing.T) {
	l := answeredLedger(t, [2]string{"q1", "a1"})

	_, prompt := CompileNextQuestion(l, []string{"What genre is your game?"})
	assert.Contains(t, prompt, "What genre is your game?")
	assert.Contains(t, prompt, "rejected")

	_, prompt = CompileNextQuestion(l, nil)
	assert.NotContains(t, prompt, "rejected")
}

func TestFallbackQuestionClamps(t *testing.T) {
	first := FallbackQuestion(1)
	assert.Equal(t, "What genre is your game?", first)

	last := FallbackQuestion(len(fallbackQuestions))
	beyond := FallbackQuestion(len(fallbackQuestions) + 50)
	assert.Equal(t, last, beyond)

	assert.Equal(t, first, FallbackQuestion(0))
	assert.Equal(t, first, FallbackQuestion(-3))
}

func TestCompileDocumentBlocks(t *testing.T) {
	l := answeredLedger(t,
		[2]string{"What genre?", "A roguelike."},
		[2]string{"Who plays it?", "Hardcore players."},
	)
	require.NoError(t, l.SetTags([]string{"audience"}))
	require.NoError(t, l.Append("open question"))

	prompt := CompileDocument(l)

	assert.Contains(t, prompt, "### What genre?\n\nA roguelike.")
	assert.Contains(t, prompt, "### Who plays it?\n\nHardcore players.\n\n**Tags: audience**")
	assert.Contains(t, prompt, documentSeparator)
	assert.NotContains(t, prompt, "open question", "unanswered turns stay out of the document")
	assert.Contains(t, prompt, "never invent facts")
}

func TestCompileDocumentSkipsWhitespaceAnswers(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append("q1"))
	require.NoError(t, l.Answer("   "))
	require.NoError(t, l.Append("q2"))
	require.NoError(t, l.Answer("real answer"))

	prompt := CompileDocument(l)
	assert.NotContains(t, prompt, "### q1")
	assert.Contains(t, prompt, "### q2")
}

func TestCompileTagPrompt(t *testing.T) {
	vocab := []string{"genre", "mechanics", "story"}
	prompt := CompileTagPrompt("What genre is your game?", vocab)

	assert.Contains(t, prompt, `"What genre is your game?"`)
	assert.Contains(t, prompt, strings.Join(vocab, ", "))
	assert.Contains(t, prompt, "JSON array")
	assert.Contains(t, prompt, "up to 3")
}
