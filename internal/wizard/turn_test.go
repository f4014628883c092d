package wizard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendRejectedWhileTurnOpen(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append("first question"))

	err := l.Append("second question")
	assert.ErrorIs(t, err, ErrOpenTurn)
	assert.Equal(t, 1, l.Len(), "rejected append must not grow the ledger")
	assert.NoError(t, l.Check())
}

func TestAppendAfterAnswer(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append("first question"))
	require.NoError(t, l.Answer("first answer"))
	require.NoError(t, l.Append("second question"))

	assert.Equal(t, 2, l.Len())
	assert.NoError(t, l.Check())
}

func TestAtMostOneOpenTurnAndItIsLast(t *testing.T) {
	l := NewLedger()
	for i := 0; i < 4; i++ {
		require.NoError(t, l.Append("q"))
		require.NoError(t, l.Answer("a"))
		require.NoError(t, l.Check())
	}
	require.NoError(t, l.Append("open q"))
	require.NoError(t, l.Check())

	open := 0
	for i, turn := range l.Turns() {
		if turn.Open() {
			open++
			assert.Equal(t, l.Len()-1, i, "open turn must be the last one")
		}
	}
	assert.Equal(t, 1, open)
}

func TestAnswerWithoutOpenTurn(t *testing.T) {
	l := NewLedger()
	assert.ErrorIs(t, l.Answer("a"), ErrNoOpenTurn)

	require.NoError(t, l.Append("q"))
	require.NoError(t, l.Answer("a"))
	assert.ErrorIs(t, l.Answer("again"), ErrNoOpenTurn)
	assert.Equal(t, "a", l.Turns()[0].Answer, "closed answer must not change")
}

func TestSetTagsDedupesAndCaps(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append("q"))
	require.NoError(t, l.Answer("a"))

	err := l.SetTags([]string{"genre", "genre", " mechanics ", "story", "visuals", "audience", "platforms"})
	require.NoError(t, err)

	tags := l.Turns()[0].Tags
	assert.Equal(t, []string{"genre", "mechanics", "story", "visuals", "audience"}, tags)
	assert.Len(t, tags, MaxTagsPerTurn)
}

func TestSetTagsTargetsLastClosedTurn(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append("q1"))
	require.NoError(t, l.Answer("a1"))
	require.NoError(t, l.Append("q2"))

	require.NoError(t, l.SetTags([]string{"genre"}))

	turns := l.Turns()
	assert.Equal(t, []string{"genre"}, turns[0].Tags)
	assert.Empty(t, turns[1].Tags, "open turn must not receive tags")
}

func TestSetTagsWithNothingAnswered(t *testing.T) {
	l := NewLedger()
	assert.ErrorIs(t, l.SetTags([]string{"genre"}), ErrNoOpenTurn)

	require.NoError(t, l.Append("q"))
	assert.ErrorIs(t, l.SetTags([]string{"genre"}), ErrNoOpenTurn)
}

func TestLikeOnlyWhileOpen(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append("q"))
	require.NoError(t, l.Like())
	assert.True(t, l.Turns()[0].Liked)

	require.NoError(t, l.Answer("a"))
	assert.ErrorIs(t, l.Like(), ErrNoOpenTurn)
}

func TestLastAnswer(t *testing.T) {
	l := NewLedger()
	assert.Equal(t, "", l.LastAnswer())

	require.NoError(t, l.Append("q1"))
	assert.Equal(t, "", l.LastAnswer())

	require.NoError(t, l.Answer("a1"))
	require.NoError(t, l.Append("q2"))
	assert.Equal(t, "a1", l.LastAnswer())
}

func TestRecordsRoundTrip(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append("q1"))
	require.NoError(t, l.Answer("a1"))
	require.NoError(t, l.SetTags([]string{"genre", "story"}))
	require.NoError(t, l.Append("q2"))
	require.NoError(t, l.Answer("a2"))

	data, err := json.Marshal(l)
	require.NoError(t, err)

	var records []TurnRecord
	require.NoError(t, json.Unmarshal(data, &records))

	restored, err := LedgerFromRecords(records)
	require.NoError(t, err)
	assert.Equal(t, l.Records(), restored.Records())
}

func TestLedgerFromRecordsRejectsBadShape(t *testing.T) {
	// A turn without an answer followed by more turns violates the
	// open-turn invariant.
	_, err := LedgerFromRecords([]TurnRecord{
		{Question: "q1", Answer: "", Tags: []string{}},
		{Question: "q2", Answer: "a2", Tags: []string{}},
	})
	assert.Error(t, err)
}

func TestTrainingDataFiltersUntaggedAndUnanswered(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append("q1"))
	require.NoError(t, l.Answer("a1"))
	require.NoError(t, l.SetTags([]string{"genre"}))

	require.NoError(t, l.Append("q2"))
	require.NoError(t, l.Answer("a2"))
	// no tags on q2

	require.NoError(t, l.Append("q3")) // open, no answer

	examples := l.TrainingData()
	require.Len(t, examples, 1)
	assert.Equal(t, "q1", examples[0].Question)
	assert.Equal(t, []string{"genre"}, examples[0].Tags)
}

func TestLedgerFromTurnsPreservesFlags(t *testing.T) {
	turns := []Turn{
		{Question: "q1", Answer: "a1", Answered: true, Tags: []string{"genre"}},
		{Question: "q2", Liked: true},
	}
	l, err := LedgerFromTurns(turns)
	require.NoError(t, err)

	got := l.Turns()
	assert.True(t, got[0].Answered)
	assert.True(t, got[1].Liked)
	assert.True(t, got[1].Open())
}
