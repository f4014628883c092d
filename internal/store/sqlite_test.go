package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamedocs.dev/interview-wizard/internal/wizard"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateSession(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Nil(t, created.Title)

	got, err := s.GetSession(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	missing, err := s.GetSession("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.UpdateSessionTitle(created.ID, "My Game"))
	got, err = s.GetSession(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Title)
	assert.Equal(t, "My Game", *got.Title)

	sessions, err := s.ListSessions()
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestUpdateTitleUnknownSession(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.UpdateSessionTitle("nope", "title"))
}

func TestTurnWriteThrough(t *testing.T) {
	s := newTestStore(t)
	session, err := s.CreateSession(nil)
	require.NoError(t, err)

	require.NoError(t, s.InsertTurn(session.ID, 0, "q1"))
	require.NoError(t, s.SetTurnAnswer(session.ID, 0, "a1"))
	require.NoError(t, s.SetTurnTags(session.ID, 0, []string{"genre", "story"}))
	require.NoError(t, s.InsertTurn(session.ID, 1, "q2"))
	require.NoError(t, s.SetTurnLiked(session.ID, 1, true))

	turns, err := s.GetTurns(session.ID)
	require.NoError(t, err)
	require.Len(t, turns, 2)

	assert.Equal(t, "q1", turns[0].Question)
	assert.Equal(t, "a1", turns[0].Answer)
	assert.True(t, turns[0].Answered)
	assert.Equal(t, []string{"genre", "story"}, turns[0].Tags)

	assert.Equal(t, "q2", turns[1].Question)
	assert.False(t, turns[1].Answered, "a NULL answer column stays an open turn")
	assert.True(t, turns[1].Liked)

	// The stored turns rebuild into a valid ledger.
	_, err = wizard.LedgerFromTurns(turns)
	assert.NoError(t, err)
}

func TestUpdateTurnUnknownPosition(t *testing.T) {
	s := newTestStore(t)
	session, err := s.CreateSession(nil)
	require.NoError(t, err)

	assert.Error(t, s.SetTurnAnswer(session.ID, 7, "a"))
}

func TestSettingsBlobRoundTrip(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetSettings()
	require.NoError(t, err)
	assert.Nil(t, got, "unset settings return nil so the caller can seed defaults")

	want := wizard.Settings{
		Temperature:     0.7,
		MaxOutputTokens: 512,
		TopP:            0.95,
		TopK:            40,
		Model:           "gemini-2.5-flash",
		ProjectID:       "proj",
		Region:          "europe-west1",
		StorageBucket:   "my-bucket",
	}
	require.NoError(t, s.PutSettings(want))

	got, err = s.GetSettings()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	// Overwrite in place.
	want.Temperature = 1.2
	require.NoError(t, s.PutSettings(want))
	got, err = s.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, float32(1.2), got.Temperature)
}
