package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"gamedocs.dev/interview-wizard/internal/store"
	"gamedocs.dev/interview-wizard/internal/wizard"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// titleMaxLen caps the session title derived from the first answer.
const titleMaxLen = 60

// sessionState is the in-memory working copy of one session. Its mutex
// serializes every ledger mutation: one in-flight model call per session,
// and appends only after the prior turn is closed.
type sessionState struct {
	mu     sync.Mutex
	ledger *wizard.Ledger
}

// SessionService orchestrates sessions: it owns the ledgers, applies the
// interview policies and writes every mutation through to the store so
// sessions survive a restart.
type SessionService struct {
	dbStore   *store.SQLiteStore
	interview *InterviewService

	mu       sync.Mutex
	sessions map[string]*sessionState
}

func NewSessionService(db *store.SQLiteStore, interview *InterviewService) *SessionService {
	return &SessionService{
		dbStore:   db,
		interview: interview,
		sessions:  make(map[string]*sessionState),
	}
}

// CreateSession opens a new session seeded with the fixed opening
// question as its open turn. No model call is made here.
func (s *SessionService) CreateSession() (*store.Session, []wizard.Turn, error) {
	session, err := s.dbStore.CreateSession(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session in DB: %w", err)
	}

	ledger := wizard.NewLedger()
	if err := ledger.Append(wizard.OpeningQuestion); err != nil {
		return nil, nil, err
	}
	if err := s.dbStore.InsertTurn(session.ID, 0, wizard.OpeningQuestion); err != nil {
		return nil, nil, fmt.Errorf("failed to store opening turn: %w", err)
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionState{ledger: ledger}
	s.mu.Unlock()

	return session, ledger.Turns(), nil
}

func (s *SessionService) ListSessions() ([]store.Session, error) {
	return s.dbStore.ListSessions()
}

// GetSession returns the session row and its turns in order.
func (s *SessionService) GetSession(sessionID string) (*store.Session, []wizard.Turn, error) {
	session, err := s.dbStore.GetSession(sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}

	state, err := s.state(sessionID)
	if err != nil {
		return nil, nil, err
	}
	state.mu.Lock()
	turns := state.ledger.Turns()
	state.mu.Unlock()

	return session, turns, nil
}

// Answer closes the open turn with the user's response, asks the model
// for the next question (with the fallback policies of NextQuestion) and
// appends it as the new open turn. The whole exchange holds the session
// lock, so a second concurrent answer waits rather than producing two
// open turns.
func (s *SessionService) Answer(ctx context.Context, sessionID, answer string, blacklist []string, settings wizard.Settings) (string, error) {
	// Reject bad settings before touching the ledger; failing after the
	// answer is committed would leave the session with no open turn.
	if err := settings.Validate(); err != nil {
		return "", err
	}

	state, err := s.state(sessionID)
	if err != nil {
		return "", err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	firstAnswer := state.ledger.Len() == 1

	if err := state.ledger.Answer(answer); err != nil {
		return "", err
	}
	if err := s.dbStore.SetTurnAnswer(sessionID, state.ledger.Len()-1, answer); err != nil {
		return "", err
	}

	if firstAnswer {
		s.setTitleFromAnswer(sessionID, answer)
	}

	next, err := s.interview.NextQuestion(ctx, state.ledger, settings, blacklist)
	if err != nil {
		return "", err
	}
	if err := state.ledger.Append(next); err != nil {
		return "", err
	}
	if err := s.dbStore.InsertTurn(sessionID, state.ledger.Len()-1, next); err != nil {
		return "", err
	}
	return next, nil
}

// Tags attaches tags to the most recently closed turn and returns the
// list as applied (deduplicated, capped).
func (s *SessionService) Tags(sessionID string, tags []string) ([]string, error) {
	state, err := s.state(sessionID)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	if err := state.ledger.SetTags(tags); err != nil {
		return nil, err
	}

	turns := state.ledger.Turns()
	pos := lastClosedIndex(turns)
	applied := turns[pos].Tags
	if err := s.dbStore.SetTurnTags(sessionID, pos, applied); err != nil {
		return nil, err
	}
	return applied, nil
}

// Like marks the current open question as liked.
func (s *SessionService) Like(sessionID string) error {
	state, err := s.state(sessionID)
	if err != nil {
		return err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	if err := state.ledger.Like(); err != nil {
		return err
	}
	return s.dbStore.SetTurnLiked(sessionID, state.ledger.Len()-1, true)
}

// Document generates the Markdown document for the session and returns
// it together with the ledger export records for artifact writing.
func (s *SessionService) Document(ctx context.Context, sessionID string, settings wizard.Settings) (string, []wizard.TurnRecord, error) {
	state, err := s.state(sessionID)
	if err != nil {
		return "", nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	doc, err := s.interview.Document(ctx, state.ledger, settings)
	if err != nil {
		return "", nil, err
	}
	return doc, state.ledger.Records(), nil
}

// Export returns the session ledger in the `[{question, answer, tags}]`
// export shape.
func (s *SessionService) Export(sessionID string) ([]wizard.TurnRecord, error) {
	state, err := s.state(sessionID)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.ledger.Records(), nil
}

// TrainingData returns the `[{question, tags}]` export restricted to
// answered, tagged turns.
func (s *SessionService) TrainingData(sessionID string) ([]wizard.TrainingExample, error) {
	state, err := s.state(sessionID)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.ledger.TrainingData(), nil
}

// state returns the in-memory session state, loading it from the store
// after a restart.
func (s *SessionService) state(sessionID string) (*sessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.sessions[sessionID]; ok {
		return state, nil
	}

	session, err := s.dbStore.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	turns, err := s.dbStore.GetTurns(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load turns: %w", err)
	}
	ledger, err := wizard.LedgerFromTurns(turns)
	if err != nil {
		return nil, err
	}

	state := &sessionState{ledger: ledger}
	s.sessions[sessionID] = state
	return state, nil
}

func (s *SessionService) setTitleFromAnswer(sessionID, answer string) {
	title := answer
	if len(title) > titleMaxLen {
		title = title[:titleMaxLen]
	}
	if err := s.dbStore.UpdateSessionTitle(sessionID, title); err != nil {
		log.Printf("Failed to save title for session %s: %v", sessionID, err)
	}
}

func lastClosedIndex(turns []wizard.Turn) int {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Answered {
			return i
		}
	}
	return -1
}
