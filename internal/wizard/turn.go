package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOpenTurn is returned when a new turn is appended while the last
	// turn has no answer yet.
	ErrOpenTurn = errors.New("ledger already has an open turn")

	// ErrNoOpenTurn is returned when an answer, like or tag mutation is
	// attempted and there is no turn in the expected state to receive it.
	ErrNoOpenTurn = errors.New("ledger has no open turn")

	// ErrAlreadyAnswered is returned when a turn that is already closed
	// receives a second answer.
	ErrAlreadyAnswered = errors.New("turn is already answered")
)

// Turn is one question/answer unit of the interview. The question is set
// at creation and never changes; the answer is set exactly once; tags and
// the liked flag follow the rules enforced by Ledger.
type Turn struct {
	Question string
	Answer   string
	Answered bool
	Tags     []string
	Liked    bool
}

// Open reports whether the turn is still waiting for an answer.
func (t *Turn) Open() bool {
	return !t.Answered
}

// Ledger is the ordered, append-only session history. At most one turn is
// open at any time, and if present it is always the last one. Ledger is
// not safe for concurrent use; callers serialize access per session.
type Ledger struct {
	turns []Turn
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Len returns the number of turns, open or closed.
func (l *Ledger) Len() int {
	return len(l.turns)
}

// Turns returns a copy of the turns in conversation order.
func (l *Ledger) Turns() []Turn {
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Append adds a new open turn carrying the given question. It fails with
// ErrOpenTurn unless the ledger is empty or its last turn is answered;
// appending also ends the tagging window of the previous turn by
// convention.
func (l *Ledger) Append(question string) error {
	if last := l.last(); last != nil && last.Open() {
		return ErrOpenTurn
	}
	l.turns = append(l.turns, Turn{Question: question})
	return nil
}

// Answer closes the open turn with the user's response. A turn never
// transitions back to open.
func (l *Ledger) Answer(answer string) error {
	last := l.last()
	if last == nil || !last.Open() {
		return ErrNoOpenTurn
	}
	if last.Answered {
		return ErrAlreadyAnswered
	}
	last.Answer = answer
	last.Answered = true
	return nil
}

// SetTags replaces the tags of the most recently closed turn. Duplicates
// are dropped (first occurrence wins) and the list is truncated to
// MaxTagsPerTurn; both limits come from the client contract, enforced
// here so every caller gets the same shape.
func (l *Ledger) SetTags(tags []string) error {
	target := l.lastClosed()
	if target == nil {
		return ErrNoOpenTurn
	}
	target.Tags = normalizeTags(tags)
	return nil
}

// Like marks the open question as liked. Only the open turn can receive
// the flag; once answered, the signal window is gone.
func (l *Ledger) Like() error {
	last := l.last()
	if last == nil || !last.Open() {
		return ErrNoOpenTurn
	}
	last.Liked = true
	return nil
}

// LastAnswer returns the answer of the most recently closed turn, or ""
// if no turn has been answered yet.
func (l *Ledger) LastAnswer() string {
	if t := l.lastClosed(); t != nil {
		return t.Answer
	}
	return ""
}

// AnsweredTurns returns the closed turns with a non-empty answer, in
// conversation order.
func (l *Ledger) AnsweredTurns() []Turn {
	var out []Turn
	for _, t := range l.turns {
		if t.Answered && strings.TrimSpace(t.Answer) != "" {
			out = append(out, t)
		}
	}
	return out
}

// Questions returns every question asked so far, in order.
func (l *Ledger) Questions() []string {
	out := make([]string, 0, len(l.turns))
	for _, t := range l.turns {
		out = append(out, t.Question)
	}
	return out
}

// Check verifies the ledger invariant: at most one open turn, and it is
// the last one. It exists for tests and defensive assertions after
// restoring a ledger from storage.
func (l *Ledger) Check() error {
	for i, t := range l.turns {
		if t.Open() && i != len(l.turns)-1 {
			return fmt.Errorf("turn %d is open but not last", i)
		}
	}
	return nil
}

func (l *Ledger) last() *Turn {
	if len(l.turns) == 0 {
		return nil
	}
	return &l.turns[len(l.turns)-1]
}

func (l *Ledger) lastClosed() *Turn {
	for i := len(l.turns) - 1; i >= 0; i-- {
		if l.turns[i].Answered {
			return &l.turns[i]
		}
	}
	return nil
}

// MaxTagsPerTurn caps how many tags a single turn may carry.
const MaxTagsPerTurn = 5

func normalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
		if len(out) == MaxTagsPerTurn {
			break
		}
	}
	return out
}

// TurnRecord is the export shape of one turn: the sibling JSON file
// written next to the generated document uses an ordered array of these.
type TurnRecord struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags"`
}

// TrainingExample pairs a question with the tags it ended up with; the
// training export keeps only turns that have both an answer and tags.
type TrainingExample struct {
	Question string   `json:"question"`
	Tags     []string `json:"tags"`
}

// Records returns the ledger in export shape, order-preserving. Open
// turns are included with an empty answer so the file mirrors the full
// conversation.
func (l *Ledger) Records() []TurnRecord {
	out := make([]TurnRecord, 0, len(l.turns))
	for _, t := range l.turns {
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, TurnRecord{Question: t.Question, Answer: t.Answer, Tags: tags})
	}
	return out
}

// TrainingData returns the `[{question, tags}]` export, restricted to
// turns with a non-empty answer and a non-empty tag list.
func (l *Ledger) TrainingData() []TrainingExample {
	out := []TrainingExample{}
	for _, t := range l.turns {
		if !t.Answered || strings.TrimSpace(t.Answer) == "" || len(t.Tags) == 0 {
			continue
		}
		out = append(out, TrainingExample{Question: t.Question, Tags: t.Tags})
	}
	return out
}

// MarshalJSON serializes the ledger as its export records.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Records())
}

// LedgerFromTurns rebuilds a ledger from stored turns, preserving the
// answered and liked flags. The turns must satisfy the open-turn
// invariant.
func LedgerFromTurns(turns []Turn) (*Ledger, error) {
	l := &Ledger{turns: make([]Turn, len(turns))}
	copy(l.turns, turns)
	if err := l.Check(); err != nil {
		return nil, fmt.Errorf("invalid stored ledger: %w", err)
	}
	return l, nil
}

// LedgerFromRecords rebuilds a ledger from exported records. The records
// must satisfy the open-turn invariant; Check is run before returning.
func LedgerFromRecords(records []TurnRecord) (*Ledger, error) {
	l := NewLedger()
	for _, r := range records {
		l.turns = append(l.turns, Turn{
			Question: r.Question,
			Answer:   r.Answer,
			Answered: r.Answer != "",
			Tags:     normalizeTags(r.Tags),
		})
	}
	if err := l.Check(); err != nil {
		return nil, fmt.Errorf("invalid ledger records: %w", err)
	}
	return l, nil
}
