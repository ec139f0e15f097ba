package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transcript is the append-only turn history of one session. The zero value
// is not usable; create one with NewTranscript.
type Transcript struct {
	mu        sync.RWMutex
	sessionID string
	turns     []Turn
	now       func() time.Time
}

// NewTranscript returns an empty transcript bound to sessionID.
func NewTranscript(sessionID string) *Transcript {
	return &Transcript{
		sessionID: sessionID,
		turns:     make([]Turn, 0, 16),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AppendUser records a question.
func (t *Transcript) AppendUser(text string) Turn {
	return t.append(Turn{Role: RoleUser, Content: text})
}

// AppendAssistant records an answer; image may be empty.
func (t *Transcript) AppendAssistant(text, image, intent string) Turn {
	return t.append(Turn{Role: RoleAssistant, Content: text, Image: image, Intent: intent})
}

func (t *Transcript) append(turn Turn) Turn {
	turn.ID = uuid.NewString()
	turn.SessionID = t.sessionID
	turn.CreatedAt = t.now()

	t.mu.Lock()
	t.turns = append(t.turns, turn)
	t.mu.Unlock()
	return turn
}

// AllTurns returns every turn in insertion order.
func (t *Transcript) AllTurns() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	copied := make([]Turn, len(t.turns))
	copy(copied, t.turns)
	return copied
}

// Len returns the number of turns recorded.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}
