// Package conversation keeps the short rolling chat history the intent
// classifier uses as context.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// MaxTurnLength bounds each turn when rendered into a prompt.
	MaxTurnLength = 100
)

// Turn is a single message exchanged with a user.
type Turn struct {
	Role    string    `json:"role"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Store persists conversation turns per chat handle.
type Store interface {
	Append(ctx context.Context, handle string, turn Turn) error
	// Recent returns up to n turns, oldest first.
	Recent(ctx context.Context, handle string, n int) ([]Turn, error)
	Clear(ctx context.Context, handle string) error
}

// Format renders turns for inclusion in a completion prompt.
func Format(turns []Turn) string {
	if len(turns) == 0 {
		return "No previous conversation."
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		speaker := "MakeVideo AI"
		if t.Role == RoleUser {
			speaker = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, truncate(t.Message, MaxTurnLength)))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// MemoryStore is an in-process Store used when Redis is not configured.
type MemoryStore struct {
	mu    sync.Mutex
	max   int
	turns map[string][]Turn
}

// NewMemoryStore keeps at most max turns per handle.
func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = 6
	}
	return &MemoryStore{max: max, turns: map[string][]Turn{}}
}

func (m *MemoryStore) Append(_ context.Context, handle string, turn Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if turn.At.IsZero() {
		turn.At = time.Now().UTC()
	}
	list := append(m.turns[handle], turn)
	if len(list) > m.max {
		list = list[len(list)-m.max:]
	}
	m.turns[handle] = list
	return nil
}

func (m *MemoryStore) Recent(_ context.Context, handle string, n int) ([]Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.turns[handle]
	if n > 0 && len(list) > n {
		list = list[len(list)-n:]
	}
	out := make([]Turn, len(list))
	copy(out, list)
	return out, nil
}

func (m *MemoryStore) Clear(_ context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.turns, handle)
	return nil
}

var _ Store = (*MemoryStore)(nil)
