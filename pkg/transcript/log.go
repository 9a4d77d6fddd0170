package transcript

import "sync"

// ErrNotFound is returned when a bubble doesn't exist in the log.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	if e.ID == "" {
		return "bubble not found"
	}

	return "bubble not found: " + e.ID
}

// Log is an append-only, chronologically ordered sequence of bubbles. It is
// safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	bubbles []*Bubble
	index   map[string]int
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{index: make(map[string]int)}
}

// Append adds a bubble after the current last one and returns it.
func (l *Log) Append(role Role, text string, markdown bool) *Bubble {
	l.mu.Lock()
	defer l.mu.Unlock()

	var prev *Bubble
	if n := len(l.bubbles); n > 0 {
		prev = l.bubbles[n-1]
	}

	b := NewBubble(role, text, markdown, prev)
	l.index[b.ID] = len(l.bubbles)
	l.bubbles = append(l.bubbles, b)
	return b
}

// Bubbles returns every bubble, oldest first.
func (l *Log) Bubbles() []*Bubble {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Bubble, len(l.bubbles))
	copy(out, l.bubbles)
	return out
}

// Len returns the number of bubbles.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.bubbles)
}

// Last returns the newest bubble, or nil for an empty log.
func (l *Log) Last() *Bubble {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.bubbles) == 0 {
		return nil
	}
	return l.bubbles[len(l.bubbles)-1]
}

// Get retrieves a bubble by its ID.
func (l *Log) Get(id string) (*Bubble, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.index[id]
	if !ok {
		return nil, ErrNotFound{ID: id}
	}
	return l.bubbles[i], nil
}

// After returns the bubbles appended after id, oldest first. An empty id
// returns the whole log.
func (l *Log) After(id string) ([]*Bubble, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := 0
	if id != "" {
		i, ok := l.index[id]
		if !ok {
			return nil, ErrNotFound{ID: id}
		}
		start = i + 1
	}

	out := make([]*Bubble, len(l.bubbles)-start)
	copy(out, l.bubbles[start:])
	return out, nil
}
