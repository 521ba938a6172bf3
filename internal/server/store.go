package server

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deflationproof/wheelcast/internal/position"
)

// ErrPositionNotFound is returned for unknown position ids.
var ErrPositionNotFound = errors.New("position not found")

// Book is the in-memory position store behind the REST surface. Durable
// persistence belongs to the surrounding application; this keeps enough
// state for a session of position management and advice.
type Book struct {
	mu   sync.RWMutex
	byID map[string]*position.Position
}

// NewBook returns an empty position book.
func NewBook() *Book {
	return &Book{byID: make(map[string]*position.Position)}
}

// Create stores a snapshot under a fresh id.
func (b *Book) Create(snap position.Snapshot, now time.Time) position.Position {
	p := position.Position{
		ID:        uuid.NewString(),
		Snapshot:  snap,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.mu.Lock()
	b.byID[p.ID] = &p
	b.mu.Unlock()
	return p
}

// Get returns a copy of the stored position.
func (b *Book) Get(id string) (position.Position, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.byID[id]
	if !ok {
		return position.Position{}, ErrPositionNotFound
	}
	return *p, nil
}

// List returns all positions ordered by creation time.
func (b *Book) List() []position.Position {
	b.mu.RLock()
	out := make([]position.Position, 0, len(b.byID))
	for _, p := range b.byID {
		out = append(out, *p)
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Delete removes a position; unknown ids are not an error.
func (b *Book) Delete(id string) {
	b.mu.Lock()
	delete(b.byID, id)
	b.mu.Unlock()
}

// ApplyRoll records a roll event against a stored position and returns
// the updated copy.
func (b *Book) ApplyRoll(id string, r position.Roll) (position.Position, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.byID[id]
	if !ok {
		return position.Position{}, ErrPositionNotFound
	}
	p.ApplyRoll(r)
	return *p, nil
}
