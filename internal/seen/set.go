// Package seen holds the ordered set of gazette identifiers that were
// already reported.
package seen

import (
	"context"
	"fmt"
	"strings"
)

// DefaultLimit is how many identifiers are retained between runs.
const DefaultLimit = 50

// Backend persists the ordered identifier list.
type Backend interface {
	LoadSeen(ctx context.Context) ([]string, error)
	SaveSeen(ctx context.Context, ids []string) error
}

// Set is an insertion-ordered set of identifiers. It is owned by a single
// run and is not safe for concurrent use.
type Set struct {
	ids   []string
	index map[string]struct{}
	dirty bool
}

// New returns an empty set seeded with ids (oldest first). Duplicates keep
// their first position.
func New(ids ...string) *Set {
	s := &Set{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.add(id)
	}
	s.dirty = false
	return s
}

// Load reads the persisted set. An absent store yields an empty set; any
// other backend error is returned.
func Load(ctx context.Context, b Backend) (*Set, error) {
	ids, err := b.LoadSeen(ctx)
	if err != nil {
		return nil, fmt.Errorf("load seen-set: %w", err)
	}
	return New(ids...), nil
}

func (s *Set) Contains(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[strings.TrimSpace(id)]
	return ok
}

// Add appends id unless already present. It reports whether the set changed.
func (s *Set) Add(id string) bool {
	return s.add(id)
}

func (s *Set) add(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	s.dirty = true
	return true
}

// TruncateToLast keeps the n most recently added identifiers. n <= 0 leaves
// the set untouched.
func (s *Set) TruncateToLast(n int) {
	if n <= 0 || len(s.ids) <= n {
		return
	}
	drop := s.ids[:len(s.ids)-n]
	for _, id := range drop {
		delete(s.index, id)
	}
	kept := make([]string, n)
	copy(kept, s.ids[len(s.ids)-n:])
	s.ids = kept
	s.dirty = true
}

// IDs returns a copy of the identifiers, oldest first.
func (s *Set) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *Set) Len() int { return len(s.ids) }

// Dirty reports whether the set changed since it was loaded or saved.
func (s *Set) Dirty() bool { return s.dirty }

// Save truncates the set to limit and persists it.
func (s *Set) Save(ctx context.Context, b Backend, limit int) error {
	s.TruncateToLast(limit)
	if err := b.SaveSeen(ctx, s.IDs()); err != nil {
		return fmt.Errorf("save seen-set: %w", err)
	}
	s.dirty = false
	return nil
}
