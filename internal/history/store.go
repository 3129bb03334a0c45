// Package history keeps recent verifications in memory for the dashboard.
// Entries do not survive a restart.
package history

import (
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/sells-group/lead-verify/internal/model"
)

// Entry is one stored verification.
type Entry struct {
	ID         int         `json:"id"`
	VerifiedAt time.Time   `json:"verified_at"`
	Lead       *model.Lead `json:"lead"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Search string              // case-insensitive substring of name, email or phone
	Status model.OverallStatus // verified or flagged
	Limit  int
}

// Store is a mutex-guarded, append-only list of entries.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Add stores l and returns its entry. IDs start at 1.
func (s *Store) Add(l *model.Lead) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := Entry{ID: len(s.entries) + 1, VerifiedAt: s.now().UTC(), Lead: l}
	s.entries = append(s.entries, e)
	return e
}

// Get returns the entry with id.
func (s *Store) Get(id int) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 1 || id > len(s.entries) {
		return Entry{}, false
	}
	return s.entries[id-1], true
}

// List returns matching entries, newest first, and the number of matches
// before Limit is applied.
func (s *Store) List(f Filter) ([]Entry, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(f.Search))

	var out []Entry
	for _, e := range s.entries {
		if f.Status != "" && e.Lead.Status() != f.Status {
			continue
		}
		if needle != "" && !matches(fold, e.Lead, needle) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	total := len(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func matches(fold cases.Caser, l *model.Lead, needle string) bool {
	for _, field := range []string{l.FullName(), l.Email, l.Phone} {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}
