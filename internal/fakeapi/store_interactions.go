package fakeapi

import (
	"sort"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

// RecordInteraction stores a user action on an existing book.
func (s *Store) RecordInteraction(userID string, in domain.InteractionCreate) (domain.Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.book(in.BookID); err != nil {
		return domain.Interaction{}, err
	}
	return s.logInteraction(userID, in.BookID, in.InteractionType, in.Metadata), nil
}

// Interactions returns the user's actions, newest first.
func (s *Store) Interactions(userID string) []domain.Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Interaction{}
	for i := len(s.interactions) - 1; i >= 0; i-- {
		if s.interactions[i].UserID == userID {
			out = append(out, s.interactions[i])
		}
	}
	return out
}

// AllInteractions pages every recorded action, newest first, optionally
// filtered by type.
func (s *Store) AllInteractions(w pagination.Window, typ domain.InteractionType) []domain.Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Interaction
	for i := len(s.interactions) - 1; i >= 0; i-- {
		if typ == "" || s.interactions[i].InteractionType == typ {
			out = append(out, s.interactions[i])
		}
	}
	return pagination.Slice(out, w)
}

// ToggleLike adds a like, or removes every like the user has on the book.
// It reports whether the like was added.
func (s *Store) ToggleLike(userID, bookID string) (domain.Interaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.book(bookID); err != nil {
		return domain.Interaction{}, false, err
	}

	kept := s.interactions[:0:0]
	removed := false
	for _, in := range s.interactions {
		if in.UserID == userID && in.BookID == bookID && in.InteractionType == domain.InteractionLike {
			removed = true
			continue
		}
		kept = append(kept, in)
	}
	if removed {
		s.interactions = kept
		return domain.Interaction{}, false, nil
	}
	return s.logInteraction(userID, bookID, domain.InteractionLike, nil), true, nil
}

// Likes returns the ids of the books the user likes, most recent first.
func (s *Store) Likes(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	out := []string{}
	for i := len(s.interactions) - 1; i >= 0; i-- {
		in := s.interactions[i]
		if in.UserID != userID || in.InteractionType != domain.InteractionLike || seen[in.BookID] {
			continue
		}
		seen[in.BookID] = true
		out = append(out, in.BookID)
	}
	return out
}

// topCounts returns up to n keys of counts ordered by count, then key.
func topCounts(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] == counts[keys[j]] {
			return keys[i] < keys[j]
		}
		return counts[keys[i]] > counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
