package fakeapi

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
)

type account struct {
	user         domain.User
	passwordHash []byte
}

type cartLine struct {
	bookID   string
	quantity int
	addedAt  time.Time
}

// Store is the in-memory state of the backend. Every method takes the lock
// for its whole duration so multi-step operations such as order creation
// are atomic.
type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	bcryptCost   int
	accounts     map[string]*account
	books        map[string]*domain.Book
	carts        map[string][]cartLine
	orders       map[string]*domain.Order
	interactions []domain.Interaction
}

// NewStore creates an empty store. bcryptCost below bcrypt.MinCost falls
// back to bcrypt.DefaultCost.
func NewStore(bcryptCost int) *Store {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Store{
		now:        func() time.Time { return time.Now().UTC() },
		bcryptCost: bcryptCost,
		accounts:   make(map[string]*account),
		books:      make(map[string]*domain.Book),
		carts:      make(map[string][]cartLine),
		orders:     make(map[string]*domain.Order),
	}
}

func newID() string {
	return uuid.NewString()
}

// sortedBooks returns the catalog oldest first. Callers hold the lock.
func (s *Store) sortedBooks() []domain.Book {
	out := make([]domain.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Store) book(id string) (*domain.Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, apperrors.NotFoundMessage("Book not found")
	}
	return b, nil
}

func (s *Store) account(id string) (*account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, apperrors.NotFoundMessage("User not found")
	}
	return a, nil
}

func (s *Store) logInteraction(userID, bookID string, typ domain.InteractionType, meta map[string]any) domain.Interaction {
	if meta == nil {
		meta = map[string]any{}
	}
	in := domain.Interaction{
		ID:              newID(),
		UserID:          userID,
		BookID:          bookID,
		InteractionType: typ,
		Metadata:        meta,
		Timestamp:       s.now(),
	}
	s.interactions = append(s.interactions, in)
	return in
}
