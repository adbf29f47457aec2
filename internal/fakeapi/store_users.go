package fakeapi

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

const (
	msgEmailTaken     = "Email already registered"
	msgUsernameTaken  = "Username already taken"
	msgBadCredentials = "Incorrect email or password"
)

// Register creates a customer account.
func (s *Store) Register(reg domain.Registration) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(reg.Email))
	for _, a := range s.accounts {
		if a.user.Email == email {
			return domain.User{}, apperrors.InvalidInput(msgEmailTaken)
		}
		if a.user.Username == reg.Username {
			return domain.User{}, apperrors.InvalidInput(msgUsernameTaken)
		}
	}

	u := domain.User{
		ID:              newID(),
		Email:           email,
		Username:        reg.Username,
		FullName:        reg.FullName,
		Age:             reg.Age,
		FavoriteGenres:  nonNil(reg.FavoriteGenres),
		FavoriteAuthors: nonNil(reg.FavoriteAuthors),
		CreatedAt:       s.now(),
	}
	s.accounts[u.ID] = &account{user: u, passwordHash: hash}
	return u, nil
}

// Authenticate checks an email and password and records the login time.
func (s *Store) Authenticate(email, password string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range s.accounts {
		if a.user.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) != nil {
			break
		}
		now := s.now()
		a.user.LastLogin = &now
		return a.user, nil
	}
	return domain.User{}, apperrors.Unauthorized(msgBadCredentials)
}

// User returns an account by id.
func (s *Store) User(id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.account(id)
	if err != nil {
		return domain.User{}, err
	}
	return a.user, nil
}

// UpdateUser applies a partial profile update.
func (s *Store) UpdateUser(id string, upd domain.UserUpdate) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.account(id)
	if err != nil {
		return domain.User{}, err
	}
	if upd.Username != nil {
		for _, other := range s.accounts {
			if other.user.ID != id && other.user.Username == *upd.Username {
				return domain.User{}, apperrors.InvalidInput(msgUsernameTaken)
			}
		}
	}
	a.user.Apply(upd)
	return a.user, nil
}

// UpdatePreferences replaces the user's favorite genres and authors.
func (s *Store) UpdatePreferences(id string, p domain.Preferences) (domain.User, error) {
	genres, authors := nonNil(p.FavoriteGenres), nonNil(p.FavoriteAuthors)
	return s.UpdateUser(id, domain.UserUpdate{FavoriteGenres: &genres, FavoriteAuthors: &authors})
}

// ListUsers pages every account ordered by creation.
func (s *Store) ListUsers(w pagination.Window) []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]domain.User, 0, len(s.accounts))
	for _, a := range s.accounts {
		all = append(all, a.user)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].Email < all[j].Email
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return pagination.Slice(all, w)
}

// DeleteUser removes an account and its cart.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.account(id); err != nil {
		return err
	}
	delete(s.accounts, id)
	delete(s.carts, id)
	return nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
