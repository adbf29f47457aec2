package fakeapi

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/bookshelf/internal/domain"
)

// Seeded accounts, usable against a fresh mock backend.
const (
	SeedAdminEmail     = "admin@bookshelf.dev"
	SeedAdminPassword  = "admin123"
	SeedReaderEmail    = "reader@bookshelf.dev"
	SeedReaderPassword = "reader123"
)

var seedNamespace = uuid.MustParse("6f1c1d2e-9a43-4f0b-8c55-2b7d0c3e9a10")

// SeedID derives the stable id of a seeded record.
func SeedID(kind, key string) string {
	return uuid.NewSHA1(seedNamespace, []byte(kind+":"+key)).String()
}

type seedBook struct {
	title, author, isbn, genre, publisher string
	year, pages                           int
	price                                 string
	stock                                 int
	rating                                float64
	tags                                  []string
}

var seedBooks = []seedBook{
	{"Pride and Prejudice", "Jane Austen", "9780141439518", "romance", "Penguin Classics", 1813, 480, "9.99", 25, 4.6, []string{"classic", "england"}},
	{"Emma", "Jane Austen", "9780141439587", "romance", "Penguin Classics", 1815, 544, "8.49", 12, 4.2, []string{"classic", "england"}},
	{"Crime and Punishment", "Fyodor Dostoevsky", "9780143058142", "classic", "Penguin Classics", 1866, 720, "12.50", 18, 4.7, []string{"russia", "psychological"}},
	{"The Brothers Karamazov", "Fyodor Dostoevsky", "9780374528379", "classic", "Farrar, Straus and Giroux", 1880, 796, "15.00", 7, 4.8, []string{"russia", "philosophy"}},
	{"Anna Karenina", "Leo Tolstoy", "9780143035008", "classic", "Penguin Classics", 1878, 864, "14.25", 9, 4.5, []string{"russia", "romance"}},
	{"Frankenstein", "Mary Shelley", "9780486282114", "horror", "Dover", 1818, 166, "4.99", 30, 4.1, []string{"gothic", "science"}},
	{"Dracula", "Bram Stoker", "9780486411095", "horror", "Dover", 1897, 418, "6.75", 3, 4.0, []string{"gothic", "vampires"}},
	{"The Time Machine", "H. G. Wells", "9780451528551", "science fiction", "Signet", 1895, 118, "5.50", 40, 3.9, []string{"time travel", "science"}},
	{"The War of the Worlds", "H. G. Wells", "9780141441030", "science fiction", "Penguin Classics", 1898, 192, "7.20", 22, 4.0, []string{"aliens", "science"}},
	{"The Hound of the Baskervilles", "Arthur Conan Doyle", "9780141199177", "mystery", "Penguin Classics", 1902, 256, "6.99", 15, 4.4, []string{"detective", "england"}},
	{"A Study in Scarlet", "Arthur Conan Doyle", "9780140439083", "mystery", "Penguin Classics", 1887, 144, "5.99", 0, 4.1, []string{"detective"}},
	{"Moby-Dick", "Herman Melville", "9780142437247", "adventure", "Penguin Classics", 1851, 720, "11.00", 5, 3.8, []string{"sea", "classic"}},
}

// Seed loads the demo catalog and the two demo accounts. Books are spaced a
// day apart so "new" ordering is deterministic.
func (s *Store) Seed() error {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sb := range seedBooks {
		isbn := sb.isbn
		id := SeedID("book", isbn)
		s.books[id] = &domain.Book{
			ID:              id,
			Title:           sb.title,
			Author:          sb.author,
			ISBN:            &isbn,
			Description:     fmt.Sprintf("%s by %s.", sb.title, sb.author),
			Genre:           sb.genre,
			Publisher:       sb.publisher,
			PublicationYear: sb.year,
			PageCount:       sb.pages,
			Language:        "en",
			Price:           domain.MustMoney(sb.price),
			Stock:           sb.stock,
			Tags:            sb.tags,
			AverageRating:   sb.rating,
			CreatedAt:       base.Add(time.Duration(i) * 24 * time.Hour),
		}
	}

	accounts := []struct {
		email, username, password string
		admin                     bool
		genres                    []string
	}{
		{SeedAdminEmail, "admin", SeedAdminPassword, true, []string{}},
		{SeedReaderEmail, "reader", SeedReaderPassword, false, []string{"classic", "mystery"}},
	}
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		id := SeedID("user", a.email)
		s.accounts[id] = &account{
			user: domain.User{
				ID:              id,
				Email:           a.email,
				Username:        a.username,
				FavoriteGenres:  a.genres,
				FavoriteAuthors: []string{},
				IsAdmin:         a.admin,
				CreatedAt:       base,
			},
			passwordHash: hash,
		}
	}
	return nil
}
