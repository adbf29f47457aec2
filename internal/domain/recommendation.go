package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/utafrali/bookshelf/pkg/errors"
)

// Strategy selects a recommendation feed.
type Strategy string

const (
	StrategyPersonal Strategy = "personal"
	StrategyTrending Strategy = "trending"
	StrategyNew      Strategy = "new"
	StrategySimilar  Strategy = "similar"
	StrategyGenre    Strategy = "genre"
)

// Strategies lists the canonical strategy names.
var Strategies = []Strategy{StrategyPersonal, StrategyTrending, StrategyNew, StrategySimilar, StrategyGenre}

// ParseStrategy accepts the canonical names plus "newest" and "for-you".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "personal", "for-you":
		return StrategyPersonal, nil
	case "trending":
		return StrategyTrending, nil
	case "new", "newest":
		return StrategyNew, nil
	case "similar":
		return StrategySimilar, nil
	case "genre", "by-genre":
		return StrategyGenre, nil
	}
	return "", apperrors.InvalidInput(fmt.Sprintf("unknown recommendation strategy %q", s))
}

// FeedRequest describes one recommendation feed.
type FeedRequest struct {
	Strategy Strategy
	BookID   string
	Genre    string
	Limit    int
	Days     int
}

// Validate checks that the strategy has the parameters it needs.
func (r FeedRequest) Validate() error {
	switch r.Strategy {
	case StrategyPersonal, StrategyTrending, StrategyNew:
	case StrategySimilar:
		if r.BookID == "" {
			return apperrors.InvalidInput("similar feed requires a book id")
		}
	case StrategyGenre:
		if r.Genre == "" {
			return apperrors.InvalidInput("genre feed requires a genre")
		}
	default:
		return apperrors.InvalidInput(fmt.Sprintf("unknown recommendation strategy %q", r.Strategy))
	}
	if r.Limit < 0 || r.Limit > 50 {
		return apperrors.InvalidInput("limit must be between 1 and 50")
	}
	if r.Days < 0 || r.Days > 365 {
		return apperrors.InvalidInput("days must be between 1 and 365")
	}
	return nil
}
