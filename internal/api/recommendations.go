package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/bookshelf/internal/domain"
)

// RecommendationsService covers /recommendations.
type RecommendationsService struct{ c *Client }

func limitParams(limit int) Params {
	p := Params{}
	if limit > 0 {
		p["limit"] = limit
	}
	return p
}

func (s *RecommendationsService) feed(ctx context.Context, path string, params Params) ([]domain.Book, error) {
	var out []domain.Book
	err := s.c.do(ctx, request{method: http.MethodGet, path: basePath + "/recommendations" + path, query: params.Encode()}, &out)
	return out, err
}

// ForYou returns personal recommendations. Requires a token.
func (s *RecommendationsService) ForYou(ctx context.Context, limit int) ([]domain.Book, error) {
	return s.feed(ctx, "/for-you", limitParams(limit))
}

// Similar returns books close to bookID by author, genre and tags.
func (s *RecommendationsService) Similar(ctx context.Context, bookID string, limit int) ([]domain.Book, error) {
	return s.feed(ctx, "/similar/"+url.PathEscape(bookID), limitParams(limit))
}

// Trending returns the most interacted-with books over the last days.
func (s *RecommendationsService) Trending(ctx context.Context, days, limit int) ([]domain.Book, error) {
	p := limitParams(limit)
	if days > 0 {
		p["days"] = days
	}
	return s.feed(ctx, "/trending", p)
}

// ByGenre returns the best rated books of a genre.
func (s *RecommendationsService) ByGenre(ctx context.Context, genre string, limit int) ([]domain.Book, error) {
	return s.feed(ctx, "/by-genre/"+url.PathEscape(genre), limitParams(limit))
}

// New returns the latest additions to the catalog.
func (s *RecommendationsService) New(ctx context.Context, limit int) ([]domain.Book, error) {
	return s.feed(ctx, "/new", limitParams(limit))
}

// Feed dispatches req to the endpoint of its strategy. Missing parameters
// are rejected before any request is made.
func (s *RecommendationsService) Feed(ctx context.Context, req domain.FeedRequest) ([]domain.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	switch req.Strategy {
	case domain.StrategyPersonal:
		return s.ForYou(ctx, req.Limit)
	case domain.StrategyTrending:
		return s.Trending(ctx, req.Days, req.Limit)
	case domain.StrategyNew:
		return s.New(ctx, req.Limit)
	case domain.StrategySimilar:
		return s.Similar(ctx, req.BookID, req.Limit)
	default:
		return s.ByGenre(ctx, req.Genre, req.Limit)
	}
}

// AnalyticsService covers /analytics.
type AnalyticsService struct{ c *Client }

// UserBehavior summarizes the caller's activity.
func (s *AnalyticsService) UserBehavior(ctx context.Context) (*domain.BehaviorAnalytics, error) {
	var out domain.BehaviorAnalytics
	if err := s.c.do(ctx, request{method: http.MethodGet, path: basePath + "/analytics/user-behavior"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
