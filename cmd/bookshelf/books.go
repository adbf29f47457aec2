package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

func (c *cli) booksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse the catalog",
	}
	cmd.AddCommand(c.booksListCmd(), c.booksGetCmd(), c.booksSearchCmd())
	return cmd
}

func (c *cli) booksListCmd() *cobra.Command {
	var (
		filter                        domain.BookFilter
		minPrice, maxPrice, minRating float64
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("min-price") {
				filter.MinPrice = &minPrice
			}
			if flags.Changed("max-price") {
				filter.MaxPrice = &maxPrice
			}
			if flags.Changed("min-rating") {
				filter.MinRating = &minRating
			}
			books, err := c.app.catalog.Books(cmd.Context(), filter)
			if err != nil {
				return err
			}
			c.app.print(c.app.renderer.Books("Books", books))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&filter.Genre, "genre", "", "only this genre")
	f.StringVar(&filter.Author, "author", "", "only this author")
	f.Float64Var(&minPrice, "min-price", 0, "minimum price")
	f.Float64Var(&maxPrice, "max-price", 0, "maximum price")
	f.Float64Var(&minRating, "min-rating", 0, "minimum average rating")
	f.IntVar(&filter.Skip, "skip", 0, "books to skip")
	f.IntVar(&filter.Limit, "limit", pagination.DefaultParams().Limit, "books to show")
	return cmd
}

func (c *cli) booksGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <book-id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.app.catalog.Book(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.app.print(c.app.renderer.Book(*b))
			return nil
		},
	}
}

func (c *cli) booksSearchCmd() *cobra.Command {
	var w pagination.Window
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search titles, authors and descriptions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.Join(args, " ")
			books, err := c.app.catalog.Search(cmd.Context(), q, w)
			if err != nil {
				return err
			}
			c.app.print(c.app.renderer.Books("Results for \""+q+"\"", books))
			return nil
		},
	}
	cmd.Flags().IntVar(&w.Skip, "skip", 0, "results to skip")
	cmd.Flags().IntVar(&w.Limit, "limit", pagination.DefaultParams().Limit, "results to show")
	return cmd
}

func (c *cli) recsCmd() *cobra.Command {
	var req domain.FeedRequest
	cmd := &cobra.Command{
		Use:   "recs <personal|trending|new|similar|genre>",
		Short: "Show a recommendation feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := domain.ParseStrategy(args[0])
			if err != nil {
				return err
			}
			req.Strategy = s
			if s == domain.StrategyPersonal {
				if err := c.app.session.RequireAuth(); err != nil {
					return err
				}
			}
			books, err := c.app.catalog.Feed(cmd.Context(), req)
			if err != nil {
				return err
			}
			c.app.print(c.app.renderer.Books(feedTitle(req), books))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.BookID, "book", "", "book id for the similar feed")
	f.StringVar(&req.Genre, "genre", "", "genre for the genre feed")
	f.IntVar(&req.Limit, "limit", 10, "books to show")
	f.IntVar(&req.Days, "days", 0, "look-back window for the trending feed")
	return cmd
}

func feedTitle(req domain.FeedRequest) string {
	switch req.Strategy {
	case domain.StrategyPersonal:
		return "Recommended for you"
	case domain.StrategyTrending:
		return "Trending now"
	case domain.StrategyNew:
		return "New arrivals"
	case domain.StrategySimilar:
		return "Similar books"
	case domain.StrategyGenre:
		return "Best in " + req.Genre
	}
	return string(req.Strategy)
}

func (c *cli) homeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show the landing page feeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, err := c.app.catalog.Home(cmd.Context())
			if err != nil {
				return err
			}
			sections := []string{
				c.app.renderer.Books("Trending now", home.Trending),
				c.app.renderer.Books("New arrivals", home.New),
			}
			if home.Personal != nil {
				sections = append(sections, c.app.renderer.Books("Recommended for you", home.Personal))
			}
			c.app.print(strings.Join(sections, "\n\n"))
			return nil
		},
	}
}

// Like notifications.
const (
	MsgLiked      = "Added to favorites"
	MsgUnliked    = "Removed from favorites"
	MsgLikeFailed = "Could not update favorites"
)

func (c *cli) likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <book-id>",
		Short: "Toggle a book in your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.session.RequireAuth(); err != nil {
				return err
			}
			liked, err := c.app.catalog.ToggleLike(cmd.Context(), args[0])
			if err != nil {
				c.app.state.Error(MsgLikeFailed + ": " + apperrors.UserMessage(err))
				return err
			}
			if liked {
				c.app.state.Success(MsgLiked)
			} else {
				c.app.state.Success(MsgUnliked)
			}
			return nil
		},
	}
}

func (c *cli) likesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "likes",
		Short: "List your favorite books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.session.RequireAuth(); err != nil {
				return err
			}
			ctx := cmd.Context()
			ids, err := c.app.catalog.Likes(ctx)
			if err != nil {
				return err
			}
			books := make([]domain.Book, 0, len(ids))
			for _, id := range ids {
				b, err := c.app.catalog.Lookup(ctx, id)
				if err != nil {
					c.app.log.DebugContext(ctx, "liked book unavailable", slog.String("book_id", id))
					continue
				}
				books = append(books, *b)
			}
			c.app.print(c.app.renderer.Books("Favorites", books))
			return nil
		},
	}
}
