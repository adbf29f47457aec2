package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/validator"
)

func (c *cli) registerCmd() *cobra.Command {
	var (
		in       domain.Registration
		fullName string
		age      int
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fullName != "" {
				in.FullName = &fullName
			}
			if age > 0 {
				in.Age = &age
			}
			if err := validator.Validate(in); err != nil {
				return apperrors.InvalidInput(err.Error())
			}
			u, err := c.app.client.Auth.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			c.app.state.Success(fmt.Sprintf("Account %s created. You can log in now.", u.Username))
			c.app.print(c.app.renderer.User(*u))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVar(&in.Username, "username", "", "user name (3 to 50 characters)")
	f.StringVar(&in.Password, "password", "", "password (at least 6 characters)")
	f.StringVar(&fullName, "full-name", "", "full name")
	f.IntVar(&age, "age", 0, "age")
	f.StringSliceVar(&in.FavoriteGenres, "genres", nil, "favorite genres")
	f.StringSliceVar(&in.FavoriteAuthors, "authors", nil, "favorite authors")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var creds domain.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			tok, err := c.app.client.Auth.Login(ctx, creds)
			if err != nil {
				return err
			}
			if err := c.app.session.SetCredentials(tok.AccessToken, nil); err != nil {
				return err
			}
			u, err := c.app.client.Auth.Me(ctx)
			if err != nil {
				return err
			}
			if err := c.app.session.UpdateUser(*u); err != nil {
				return err
			}
			c.app.cart.Invalidate()
			c.app.log.InfoContext(ctx, "logged in", slog.String("user_id", u.ID))
			c.app.state.Success("Logged in as " + u.DisplayName())
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "email address")
	cmd.Flags().StringVar(&creds.Password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.app.session.Token() != "" {
				if err := c.app.client.Auth.Logout(cmd.Context()); err != nil {
					c.app.log.DebugContext(cmd.Context(), "server logout failed", slog.String("error", err.Error()))
				}
			}
			if err := c.app.session.Logout(); err != nil {
				return err
			}
			c.app.cart.Reset()
			c.app.state.Success("Logged out")
			return nil
		},
	}
}

func (c *cli) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.session.RequireAuth(); err != nil {
				return err
			}
			u, err := c.app.client.Auth.Me(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.app.session.UpdateUser(*u); err != nil {
				return err
			}
			c.app.print(c.app.renderer.User(*u))
			return nil
		},
	}
}

func (c *cli) prefsCmd() *cobra.Command {
	var prefs domain.Preferences
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Set favorite genres and authors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := c.currentUser(cmd.Context())
			if err != nil {
				return err
			}
			updated, err := c.app.client.Users.UpdatePreferences(cmd.Context(), u.ID, prefs)
			if err != nil {
				return err
			}
			if err := c.app.session.UpdateUser(*updated); err != nil {
				return err
			}
			c.app.catalog.InvalidateBooks(cmd.Context())
			c.app.state.Success("Preferences saved")
			c.app.print(c.app.renderer.User(*updated))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&prefs.FavoriteGenres, "genres", nil, "favorite genres")
	cmd.Flags().StringSliceVar(&prefs.FavoriteAuthors, "authors", nil, "favorite authors")
	return cmd
}

func (c *cli) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show your recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := c.currentUser(cmd.Context())
			if err != nil {
				return err
			}
			items, err := c.app.client.Users.History(cmd.Context(), u.ID)
			if err != nil {
				return err
			}
			c.app.print(c.app.renderer.Interactions(items))
			return nil
		},
	}
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize your reading behavior",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.session.RequireAuth(); err != nil {
				return err
			}
			a, err := c.app.client.Analytics.UserBehavior(cmd.Context())
			if err != nil {
				return err
			}
			c.app.print(c.app.renderer.Behavior(*a))
			return nil
		},
	}
}

// currentUser returns the stored user, fetching it once if only a token
// is known.
func (c *cli) currentUser(ctx context.Context) (domain.User, error) {
	if err := c.app.session.RequireAuth(); err != nil {
		return domain.User{}, err
	}
	if u, ok := c.app.session.User(); ok {
		return u, nil
	}
	u, err := c.app.client.Auth.Me(ctx)
	if err != nil {
		return domain.User{}, err
	}
	return *u, c.app.session.UpdateUser(*u)
}
