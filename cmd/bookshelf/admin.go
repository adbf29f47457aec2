package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/pagination"
	"github.com/utafrali/bookshelf/pkg/validator"
)

// adminCmd groups the admin-only commands. The local session is checked
// first; the API enforces the same rule.
func (c *cli) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage books, users and orders (admins only)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return c.app.session.RequireAdmin()
		},
	}
	cmd.AddCommand(c.adminBooksCmd(), c.adminUsersCmd(), c.adminOrdersCmd(), c.adminInteractionsCmd())
	return cmd
}

func (c *cli) adminBooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Create, update and delete books",
	}
	cmd.AddCommand(c.adminBookCreateCmd(), c.adminBookUpdateCmd(), c.adminBookDeleteCmd())
	return cmd
}

func (c *cli) adminBookCreateCmd() *cobra.Command {
	var (
		in         domain.BookCreate
		isbn, tags string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a book to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isbn != "" {
				in.ISBN = &isbn
			}
			in.Tags = splitList(tags)
			if err := validator.Validate(in); err != nil {
				return apperrors.InvalidInput(err.Error())
			}
			b, err := c.app.catalog.CreateBook(cmd.Context(), in)
			if err != nil {
				return err
			}
			c.app.state.Success("Book created")
			c.app.print(c.app.renderer.Book(*b))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "title")
	f.StringVar(&in.Author, "author", "", "author")
	f.StringVar(&isbn, "isbn", "", "ISBN")
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&in.Genre, "genre", "", "genre")
	f.StringVar(&in.Publisher, "publisher", "", "publisher")
	f.IntVar(&in.PublicationYear, "year", 0, "publication year")
	f.IntVar(&in.PageCount, "pages", 0, "page count")
	f.StringVar(&in.Language, "language", "en", "language code")
	f.Float64Var(&in.Price, "price", 0, "price")
	f.IntVar(&in.Stock, "stock", 0, "copies in stock")
	f.StringVar(&tags, "tags", "", "comma separated tags")
	for _, name := range []string{"title", "author", "description", "genre", "publisher", "year", "pages"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (c *cli) adminBookUpdateCmd() *cobra.Command {
	var (
		title, author, genre, description string
		price                             float64
		stock                             int
	)
	cmd := &cobra.Command{
		Use:   "update <book-id>",
		Short: "Change fields of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in domain.BookUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = &title
			}
			if flags.Changed("author") {
				in.Author = &author
			}
			if flags.Changed("genre") {
				in.Genre = &genre
			}
			if flags.Changed("description") {
				in.Description = &description
			}
			if flags.Changed("price") {
				in.Price = &price
			}
			if flags.Changed("stock") {
				in.Stock = &stock
			}
			if err := validator.Validate(in); err != nil {
				return apperrors.InvalidInput(err.Error())
			}
			b, err := c.app.catalog.UpdateBook(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			c.app.state.Success("Book updated")
			c.app.print(c.app.renderer.Book(*b))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "new title")
	f.StringVar(&author, "author", "", "new author")
	f.StringVar(&genre, "genre", "", "new genre")
	f.StringVar(&description, "description", "", "new description")
	f.Float64Var(&price, "price", 0, "new price")
	f.IntVar(&stock, "stock", 0, "new stock")
	return cmd
}

func (c *cli) adminBookDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <book-id>",
		Short: "Remove a book from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.catalog.DeleteBook(cmd.Context(), args[0]); err != nil {
				return err
			}
			c.app.state.Success("Book deleted")
			return nil
		},
	}
}

func (c *cli) adminUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List, update and delete accounts",
	}

	var w pagination.Window
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := c.app.client.Admin.ListUsers(cmd.Context(), w)
			if err != nil {
				return err
			}
			c.app.print(c.app.renderer.Users(users))
			return nil
		},
	}
	list.Flags().IntVar(&w.Skip, "skip", 0, "accounts to skip")
	list.Flags().IntVar(&w.Limit, "limit", 100, "accounts to show")

	var (
		admin    bool
		username string
	)
	update := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Change an account's name or admin flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in domain.UserUpdate
			if cmd.Flags().Changed("admin") {
				in.IsAdmin = &admin
			}
			if cmd.Flags().Changed("username") {
				in.Username = &username
			}
			if err := validator.Validate(in); err != nil {
				return apperrors.InvalidInput(err.Error())
			}
			u, err := c.app.client.Admin.UpdateUser(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			c.app.state.Success("User updated")
			c.app.print(c.app.renderer.User(*u))
			return nil
		},
	}
	update.Flags().BoolVar(&admin, "admin", false, "grant or revoke admin rights")
	update.Flags().StringVar(&username, "username", "", "new user name")

	del := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.client.Admin.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			c.app.state.Success("User deleted")
			return nil
		},
	}

	cmd.AddCommand(list, update, del)
	return cmd
}

func (c *cli) adminOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List all orders and move them through their lifecycle",
	}

	var (
		p      = pagination.DefaultParams()
		status string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List every order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := domain.OrderStatus(strings.ToLower(status))
			if s != "" && !s.Valid() {
				return apperrors.InvalidInput("unknown order status " + status)
			}
			orders, err := c.app.client.Orders.AdminList(cmd.Context(), p, s)
			if err != nil {
				return err
			}
			c.app.print(c.app.renderer.Orders(*orders))
			return nil
		},
	}
	list.Flags().IntVar(&p.Page, "page", p.Page, "page number")
	list.Flags().IntVar(&p.Limit, "limit", p.Limit, "orders per page")
	list.Flags().StringVar(&status, "status", "", "only orders in this status")

	set := &cobra.Command{
		Use:   "status <order-id> <pending|confirmed|shipped|delivered|cancelled>",
		Short: "Change an order's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := c.app.checkout.SetStatus(cmd.Context(), args[0], domain.OrderStatus(strings.ToLower(args[1])))
			if err != nil {
				return err
			}
			c.app.print(c.app.renderer.Order(*order))
			return nil
		},
	}

	cmd.AddCommand(list, set)
	return cmd
}

func (c *cli) adminInteractionsCmd() *cobra.Command {
	var (
		w   pagination.Window
		typ string
	)
	cmd := &cobra.Command{
		Use:   "interactions",
		Short: "List recorded user interactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := c.app.client.Interactions.AdminList(cmd.Context(), w, domain.InteractionType(typ))
			if err != nil {
				return err
			}
			c.app.print(c.app.renderer.Interactions(items))
			return nil
		},
	}
	cmd.Flags().IntVar(&w.Skip, "skip", 0, "interactions to skip")
	cmd.Flags().IntVar(&w.Limit, "limit", 100, "interactions to show")
	cmd.Flags().StringVar(&typ, "type", "", "only this interaction type")
	return cmd
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
