package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/utafrali/bookshelf/internal/ui"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
)

// openDrawer subscribes a drawer that prints every cart the store applies
// while the command runs.
func (c *cli) openDrawer() *ui.Drawer {
	d := ui.NewDrawer(c.app.cart, c.app.state, c.app.renderer, c.app.out)
	c.app.state.OpenCart()
	return d
}

func (c *cli) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the server cart",
		Long: `Every change is sent to the API. The cart printed afterwards is the one
the server returns; if a change fails the cart is left as it was.`,
	}
	cmd.AddCommand(
		c.cartShowCmd(),
		c.cartAddCmd(),
		c.cartUpdateCmd(),
		c.cartStepCmd("inc", "Add one copy of a book already in the cart", true),
		c.cartStepCmd("dec", "Remove one copy of a book in the cart", false),
		c.cartRemoveCmd(),
		c.cartClearCmd(),
	)
	return cmd
}

func (c *cli) cartShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := c.openDrawer()
			defer d.Detach()
			return d.Open(cmd.Context())
		},
	}
}

func (c *cli) cartAddCmd() *cobra.Command {
	var qty int
	cmd := &cobra.Command{
		Use:   "add <book-id>",
		Short: "Add a book to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := c.openDrawer()
			defer d.Detach()
			_, err := c.app.cart.Add(cmd.Context(), args[0], qty)
			return err
		},
	}
	cmd.Flags().IntVar(&qty, "qty", 1, "copies to add")
	return cmd
}

func (c *cli) cartUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <book-id> <quantity>",
		Short: "Set the quantity of a cart line; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return apperrors.InvalidInput(fmt.Sprintf("quantity %q is not a number", args[1]))
			}
			d := c.openDrawer()
			defer d.Detach()
			_, err = c.app.cart.UpdateQuantity(cmd.Context(), args[0], qty)
			return err
		},
	}
}

// cartStepCmd loads the cart first so the drawer knows the current
// quantity of the line.
func (c *cli) cartStepCmd(use, short string, up bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <book-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d := ui.NewDrawer(c.app.cart, c.app.state, c.app.renderer, c.app.out)
			defer d.Detach()
			if _, err := c.app.cart.Cart(ctx); err != nil {
				return err
			}
			c.app.state.OpenCart()
			if up {
				return d.Increase(ctx, args[0])
			}
			return d.Decrease(ctx, args[0])
		},
	}
}

func (c *cli) cartRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <book-id>",
		Short: "Remove a book from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := c.openDrawer()
			defer d.Detach()
			_, err := c.app.cart.Remove(cmd.Context(), args[0])
			return err
		},
	}
}

func (c *cli) cartClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := c.openDrawer()
			defer d.Detach()
			_, err := c.app.cart.Clear(cmd.Context())
			return err
		},
	}
}
