package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/utafrali/bookshelf/internal/checkout"
	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

func (c *cli) checkoutCmd() *cobra.Command {
	var (
		addr    domain.ShippingAddress
		payment string
		promo   string
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for everything in the cart",
		Long: `checkout walks the shipping address, payment and confirmation steps and
places the order. The items come from the server cart, which the API
empties once the order is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := c.app.session.RequireAuth(); err != nil {
				return err
			}
			if promo != "" {
				c.app.state.SetPromoCode(promo)
			}

			w := c.app.checkout.Wizard()
			w.SetAddress(addr)
			if _, err := w.Next(); err != nil {
				return err
			}
			w.SetPayment(payment)
			step, err := w.Next()
			if err != nil {
				return err
			}
			c.app.log.DebugContext(ctx, "checkout ready", slog.String("step", checkout.StepLabels[step]))

			order, err := c.app.checkout.Submit(ctx)
			if err != nil {
				return err
			}
			c.app.print(c.app.renderer.Order(*order))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr.Address, "address", "", "street address")
	f.StringVar(&addr.City, "city", "", "city")
	f.StringVar(&addr.PostalCode, "postal-code", "", "postal code")
	f.StringVar(&addr.Country, "country", "", "country")
	f.StringVar(&payment, "payment", domain.PaymentCard, "payment method: card or cash")
	f.StringVar(&promo, "promo", "", "promo code")
	return cmd
}

func (c *cli) ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List, show and cancel your orders",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return c.app.session.RequireAuth()
		},
	}
	cmd.AddCommand(c.ordersListCmd(), c.ordersGetCmd(), c.ordersCancelCmd())
	return cmd
}

func (c *cli) ordersListCmd() *cobra.Command {
	p := pagination.DefaultParams()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := c.app.client.Orders.List(cmd.Context(), p)
			if err != nil {
				return err
			}
			c.app.print(c.app.renderer.Orders(*list))
			return nil
		},
	}
	cmd.Flags().IntVar(&p.Page, "page", p.Page, "page number")
	cmd.Flags().IntVar(&p.Limit, "limit", p.Limit, "orders per page")
	return cmd
}

func (c *cli) ordersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := c.app.client.Orders.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.app.print(c.app.renderer.Order(*order))
			return nil
		},
	}
}

func (c *cli) ordersCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel a pending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := c.app.checkout.Cancel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.app.print(c.app.renderer.Order(*order))
			return nil
		},
	}
}
