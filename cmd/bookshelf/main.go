// Command bookshelf is a terminal storefront for the bookshelf API.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	apperrors "github.com/utafrali/bookshelf/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// cli carries the app built by the root command's pre-run hook to every
// subcommand.
type cli struct {
	app *app
}

// execute runs one command line and returns the process exit code.
// Notifications raised while the command ran are flushed to stderr. An
// error already shown as a notification is not printed twice.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)

	shown := false
	if c.app != nil {
		shown = c.app.flush(stderr)
		if cerr := c.app.close(); cerr != nil {
			c.app.log.Warn("shutdown failed", slog.String("error", cerr.Error()))
		}
	}
	if err == nil {
		return 0
	}
	if !shown {
		fmt.Fprintln(stderr, "Error: "+errorText(err))
	}
	return 1
}

// errorText prefers the API's message and falls back to the raw error for
// local failures such as bad flags.
func errorText(err error) string {
	if msg := apperrors.UserMessage(err); msg != "something went wrong, please try again" {
		return msg
	}
	return err.Error()
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "bookshelf",
		Short: "Browse, buy and manage books from the terminal",
		Long: `bookshelf talks to the bookshelf REST API.

The server owns the cart: every change is sent to it and the cart shown
afterwards is the one it returns. Configuration comes from BOOKSHELF_*
environment variables; the login session is kept in the user config
directory unless BOOKSHELF_SESSION_FILE is set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.app = a
			cmd.SetContext(a.context(cmd.Context()))
			return nil
		},
	}

	root.AddCommand(
		c.healthCmd(),
		c.registerCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.meCmd(),
		c.prefsCmd(),
		c.historyCmd(),
		c.statsCmd(),
		c.booksCmd(),
		c.cartCmd(),
		c.checkoutCmd(),
		c.ordersCmd(),
		c.recsCmd(),
		c.homeCmd(),
		c.likeCmd(),
		c.likesCmd(),
		c.adminCmd(),
	)
	return root
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := c.app.client.Health(cmd.Context())
			if err != nil {
				return err
			}
			c.app.print(fmt.Sprintf("API %s: %s", c.app.client.BaseURL(), status))
			return nil
		},
	}
}
