// Bloomkart is the storefront API server and its operational CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bloomkart/bloomkart/app/repositories"
	"github.com/bloomkart/bloomkart/app/routes"
	"github.com/bloomkart/bloomkart/config"
	"github.com/bloomkart/bloomkart/database/seeders"
	"github.com/bloomkart/bloomkart/internal/server"
	"github.com/bloomkart/bloomkart/pkg/database"
	"github.com/bloomkart/bloomkart/pkg/router"
	"github.com/bloomkart/bloomkart/pkg/ws"
)

func main() {
	root := &cobra.Command{
		Use:          "bloomkart",
		Short:        "Bloomkart storefront API",
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd(), seedCmd(), indexCmd(), routeListCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.Run()
		},
	}
}

// withDatabase runs fn against a connected database and tears down after.
func withDatabase(fn func(ctx context.Context) error) error {
	if err := config.Load(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := database.Connect(ctx); err != nil {
		return err
	}
	defer database.Disconnect(context.Background()) //nolint:errcheck

	return fn(ctx)
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the admin account and a starter catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(ctx context.Context) error {
				if err := repositories.EnsureIndexes(ctx); err != nil {
					return err
				}
				return seeders.Run(ctx)
			})
		},
	}
}

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Create the MongoDB indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(repositories.EnsureIndexes)
		},
	}
}

func routeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route:list",
		Short: "Print the registered route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return err
			}

			// Route registration only stores service handles; nothing is
			// dialled, so an empty Deps is enough to print the table.
			r := router.New()
			if err := routes.Register(r, routes.Deps{Hub: ws.NewHub()}); err != nil {
				return err
			}

			for _, name := range r.Names() {
				path, _ := r.Path(name)
				fmt.Printf("%-28s %s\n", name, path)
			}
			return nil
		},
	}
}
