package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rickgao/botrelay/internal/model"
)

func routesCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List and change the persisted route table",
	}
	cmd.AddCommand(routesListCmd(configPath))
	cmd.AddCommand(routesAddCmd(configPath))
	cmd.AddCommand(routesRemoveCmd(configPath))
	return cmd
}

func routesListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, *configPath, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			routes := a.admin.Routes()
			if len(routes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No routes defined.")
				return nil
			}
			for _, r := range routes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", r.ID, r)
			}
			return nil
		},
	}
}

func routesAddCmd(configPath *string) *cobra.Command {
	var twoWay bool
	var filter string
	cmd := &cobra.Command{
		Use:   "add <source> <destination>",
		Short: "Add a route from source hops to destination hops",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, *configPath, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			r := model.Route{Source: args[0], Destination: args[1], TwoWay: twoWay, Filter: filter}
			added, err := a.admin.AddRoute(ctx, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Route %s added: %s\n", added.ID, added)
			return nil
		},
	}
	cmd.Flags().BoolVar(&twoWay, "two-way", false, "also route destination back to source")
	cmd.Flags().StringVar(&filter, "filter", "", "boolean expression over kind, text, sender, origin and hops")
	return cmd
}

func routesRemoveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a route by id or id prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, *configPath, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			target, err := findRoute(a.admin.Routes(), args[0])
			if err != nil {
				return err
			}
			removed, err := a.admin.RemoveRoute(ctx, target.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Route %s removed: %s\n", removed.ID, removed)
			return nil
		},
	}
}
