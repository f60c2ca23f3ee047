package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rickgao/botrelay/internal/model"
)

func formatsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List and change how hops are rendered",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List hop formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, *configPath, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			for _, f := range a.admin.HopFormats() {
				state := "shown"
				if !f.Render {
					state = "hidden"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-6s %q\n", f.Hop, state, f.Format)
			}
			return nil
		},
	})

	var format string
	var hidden bool
	set := &cobra.Command{
		Use:   "set <hop>",
		Short: "Set the format of a hop kind or an exact kind(name) hop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, *configPath, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			f := model.HopFormat{Hop: args[0], Render: !hidden, Format: format}
			if err := a.admin.SetHopFormat(ctx, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Format for %s set.\n", f.Hop)
			return nil
		},
	}
	set.Flags().StringVar(&format, "format", "", "display text, %s is replaced by the hop's label or name")
	set.Flags().BoolVar(&hidden, "hidden", false, "hide the hop from rendered paths")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <hop>",
		Short: "Remove the format of a hop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, *configPath, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if err := a.admin.RemoveHopFormat(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Format for %s removed.\n", args[0])
			return nil
		},
	})
	return cmd
}

func colorsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "colors",
		Short: "List and change hop colors of colorized formats",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List hop colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, *configPath, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			for _, c := range a.admin.HopColors() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s tag=%-6s text=%-6s\n", c.Hop, c.TagColor, c.TextColor)
			}
			return nil
		},
	})

	var tagColor, textColor string
	set := &cobra.Command{
		Use:   "set <hop>",
		Short: "Set the tag and text colors of a hop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, *configPath, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			c := model.HopColor{Hop: args[0], TagColor: tagColor, TextColor: textColor}
			if err := a.admin.SetHopColor(ctx, c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Colors for %s set.\n", c.Hop)
			return nil
		},
	}
	set.Flags().StringVar(&tagColor, "tag", "", "tag color as 6 hex digits")
	set.Flags().StringVar(&textColor, "text", "", "text color as 6 hex digits")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <hop>",
		Short: "Remove the colors of a hop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, *configPath, slog.Default())
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if err := a.admin.RemoveHopColor(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Colors for %s removed.\n", args[0])
			return nil
		},
	})
	return cmd
}
