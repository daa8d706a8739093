package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	spacedeskv1 "spacedesk/internal/api/spacedeskv1"
)

func (a *cliApp) stateCommand() *cobra.Command {
	var reload bool
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the workspace state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.client().State(cmd.Context(), reload)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
	cmd.Flags().BoolVar(&reload, "reload", false, "Re-read the persisted snapshot first")
	return cmd
}

func (a *cliApp) workspacesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "workspaces",
		Short: "List persisted workspace ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids, err := a.client().Workspaces(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func (a *cliApp) spaceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "space",
		Short: "Add and navigate spaces",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add",
			Short: "Append a new empty space",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.printState(cmd)(a.client().AddSpace(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "nav [index]",
			Short: "Make the space at index current",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid index %q: %w", args[0], err)
				}
				return a.printState(cmd)(a.client().NavigateToSpace(cmd.Context(), index))
			},
		},
	)
	return cmd
}

func (a *cliApp) chatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Append to the current space's chat history",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add [role] [content...]",
			Short: "Append a message with an explicit role (user or assistant)",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				content := strings.Join(args[1:], " ")
				return a.printState(cmd)(a.client().AddChatMessage(cmd.Context(), args[0], content))
			},
		},
		&cobra.Command{
			Use:   "send [content...]",
			Short: "Send a user message and wait for the assistant reply",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.printState(cmd)(a.client().SendChat(cmd.Context(), strings.Join(args, " ")))
			},
		},
	)
	return cmd
}

func (a *cliApp) widgetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Add, focus and move widgets in the current space",
	}
	cmd.AddCommand(a.widgetAddCommand(), a.widgetFocusCommand(), a.widgetMoveCommand())
	return cmd
}

func (a *cliApp) widgetAddCommand() *cobra.Command {
	var (
		id, typ, content string
		x, y, w, h       float64
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a widget to the current space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(id) == "" {
				id = uuid.NewString()
			}
			widget := spacedeskv1.Widget{
				Id:       id,
				Type:     typ,
				Position: spacedeskv1.Position{X: x, Y: y},
				Size:     spacedeskv1.Size{Width: w, Height: h},
			}
			if content != "" {
				widget.Content = json.RawMessage(content)
			}
			return a.printState(cmd)(a.client().AddWidget(cmd.Context(), widget))
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Widget id (random uuid when empty)")
	cmd.Flags().StringVar(&typ, "type", "", "Widget type tag")
	cmd.Flags().StringVar(&content, "content", "", "Widget content as JSON")
	cmd.Flags().Float64Var(&x, "x", 0, "X position")
	cmd.Flags().Float64Var(&y, "y", 0, "Y position")
	cmd.Flags().Float64Var(&w, "width", 200, "Width")
	cmd.Flags().Float64Var(&h, "height", 100, "Height")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (a *cliApp) widgetFocusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "focus [widget-id]",
		Short: "Toggle focus on a widget; no id clears focus",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			return a.printState(cmd)(a.client().ToggleWidgetFocus(cmd.Context(), id))
		},
	}
}

func (a *cliApp) widgetMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move [widget-id] [x] [y]",
		Short: "Set a widget's position in the current space",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid x %q: %w", args[1], err)
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid y %q: %w", args[2], err)
			}
			return a.printState(cmd)(a.client().UpdateWidgetPosition(cmd.Context(), args[0], x, y))
		},
	}
}

func (a *cliApp) printState(cmd *cobra.Command) func(spacedeskv1.State, error) error {
	return func(st spacedeskv1.State, err error) error {
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), st)
	}
}
