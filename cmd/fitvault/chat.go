package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fitvault/fitvault/internal/app"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message...>",
	Short: "Ask the AI fitness assistant",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			reply, err := a.AI.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
