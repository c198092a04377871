package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fitvault/fitvault/internal/app"
	"github.com/fitvault/fitvault/internal/models"
)

var goalTargetDate string

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Track fitness goals",
}

var goalAddCmd = &cobra.Command{
	Use:   "add <title...>",
	Short: "Declare a fitness goal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			g, err := a.AI.AddGoal(models.FitnessGoal{
				Title:      strings.Join(args, " "),
				TargetDate: goalTargetDate,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added goal %s: %s\n", g.ID, g.Title)
			return nil
		})
	},
}

var goalDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a fitness goal achieved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			if err := a.AI.AchieveGoal(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Goal %s achieved\n", args[0])
			return nil
		})
	},
}

var goalLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List fitness goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			goals := a.AI.Goals()
			if len(goals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No goals yet")
				return nil
			}
			for _, g := range goals {
				state := " "
				if g.Achieved {
					state = "x"
				}
				line := fmt.Sprintf("[%s] %s  %s", state, g.ID, g.Title)
				if g.TargetDate != "" {
					line += "  (by " + g.TargetDate + ")"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalAddCmd, goalDoneCmd, goalLsCmd)

	goalAddCmd.Flags().StringVar(&goalTargetDate, "by", "", "Target date YYYY-MM-DD")
}
