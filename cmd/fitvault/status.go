package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fitvault/fitvault/internal/app"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show level, points, streak, and active quests",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			level := a.Game.CurrentLevel()
			streak := a.Game.StreakInfo()

			fmt.Fprintf(cmd.OutOrStdout(), "Level %d (%s), %d points, %d%% to next level\n",
				level.Level, level.Title, a.Game.Points(), a.Game.LevelProgress())
			fmt.Fprintf(cmd.OutOrStdout(), "Streak: %d days (longest %d)\n",
				streak.CurrentStreak, streak.LongestStreak)
			if w, ok := a.Health.LatestWeight(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Weight: %.1f kg\n", w)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Key storage: %s\n", a.Keys.SecurityLevel())

			quests := a.Game.ActiveQuests(time.Now())
			if len(quests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No quests today")
				return nil
			}
			for _, q := range quests {
				state := " "
				if q.Completed {
					state = "x"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s (%d/%d, %d pts)\n",
					state, q.Title, q.Progress, q.Target, q.Points)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
