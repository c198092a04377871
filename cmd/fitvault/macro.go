package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fitvault/fitvault/internal/app"
	"github.com/fitvault/fitvault/internal/models"
	"github.com/fitvault/fitvault/internal/store"
)

var (
	macroMeal     string
	macroName     string
	macroCalories int
	macroProtein  float64
	macroCarbs    float64
	macroFat      float64
	macroDate     string
	macroPhotoID  string

	goalCalories int
	goalProtein  float64
	goalCarbs    float64
	goalFat      float64

	profileHeight   float64
	profileWeight   float64
	profileAge      int
	profileSex      string
	profileActivity string
	profileGoal     string
)

var macroCmd = &cobra.Command{
	Use:   "macro",
	Short: "Log meals and track daily macro goals",
}

var macroLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a meal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			entry := models.MacroLog{
				MealType: models.MealType(macroMeal),
				FoodName: macroName,
				Calories: macroCalories,
				ProteinG: macroProtein,
				CarbsG:   macroCarbs,
				FatG:     macroFat,
			}
			if macroDate != "" {
				day, err := time.ParseInLocation(models.DateLayout, macroDate, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q (expected %s)", macroDate, models.DateLayout)
				}
				entry.Date = day
			}

			var logged models.MacroLog
			var err error
			if macroPhotoID != "" {
				photo, perr := a.Photos.FoodPhoto(macroPhotoID)
				if perr != nil {
					return perr
				}
				logged, err = a.Macros.LogFromPhoto(photo, models.MealType(macroMeal))
			} else {
				logged, err = a.Macros.AddLog(entry)
			}
			if err != nil {
				return err
			}

			a.Game.RecordActivity(time.Now())
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%d kcal) as %s\n",
				logged.FoodName, logged.Calories, logged.ID)
			return nil
		})
	},
}

var macroTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's macro progress against goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			now := time.Now()
			p := a.Macros.DailyProgress(now)
			goals := a.Macros.Goals()

			fmt.Fprintf(cmd.OutOrStdout(), "Date: %s\n", now.Format(models.DateLayout))
			fmt.Fprintf(cmd.OutOrStdout(), "Calories: %d / %d (%d%%)\n", p.Calories, goals.Calories, p.CaloriesPct)
			fmt.Fprintf(cmd.OutOrStdout(), "Protein: %.1fg / %.1fg (%d%%)\n", p.ProteinG, goals.ProteinG, p.ProteinPct)
			fmt.Fprintf(cmd.OutOrStdout(), "Carbs: %.1fg / %.1fg (%d%%)\n", p.CarbsG, goals.CarbsG, p.CarbsPct)
			fmt.Fprintf(cmd.OutOrStdout(), "Fat: %.1fg / %.1fg (%d%%)\n", p.FatG, goals.FatG, p.FatPct)
			fmt.Fprintln(cmd.OutOrStdout(), a.Macros.GoalProgressMessage(now))
			return nil
		})
	},
}

var macroGoalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage daily macro goals",
}

var macroGoalSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set daily macro goals directly",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			goals := models.MacroGoals{
				Calories: goalCalories,
				ProteinG: goalProtein,
				CarbsG:   goalCarbs,
				FatG:     goalFat,
			}
			if err := a.Macros.SetGoals(goals); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Goals set: %d kcal | P %.1fg | C %.1fg | F %.1fg\n",
				goals.Calories, goals.ProteinG, goals.CarbsG, goals.FatG)
			return nil
		})
	},
}

var macroGoalDeriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive macro goals from a body profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			profile := models.UserProfile{
				HeightCm:      profileHeight,
				WeightKg:      profileWeight,
				Age:           profileAge,
				Sex:           profileSex,
				ActivityLevel: profileActivity,
				Goal:          profileGoal,
			}
			goals, err := store.CalculateIdealMacros(profile)
			if err != nil {
				return err
			}
			if err := a.Macros.SetProfile(profile); err != nil {
				return err
			}
			if err := a.Macros.SetGoals(goals); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Derived goals: %d kcal | P %.1fg | C %.1fg | F %.1fg\n",
				goals.Calories, goals.ProteinG, goals.CarbsG, goals.FatG)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(macroCmd)
	macroCmd.AddCommand(macroLogCmd, macroTodayCmd, macroGoalCmd)
	macroGoalCmd.AddCommand(macroGoalSetCmd, macroGoalDeriveCmd)

	macroLogCmd.Flags().StringVar(&macroMeal, "meal", "snack", "Meal type (breakfast, lunch, dinner, snack)")
	macroLogCmd.Flags().StringVar(&macroName, "name", "", "Food name")
	macroLogCmd.Flags().IntVar(&macroCalories, "calories", 0, "Calories")
	macroLogCmd.Flags().Float64Var(&macroProtein, "protein", 0, "Protein grams")
	macroLogCmd.Flags().Float64Var(&macroCarbs, "carbs", 0, "Carb grams")
	macroLogCmd.Flags().Float64Var(&macroFat, "fat", 0, "Fat grams")
	macroLogCmd.Flags().StringVar(&macroDate, "date", "", "Date YYYY-MM-DD (default today)")
	macroLogCmd.Flags().StringVar(&macroPhotoID, "photo", "", "Copy nutrition values from this photo ID")

	macroGoalSetCmd.Flags().IntVar(&goalCalories, "calories", 0, "Daily calories")
	macroGoalSetCmd.Flags().Float64Var(&goalProtein, "protein", 0, "Daily protein grams")
	macroGoalSetCmd.Flags().Float64Var(&goalCarbs, "carbs", 0, "Daily carb grams")
	macroGoalSetCmd.Flags().Float64Var(&goalFat, "fat", 0, "Daily fat grams")

	macroGoalDeriveCmd.Flags().Float64Var(&profileHeight, "height", 0, "Height cm")
	macroGoalDeriveCmd.Flags().Float64Var(&profileWeight, "weight", 0, "Weight kg")
	macroGoalDeriveCmd.Flags().IntVar(&profileAge, "age", 0, "Age years")
	macroGoalDeriveCmd.Flags().StringVar(&profileSex, "sex", "", "Sex (male, female)")
	macroGoalDeriveCmd.Flags().StringVar(&profileActivity, "activity", "moderate", "Activity level (sedentary, light, moderate, active, very_active)")
	macroGoalDeriveCmd.Flags().StringVar(&profileGoal, "goal", "maintain", "Goal (lose, maintain, gain)")
}
