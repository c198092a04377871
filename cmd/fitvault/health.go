package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fitvault/fitvault/internal/app"
	"github.com/fitvault/fitvault/internal/models"
)

var (
	healthBodyFat float64
	healthNotes   string
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Track weight, steps, and water",
}

var healthWeighCmd = &cobra.Command{
	Use:   "weigh <kg>",
	Short: "Record a weight measurement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kg, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid weight %q", args[0])
		}
		return withApp(func(a *app.App) error {
			m := models.BodyMeasurement{WeightKg: kg, Notes: healthNotes}
			if cmd.Flags().Changed("body-fat") {
				m.BodyFatPct = &healthBodyFat
			}
			added, err := a.Health.AddMeasurement(m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %.1f kg at %s\n",
				added.WeightKg, added.MeasuredAt.Format(models.DateLayout))
			return nil
		})
	},
}

var healthStepsCmd = &cobra.Command{
	Use:   "steps <count>",
	Short: "Add steps to today's counter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return withApp(func(a *app.App) error {
			if err := a.Health.AddSteps(time.Now(), steps); err != nil {
				return err
			}
			c := a.Health.Counters(time.Now())
			fmt.Fprintf(cmd.OutOrStdout(), "Today: %d steps, %d ml water\n", c.Steps, c.WaterMl)
			return nil
		})
	},
}

var healthWaterCmd = &cobra.Command{
	Use:   "water <ml>",
	Short: "Add water intake to today's counter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ml, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid water amount %q", args[0])
		}
		return withApp(func(a *app.App) error {
			if err := a.Health.AddWater(time.Now(), ml); err != nil {
				return err
			}
			c := a.Health.Counters(time.Now())
			fmt.Fprintf(cmd.OutOrStdout(), "Today: %d steps, %d ml water\n", c.Steps, c.WaterMl)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.AddCommand(healthWeighCmd, healthStepsCmd, healthWaterCmd)

	healthWeighCmd.Flags().Float64Var(&healthBodyFat, "body-fat", 0, "Body fat percentage")
	healthWeighCmd.Flags().StringVar(&healthNotes, "notes", "", "Notes")
}
