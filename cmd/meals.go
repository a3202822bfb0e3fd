// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"time"

	"bloomi/cli/internal/httperrors"
	"bloomi/cli/internal/meals"
	"bloomi/cli/internal/model"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// mealsCmd lists the meals logged on one day.
var mealsCmd = &cobra.Command{
	Use:   "meals [YYYY-MM-DD]",
	Short: "List meals for a day (default today)",
	Args:  cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.requireLogin(); err != nil {
			return err
		}

		date := meals.FormatLocalDate(time.Now())
		if len(args) == 1 {
			date = args[0]
			if _, err := meals.ParseDate(date); err != nil {
				return err
			}
		}

		list, err := a.meals.ByDate(cmd.Context(), date)
		if err != nil {
			if httperrors.Classify(err) == httperrors.KindUnauthorized {
				return httperrors.Report(err, "loading meals", a.cfg.APIURL)
			}
			// History views degrade to an empty day.
			a.logger.Warn("failed to load meals", zap.String("date", date), zap.Error(err))
			pterm.Warning.Println("Could not load meals from the server, showing an empty day")
			list = nil
		}

		renderMeals(date, list)
		return nil
	},
}

func renderMeals(date string, list []model.MealAnalysis) {
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprintf("Meals on %s", date))
	if len(list) == 0 {
		pterm.Println("No meals logged yet. Try 'bloomi analyze <photo>'.")
		return
	}

	data := pterm.TableData{{"Meal", "kcal", "Carbs", "Protein", "Fat"}}
	var total float64
	for _, m := range list {
		total += m.Calories
		data = append(data, []string{
			m.Name,
			fmt.Sprintf("%.0f", m.Calories),
			fmt.Sprintf("%.1f g", m.Macros.Carbs),
			fmt.Sprintf("%.1f g", m.Macros.Protein),
			fmt.Sprintf("%.1f g", m.Macros.Fat),
		})
	}
	data = append(data, []string{"Total", fmt.Sprintf("%.0f", total), "", "", ""})
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func init() {
	rootCmd.AddCommand(mealsCmd)
}
