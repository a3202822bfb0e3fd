// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"bloomi/cli/internal/httperrors"
	"bloomi/cli/internal/meals"
	"bloomi/cli/internal/model"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var analyzeInput meals.AnalyzeInput

// analyzeCmd uploads a meal photo and prints the nutritional breakdown.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Analyse a meal photo",
	Long: `The analyze command uploads a JPEG, PNG, WebP or HEIC photo of a meal and prints
the estimated calories, macronutrients and recognised food items. The optional
name, weight and notes help the analysis.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.requireLogin(); err != nil {
			return err
		}

		in := analyzeInput
		in.ImagePath = args[0]

		cursor.Hide()
		spinner, _ := pterm.DefaultSpinner.Start("Analysing your meal")
		result, err := a.meals.Analyze(cmd.Context(), in)
		if spinner != nil {
			_ = spinner.Stop()
		}
		cursor.Show()
		if err != nil {
			return httperrors.Report(err, "analysing the photo", a.cfg.APIURL)
		}

		renderAnalysis(result)
		return nil
	},
}

func renderAnalysis(m *model.MealAnalysis) {
	title := m.Name
	if title == "" {
		title = "Meal"
	}
	pterm.Println()
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint(title) + "  " +
		pterm.NewStyle(pterm.FgYellow, pterm.Bold).Sprintf("%.0f kcal", m.Calories))
	if m.Serving.Amount > 0 {
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Serving:    ") + fmt.Sprintf("%g %s", m.Serving.Amount, m.Serving.Unit))
	}
	if m.Confidence > 0 {
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Confidence: ") + fmt.Sprintf("%.0f%%", m.Confidence*100))
	}
	pterm.Println()

	_ = pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Carbs", "Protein", "Fat"},
		{fmt.Sprintf("%.1f g", m.Macros.Carbs), fmt.Sprintf("%.1f g", m.Macros.Protein), fmt.Sprintf("%.1f g", m.Macros.Fat)},
	}).Render()

	if len(m.Items) > 0 {
		pterm.Println()
		var items []pterm.BulletListItem
		for _, it := range m.Items {
			items = append(items, pterm.BulletListItem{
				Level: 0,
				Text:  fmt.Sprintf("%s  %g %s  %.0f kcal", it.Name, it.Amount, it.Unit, it.Calories),
			})
		}
		_ = pterm.DefaultBulletList.WithItems(items).Render()
	}
	if m.Advice != "" {
		pterm.Println()
		pterm.Info.Println(m.Advice)
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeInput.Name, "name", "", "What the meal is, e.g. \"bibimbap\"")
	analyzeCmd.Flags().Float64Var(&analyzeInput.Weight, "weight", 0, "Portion weight in grams")
	analyzeCmd.Flags().StringVar(&analyzeInput.Notes, "notes", "", "Anything else worth knowing about the meal")
}
